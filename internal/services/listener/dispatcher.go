package listener

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	dLog "zmq_listener/internal/domain/log"
	"zmq_listener/internal/domain/notify"
	"zmq_listener/internal/services/metrics"
)

// State is the dispatcher lifecycle state.
type State int32

const (
	Idle State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

var ErrAlreadyStarted = errors.New("listener: dispatcher already started")

// Dispatcher drives the receive-decode-dispatch loop over one channel.
// A Dispatcher runs once; Stop may be called from any goroutine.
type Dispatcher struct {
	log     dLog.Logger
	metrics *metrics.Collector

	state atomic.Int32

	mu sync.Mutex
	ch notify.Channel
}

// New creates an idle dispatcher. m may be nil.
func New(log dLog.Logger, m *metrics.Collector) *Dispatcher {
	return &Dispatcher{
		log:     log,
		metrics: m,
	}
}

func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Run dispatches every notification received on ch to h, one at a time and
// in arrival order, until Stop is called, ctx is cancelled or the transport
// fails. ch is closed on return. Only a transport failure is returned as an
// error; it wraps notify.ErrTransport.
func (d *Dispatcher) Run(ctx context.Context, ch notify.Channel, h notify.Handler) error {
	d.mu.Lock()
	if !d.state.CompareAndSwap(int32(Idle), int32(Running)) {
		d.mu.Unlock()
		return ErrAlreadyStarted
	}
	d.ch = ch
	d.mu.Unlock()

	defer d.finish()
	stopOnCancel := context.AfterFunc(ctx, d.Stop)
	defer stopOnCancel()

	// the frame in hand is always dispatched in full, even during shutdown
	hctx := context.WithoutCancel(ctx)

	d.log.Info("dispatcher started")
	for d.State() == Running {
		frame, err := ch.Receive(ctx)
		if err != nil {
			if errors.Is(err, notify.ErrCancelled) || d.State() != Running {
				d.log.Info("dispatcher stopped")
				return nil
			}
			if !errors.Is(err, notify.ErrTransport) {
				err = fmt.Errorf("%w: %w", notify.ErrTransport, err)
			}
			d.log.Error("receive failed, stopping dispatcher", dLog.Err(err))
			return err
		}
		d.dispatch(hctx, frame, h)
	}
	d.log.Info("dispatcher stopped")
	return nil
}

// Stop requests the loop to stop after the frame in hand, unblocking a
// pending receive. It is idempotent; before Run it does nothing.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	stopping := d.state.CompareAndSwap(int32(Running), int32(Stopping))
	ch := d.ch
	d.mu.Unlock()

	if !stopping {
		return
	}
	d.log.Info("stop requested")
	if err := ch.Close(); err != nil {
		d.log.Warn("closing channel", dLog.Err(err))
	}
}

func (d *Dispatcher) finish() {
	d.mu.Lock()
	ch := d.ch
	d.state.Store(int32(Stopped))
	d.mu.Unlock()

	if err := ch.Close(); err != nil {
		d.log.Warn("closing channel", dLog.Err(err))
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, frame notify.RawFrame, h notify.Handler) {
	d.metrics.FrameReceived()

	n, err := notify.Decode(frame)
	if err != nil {
		reason := metrics.ReasonMalformed
		if errors.Is(err, notify.ErrUnknownTopic) {
			reason = metrics.ReasonUnknownTopic
		}
		d.metrics.Dropped(reason)
		d.log.Debug("frame dropped",
			dLog.Err(err),
			dLog.Field{Key: "parts", Value: len(frame)},
		)
		return
	}

	d.metrics.Dispatched(n.Topic.String())
	if err := invoke(ctx, h, n); err != nil {
		d.metrics.HandlerFailed()
		d.log.Error("handler failed",
			dLog.Err(err),
			dLog.Field{Key: "topic", Value: n.Topic.String()},
			sequenceField(n),
		)
	}
}

// invoke calls h, turning both a returned error and a panic into a
// *notify.HandlerError.
func invoke(ctx context.Context, h notify.Handler, n notify.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &notify.HandlerError{
				Notification: n,
				Err:          fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
			}
		}
	}()

	if hErr := h(ctx, n); hErr != nil {
		return &notify.HandlerError{Notification: n, Err: hErr}
	}
	return nil
}

func sequenceField(n notify.Notification) dLog.Field {
	if !n.HasSequence {
		return dLog.Field{Key: "seq", Value: "unknown"}
	}
	return dLog.Field{Key: "seq", Value: n.Sequence}
}
