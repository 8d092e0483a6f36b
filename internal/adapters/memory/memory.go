package memory

import (
	"context"
	"sync"

	"zmq_listener/internal/domain/notify"
)

// Channel is a process-local notify.Channel fed through Publish.
// Used for development and tests.
type Channel struct {
	frames chan notify.RawFrame
	errs   chan error

	once   sync.Once
	closed chan struct{}
}

func New(buffer int) *Channel {
	return &Channel{
		frames: make(chan notify.RawFrame, buffer),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

// Publish queues a frame; it blocks when the buffer is full.
func (c *Channel) Publish(parts ...[]byte) {
	select {
	case c.frames <- notify.RawFrame(parts):
	case <-c.closed:
	}
}

// Fail makes the next Receive that finds no queued frame return err.
func (c *Channel) Fail(err error) {
	select {
	case c.errs <- err:
	default:
	}
}

func (c *Channel) Receive(_ context.Context) (notify.RawFrame, error) {
	select {
	case <-c.closed:
		return nil, notify.ErrCancelled
	default:
	}
	select {
	case f := <-c.frames:
		return f, nil
	default:
	}
	select {
	case f := <-c.frames:
		return f, nil
	case err := <-c.errs:
		return nil, err
	case <-c.closed:
		return nil, notify.ErrCancelled
	}
}

func (c *Channel) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

// Closed reports whether Close has been called.
func (c *Channel) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
	}
	return false
}
