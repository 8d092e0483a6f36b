package zmqsub

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"zmq_listener/internal/domain/notify"

	zmq "github.com/pebbe/zmq4"
)

// Channel is a SUB socket connected to one publisher endpoint.
// Receive must be called from a single goroutine; Close may be called from any.
type Channel struct {
	zctx     *zmq.Context
	sock     *zmq.Socket
	endpoint string
	topics   []notify.Topic

	mu        sync.Mutex
	receiving bool
	closed    bool
	sockDone  bool
	closeOnce sync.Once
	closeErr  error
}

// validateEndpoint only accepts transports a node can publish on.
func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	switch u.Scheme {
	case "tcp":
		if u.Host == "" {
			return fmt.Errorf("invalid endpoint %q: empty host", endpoint)
		}
	case "ipc", "inproc":
	default:
		return fmt.Errorf("invalid endpoint %q: unsupported transport %q", endpoint, u.Scheme)
	}
	return nil
}

// Open creates a private context, subscribes to every topic and connects.
func Open(endpoint string, topics ...notify.Topic) (*Channel, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: empty topic set", notify.ErrConnection)
	}
	if err := validateEndpoint(endpoint); err != nil {
		return nil, fmt.Errorf("%w: %w", notify.ErrConnection, err)
	}

	zctx, err := zmq.NewContext()
	if err != nil {
		return nil, fmt.Errorf("%w: new context: %w", notify.ErrConnection, err)
	}
	sock, err := zctx.NewSocket(zmq.SUB)
	if err != nil {
		_ = zctx.Term()
		return nil, fmt.Errorf("%w: new socket: %w", notify.ErrConnection, err)
	}

	c := &Channel{
		zctx:     zctx,
		sock:     sock,
		endpoint: endpoint,
		topics:   append([]notify.Topic(nil), topics...),
	}
	if err := c.setup(); err != nil {
		_ = sock.Close()
		_ = zctx.Term()
		return nil, fmt.Errorf("%w: %w", notify.ErrConnection, err)
	}
	return c, nil
}

func (c *Channel) setup() error {
	if err := c.sock.SetLinger(0); err != nil {
		return fmt.Errorf("set linger: %w", err)
	}
	for _, t := range c.topics {
		if err := c.sock.SetSubscribe(t.String()); err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
	}
	if err := c.sock.Connect(c.endpoint); err != nil {
		return fmt.Errorf("connect %s: %w", c.endpoint, err)
	}
	return nil
}

func (c *Channel) Endpoint() string {
	return c.endpoint
}

func (c *Channel) Topics() []notify.Topic {
	return append([]notify.Topic(nil), c.topics...)
}

// Receive blocks until one multi-part message arrives or the channel is closed.
// ctx is not consulted: ZeroMQ has no cancellable receive, so a pending call is
// interrupted only by Close, which listener.Dispatcher.Stop calls.
func (c *Channel) Receive(ctx context.Context) (notify.RawFrame, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, notify.ErrCancelled
	}
	c.receiving = true
	c.mu.Unlock()

	parts, err := c.sock.RecvMessageBytes(0)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.receiving = false
	if c.closed {
		// Close is waiting in Term for this socket to go away.
		c.closeSocket()
		return nil, notify.ErrCancelled
	}
	if err != nil {
		if zmq.AsErrno(err) == zmq.ETERM {
			return nil, notify.ErrCancelled
		}
		return nil, fmt.Errorf("%w: recv: %w", notify.ErrTransport, err)
	}
	return parts, nil
}

// closeSocket must be called with mu held.
func (c *Channel) closeSocket() {
	if c.sockDone {
		return
	}
	c.sockDone = true
	if err := c.sock.Close(); err != nil && c.closeErr == nil {
		c.closeErr = err
	}
}

// Close releases the socket and the context. It is idempotent and unblocks
// a pending Receive, which then fails with notify.ErrCancelled.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		if !c.receiving {
			c.closeSocket()
		}
		c.mu.Unlock()

		// Term blocks until the receiving goroutine has closed the socket.
		if err := c.zctx.Term(); err != nil {
			c.mu.Lock()
			if c.closeErr == nil {
				c.closeErr = err
			}
			c.mu.Unlock()
		}
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeErr
}
