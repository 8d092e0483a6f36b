package notify

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection is returned when the transport can't be established.
	ErrConnection = errors.New("notify: connection failed")
	// ErrTransport is returned when receive fails on an established connection.
	ErrTransport = errors.New("notify: transport failure")
	// ErrCancelled is returned by a receive aborted by Close.
	ErrCancelled = errors.New("notify: receive cancelled")

	ErrMalformedFrame = errors.New("notify: malformed frame")
	ErrUnknownTopic   = fmt.Errorf("%w: unknown topic", ErrMalformedFrame)
)

// HandlerError wraps a failure raised by a consumer while handling n.
type HandlerError struct {
	Notification Notification
	Err          error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler failed on %s: %v", e.Notification.Topic, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
