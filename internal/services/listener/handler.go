package listener

import (
	"context"
	"errors"
	"fmt"
	"time"

	dLog "zmq_listener/internal/domain/log"
	"zmq_listener/internal/domain/notify"
)

// Middleware wraps notification handling.
type Middleware func(notify.Handler) notify.Handler

// Logging logs every handled notification at debug level.
func Logging(log dLog.Logger) Middleware {
	return func(next notify.Handler) notify.Handler {
		return func(ctx context.Context, n notify.Notification) error {
			start := time.Now()
			err := next(ctx, n)

			status := "success"
			if err != nil {
				status = "error"
			}
			log.Debug("notification handled",
				dLog.Field{Key: "topic", Value: n.Topic.String()},
				sequenceField(n),
				dLog.Field{Key: "size", Value: len(n.Payload)},
				dLog.Field{Key: "status", Value: status},
				dLog.Field{Key: "duration", Value: time.Since(start).String()},
			)
			return err
		}
	}
}

// Chain combines middlewares; the first one is the outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final notify.Handler) notify.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// Sink is a named consumer of notifications.
type Sink struct {
	Name   string
	Handle notify.Handler
}

// Fanout hands each notification to every sink in order. A failing sink does
// not prevent the rest from running; all failures are joined.
func Fanout(sinks ...Sink) notify.Handler {
	return func(ctx context.Context, n notify.Notification) error {
		var errs []error
		for _, s := range sinks {
			if err := s.Handle(ctx, n); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			}
		}
		return errors.Join(errs...)
	}
}
