package listener

import (
	"context"
	"errors"
	"testing"

	"zmq_listener/internal/adapters/logger"
	"zmq_listener/internal/domain/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanoutRunsEverySink(t *testing.T) {
	var order []string
	record := func(name string, err error) Sink {
		return Sink{Name: name, Handle: func(context.Context, notify.Notification) error {
			order = append(order, name)
			return err
		}}
	}
	kafkaErr := errors.New("broker down")

	h := Fanout(record("printer", nil), record("kafka", kafkaErr), record("valkey", nil))
	err := h(context.Background(), notify.Notification{Topic: notify.RawTx})

	require.ErrorIs(t, err, kafkaErr)
	assert.Contains(t, err.Error(), "kafka: broker down")
	assert.Equal(t, []string{"printer", "kafka", "valkey"}, order)

	assert.NoError(t, Fanout()(context.Background(), notify.Notification{}))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next notify.Handler) notify.Handler {
			return func(ctx context.Context, n notify.Notification) error {
				order = append(order, name)
				return next(ctx, n)
			}
		}
	}

	h := Chain(mw("outer"), Logging(logger.Nop()), mw("inner"))(func(context.Context, notify.Notification) error {
		order = append(order, "handler")
		return nil
	})
	require.NoError(t, h(context.Background(), notify.Notification{Topic: notify.BlockHash}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestInvokeRecoversPanic(t *testing.T) {
	n := notify.Notification{Topic: notify.TxHash, Sequence: 5, HasSequence: true}
	err := invoke(context.Background(), func(context.Context, notify.Notification) error {
		panic("nil map")
	}, n)

	var hErr *notify.HandlerError
	require.ErrorAs(t, err, &hErr)
	assert.Equal(t, n, hErr.Notification)
	assert.Contains(t, hErr.Err.Error(), "panic: nil map")
}
