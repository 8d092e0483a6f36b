package kafkarelay

import (
	"context"
	"fmt"
	"time"

	"zmq_listener/internal/adapters/codec"
	"zmq_listener/internal/domain/notify"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Relay publishes every notification to one Kafka topic, keyed by the
// notification topic so each kind stays ordered within its partition.
type Relay struct {
	writer messageWriter
	codec  codec.Codec
	now    func() time.Time
}

func New(brokers []string, topic string, c codec.Codec) *Relay {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.Hash{},
	})
	return newRelay(writer, c)
}

func newRelay(w messageWriter, c codec.Codec) *Relay {
	return &Relay{writer: w, codec: c, now: time.Now}
}

func (r *Relay) Handle(ctx context.Context, n notify.Notification) error {
	value, err := r.codec.Marshal(codec.NewRecord(n, r.now()))
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	err = r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.Topic.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "encoding", Value: []byte(r.codec.Name())},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send data in kafka: %w", err)
	}

	return nil
}

// Close flushes pending messages.
func (r *Relay) Close() error {
	return r.writer.Close()
}
