package valkeyrelay

import (
	"context"
	"fmt"
	"time"

	"zmq_listener/internal/adapters/codec"
	"zmq_listener/internal/domain/notify"

	glide "github.com/valkey-io/valkey-glide/go/v2"
	"github.com/valkey-io/valkey-glide/go/v2/config"
	"github.com/valkey-io/valkey-glide/go/v2/models"
)

type streamClient interface {
	XAdd(ctx context.Context, key string, values []models.FieldValue) (string, error)
	Close()
}

// Relay appends every notification to a Valkey stream as a single "data"
// field holding the encoded record.
type Relay struct {
	client     streamClient
	streamName string
	codec      codec.Codec
	now        func() time.Time
}

func New(host string, port int, streamName string, c codec.Codec) (*Relay, error) {
	clientConfig := config.NewClientConfiguration().WithAddress(&config.NodeAddress{
		Host: host,
		Port: port,
	})

	glideClient, err := glide.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}
	return newRelay(glideClient, streamName, c), nil
}

func newRelay(client streamClient, streamName string, c codec.Codec) *Relay {
	return &Relay{
		client:     client,
		streamName: streamName,
		codec:      c,
		now:        time.Now,
	}
}

func (r *Relay) Handle(ctx context.Context, n notify.Notification) error {
	data, err := r.codec.Marshal(codec.NewRecord(n, r.now()))
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	if _, err := r.client.XAdd(ctx, r.streamName, []models.FieldValue{
		{Field: "topic", Value: n.Topic.String()},
		{Field: "data", Value: string(data)},
	}); err != nil {
		return fmt.Errorf("xadd %s: %w", r.streamName, err)
	}
	return nil
}

func (r *Relay) Close() error {
	r.client.Close()
	return nil
}
