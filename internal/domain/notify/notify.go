package notify

import (
	"context"
	"fmt"
)

// Topic is the kind of notification published by the node.
type Topic int

const (
	BlockHash Topic = iota
	TxHash
	RawBlockHeader
	RawTx
)

var topicNames = [...]string{
	BlockHash:      "hashblock",
	TxHash:         "hashtx",
	RawBlockHeader: "rawblock",
	RawTx:          "rawtx",
}

// String returns the wire-level topic string.
func (t Topic) String() string {
	if t < 0 || int(t) >= len(topicNames) {
		return fmt.Sprintf("topic(%d)", int(t))
	}
	return topicNames[t]
}

// AllTopics returns the fixed set of known topics.
func AllTopics() []Topic {
	return []Topic{BlockHash, TxHash, RawBlockHeader, RawTx}
}

// ParseTopic maps a wire-level topic string to a Topic.
func ParseTopic(s string) (Topic, error) {
	for i, name := range topicNames {
		if name == s {
			return Topic(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTopic, s)
}

// RawFrame is one multi-part message as delivered by the transport.
type RawFrame [][]byte

// Notification is a decoded frame. Only Decode creates it.
type Notification struct {
	Topic       Topic
	Payload     []byte
	Sequence    uint32
	HasSequence bool
}

// Handler consumes decoded notifications. Invocations never overlap.
type Handler func(ctx context.Context, n Notification) error

// Channel is a subscription to the node's notification publisher.
type Channel interface {
	Receive(ctx context.Context) (RawFrame, error)
	Close() error
}
