package notify

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	// BlockHeaderSize is the serialized size of a block header.
	BlockHeaderSize = 80

	minFrameParts = 2
	maxFrameParts = 4
	sequenceSize  = 4
)

var topicLiterals = [...][]byte{
	BlockHash:      []byte("hashblock"),
	TxHash:         []byte("hashtx"),
	RawBlockHeader: []byte("rawblock"),
	RawTx:          []byte("rawtx"),
}

// Decode turns one raw frame into a Notification. The frame is not retained.
func Decode(frame RawFrame) (Notification, error) {
	if len(frame) < minFrameParts || len(frame) > maxFrameParts {
		return Notification{}, fmt.Errorf("%w: %d parts", ErrMalformedFrame, len(frame))
	}

	topic, ok := matchTopic(frame[0])
	if !ok {
		return Notification{}, fmt.Errorf("%w: %q", ErrUnknownTopic, frame[0])
	}

	body := frame[1]
	if topic == RawBlockHeader && len(body) > BlockHeaderSize {
		body = body[:BlockHeaderSize]
	}

	n := Notification{
		Topic:   topic,
		Payload: bytes.Clone(body),
	}
	if last := frame[len(frame)-1]; len(last) == sequenceSize {
		n.Sequence = binary.LittleEndian.Uint32(last)
		n.HasSequence = true
	}
	if n.Payload == nil {
		n.Payload = []byte{}
	}
	return n, nil
}

func matchTopic(b []byte) (Topic, bool) {
	for i, lit := range topicLiterals {
		if bytes.Equal(b, lit) {
			return Topic(i), true
		}
	}
	return 0, false
}
