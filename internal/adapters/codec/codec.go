package codec

import (
	"encoding/json"
	"fmt"
	"time"

	"zmq_listener/internal/domain/notify"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Record is the envelope relayed to brokers for one notification.
type Record struct {
	ID         string    `json:"id" cbor:"1,keyasint"`
	Topic      string    `json:"topic" cbor:"2,keyasint"`
	Payload    []byte    `json:"payload" cbor:"3,keyasint"`
	Sequence   *uint32   `json:"sequence,omitempty" cbor:"4,keyasint,omitempty"`
	ReceivedAt time.Time `json:"received_at" cbor:"5,keyasint"`
}

func NewRecord(n notify.Notification, now time.Time) Record {
	r := Record{
		ID:         uuid.NewString(),
		Topic:      n.Topic.String(),
		Payload:    n.Payload,
		ReceivedAt: now.UTC(),
	}
	if n.HasSequence {
		s := n.Sequence
		r.Sequence = &s
	}
	return r
}

type Codec interface {
	Name() string
	Marshal(r Record) ([]byte, error)
	Unmarshal(data []byte, r *Record) error
}

// New returns the codec registered under name; an empty name means JSON.
func New(name string) (Codec, error) {
	switch name {
	case "", "json":
		return jsonCodec{}, nil
	case "cbor":
		return cborCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s", name)
	}
}

type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(r Record) ([]byte, error) {
	return json.Marshal(r)
}

func (jsonCodec) Unmarshal(data []byte, r *Record) error {
	return json.Unmarshal(data, r)
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create record CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create record CBOR decoder mode: %v", err))
	}
}

type cborCodec struct{}

func (cborCodec) Name() string { return "cbor" }

func (cborCodec) Marshal(r Record) ([]byte, error) {
	return encMode.Marshal(r)
}

func (cborCodec) Unmarshal(data []byte, r *Record) error {
	return decMode.Unmarshal(data, r)
}
