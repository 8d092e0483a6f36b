package notify

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func TestDecodeRawBlockTruncatesHeader(t *testing.T) {
	body := bytes.Repeat([]byte{0xab}, 84)
	body[79] = 0x01

	n, err := Decode(RawFrame{[]byte("rawblock"), body, seq(7)})
	require.NoError(t, err)
	assert.Equal(t, RawBlockHeader, n.Topic)
	assert.Equal(t, body[:80], n.Payload)
	assert.True(t, n.HasSequence)
	assert.EqualValues(t, 7, n.Sequence)
}

func TestDecodeTwoPartHashTx(t *testing.T) {
	hash := bytes.Repeat([]byte{0x11}, 32)

	n, err := Decode(RawFrame{[]byte("hashtx"), hash})
	require.NoError(t, err)
	assert.Equal(t, TxHash, n.Topic)
	assert.Equal(t, hash, n.Payload)
	assert.False(t, n.HasSequence)
	assert.Zero(t, n.Sequence)
}

func TestDecodeUnknownTopic(t *testing.T) {
	_, err := Decode(RawFrame{[]byte("unknowntopic"), []byte("data")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTopic)
	assert.ErrorIs(t, err, ErrMalformedFrame)

	// filter prefixes are not topics
	_, err = Decode(RawFrame{[]byte("hashblock2"), []byte("data"), seq(1)})
	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestDecodeArity(t *testing.T) {
	for _, frame := range []RawFrame{
		nil,
		{[]byte("hashtx")},
		{[]byte("hashtx"), {1}, {2}, {3}, seq(1)},
	} {
		_, err := Decode(frame)
		require.ErrorIs(t, err, ErrMalformedFrame, "%d parts", len(frame))
		assert.False(t, errors.Is(err, ErrUnknownTopic))
	}
}

func TestDecodeSequence(t *testing.T) {
	testCases := []struct {
		name    string
		last    []byte
		want    uint32
		present bool
	}{
		{"zero", seq(0), 0, true},
		{"little endian", []byte{0x01, 0x02, 0x03, 0x04}, 0x04030201, true},
		{"max", seq(0xffffffff), 0xffffffff, true},
		{"three bytes", []byte{1, 2, 3}, 0, false},
		{"five bytes", []byte{1, 2, 3, 4, 5}, 0, false},
		{"empty", []byte{}, 0, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := Decode(RawFrame{[]byte("hashblock"), bytes.Repeat([]byte{0x22}, 32), tc.last})
			require.NoError(t, err)
			assert.Equal(t, tc.present, n.HasSequence)
			assert.Equal(t, tc.want, n.Sequence)
		})
	}
}

func TestDecodePayloadLength(t *testing.T) {
	for _, topic := range AllTopics() {
		for _, size := range []int{0, 32, 79, 80, 81, 300} {
			body := bytes.Repeat([]byte{0x5a}, size)
			n, err := Decode(RawFrame{[]byte(topic.String()), body, seq(3)})
			require.NoError(t, err)

			want := size
			if topic == RawBlockHeader {
				want = min(BlockHeaderSize, size)
			}
			assert.Len(t, n.Payload, want, "%s/%d", topic, size)
			assert.Equal(t, body[:want], n.Payload)
		}
	}
}

func TestDecodeDoesNotAliasFrame(t *testing.T) {
	body := []byte{1, 2, 3}
	n, err := Decode(RawFrame{[]byte("rawtx"), body})
	require.NoError(t, err)

	body[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, n.Payload)
}

func TestParseTopic(t *testing.T) {
	for _, topic := range AllTopics() {
		got, err := ParseTopic(topic.String())
		require.NoError(t, err)
		assert.Equal(t, topic, got)
	}

	_, err := ParseTopic("sequence")
	assert.ErrorIs(t, err, ErrUnknownTopic)
	assert.Equal(t, "topic(9)", Topic(9).String())
}

func TestHandlerErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := error(&HandlerError{Notification: Notification{Topic: RawTx}, Err: cause})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "handler failed on rawtx: boom", err.Error())
}
