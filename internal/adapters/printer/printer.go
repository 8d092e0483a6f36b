package printer

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"zmq_listener/internal/domain/notify"
)

var headers = map[notify.Topic]string{
	notify.BlockHash:      "- HASH BLOCK (%s) -",
	notify.TxHash:         "- HASH TX  (%s) -",
	notify.RawBlockHeader: "- RAW BLOCK HEADER (%s) -",
	notify.RawTx:          "- RAW TX (%s) -",
}

// Printer writes a header line and the hex payload for each notification.
type Printer struct {
	w io.Writer
}

func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Handle(_ context.Context, n notify.Notification) error {
	seq := "Unknown"
	if n.HasSequence {
		seq = strconv.FormatUint(uint64(n.Sequence), 10)
	}
	header, ok := headers[n.Topic]
	if !ok {
		return fmt.Errorf("no header for %s", n.Topic)
	}

	_, err := fmt.Fprintf(p.w, header+"\n%s\n", seq, hex.EncodeToString(n.Payload))
	return err
}
