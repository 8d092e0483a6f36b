package mailalert

import (
	"context"
	"encoding/hex"
	"fmt"
	"html"

	"zmq_listener/internal/domain/notify"

	gomail "gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Alerter mails one message per new block hash. Other topics are ignored.
type Alerter struct {
	cfg    SMTPConfig
	sender sender
}

func New(cfg SMTPConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (a *Alerter) Handle(_ context.Context, n notify.Notification) error {
	if n.Topic != notify.BlockHash {
		return nil
	}

	hash := hex.EncodeToString(n.Payload)
	seq := "unknown"
	if n.HasSequence {
		seq = fmt.Sprint(n.Sequence)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", a.cfg.From)
	m.SetHeader("To", a.cfg.To...)
	m.SetHeader("Subject", "New block "+shortHash(hash))
	m.SetBody("text/html", fmt.Sprintf(
		"<p>New block announced by the node.</p><p>Hash: <code>%s</code><br>Sequence: %s</p>",
		html.EscapeString(hash), html.EscapeString(seq),
	))

	if err := a.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send block alert: %w", err)
	}
	return nil
}

// shortHash keeps the subject ASCII so gomail leaves it unencoded.
func shortHash(h string) string {
	if len(h) <= 16 {
		return h
	}
	return h[:16] + "..."
}
