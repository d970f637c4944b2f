// Package notify delivers customer email. It never participates in a
// transaction: callers log failures and move on.
package notify

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

var ErrNoRecipient = errors.New("no recipient")

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// SMTP sends through a relay with gomail.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(host string, port int, user, password, from string) *SMTP {
	if from == "" {
		from = user
	}
	return &SMTP{dialer: gomail.NewDialer(host, port, user, password), from: from}
}

func (s *SMTP) Send(ctx context.Context, m Message) error {
	if m.To == "" {
		return ErrNoRecipient
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)
	for _, a := range m.Attachments {
		data := a.Data
		settings := []gomail.FileSetting{gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		})}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}))
		}
		msg.Attach(a.Filename, settings...)
	}

	// gomail has no context support; honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.dialer.DialAndSend(msg)
}

// LogMailer only logs. Used when no SMTP credentials are configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m Message) error {
	if m.To == "" {
		return ErrNoRecipient
	}
	log.Info().Str("to", m.To).Str("subject", m.Subject).Int("attachments", len(m.Attachments)).Msg("[notify] email not sent, smtp disabled")
	return nil
}
