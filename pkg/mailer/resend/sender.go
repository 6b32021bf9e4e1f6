// Package resend implements mailer.Sender on top of the Resend API.
package resend

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/userdesk/pkg/mailer"
)

// ErrNoAPIKey is returned by New when Config.APIKey is empty.
var ErrNoAPIKey = errors.New("resend: api key is required")

// Sender sends email through Resend.
type Sender struct {
	client *resend.Client
	from   string
}

// New returns a Sender for cfg.
func New(cfg Config) (*Sender, error) {
	if !cfg.Enabled() {
		return nil, ErrNoAPIKey
	}
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		from:   mailer.Recipient(cfg.SenderName, cfg.SenderEmail),
	}, nil
}

func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	req := buildRequest(s.from, email)
	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return errors.Join(errors.New("resend: send failed"), err)
	}
	return nil
}

func buildRequest(defaultFrom string, email *mailer.Email) *resend.SendEmailRequest {
	from := email.From
	if from == "" {
		from = defaultFrom
	}
	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
	}
	// Resend tags are name/value pairs; bare tags become "true".
	for _, name := range slices.Sorted(maps.Keys(email.Tags)) {
		value := email.Tags[name]
		if value == "" {
			value = "true"
		}
		req.Tags = append(req.Tags, resend.Tag{Name: name, Value: value})
	}
	return req
}
