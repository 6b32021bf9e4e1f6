package userdesk

import (
	"log/slog"

	"github.com/dmitrymomot/userdesk/internal/users"
	"github.com/dmitrymomot/userdesk/pkg/mailer"
)

// Option overrides a part New would otherwise build from the config.
type Option func(*options)

type options struct {
	logger *slog.Logger
	store  users.Store
	sender mailer.Sender
}

// WithLogger replaces the logger built from config.Logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithUserStore replaces the Postgres or in-memory user store.
func WithUserStore(s users.Store) Option {
	return func(o *options) {
		if s != nil {
			o.store = s
		}
	}
}

// WithMailSender replaces the Resend or log sender.
func WithMailSender(s mailer.Sender) Option {
	return func(o *options) {
		if s != nil {
			o.sender = s
		}
	}
}
