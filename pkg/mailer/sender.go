package mailer

import (
	"context"
	"log/slog"
)

// Sender delivers a fully rendered Email.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// LogSender writes emails to a logger instead of delivering them.
// It stands in for a provider in development.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender returns a LogSender writing at info level.
func NewLogSender(l *slog.Logger) *LogSender {
	return &LogSender{logger: l}
}

func (s *LogSender) Send(ctx context.Context, email *Email) error {
	s.logger.InfoContext(ctx, "email not delivered, no provider configured",
		slog.Any("to", email.To),
		slog.String("subject", email.Subject),
		slog.String("text", email.Text),
	)
	return nil
}
