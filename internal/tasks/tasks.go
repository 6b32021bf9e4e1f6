// Package tasks defines the background jobs: the welcome email sent when a
// user is created and the periodic sweep of expired sessions. The same
// task values run on a River queue or on the in-process runner.
package tasks

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/dmitrymomot/userdesk/internal/users"
	"github.com/dmitrymomot/userdesk/pkg/job"
	"github.com/dmitrymomot/userdesk/pkg/logger"
	"github.com/dmitrymomot/userdesk/pkg/mailer"
)

// Task names.
const (
	WelcomeEmailTask = "welcome_email"
	SessionSweepTask = "session_sweep"
)

const welcomeAttempts = 3

// SessionSweepSchedule runs the sweep every ten minutes.
const SessionSweepSchedule = "*/10 * * * *"

//go:embed templates
var templates embed.FS

// Templates holds the mail templates and their layouts.
var Templates = mustSub(templates, "templates")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(fmt.Sprintf("tasks: %s: %v", dir, err))
	}
	return sub
}

// Mailer sends a templated email. *mailer.Mailer implements it.
type Mailer interface {
	Send(ctx context.Context, params mailer.SendParams) error
}

// WelcomeEmailPayload identifies the new user.
type WelcomeEmailPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
}

// WelcomeEmail greets a newly created user.
type WelcomeEmail struct {
	mailer Mailer
	logger *slog.Logger
}

// NewWelcomeEmail returns the task.
func NewWelcomeEmail(m Mailer, l *slog.Logger) *WelcomeEmail {
	if l == nil {
		l = logger.NewNope()
	}
	return &WelcomeEmail{mailer: m, logger: l}
}

func (t *WelcomeEmail) Name() string { return WelcomeEmailTask }

// Handle renders welcome.md and sends it to the user.
func (t *WelcomeEmail) Handle(ctx context.Context, p WelcomeEmailPayload) error {
	display := p.Name
	if display == "" {
		display = p.Username
	}
	err := t.mailer.Send(ctx, mailer.SendParams{
		To:       mailer.Recipient(p.Name, p.Email),
		Template: "welcome.md",
		Data: map[string]any{
			"Username":    p.Username,
			"DisplayName": display,
		},
		Tags: mailer.Tags{"kind": WelcomeEmailTask},
	})
	if err != nil {
		return err
	}
	t.logger.InfoContext(ctx, "welcome email sent", slog.String("user_id", p.UserID))
	return nil
}

// Sweeper drops expired sessions. *session.CacheStore implements it.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// SessionSweep periodically removes expired sessions from the store.
type SessionSweep struct {
	store  Sweeper
	logger *slog.Logger
}

// NewSessionSweep returns the scheduled task.
func NewSessionSweep(store Sweeper, l *slog.Logger) *SessionSweep {
	if l == nil {
		l = logger.NewNope()
	}
	return &SessionSweep{store: store, logger: l}
}

func (t *SessionSweep) Name() string     { return SessionSweepTask }
func (t *SessionSweep) Schedule() string { return SessionSweepSchedule }

func (t *SessionSweep) Handle(ctx context.Context) error {
	n, err := t.store.Sweep(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		t.logger.InfoContext(ctx, "expired sessions removed", slog.Int("count", n))
	}
	return nil
}

// EnqueueWelcome returns a repository hook that queues the welcome email
// for every created user. A failed enqueue is logged; the user stays
// created.
func EnqueueWelcome(d job.Dispatcher, l *slog.Logger) users.Hook {
	if l == nil {
		l = logger.NewNope()
	}
	return func(ctx context.Context, u users.User) {
		err := d.Enqueue(ctx, WelcomeEmailTask, WelcomeEmailPayload{
			UserID:   u.ID,
			Username: u.Username,
			Email:    u.Email,
			Name:     u.Name,
		}, job.MaxAttempts(welcomeAttempts), job.UniqueFor(time.Hour), job.UniqueKey(u.ID))
		if err != nil {
			l.ErrorContext(ctx, "failed to enqueue welcome email",
				slog.String("user_id", u.ID),
				slog.Any("error", err),
			)
		}
	}
}
