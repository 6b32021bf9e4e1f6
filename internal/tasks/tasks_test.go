package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userdesk/internal/tasks"
	"github.com/dmitrymomot/userdesk/internal/users"
	"github.com/dmitrymomot/userdesk/pkg/job"
	"github.com/dmitrymomot/userdesk/pkg/mailer"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, email *mailer.Email) error {
	return m.Called(ctx, email).Error(0)
}

type fakeSweeper struct {
	n   int
	err error
}

func (f *fakeSweeper) Sweep(context.Context) (int, error) {
	return f.n, f.err
}

type fakeDispatcher struct {
	name    string
	payload any
	err     error
}

func (f *fakeDispatcher) Enqueue(_ context.Context, name string, payload any, _ ...job.EnqueueOption) error {
	f.name, f.payload = name, payload
	return f.err
}

func TestWelcomeEmailRendersEmbeddedTemplate(t *testing.T) {
	t.Parallel()

	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.AnythingOfType("*mailer.Email")).Return(nil).Once()

	m := mailer.New(sender, mailer.NewRenderer(tasks.Templates), mailer.Config{
		DefaultLayout:   "base.html",
		FallbackSubject: "Notification",
		BaseURL:         "https://desk.example.com",
	})
	task := tasks.NewWelcomeEmail(m, nil)
	assert.Equal(t, tasks.WelcomeEmailTask, task.Name())

	err := task.Handle(context.Background(), tasks.WelcomeEmailPayload{
		UserID:   "u1",
		Username: "ann",
		Email:    "ann@example.com",
		Name:     "Ann",
	})
	require.NoError(t, err)
	sender.AssertExpectations(t)

	email := sender.Calls[0].Arguments.Get(1).(*mailer.Email)
	assert.Equal(t, []string{"Ann <ann@example.com>"}, email.To)
	assert.Equal(t, "Welcome to Userdesk, ann", email.Subject)
	assert.Equal(t, tasks.WelcomeEmailTask, email.Tags["kind"])
	assert.Contains(t, email.HTML, "<strong>Ann</strong>")
	assert.Contains(t, email.HTML, `href="https://desk.example.com/auth/login"`)
}

func TestWelcomeEmailSendFailure(t *testing.T) {
	t.Parallel()

	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("provider down"))

	m := mailer.New(sender, mailer.NewRenderer(tasks.Templates), mailer.Config{DefaultLayout: "base.html"})
	err := tasks.NewWelcomeEmail(m, nil).Handle(context.Background(), tasks.WelcomeEmailPayload{Username: "ann", Email: "ann@example.com"})
	require.Error(t, err)
}

func TestSessionSweep(t *testing.T) {
	t.Parallel()

	task := tasks.NewSessionSweep(&fakeSweeper{n: 3}, nil)
	assert.Equal(t, tasks.SessionSweepTask, task.Name())
	assert.Equal(t, tasks.SessionSweepSchedule, task.Schedule())
	require.NoError(t, task.Handle(context.Background()))

	failing := tasks.NewSessionSweep(&fakeSweeper{err: errors.New("redis gone")}, nil)
	require.Error(t, failing.Handle(context.Background()))
}

func TestTasksRegisterOnInlineRunner(t *testing.T) {
	t.Parallel()

	sent := make(chan struct{}, 1)
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) {
		sent <- struct{}{}
	})
	m := mailer.New(sender, mailer.NewRenderer(tasks.Templates), mailer.Config{DefaultLayout: "base.html"})

	runner, err := job.NewInline(
		job.WithTask[tasks.WelcomeEmailPayload](tasks.NewWelcomeEmail(m, nil)),
		job.WithScheduledTask(tasks.NewSessionSweep(&fakeSweeper{}, nil)),
	)
	require.NoError(t, err)
	require.NoError(t, runner.Start(context.Background()))

	hook := tasks.EnqueueWelcome(runner, nil)
	hook(context.Background(), users.User{ID: "u1", Username: "ann", Email: "ann@example.com"})

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("welcome email was not sent")
	}
	require.NoError(t, runner.Stop(context.Background()))
}

func TestEnqueueWelcome(t *testing.T) {
	t.Parallel()

	d := &fakeDispatcher{}
	tasks.EnqueueWelcome(d, nil)(context.Background(), users.User{ID: "u1", Username: "ann", Email: "ann@example.com", Name: "Ann"})

	assert.Equal(t, tasks.WelcomeEmailTask, d.name)
	assert.Equal(t, tasks.WelcomeEmailPayload{UserID: "u1", Username: "ann", Email: "ann@example.com", Name: "Ann"}, d.payload)

	failing := &fakeDispatcher{err: job.ErrNotConfigured}
	assert.NotPanics(t, func() {
		tasks.EnqueueWelcome(failing, nil)(context.Background(), users.User{ID: "u2"})
	})
}
