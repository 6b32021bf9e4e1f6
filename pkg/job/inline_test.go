package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineEnqueue(t *testing.T) {
	t.Parallel()

	task := &testTask{name: "welcome"}
	in, err := NewInline(WithTask[testPayload](task))
	require.NoError(t, err)
	require.NoError(t, in.Start(context.Background()))

	require.NoError(t, in.Enqueue(context.Background(), "welcome", testPayload{Message: "hi"}))
	require.ErrorIs(t, in.Enqueue(context.Background(), "missing", nil), ErrUnknownTask)

	assert.Eventually(t, func() bool { return len(task.calls()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "hi", task.calls()[0].Message)

	require.NoError(t, in.Stop(context.Background()))
	require.ErrorIs(t, in.Stop(context.Background()), ErrNotStarted)
}

func TestInlineRetries(t *testing.T) {
	t.Parallel()

	const backoff = 20 * time.Millisecond
	task := &testTask{name: "flaky", err: errors.New("smtp down")}
	in, err := NewInline(WithTask[testPayload](task), WithRetryBackoff(backoff))
	require.NoError(t, err)
	require.NoError(t, in.Start(context.Background()))

	require.NoError(t, in.Enqueue(context.Background(), "flaky", nil, MaxAttempts(3)))
	assert.Eventually(t, func() bool { return len(task.calls()) == 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, in.Stop(context.Background()))

	times := task.callTimes()
	require.Len(t, times, 3)
	assert.GreaterOrEqual(t, times[1].Sub(times[0]), backoff)
	assert.GreaterOrEqual(t, times[2].Sub(times[1]), 2*backoff)
}

func TestInlineStopDropsPendingRetries(t *testing.T) {
	t.Parallel()

	task := &testTask{name: "flaky", err: errors.New("smtp down")}
	in, err := NewInline(WithTask[testPayload](task), WithRetryBackoff(time.Hour))
	require.NoError(t, err)
	require.NoError(t, in.Start(context.Background()))

	require.NoError(t, in.Enqueue(context.Background(), "flaky", nil, MaxAttempts(3)))
	assert.Eventually(t, func() bool { return len(task.calls()) == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, in.Stop(ctx))
	assert.Len(t, task.calls(), 1)
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, retryDelay(time.Second, 1))
	assert.Equal(t, 4*time.Second, retryDelay(time.Second, 3))
	assert.Equal(t, maxRetryBackoff, retryDelay(time.Second, 20))
}

func TestInlineStopDropsDelayedJobs(t *testing.T) {
	t.Parallel()

	task := &testTask{name: "later"}
	in, err := NewInline(WithTask[testPayload](task))
	require.NoError(t, err)
	require.NoError(t, in.Start(context.Background()))

	require.NoError(t, in.Enqueue(context.Background(), "later", nil, ScheduledIn(time.Hour)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, in.Stop(ctx))
	assert.Empty(t, task.calls())
}

type countingSchedule struct {
	runs atomic.Int32
}

func (c *countingSchedule) Name() string     { return "sweep" }
func (c *countingSchedule) Schedule() string { return "*/10 * * * *" }

func (c *countingSchedule) Handle(context.Context) error {
	c.runs.Add(1)
	return nil
}

type badSchedule struct{}

func (badSchedule) Name() string                 { return "bad" }
func (badSchedule) Schedule() string             { return "every tuesday" }
func (badSchedule) Handle(context.Context) error { return nil }

func TestInlineScheduledTaskRegistered(t *testing.T) {
	t.Parallel()

	sched := &countingSchedule{}
	in, err := NewInline(WithScheduledTask(sched))
	require.NoError(t, err)

	assert.Len(t, in.cron.Entries(), 1)
	require.NoError(t, in.Enqueue(context.Background(), "sweep", nil), "scheduled tasks can be triggered manually")

	require.NoError(t, in.Start(context.Background()))
	require.NoError(t, in.Stop(context.Background()))
	assert.EqualValues(t, 1, sched.runs.Load())

	_, err = NewInline(WithScheduledTask(badSchedule{}))
	require.Error(t, err)
}
