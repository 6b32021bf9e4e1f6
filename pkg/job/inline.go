package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/userdesk/pkg/logger"
)

// Inline runs tasks inside the current process. It backs the same task
// definitions as Manager when no Postgres queue is available: enqueued jobs
// run on background goroutines and scheduled tasks run on a cron scheduler.
// Jobs are lost if the process exits before they finish.
type Inline struct {
	ctx      context.Context
	cancel   context.CancelFunc
	stop     chan struct{}
	registry taskRegistry
	cron     *cron.Cron
	logger   *slog.Logger
	sem      chan struct{}
	backoff  time.Duration
	wg       sync.WaitGroup
	mu       sync.Mutex
	started  bool
}

// NewInline builds an in-process runner from the same options as
// NewManager. WithQueue is ignored; WithMaxWorkers bounds concurrency.
func NewInline(opts ...Option) (*Inline, error) {
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.NewNope()
	}
	if cfg.maxWorkers == 0 {
		cfg.maxWorkers = defaultMaxWorkers
	}
	if cfg.backoff == 0 {
		cfg.backoff = defaultRetryBackoff
	}

	ctx, cancel := context.WithCancel(context.Background())
	in := &Inline{
		ctx:      ctx,
		cancel:   cancel,
		stop:     make(chan struct{}),
		registry: cfg.registry,
		cron:     cron.New(),
		logger:   cfg.logger,
		sem:      make(chan struct{}, cfg.maxWorkers),
		backoff:  cfg.backoff,
	}

	for _, sched := range cfg.schedules {
		schedule, err := parseCronSchedule(sched.schedule)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("job: invalid cron schedule %q: %w", sched.schedule, err)
		}
		name, handler := sched.name, sched.handler
		in.registry.register(name, &scheduledTaskExecutor{handler: handler})
		in.cron.Schedule(schedule.schedule, cron.FuncJob(func() {
			in.run(name, nil, 1)
		}))
	}
	return in, nil
}

// Start starts the cron scheduler.
func (in *Inline) Start(context.Context) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.started {
		return ErrAlreadyStarted
	}
	in.cron.Start()
	in.started = true
	in.logger.Info("inline job runner started", slog.Int("tasks", len(in.registry.names())))
	return nil
}

// Stop stops scheduling, drops delayed jobs and pending retries, and
// waits for running ones until ctx is done. An Inline cannot be restarted.
func (in *Inline) Stop(ctx context.Context) error {
	in.mu.Lock()
	if !in.started {
		in.mu.Unlock()
		return ErrNotStarted
	}
	in.started = false
	close(in.stop)
	in.mu.Unlock()

	<-in.cron.Stop().Done()

	done := make(chan struct{})
	go func() {
		in.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		in.cancel()
		return nil
	case <-ctx.Done():
		in.cancel()
		return ctx.Err()
	}
}

// Enqueue runs the task in the background. ScheduledAt/ScheduledIn delay
// it and MaxAttempts retries it with exponential backoff; other options
// are ignored.
func (in *Inline) Enqueue(_ context.Context, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := in.registry.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	args, _, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}
	cfg := applyEnqueueOptions(opts)

	attempts := max(cfg.MaxAttempts, 1)
	in.wg.Add(1)
	go func() {
		defer in.wg.Done()
		if !cfg.ScheduledAt.IsZero() {
			t := time.NewTimer(time.Until(cfg.ScheduledAt))
			defer t.Stop()
			select {
			case <-in.stop:
				return
			case <-t.C:
			}
		}
		in.run(name, args.Payload, attempts)
	}()
	return nil
}

func (in *Inline) run(name string, payload json.RawMessage, attempts int) {
	executor, ok := in.registry.get(name)
	if !ok {
		return
	}
	for attempt := 1; ; attempt++ {
		err := in.execute(executor, payload)
		if err == nil {
			in.logger.DebugContext(in.ctx, "task completed", slog.String("task", name))
			return
		}
		if in.ctx.Err() != nil {
			return
		}
		in.logger.ErrorContext(in.ctx, "task failed",
			slog.String("task", name),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)
		if attempt >= attempts || errors.Is(err, ErrInvalidPayload) {
			return
		}
		if !in.sleep(retryDelay(in.backoff, attempt)) {
			in.logger.WarnContext(in.ctx, "task retry dropped", slog.String("task", name), slog.Int("attempt", attempt+1))
			return
		}
	}
}

// sleep waits d and reports false if the runner stopped first.
func (in *Inline) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-in.stop:
		return false
	case <-in.ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryDelay doubles base for every failed attempt, capped at maxRetryBackoff.
func retryDelay(base time.Duration, attempt int) time.Duration {
	d := base
	for range attempt - 1 {
		d *= 2
		if d >= maxRetryBackoff {
			return maxRetryBackoff
		}
	}
	return min(d, maxRetryBackoff)
}

func (in *Inline) execute(executor taskExecutor, payload json.RawMessage) (err error) {
	select {
	case in.sem <- struct{}{}:
	case <-in.ctx.Done():
		return in.ctx.Err()
	}
	defer func() { <-in.sem }()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job: task panicked: %v", r)
		}
	}()
	return executor.Execute(in.ctx, payload)
}
