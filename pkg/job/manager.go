package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/userdesk/pkg/logger"
)

const (
	defaultMaxWorkers   = 100
	defaultQueue        = river.QueueDefault
	defaultRetryBackoff = time.Second
	maxRetryBackoff     = time.Minute
)

// Dispatcher is what request handlers need to hand work off. Both Manager
// and Inline implement it.
type Dispatcher interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error
}

// Manager runs tasks on a River queue stored in Postgres.
type Manager struct {
	pool     *pgxpool.Pool
	client   *river.Client[pgx.Tx]
	registry taskRegistry
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewManager creates the River client. Jobs may be enqueued before Start.
// River's own tables must exist; see Migrate.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

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

	queues := map[string]river.QueueConfig{
		defaultQueue: {MaxWorkers: cfg.maxWorkers},
	}
	for name, workers := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: workers}
	}

	periodicJobs := make([]*river.PeriodicJob, 0, len(cfg.schedules))
	for _, sched := range cfg.schedules {
		schedule, err := parseCronSchedule(sched.schedule)
		if err != nil {
			return nil, fmt.Errorf("job: invalid cron schedule %q: %w", sched.schedule, err)
		}

		name := sched.name
		periodicJobs = append(periodicJobs, river.NewPeriodicJob(
			schedule,
			func() (river.JobArgs, *river.InsertOpts) {
				return &taskArgs{TaskName: name}, nil
			},
			nil,
		))
		cfg.registry.register(name, &scheduledTaskExecutor{handler: sched.handler})
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{registry: cfg.registry, logger: cfg.logger})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodicJobs,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		pool:     pool,
		client:   client,
		registry: cfg.registry,
		logger:   cfg.logger,
	}, nil
}

// Start begins processing jobs.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start client: %w", err)
	}

	m.started = true
	m.logger.Info("job manager started", slog.Int("tasks", len(m.registry.names())))
	return nil
}

// Stop waits for running jobs to finish and stops the client.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop client: %w", err)
	}

	m.started = false
	m.logger.Info("job manager stopped")
	return nil
}

// Enqueue inserts a job for a registered task.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.registry.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	args, insertOpts, err := buildJobArgs(name, payload, opts...)
	if err != nil {
		return err
	}
	if _, err := m.client.Insert(ctx, args, insertOpts); err != nil {
		return fmt.Errorf("job: enqueue: %w", err)
	}
	return nil
}

// taskArgs is the single River job kind. The task name selects the
// handler from the registry.
type taskArgs struct {
	TaskName  string          `json:"task_name" river:"unique"`
	UniqueKey string          `json:"unique_key,omitempty" river:"unique"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string {
	return "userdesk:task"
}

type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	registry taskRegistry
	logger   *slog.Logger
}

func (w *taskWorker) Work(ctx context.Context, job *river.Job[taskArgs]) error {
	executor, ok := w.registry.get(job.Args.TaskName)
	if !ok || executor == nil {
		return fmt.Errorf("%w: %s", ErrUnknownTask, job.Args.TaskName)
	}

	attrs := []any{
		slog.String("task", job.Args.TaskName),
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
	}
	if err := executor.Execute(ctx, job.Args.Payload); err != nil {
		w.logger.ErrorContext(ctx, "task failed", append(attrs, slog.Any("error", err))...)
		return err
	}
	w.logger.DebugContext(ctx, "task completed", attrs...)
	return nil
}

type cronScheduleAdapter struct {
	schedule cron.Schedule
}

func (a *cronScheduleAdapter) Next(current time.Time) time.Time {
	return a.schedule.Next(current)
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func parseCronSchedule(expr string) (*cronScheduleAdapter, error) {
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return &cronScheduleAdapter{schedule: schedule}, nil
}

// Healthcheck returns the "jobs" readiness probe: the manager must be
// running and its pool must answer. A nil manager counts as not started.
func Healthcheck(m *Manager) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if m == nil || !m.running() {
			return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
		}
		if err := m.pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

func (m *Manager) running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}
