package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/riverqueue/river"
)

// enqueueConfig is the River insert options plus the dedup key, which
// travels inside the job args.
type enqueueConfig struct {
	river.InsertOpts
	uniqueKey string
}

// EnqueueOption configures a single Enqueue call.
type EnqueueOption func(*enqueueConfig)

// InQueue routes the job to a named queue.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.Queue = name
		}
	}
}

// ScheduledAt delays the job until t.
func ScheduledAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) { c.ScheduledAt = t }
}

// ScheduledIn delays the job by d:
//
//	d.Enqueue(ctx, tasks.WelcomeEmailTask, payload, job.ScheduledIn(time.Minute))
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) { c.ScheduledAt = time.Now().Add(d) }
}

// MaxAttempts caps retries. River's default is 25.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.MaxAttempts = n
		}
	}
}

// UniqueFor drops a job when the same task with the same UniqueKey was
// inserted within d.
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) { c.UniqueOpts.ByPeriod = d }
}

// UniqueKey scopes UniqueFor, for example to one user.
func UniqueKey(key string) EnqueueOption {
	return func(c *enqueueConfig) { c.uniqueKey = key }
}

// Priority orders jobs from 1 (first) to 4.
func Priority(p int) EnqueueOption {
	return func(c *enqueueConfig) { c.Priority = p }
}

// Tags attaches metadata to the job.
func Tags(tags ...string) EnqueueOption {
	return func(c *enqueueConfig) { c.Tags = append(c.Tags, tags...) }
}

func applyEnqueueOptions(opts []EnqueueOption) *enqueueConfig {
	cfg := &enqueueConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// buildJobArgs encodes the payload and resolves the insert options. All
// tasks share one job kind, so deduplication compares the unique fields
// of taskArgs rather than the kind alone.
func buildJobArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	args := &taskArgs{TaskName: name}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("job: marshal payload: %w", err)
		}
		args.Payload = raw
	}

	cfg := applyEnqueueOptions(opts)
	if cfg.UniqueOpts.ByPeriod > 0 {
		cfg.UniqueOpts.ByArgs = true
		args.UniqueKey = cfg.uniqueKey
	}
	return args, &cfg.InsertOpts, nil
}
