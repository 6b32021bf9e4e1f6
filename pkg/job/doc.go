// Package job runs background tasks.
//
// Two runners share the same task definitions. Manager stores jobs in
// Postgres through River and survives restarts. Inline runs jobs on
// goroutines inside the process and drives periodic tasks with a cron
// scheduler; it is used when no database is configured.
//
// A task is any type with Name and Handle methods. The payload type is
// inferred from Handle and travels as JSON:
//
//	type WelcomeEmail struct{ sender mailer.Sender }
//
//	func (t *WelcomeEmail) Name() string { return "welcome_email" }
//
//	func (t *WelcomeEmail) Handle(ctx context.Context, p WelcomePayload) error {
//		return t.sender.Send(ctx, p.Email, p.Name)
//	}
//
// Periodic tasks also implement Schedule, returning a five field cron
// expression, and take no payload:
//
//	func (t *SessionSweep) Schedule() string { return "*/10 * * * *" }
//	func (t *SessionSweep) Handle(ctx context.Context) error
//
// Both runners implement Dispatcher:
//
//	runner, err := job.NewInline(
//		job.WithTask[tasks.WelcomeEmailPayload](tasks.NewWelcomeEmail(sender)),
//		job.WithScheduledTask(tasks.NewSessionSweep(store)),
//		job.WithLogger(log),
//	)
//	err = runner.Enqueue(ctx, "welcome_email", payload, job.MaxAttempts(3))
package job
