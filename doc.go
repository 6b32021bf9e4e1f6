// Package userdesk assembles the user-management web application from its
// parts: configuration, storage backends, the page pipeline, handlers and
// background jobs.
//
// # Quick Start
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv, err := userdesk.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Backends
//
// Every external service is optional. Without DATABASE_URL users live in
// memory and jobs run on the in-process runner; with it, users go to
// Postgres (migrated with goose on start) and jobs go to River. Without
// REDIS_URL sessions and cached identities stay in process memory. Without
// RESEND_API_KEY outgoing mail is logged instead of sent.
//
// # Pipeline
//
// Page requests pass, in order, through request id, panic recovery,
// metrics, timeout, security headers, static files, session, body parsing,
// authentication, alerts and page data before the route is resolved,
// authorized and dispatched. Health checks and /metrics bypass the
// pipeline.
//
// # Seeding
//
// When the users table is empty on start, an admin account is created from
// the SEED_ADMIN_* settings (james / password by default). Set
// SEED_ADMIN_DISABLED=true to skip it.
package userdesk
