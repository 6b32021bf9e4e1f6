// Package logger builds log/slog loggers with context extraction and
// optional Sentry reporting.
//
// Context extractors run on every record, so request-scoped values such as
// the request id or the authenticated user id are attached without passing
// them around:
//
//	log := logger.New(cfg,
//		logger.ContextString(requestIDKey{}, "request_id"),
//		logger.ContextString(userIDKey{}, "user_id"),
//	)
//	log.InfoContext(ctx, "user updated")
//	// {"level":"INFO","msg":"user updated","request_id":"...","user_id":"..."}
//
// When Config.Sentry.DSN is set, records are also sent to Sentry: errors
// create issues, warnings (or only errors, depending on MinLevel) are kept
// as logs. Without a DSN the logger writes to stdout only. Call Flush
// before exiting to deliver buffered events.
//
// NewNope returns a logger that discards everything and is the default for
// components that were not given one.
package logger
