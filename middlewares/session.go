package middlewares

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/userdesk/internal"
	"github.com/dmitrymomot/userdesk/pkg/logger"
)

type sessionIDKey struct{}

// Session attaches the session named by the session cookie, creating one
// when the cookie is missing, tampered or names an unknown session. Store
// failures abort the request.
func Session() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if err := c.StartSession(); err != nil {
				return err
			}
			c.Set(sessionIDKey{}, c.Session().ID)
			return next(c)
		}
	}
}

// SessionIDExtractor adds "session_id" to log records.
func SessionIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(sessionIDKey{}).(string); ok && v != "" {
			return slog.String("session_id", v), true
		}
		return slog.Attr{}, false
	}
}
