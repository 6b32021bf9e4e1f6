package middlewares

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/userdesk/internal"
	"github.com/dmitrymomot/userdesk/internal/users"
	"github.com/dmitrymomot/userdesk/pkg/jwt"
	"github.com/dmitrymomot/userdesk/pkg/logger"
)

// AuthCookie holds the JWT of a logged-in user.
const AuthCookie = "auth"

// TokenVerifier verifies auth tokens. *jwt.Service implements it.
type TokenVerifier interface {
	Verify(token string) (*jwt.StandardClaims, error)
}

// IdentityLoader resolves a token subject to a user.
// *users.Identities implements it.
type IdentityLoader interface {
	Identity(ctx context.Context, userID string) (*users.User, error)
}

type userIDKey struct{}

// AuthOption configures the Auth middleware.
type AuthOption func(*authConfig)

type authConfig struct {
	extractor internal.Extractor
}

// WithAuthExtractor overrides where the token is read from.
func WithAuthExtractor(sources ...internal.ExtractorSource) AuthOption {
	return func(cfg *authConfig) {
		cfg.extractor = internal.NewExtractor(sources...)
	}
}

// Auth reads the token from the auth cookie or a Bearer header, verifies
// it and attaches the user. Any failure leaves the request anonymous.
func Auth(tokens TokenVerifier, identities IdentityLoader, opts ...AuthOption) internal.Middleware {
	cfg := &authConfig{
		extractor: internal.NewExtractor(
			internal.FromCookie(AuthCookie),
			internal.FromBearerToken(),
		),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			token, ok := cfg.extractor.Extract(c)
			if !ok {
				return next(c)
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				c.LogDebug("auth token rejected", "error", err)
				return next(c)
			}
			u, err := identities.Identity(c.Context(), claims.Subject)
			if err != nil {
				c.LogDebug("auth identity not loaded", "error", err, "sub", claims.Subject)
				return next(c)
			}

			c.SetUser(u)
			c.Set(userIDKey{}, u.ID)
			return next(c)
		}
	}
}

// UserIDExtractor adds "user_id" to log records of authenticated requests.
func UserIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(userIDKey{}).(string); ok && v != "" {
			return slog.String("user_id", v), true
		}
		return slog.Attr{}, false
	}
}
