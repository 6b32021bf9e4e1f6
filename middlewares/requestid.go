package middlewares

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/userdesk/internal"
	"github.com/dmitrymomot/userdesk/pkg/id"
	"github.com/dmitrymomot/userdesk/pkg/logger"
)

// RequestIDHeader is the response header carrying the request id.
const RequestIDHeader = "X-Request-ID"

// maxUpstreamID bounds ids accepted from clients and proxies.
const maxUpstreamID = 128

type requestIDKey struct{}

// upstreamHeaders are checked in order for an id assigned by a proxy.
var upstreamHeaders = []string{RequestIDHeader, "X-Correlation-ID"}

type requestIDConfig struct {
	generate func() string
	header   string
}

// RequestIDOption configures RequestID.
type RequestIDOption func(*requestIDConfig)

// WithRequestIDGenerator replaces the UUID generator.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if gen != nil {
			cfg.generate = gen
		}
	}
}

// WithRequestIDResponseHeader changes the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *requestIDConfig) {
		if header != "" {
			cfg.header = header
		}
	}
}

// RequestID tags every request with an id. A printable upstream id of up
// to 128 bytes is kept; anything else is replaced by a fresh one. The id
// goes to the context, the logs and the response header.
func RequestID(opts ...RequestIDOption) internal.Middleware {
	cfg := &requestIDConfig{generate: id.NewRequestID, header: RequestIDHeader}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			reqID := upstreamID(c)
			if reqID == "" {
				reqID = cfg.generate()
			}
			c.Set(requestIDKey{}, reqID)
			c.SetHeader(cfg.header, reqID)
			return next(c)
		}
	}
}

func upstreamID(c internal.Context) string {
	for _, h := range upstreamHeaders {
		if v := c.Header(h); v != "" && printable(v) {
			return v
		}
	}
	return ""
}

func printable(s string) bool {
	if len(s) > maxUpstreamID {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(c internal.Context) string {
	v, _ := c.Get(requestIDKey{}).(string)
	return v
}

// RequestIDExtractor adds "request_id" to log records written with the
// request context.
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
