package middlewares

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/dmitrymomot/userdesk/internal"
)

const contentSecurityPolicy = "default-src 'self'; base-uri 'self'; font-src 'self' https: data:; " +
	"form-action 'self'; frame-ancestors 'self'; img-src 'self' data:; object-src 'none'; " +
	"script-src 'self' 'nonce-%s'; script-src-attr 'none'; style-src 'self' https: 'unsafe-inline'; " +
	"upgrade-insecure-requests"

// NoCache is the Cache-Control value sent in dev.
const NoCache = "no-store, no-cache, must-revalidate"

var securityHeaders = [][2]string{
	{"Cross-Origin-Opener-Policy", "same-origin"},
	{"Cross-Origin-Resource-Policy", "same-origin"},
	{"Origin-Agent-Cluster", "?1"},
	{"Referrer-Policy", "no-referrer"},
	{"Strict-Transport-Security", "max-age=15552000; includeSubDomains"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-DNS-Prefetch-Control", "off"},
	{"X-Download-Options", "noopen"},
	{"X-Frame-Options", "SAMEORIGIN"},
	{"X-Permitted-Cross-Domain-Policies", "none"},
	{"X-XSS-Protection", "0"},
}

// SecureHeaders sets the security header set and a per-request CSP nonce,
// available to templates as Nonce. In dev, responses are marked uncacheable.
func SecureHeaders(dev bool) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			nonce, err := newNonce()
			if err != nil {
				return err
			}
			c.SetNonce(nonce)

			h := c.Response().Header()
			h.Set("Content-Security-Policy", fmt.Sprintf(contentSecurityPolicy, nonce))
			for _, kv := range securityHeaders {
				h.Set(kv[0], kv[1])
			}
			if dev {
				h.Set("Cache-Control", NoCache)
			}
			return next(c)
		}
	}
}

func newNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
