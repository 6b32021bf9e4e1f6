// Package handlers declares the page routes, their access rules and the
// POST handlers behind the forms.
package handlers

import (
	"net/url"
	"strings"

	"github.com/dmitrymomot/userdesk/internal"
	"github.com/dmitrymomot/userdesk/internal/users"
)

// Page names, as resolved from the pages tree.
const (
	pageLogin          = "auth/login"
	pageRegister       = "auth/register"
	pageUserCreate     = "user/create"
	pageUserDetail     = "user/[id]/index"
	pageUserEdit       = "user/[id]/edit"
	pageChangePassword = "user/[id]/change-password"
)

// Recorder counts domain events. *metrics.Metrics implements it.
type Recorder interface {
	Login(result string)
	UserChanged(op string)
}

type nopRecorder struct{}

func (nopRecorder) Login(string)       {}
func (nopRecorder) UserChanged(string) {}

// Option configures a handler.
type Option func(*config)

type config struct {
	stats    Recorder
	throttle []internal.Middleware
}

// WithRecorder reports logins and user changes to r.
func WithRecorder(r Recorder) Option {
	return func(c *config) {
		if r != nil {
			c.stats = r
		}
	}
}

// WithThrottle wraps the credential-accepting POST routes with mw.
func WithThrottle(mw ...internal.Middleware) Option {
	return func(c *config) {
		c.throttle = append(c.throttle, mw...)
	}
}

func newConfig(opts []Option) config {
	cfg := config{stats: nopRecorder{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// formInput copies the named string fields from the parsed body.
func formInput(c internal.Context, fields ...string) users.Input {
	in := make(users.Input, len(fields))
	for _, f := range fields {
		if _, ok := c.Body()[f]; ok {
			in[f] = c.FormValue(f)
		}
	}
	return in
}

// userForm flattens u for prefilling the edit form.
func userForm(u *users.User) users.Input {
	return users.Input{
		"username": u.Username,
		"email":    u.Email,
		"name":     u.Name,
		"role":     string(u.Role),
	}
}

// localRedirect returns target when it is a path on this site, "" otherwise.
func localRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, `/\`) {
		return ""
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	return target
}

// redirectTarget is the ?redirect= query when it is local, "/" otherwise.
func redirectTarget(c internal.Context) string {
	if t := localRedirect(c.Query("redirect")); t != "" {
		return t
	}
	return "/"
}

// notFound turns the repository's record-level error into a 404.
func notFound(errs users.Errors) error {
	msg := errs[users.AllKey]
	if msg == "" {
		msg = users.MsgNotFound
	}
	return internal.ErrNotFound(msg)
}
