package internal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/userdesk/internal/users"
	"github.com/dmitrymomot/userdesk/pkg/cookie"
	"github.com/dmitrymomot/userdesk/pkg/job"
	"github.com/dmitrymomot/userdesk/pkg/session"
)

// ErrNoPageRenderer is returned by RenderPage before the Pages middleware
// has bound a renderer.
var ErrNoPageRenderer = errors.New("internal: no page renderer bound")

// Component is the render contract for pages.
type Component = templ.Component

// PageFunc renders the named page with status code.
type PageFunc func(code int, name string, data map[string]any) error

// Context provides request/response access and the per-request state the
// page pipeline accumulates. It implements context.Context by delegating to
// the request context.
type Context interface {
	context.Context

	Request() *http.Request
	Response() http.ResponseWriter
	ResponseWriter() *ResponseWriter
	Context() context.Context

	// Param returns a route parameter resolved from the path.
	Param(name string) string
	Params() map[string]string
	SetParams(params map[string]string)

	// Route returns the matched route pattern, e.g. "/user/[id]".
	// Empty until the route is resolved.
	Route() string
	SetRoute(pattern string)

	Query(name string) string
	Header(name string) string
	SetHeader(name, value string)

	// Body returns the parsed request body, or nil when there is none or it
	// could not be parsed.
	Body() map[string]any
	SetBody(body map[string]any)

	// FormValue returns a string field from the parsed body.
	FormValue(name string) string

	// User returns the authenticated user, or nil.
	User() *users.User
	SetUser(u *users.User)
	IsAuthenticated() bool

	// Nonce is the CSP nonce for inline scripts on this response.
	Nonce() string
	SetNonce(nonce string)

	// Dev reports whether the app runs in development mode.
	Dev() bool

	// Alert returns the alert consumed from the request, or nil.
	Alert() *Alert
	SetAlert(a *Alert)

	// Flash stores an alert for the next request.
	Flash(message, kind string) error

	Cookies() *cookie.Manager

	// Session returns the session attached by the Session middleware.
	Session() *session.Session

	// StartSession loads the session named by the cookie or creates one.
	StartSession() error

	// DestroySession deletes the session and its cookie.
	DestroySession() error

	JSON(code int, v any) error
	String(code int, s string) error
	NoContent(code int) error
	Redirect(code int, url string) error
	Render(code int, component Component) error

	// RenderPage renders a named page through the bound PageFunc.
	RenderPage(code int, name string, data map[string]any) error

	// SendPage is RenderPage with status 200.
	SendPage(name string, data map[string]any) error
	SetPageRenderer(fn PageFunc)

	// Error creates an HTTPError without writing a response.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written reports whether the response header has been sent.
	Written() bool

	// Enqueue dispatches a background job.
	// Returns job.ErrNotConfigured if the app has no job runner.
	Enqueue(name string, payload any, opts ...job.EnqueueOption) error

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// SetContext replaces the request context for the rest of the chain.
	SetContext(ctx context.Context)

	// Set stores a value in the request context.
	Set(key any, value any)
	Get(key any) any
}

type requestContext struct {
	request  *http.Request
	response *ResponseWriter
	app      *App

	params  map[string]string
	body    map[string]any
	user    *users.User
	session *session.Session
	alert   *Alert
	page    PageFunc
	nonce   string
	route   string

	sessionHook bool
}

func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}
	return &requestContext{request: r, response: rw, app: app}
}

func (c *requestContext) Request() *http.Request { return c.request }
func (c *requestContext) Response() http.ResponseWriter { return c.response }
func (c *requestContext) ResponseWriter() *ResponseWriter { return c.response }
func (c *requestContext) Context() context.Context { return c.request.Context() }

func (c *requestContext) Deadline() (time.Time, bool) { return c.request.Context().Deadline() }
func (c *requestContext) Done() <-chan struct{}       { return c.request.Context().Done() }
func (c *requestContext) Err() error { return c.request.Context().Err() }
func (c *requestContext) Value(key any) any { return c.request.Context().Value(key) }

func (c *requestContext) Param(name string) string { return c.params[name] }
func (c *requestContext) Params() map[string]string { return c.params }
func (c *requestContext) SetParams(params map[string]string) { c.params = params }
func (c *requestContext) Route() string { return c.route }
func (c *requestContext) SetRoute(pattern string) { c.route = pattern }
func (c *requestContext) Query(name string) string { return c.request.URL.Query().Get(name) }
func (c *requestContext) Header(name string) string { return c.request.Header.Get(name) }
func (c *requestContext) SetHeader(name, value string) { c.response.Header().Set(name, value) }
func (c *requestContext) Body() map[string]any { return c.body }
func (c *requestContext) SetBody(body map[string]any) { c.body = body }
func (c *requestContext) User() *users.User { return c.user }
func (c *requestContext) SetUser(u *users.User) { c.user = u }
func (c *requestContext) IsAuthenticated() bool { return c.user != nil }
func (c *requestContext) Nonce() string { return c.nonce }
func (c *requestContext) SetNonce(nonce string) { c.nonce = nonce }
func (c *requestContext) Dev() bool { return c.app.dev }
func (c *requestContext) Alert() *Alert { return c.alert }
func (c *requestContext) SetAlert(a *Alert) { c.alert = a }
func (c *requestContext) Cookies() *cookie.Manager { return c.app.cookies }
func (c *requestContext) Session() *session.Session { return c.session }
func (c *requestContext) SetPageRenderer(fn PageFunc) { c.page = fn }
func (c *requestContext) Written() bool { return c.response.Written() }
func (c *requestContext) Logger() *slog.Logger { return c.app.logger }

func (c *requestContext) FormValue(name string) string {
	s, _ := c.body[name].(string)
	return s
}

func (c *requestContext) Flash(message, kind string) error {
	return c.app.cookies.SetJSON(c.response, AlertCookie, Alert{Message: message, Type: kind}, AlertMaxAge)
}

func (c *requestContext) StartSession() error {
	sm := c.app.sessions
	if sm == nil {
		return session.ErrNotFound
	}
	sess, err := sm.Load(c.Context(), c.request)
	if err != nil {
		if sess, err = sm.Create(c.Context(), c.response); err != nil {
			return err
		}
	}
	c.session = sess

	if !c.sessionHook {
		c.sessionHook = true
		// Writing on every response slides the idle timeout.
		c.response.OnBeforeWrite(func() {
			if c.session == nil {
				return
			}
			if err := sm.Save(c.Context(), c.session); err != nil {
				c.LogError("failed to save session", slog.Any("error", err))
			}
		})
	}
	return nil
}

func (c *requestContext) DestroySession() error {
	sm := c.app.sessions
	if sm == nil || c.session == nil {
		return nil
	}
	err := sm.Destroy(c.Context(), c.response, c.session.ID)
	c.session = nil
	return err
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Render(code int, component Component) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	return component.Render(c.request.Context(), c.response)
}

func (c *requestContext) RenderPage(code int, name string, data map[string]any) error {
	if c.page == nil {
		return ErrNoPageRenderer
	}
	return c.page(code, name, data)
}

func (c *requestContext) SendPage(name string, data map[string]any) error {
	return c.RenderPage(http.StatusOK, name, data)
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Enqueue(name string, payload any, opts ...job.EnqueueOption) error {
	if c.app.jobs == nil {
		return job.ErrNotConfigured
	}
	return c.app.jobs.Enqueue(c.Context(), name, payload, opts...)
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.app.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Set(key, value any) {
	c.request = c.request.WithContext(context.WithValue(c.request.Context(), key, value))
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

// ContextValue returns the value stored under key, or the zero value.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}
