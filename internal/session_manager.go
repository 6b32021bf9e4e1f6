package internal

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrymomot/userdesk/pkg/cookie"
	"github.com/dmitrymomot/userdesk/pkg/session"
)

// SessionCookie is the default session cookie name.
const SessionCookie = "sessionId"

// SessionManager ties a session.Store to the session cookie. The cookie
// holds only the session id, signed when the cookie manager has a secret.
type SessionManager struct {
	store   session.Store
	cookies *cookie.Manager
	name    string
	maxAge  time.Duration
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.name = name
		}
	}
}

// WithSessionMaxAge sets the cookie lifetime. It should match the store's
// absolute lifetime.
func WithSessionMaxAge(d time.Duration) SessionOption {
	return func(sm *SessionManager) {
		if d > 0 {
			sm.maxAge = d
		}
	}
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(store session.Store, cookies *cookie.Manager, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:   store,
		cookies: cookies,
		name:    SessionCookie,
		maxAge:  session.DefaultLifetime,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// Store returns the underlying store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

// CookieName returns the session cookie name.
func (sm *SessionManager) CookieName() string {
	return sm.name
}

// Load returns the session named by the request cookie. A missing or
// tampered cookie yields session.ErrNotFound.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*session.Session, error) {
	sid, err := sm.read(r)
	if err != nil || sid == "" {
		return nil, session.ErrNotFound
	}
	return sm.store.Get(ctx, sid)
}

// Create starts a new session and sets its cookie.
func (sm *SessionManager) Create(ctx context.Context, w http.ResponseWriter) (*session.Session, error) {
	sess, err := sm.store.Create(ctx)
	if err != nil {
		return nil, err
	}
	if sm.cookies.Signed() {
		if err := sm.cookies.SetSigned(w, sm.name, sess.ID, sm.maxAge); err != nil {
			return nil, err
		}
	} else {
		sm.cookies.Set(w, sm.name, sess.ID, sm.maxAge)
	}
	return sess, nil
}

// Save persists the session, refreshing its idle timeout.
func (sm *SessionManager) Save(ctx context.Context, sess *session.Session) error {
	return sm.store.Set(ctx, sess)
}

// Destroy deletes the session and clears its cookie.
func (sm *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, sid string) error {
	sm.cookies.Delete(w, sm.name)
	return sm.store.Delete(ctx, sid)
}

func (sm *SessionManager) read(r *http.Request) (string, error) {
	if sm.cookies.Signed() {
		return sm.cookies.GetSigned(r, sm.name)
	}
	return sm.cookies.Get(r, sm.name)
}
