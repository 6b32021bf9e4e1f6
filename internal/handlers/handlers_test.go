package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/userdesk/internal"
	"github.com/dmitrymomot/userdesk/internal/handlers"
	"github.com/dmitrymomot/userdesk/internal/users"
	"github.com/dmitrymomot/userdesk/internal/views"
	"github.com/dmitrymomot/userdesk/middlewares"
	"github.com/dmitrymomot/userdesk/pkg/cache"
	"github.com/dmitrymomot/userdesk/pkg/cookie"
	"github.com/dmitrymomot/userdesk/pkg/jwt"
	"github.com/dmitrymomot/userdesk/pkg/password"
	"github.com/dmitrymomot/userdesk/pkg/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fakeRecorder struct {
	mu     sync.Mutex
	logins []string
	ops    []string
}

func (f *fakeRecorder) Login(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, result)
}

func (f *fakeRecorder) UserChanged(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
}

type env struct {
	app    *internal.App
	repo   *users.Repository
	tokens *jwt.Service
	stats  *fakeRecorder
}

func newEnv(t *testing.T, extra ...internal.Handler) *env {
	t.Helper()

	hasher, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	repo := users.NewRepository(users.NewMemoryStore(), users.WithHasher(hasher))

	tokens, err := jwt.NewFromString(testSecret, jwt.WithTTL(time.Hour))
	require.NoError(t, err)

	idCache := cache.NewMemory[users.User]()
	sessCache := cache.NewMemory[session.Session]()
	t.Cleanup(func() {
		_ = idCache.Close()
		_ = sessCache.Close()
	})

	renderer, err := views.Default(false)
	require.NoError(t, err)

	stats := &fakeRecorder{}
	hs := append([]internal.Handler{
		handlers.NewAuth(repo, tokens, handlers.WithRecorder(stats)),
		handlers.NewUsers(repo, handlers.WithRecorder(stats)),
	}, extra...)

	app := internal.New(
		internal.WithPages(views.Files, views.PagesDir),
		internal.WithCookieOptions(cookie.WithSecret(testSecret)),
		internal.WithSession(session.NewCacheStore(sessCache)),
		internal.WithMiddleware(
			middlewares.Session(),
			middlewares.Body(middlewares.DefaultBodyLimit),
			middlewares.Auth(tokens, users.NewIdentities(repo, idCache, time.Minute)),
			middlewares.Alert(),
			middlewares.Pages(renderer, false),
		),
		internal.WithHandlers(hs...),
	)
	return &env{app: app, repo: repo, tokens: tokens, stats: stats}
}

func (e *env) seed(t *testing.T, username string, role users.Role) *users.User {
	t.Helper()
	res, err := e.repo.Create(t.Context(), users.Input{
		"username": username,
		"email":    username + "@example.com",
		"password": "password",
		"role":     string(role),
	})
	require.NoError(t, err)
	require.True(t, res.OK(), res.Errors)

	found, err := e.repo.FindByID(t.Context(), res.Data)
	require.NoError(t, err)
	return found.Data
}

func (e *env) authCookie(t *testing.T, u *users.User) *http.Cookie {
	t.Helper()
	token, err := e.tokens.Issue(u.ID)
	require.NoError(t, err)
	return &http.Cookie{Name: middlewares.AuthCookie, Value: token}
}

func (e *env) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, ck := range cookies {
		if ck != nil {
			req.AddCookie(ck)
		}
	}
	w := httptest.NewRecorder()
	e.app.ServeHTTP(w, req)
	return w
}

func get(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Accept", "text/html")
	return req
}

func post(target string, vals url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	return req
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
