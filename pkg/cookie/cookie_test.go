package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userdesk/pkg/cookie"
)

const testSecret = "this-is-a-32-byte-or-longer-key!"

// roundTrip copies the cookies set on w into a new request.
func roundTrip(t *testing.T, w *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestPlainCookies(t *testing.T) {
	t.Parallel()

	m := cookie.New()

	_, err := m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "missing")
	require.ErrorIs(t, err, cookie.ErrNotFound)

	w := httptest.NewRecorder()
	m.Set(w, "name", "value", time.Hour)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	val, err := m.Get(roundTrip(t, w), "name")
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	w = httptest.NewRecorder()
	m.Delete(w, "name")
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}

func TestDefaultAttributes(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	cookie.New().Set(w, "a", "b", 0)
	c := w.Result().Cookies()[0]

	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Zero(t, c.MaxAge)
}

func TestCustomAttributes(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	cookie.New(
		cookie.WithDomain("example.com"),
		cookie.WithPath("/app"),
		cookie.WithSecure(true),
		cookie.WithHTTPOnly(false),
		cookie.WithSameSite(http.SameSiteLaxMode),
	).Set(w, "a", "b", time.Minute)
	c := w.Result().Cookies()[0]

	assert.Equal(t, "example.com", c.Domain)
	assert.Equal(t, "/app", c.Path)
	assert.True(t, c.Secure)
	assert.False(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestSignedCookies(t *testing.T) {
	t.Parallel()

	t.Run("no secret", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret("short"))
		assert.False(t, m.Signed())
		require.ErrorIs(t, m.SetSigned(httptest.NewRecorder(), "s", "v", 0), cookie.ErrNoSecret)
		_, err := m.GetSigned(httptest.NewRequest(http.MethodGet, "/", nil), "s")
		require.ErrorIs(t, err, cookie.ErrNoSecret)
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret(testSecret))
		w := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(w, "sessionId", "abc123", 0))

		val, err := m.GetSigned(roundTrip(t, w), "sessionId")
		require.NoError(t, err)
		assert.Equal(t, "abc123", val)
	})

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()
		m := cookie.New(cookie.WithSecret(testSecret))
		other := cookie.New(cookie.WithSecret("another-secret-that-is-32-bytes!"))
		w := httptest.NewRecorder()
		require.NoError(t, other.SetSigned(w, "sessionId", "abc123", 0))

		_, err := m.GetSigned(roundTrip(t, w), "sessionId")
		require.ErrorIs(t, err, cookie.ErrBadSig)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "sessionId", Value: "abc123"})
		_, err = m.GetSigned(r, "sessionId")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})
}

type alert struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func TestJSONAndFlash(t *testing.T) {
	t.Parallel()

	for name, m := range map[string]*cookie.Manager{
		"unsigned": cookie.New(),
		"signed":   cookie.New(cookie.WithSecret(testSecret)),
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			require.NoError(t, m.SetJSON(w, "alert", alert{Message: "Saved", Type: "success"}, 5*time.Second))
			assert.Equal(t, 5, w.Result().Cookies()[0].MaxAge)

			r := roundTrip(t, w)
			w = httptest.NewRecorder()
			var got alert
			require.NoError(t, m.Flash(w, r, "alert", &got))
			assert.Equal(t, alert{Message: "Saved", Type: "success"}, got)

			cleared := w.Result().Cookies()
			require.Len(t, cleared, 1)
			assert.Equal(t, -1, cleared[0].MaxAge)
		})
	}
}

func TestFlashMissingAndMalformed(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	var got alert

	w := httptest.NewRecorder()
	err := m.Flash(w, httptest.NewRequest(http.MethodGet, "/", nil), "alert", &got)
	require.ErrorIs(t, err, cookie.ErrNotFound)
	assert.Empty(t, w.Result().Cookies())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "alert", Value: "!!not-base64!!"})
	w = httptest.NewRecorder()
	require.ErrorIs(t, m.Flash(w, r, "alert", &got), cookie.ErrDecode)
	assert.Len(t, w.Result().Cookies(), 1, "malformed cookie is cleared")
}
