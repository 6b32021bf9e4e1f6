package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userdesk/internal"
	"github.com/dmitrymomot/userdesk/internal/users"
	"github.com/dmitrymomot/userdesk/middlewares"
)

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("handler finishes in time", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := run(t, req, []internal.Middleware{middlewares.Timeout(time.Second)}, okHandler)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "ok", res.Body.String())
	})

	t.Run("slow handler yields 503", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := run(t, req, []internal.Middleware{middlewares.Timeout(20 * time.Millisecond)}, func(c internal.Context) error {
			<-c.Done()
			return c.Err()
		})

		assert.Equal(t, http.StatusServiceUnavailable, res.Code)
		te, ok := middlewares.AsTimeoutError(res.err)
		require.True(t, ok)
		assert.Equal(t, 20*time.Millisecond, te.Duration)
	})

	t.Run("handler and request context carry the deadline", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		run(t, req, []internal.Middleware{middlewares.Timeout(time.Minute)}, func(c internal.Context) error {
			_, ok := c.Deadline()
			assert.True(t, ok)
			_, ok = c.Request().Context().Deadline()
			assert.True(t, ok)
			return okHandler(c)
		})
	})

	t.Run("late stages finish before the response returns", func(t *testing.T) {
		t.Parallel()

		var lateUser *users.User
		setLate := func(next internal.HandlerFunc) internal.HandlerFunc {
			return func(c internal.Context) error {
				err := next(c)
				<-c.Done()
				c.SetUser(&users.User{ID: "late"})
				lateUser = c.User()
				return err
			}
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := run(t, req, []internal.Middleware{middlewares.Timeout(10 * time.Millisecond), setLate}, func(c internal.Context) error {
			return nil
		})

		require.NotNil(t, lateUser, "inner stages complete before the timeout response")
		assert.Equal(t, "late", lateUser.ID)
		assert.Equal(t, http.StatusServiceUnavailable, res.Code)
	})

	t.Run("a response written after the deadline is kept", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := run(t, req, []internal.Middleware{middlewares.Timeout(10 * time.Millisecond)}, func(c internal.Context) error {
			<-c.Done()
			return c.String(http.StatusOK, "late write")
		})

		assert.NoError(t, res.err)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "late write", res.Body.String())
	})
}

func TestTimeoutError(t *testing.T) {
	t.Parallel()

	te := &middlewares.TimeoutError{Duration: 250 * time.Millisecond}
	assert.Equal(t, "request timeout after 250ms", te.Error())
	assert.Equal(t, http.StatusServiceUnavailable, internal.StatusOf(te))

	got, ok := middlewares.AsTimeoutError(errors.Join(errors.New("ctx"), te))
	require.True(t, ok)
	assert.Same(t, te, got)

	_, ok = middlewares.AsTimeoutError(nil)
	assert.False(t, ok)
}
