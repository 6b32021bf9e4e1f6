package middlewares_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userdesk/internal"
	"github.com/dmitrymomot/userdesk/middlewares"
)

func TestRecover(t *testing.T) {
	t.Parallel()

	t.Run("panic becomes a 500 PanicError", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := run(t, req, []internal.Middleware{middlewares.Recover()}, func(c internal.Context) error {
			panic("boom")
		})

		assert.Equal(t, http.StatusInternalServerError, res.Code)
		pe, ok := middlewares.AsPanicError(res.err)
		require.True(t, ok)
		assert.Equal(t, "boom", pe.Value)
		assert.Contains(t, pe.StackTrace(), "goroutine")
	})

	t.Run("error panics keep their value", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("db gone")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := run(t, req, []internal.Middleware{middlewares.Recover()}, func(c internal.Context) error {
			panic(cause)
		})

		pe, ok := middlewares.AsPanicError(res.err)
		require.True(t, ok)
		assert.Equal(t, cause, pe.Value)
	})

	t.Run("stack capture can be disabled", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := run(t, req, []internal.Middleware{middlewares.Recover(middlewares.WithRecoverDisablePrintStack())}, func(c internal.Context) error {
			panic("quiet")
		})

		pe, ok := middlewares.AsPanicError(res.err)
		require.True(t, ok)
		assert.Nil(t, pe.Stack)
	})

	t.Run("stack is bounded by the configured size", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := run(t, req, []internal.Middleware{middlewares.Recover(middlewares.WithRecoverStackSize(64))}, func(c internal.Context) error {
			panic("small")
		})

		pe, ok := middlewares.AsPanicError(res.err)
		require.True(t, ok)
		assert.LessOrEqual(t, len(pe.Stack), 64)
	})

	t.Run("handler errors pass through", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := run(t, req, []internal.Middleware{middlewares.Recover()}, func(c internal.Context) error {
			return internal.ErrForbidden("no")
		})

		assert.Equal(t, http.StatusForbidden, res.Code)
		_, ok := middlewares.AsPanicError(res.err)
		assert.False(t, ok)
	})

	t.Run("no panic", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := run(t, req, []internal.Middleware{middlewares.Recover()}, okHandler)
		assert.Equal(t, http.StatusOK, res.Code)
		assert.NoError(t, res.err)
	})
}

func TestPanicError(t *testing.T) {
	t.Parallel()

	pe := &middlewares.PanicError{Value: 42, Stack: []byte("goroutine 1")}
	assert.Equal(t, "panic: 42", pe.Error())
	assert.Equal(t, "goroutine 1", pe.StackTrace())
	assert.Equal(t, http.StatusInternalServerError, internal.StatusOf(pe))
	assert.Equal(t, internal.KindInternal, internal.KindOf(pe))

	wrapped := fmt.Errorf("handler: %w", pe)
	got, ok := middlewares.AsPanicError(wrapped)
	require.True(t, ok)
	assert.Same(t, pe, got)

	_, ok = middlewares.AsPanicError(errors.New("plain"))
	assert.False(t, ok)
}
