package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWriterWriteHeaderOnce(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)
	assert.False(t, rw.Written())

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)

	assert.True(t, rw.Written())
	assert.Equal(t, http.StatusNotFound, rw.Status())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResponseWriterWriteImplies200(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.EqualValues(t, 5, rw.Size())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
}

func TestResponseWriterHooksRunOnceBeforeHeader(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	var order []string
	rw.OnBeforeWrite(func() {
		order = append(order, "first")
		rw.Header().Set("X-Hook", "yes")
	})
	rw.OnBeforeWrite(func() { order = append(order, "second") })

	_, _ = rw.Write([]byte("a"))
	_, _ = rw.Write([]byte("b"))
	rw.WriteHeader(http.StatusTeapot)

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, "yes", rec.Header().Get("X-Hook"))
	assert.Equal(t, "ab", rec.Body.String())
}

func TestResponseWriterUnwrapAndFlush(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	hooked := false
	rw.OnBeforeWrite(func() { hooked = true })

	assert.Same(t, rec, rw.Unwrap())
	rw.Flush()
	assert.True(t, rec.Flushed)
	assert.True(t, hooked)
	assert.True(t, rw.Written())

	_, _, err := http.NewResponseController(rw).Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}
