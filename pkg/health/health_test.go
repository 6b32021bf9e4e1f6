package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userdesk/pkg/health"
)

func ok(context.Context) error { return nil }

func TestLiveness(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	health.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()
		h := health.ReadinessHandler(health.Checks{"postgres": ok, "redis": ok})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		req.Header.Set("Accept", "application/json")
		h(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp health.Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, health.StatusHealthy, resp.Status)
		assert.Len(t, resp.Checks, 2)
	})

	t.Run("unhealthy", func(t *testing.T) {
		t.Parallel()
		h := health.ReadinessHandler(health.Checks{
			"postgres": ok,
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready?format=json", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var resp health.Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, health.StatusUnhealthy, resp.Status)
		assert.Equal(t, health.StatusHealthy, resp.Checks["postgres"].Status)
		assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
	})

	t.Run("plain text", func(t *testing.T) {
		t.Parallel()
		h := health.ReadinessHandler(health.Checks{"x": func(context.Context) error { return errors.New("down") }})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, "Service Unavailable", rec.Body.String())
	})
}

func TestRunTimeout(t *testing.T) {
	t.Parallel()

	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	resp, err := health.Run(context.Background(), health.Checks{"slow": slow}, health.WithTimeout(10*time.Millisecond))
	require.ErrorIs(t, err, health.ErrCheckFailed)
	require.ErrorIs(t, err, health.ErrCheckTimeout)
	assert.Equal(t, health.StatusUnhealthy, resp.Checks["slow"].Status)
}
