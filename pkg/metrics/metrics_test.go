package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/userdesk/pkg/metrics"
)

func TestRequestMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.New("test")
	done := m.Start(http.MethodGet)
	done("/user/[id]", http.StatusOK)
	m.Start(http.MethodGet)("", http.StatusNotFound)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "test_http_requests_total" {
			assert.Len(t, f.GetMetric(), 2)
		}
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `test_http_requests_total{method="GET",route="/user/[id]",status="200"} 1`)
	assert.Contains(t, body, `route="unmatched",status="404"`)
	assert.Contains(t, body, "test_http_in_flight_requests 0")
}

func TestCounters(t *testing.T) {
	t.Parallel()

	m := metrics.New("test")
	m.Login(metrics.LoginSuccess)
	m.Login(metrics.LoginFailed)
	m.Login(metrics.LoginFailed)
	m.UserChanged("create")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `test_logins_total{result="failed"} 2`)
	assert.Contains(t, rec.Body.String(), `test_user_changes_total{op="create"} 1`)
}
