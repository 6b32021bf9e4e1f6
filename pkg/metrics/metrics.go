// Package metrics exposes Prometheus collectors for the HTTP layer and a
// few application counters.
//
// Collectors live in a private registry so tests can create as many
// instances as they need.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes recorded by Login.
const (
	LoginSuccess   = "success"
	LoginFailed    = "failed"
	LoginThrottled = "throttled"
)

// Metrics bundles the collectors.
type Metrics struct {
	registry *prometheus.Registry
	inFlight prometheus.Gauge
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	logins   *prometheus.CounterVec
	users    *prometheus.CounterVec
}

// New registers all collectors under namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "In-flight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"result"}),
		users: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_changes_total",
			Help:      "User records changed, by operation.",
		}, []string{"op"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.inFlight, m.requests, m.duration, m.logins, m.users,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Start marks a request as in flight and returns the function that
// records its outcome. route should be a pattern, not a raw path.
func (m *Metrics) Start(method string) func(route string, status int) {
	m.inFlight.Inc()
	start := time.Now()
	return func(route string, status int) {
		m.inFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		code := strconv.Itoa(status)
		m.duration.WithLabelValues(method, route, code).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(method, route, code).Inc()
	}
}

// Login counts a login attempt.
func (m *Metrics) Login(result string) {
	m.logins.WithLabelValues(result).Inc()
}

// UserChanged counts a user create, update or delete.
func (m *Metrics) UserChanged(op string) {
	m.users.WithLabelValues(op).Inc()
}
