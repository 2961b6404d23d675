package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/parser-service/internal/transport"
)

// Metrics records remote call and inbound request metrics. It implements
// transport.Observer.
type Metrics struct {
	registry *prometheus.Registry

	// RemoteAttempts counts every remote attempt by path and outcome
	RemoteAttempts *prometheus.CounterVec
	// RemoteRetries counts scheduled retries by path
	RemoteRetries *prometheus.CounterVec
	// RemoteLatency tracks the duration of single attempts
	RemoteLatency *prometheus.HistogramVec
	// HTTPRequests counts inbound requests by route and status
	HTTPRequests *prometheus.CounterVec
	// HTTPLatency tracks inbound request duration
	HTTPLatency *prometheus.HistogramVec
}

// NewMetrics creates metrics registered on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RemoteAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parser_remote_attempts_total",
				Help: "Total number of attempts against the parsing service",
			},
			[]string{"path", "outcome"},
		),
		RemoteRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parser_remote_retries_total",
				Help: "Total number of retries scheduled against the parsing service",
			},
			[]string{"path"},
		),
		RemoteLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "parser_remote_attempt_duration_seconds",
				Help:    "Remote attempt latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parser_http_requests_total",
				Help: "Total number of inbound HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "parser_http_request_duration_seconds",
				Help:    "Inbound HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveAttempt implements transport.Observer.
func (m *Metrics) ObserveAttempt(_, path string, status int, elapsed time.Duration, err error) {
	m.RemoteAttempts.WithLabelValues(path, outcome(status, err)).Inc()
	m.RemoteLatency.WithLabelValues(path).Observe(elapsed.Seconds())
}

// ObserveRetry implements transport.Observer.
func (m *Metrics) ObserveRetry(_, path string, _ int, _ time.Duration) {
	m.RemoteRetries.WithLabelValues(path).Inc()
}

// ObserveRequest records one inbound request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(status int, err error) string {
	switch {
	case status > 0:
		return strconv.Itoa(status)
	case err == nil:
		return "ok"
	}
	var terr *transport.Error
	if errors.As(err, &terr) && terr.Timeout() {
		return "timeout"
	}
	return "network"
}

var _ transport.Observer = (*Metrics)(nil)
