package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the prometheus collectors for the service. Each instance
// owns its registry so tests can construct them independently.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	TriageRuns      *prometheus.CounterVec
	ClassifierFalls prometheus.Counter
}

// Triage run outcomes used as the label of TriageRuns.
const (
	TriageOutcomeAutoClosed = "auto_closed"
	TriageOutcomeAssigned   = "assigned_to_human"
	TriageOutcomeIdempotent = "idempotent"
	TriageOutcomeFailed     = "failed"
)

// NewMetrics registers and returns the service collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		TriageRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "triage_runs_total",
				Help: "Triage workflow executions by outcome",
			},
			[]string{"outcome"},
		),
		ClassifierFalls: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "classifier_fallback_total",
				Help: "Classifications served by the keyword fallback",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.RequestCounter,
		m.RequestDuration,
		m.TriageRuns,
		m.ClassifierFalls,
	)
	return m
}

// RecordRequest observes one completed HTTP request.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordTriageOutcome counts one workflow completion.
func (m *Metrics) RecordTriageOutcome(outcome string) {
	if m == nil {
		return
	}
	m.TriageRuns.WithLabelValues(outcome).Inc()
}

// RecordClassifierFallback counts a fallback classification.
func (m *Metrics) RecordClassifierFallback() {
	if m == nil {
		return
	}
	m.ClassifierFalls.Inc()
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
