// Package telemetry holds the portal's Prometheus metrics and OpenTelemetry
// tracing setup.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry and the collectors registered on it.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	registrations       *prometheus.CounterVec
	workflowLatency     prometheus.Histogram
	notifyFailures      prometheus.Counter
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option configures Metrics.
type Option func(*Metrics)

// WithNamespace sets the metric namespace.
func WithNamespace(namespace string) Option {
	return func(m *Metrics) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets the latency buckets, in seconds.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Metrics) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry registers collectors on r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Metrics) {
		if r != nil {
			m.registry = r
		}
	}
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics(opts ...Option) *Metrics {
	m := &Metrics{
		namespace: "portal",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)
	m.registrations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "registration",
		Name:      "outcomes_total",
		Help:      "Registration attempts by terminal outcome.",
	}, []string{"status"})
	m.workflowLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "registration",
		Name:      "workflow_duration_seconds",
		Help:      "Time spent in one registration attempt.",
		Buckets:   m.buckets,
	})
	m.notifyFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "registration",
		Name:      "notify_failures_total",
		Help:      "Organiser notifications that could not be delivered.",
	})
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route, method and status code.",
		Buckets:   m.buckets,
	}, []string{"route", "method", "status"})
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRegistration counts one terminal registration outcome.
func (m *Metrics) RecordRegistration(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(status).Inc()
	m.workflowLatency.Observe(elapsed.Seconds())
}

// RecordNotifyFailure counts one failed organiser notification.
func (m *Metrics) RecordNotifyFailure() {
	if m == nil {
		return
	}
	m.notifyFailures.Inc()
}

// RecordHTTPRequest counts one served request.
func (m *Metrics) RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, code).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
