// Package metrics exposes Prometheus collectors for business operations,
// HTTP traffic and event publication.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "retailpos"

type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	HTTPRequestsTotal *prometheus.CounterVec
	EventsPublished   *prometheus.CounterVec
}

// New builds a private registry. Each Metrics value is independent, so tests
// can create as many as they need.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Business operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Business operation latency in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Domain events handed to the publisher",
			},
			[]string{"event_type", "outcome"},
		),
	}

	registry.MustRegister(m.OperationsTotal, m.OperationDuration, m.HTTPRequestsTotal, m.EventsPublished)
	return m
}

func (m *Metrics) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route, status string) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
}

func (m *Metrics) ObserveEvent(eventType, outcome string) {
	m.EventsPublished.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
