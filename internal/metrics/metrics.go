// Package metrics exposes Prometheus metrics for the outreach service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the outreach service.
type Metrics struct {
	GenerationsTotal          *prometheus.CounterVec
	GenerationDurationSeconds prometheus.Histogram
	FallbackParses            prometheus.Counter
	ReviewActionsTotal        *prometheus.CounterVec
	APIRequestsTotal          *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with all metrics registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_generations_total",
				Help: "Total number of model generation attempts",
			},
			[]string{"result"},
		),
		GenerationDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "outreach_generation_duration_seconds",
				Help:    "Duration of model generation calls",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),
		FallbackParses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "outreach_fallback_parses_total",
				Help: "Total number of model responses that needed fallback parsing",
			},
		),
		ReviewActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_review_actions_total",
				Help: "Total number of review actions by type",
			},
			[]string{"action"},
		),
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outreach_api_requests_total",
				Help: "Total number of API requests by method and status",
			},
			[]string{"method", "status"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.GenerationsTotal,
		m.GenerationDurationSeconds,
		m.FallbackParses,
		m.ReviewActionsTotal,
		m.APIRequestsTotal,
	)

	return m
}

// ObserveGeneration records one generation attempt.
func (m *Metrics) ObserveGeneration(d time.Duration, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.GenerationsTotal.WithLabelValues(result).Inc()
	m.GenerationDurationSeconds.Observe(d.Seconds())
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
