package telemetry

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the storefront's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	Fetches        *prometheus.CounterVec
	FetchLatency   *prometheus.HistogramVec
	ViewIncrements *prometheus.CounterVec
	ChangeEvents   *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
	RateLimited    *prometheus.CounterVec
}

func NewMetrics(serviceName string) *Metrics {
	namespace := strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(serviceName)
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Listing and category fetches by kind and result.",
		}, []string{"kind", "result"}),
		FetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_latency_seconds",
			Help:      "Latency of store reads by kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		ViewIncrements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_increments_total",
			Help:      "View counter increments by mode and result.",
		}, []string{"mode", "result"}),
		ChangeEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_events_total",
			Help:      "Change notifications received by feeds, by type.",
		}, []string{"type"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Open websocket storefront sessions.",
		}),
		RateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter, by action.",
		}, []string{"action"}),
	}

	registry.MustRegister(
		m.Fetches,
		m.FetchLatency,
		m.ViewIncrements,
		m.ChangeEvents,
		m.ActiveSessions,
		m.RateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
