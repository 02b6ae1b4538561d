package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// monitoring loop.
type Metrics struct {
	ChecksTotal   prometheus.Counter
	CheckDuration prometheus.Histogram

	// Per-adapter metrics.
	AdapterErrors   *prometheus.CounterVec   // labels: source
	AdapterDuration *prometheus.HistogramVec // labels: source

	AlertActive      prometheus.Gauge
	EscalationsTotal prometheus.Counter
	OverrideActive   prometheus.Gauge
	ReportsPublished prometheus.Counter
}

// NewMetrics creates and registers all monitor metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ChecksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazmon",
			Name:      "checks_total",
			Help:      "Total safety check runs.",
		}),
		CheckDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazmon",
			Name:      "check_duration_seconds",
			Help:      "Duration of a complete aggregation run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 15},
		}),
		AdapterErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hazmon",
			Name:      "adapter_errors_total",
			Help:      "Fetch failures converted to fail-open results, by source.",
		}, []string{"source"}),
		AdapterDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hazmon",
			Name:      "adapter_duration_seconds",
			Help:      "Upstream fetch duration by source.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		AlertActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazmon",
			Name:      "alert_active",
			Help:      "1 while a pending alert awaits acknowledgment.",
		}),
		EscalationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazmon",
			Name:      "escalations_total",
			Help:      "Escalation notifications sent to the secondary contact.",
		}),
		OverrideActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazmon",
			Name:      "override_active",
			Help:      "1 while a test override is live.",
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazmon",
			Name:      "reports_published_total",
			Help:      "Safety reports published to the Kafka sink.",
		}),
	}

	prometheus.MustRegister(
		m.ChecksTotal,
		m.CheckDuration,
		m.AdapterErrors,
		m.AdapterDuration,
		m.AlertActive,
		m.EscalationsTotal,
		m.OverrideActive,
		m.ReportsPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ChecksTotal:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazmon", Name: "checks_total"}),
		CheckDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hazmon", Name: "check_duration_seconds"}),
		AdapterErrors:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hazmon", Name: "adapter_errors_total"}, []string{"source"}),
		AdapterDuration:  prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "hazmon", Name: "adapter_duration_seconds"}, []string{"source"}),
		AlertActive:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hazmon", Name: "alert_active"}),
		EscalationsTotal: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazmon", Name: "escalations_total"}),
		OverrideActive:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hazmon", Name: "override_active"}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazmon", Name: "reports_published_total"}),
	}
}
