package otel

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics turns events into Prometheus series.
type Metrics struct {
	events    *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewMetrics registers the shelf collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shelf",
			Name:      "events_total",
			Help:      "Observability events by kind and level.",
		}, []string{"kind", "level"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shelf",
			Name:      "request_duration_seconds",
			Help:      "Gateway round-trip time of settled requests, stale ones included.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"kind"}),
	}
	reg.MustRegister(m.events, m.durations)
	return m
}

// Observe records one event.
func (m *Metrics) Observe(e Event) {
	level := string(e.Level)
	if level == "" {
		level = string(LevelInfo)
	}
	m.events.WithLabelValues(string(e.Kind), level).Inc()
	if e.Dur > 0 {
		m.durations.WithLabelValues(string(e.Kind)).Observe(e.Dur.Seconds())
	}
}
