package scoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pool and pipeline instrumentation.
type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	fallbacks *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when it is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guru",
			Subsystem: "scorer",
			Name:      "requests_total",
			Help:      "Scorer requests handled, by type and outcome.",
		}, []string{"type", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "guru",
			Subsystem: "scorer",
			Name:      "duration_seconds",
			Help:      "Time spent computing a scorer response.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"type"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guru",
			Subsystem: "scorer",
			Name:      "fallbacks_total",
			Help:      "Metrics replaced by the neutral fallback score.",
		}, []string{"type", "reason"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.fallbacks)
	}
	return m
}
