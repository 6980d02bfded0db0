package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the permission module.
type Metrics struct {
	// Decision outcomes by result and preferences mode
	DecisionOutcome *prometheus.CounterVec

	// Store lookup latencies by source
	LookupLatency *prometheus.HistogramVec

	// Overall evaluation latency
	EvaluateLatency prometheus.Histogram
}

// New creates a new Metrics instance with all permission module metrics registered.
func New() *Metrics {
	return &Metrics{
		DecisionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "avviso_permission_decisions_total",
			Help: "Total permission decisions by result and preferences mode",
		}, []string{"result", "mode"}), // result: "admitted" or a deny reason

		LookupLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "avviso_permission_lookup_duration_seconds",
			Help:    "Duration of store lookups by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}), // source: "profile", "preference", "activation"

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "avviso_permission_evaluate_duration_seconds",
			Help:    "Duration of full permission evaluation including lookups",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(result, mode string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(result, mode).Inc()
	}
}

// ObserveLookupLatency records the duration of one store lookup.
func (m *Metrics) ObserveLookupLatency(source string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
