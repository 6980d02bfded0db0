package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the dispatch worker.
type Metrics struct {
	// Records by terminal outcome
	RecordsProcessed *prometheus.CounterVec

	// Records skipped as duplicates
	RecordsDeduped prometheus.Counter

	// Transient failures that leave the record uncommitted
	RecordRetries prometheus.Counter

	// End-to-end processing latency per record
	ProcessDuration prometheus.Histogram
}

// New creates a new Metrics instance with all dispatch worker metrics registered.
func New() *Metrics {
	return &Metrics{
		RecordsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "avviso_dispatch_records_total",
			Help: "Created-message records by terminal outcome",
		}, []string{"outcome"}), // outcome: "success" or a failure reason

		RecordsDeduped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "avviso_dispatch_records_deduped_total",
			Help: "Records skipped because the message was already processed",
		}),

		RecordRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "avviso_dispatch_record_retries_total",
			Help: "Records left uncommitted after a transient failure",
		}),

		ProcessDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "avviso_dispatch_process_duration_seconds",
			Help:    "Duration of processing one created-message record",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementOutcome records one terminal record outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.RecordsProcessed.WithLabelValues(outcome).Inc()
	}
}

// IncrementDeduped records one skipped duplicate.
func (m *Metrics) IncrementDeduped() {
	if m != nil {
		m.RecordsDeduped.Inc()
	}
}

// IncrementRetry records one transient failure.
func (m *Metrics) IncrementRetry() {
	if m != nil {
		m.RecordRetries.Inc()
	}
}

// ObserveProcessDuration records the processing latency of one record.
func (m *Metrics) ObserveProcessDuration(d time.Duration) {
	if m != nil {
		m.ProcessDuration.Observe(d.Seconds())
	}
}
