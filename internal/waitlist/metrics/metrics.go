package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the waiting queues.
type Metrics struct {
	Joins        *prometheus.CounterVec
	JoinDuration prometheus.Histogram
}

// New creates a Metrics instance with all waitlist metrics registered.
func New() *Metrics {
	return &Metrics{
		Joins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "visuplant_waitlist_joins_total",
			Help: "Waitlist join attempts by outcome",
		}, []string{"outcome"}),
		JoinDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "visuplant_waitlist_join_duration_seconds",
			Help:    "Duration of waitlist join operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// RecordJoin records one join attempt.
func (m *Metrics) RecordJoin(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Joins.WithLabelValues(outcome).Inc()
	m.JoinDuration.Observe(time.Since(start).Seconds())
}
