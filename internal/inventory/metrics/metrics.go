package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the unit registry.
type Metrics struct {
	Transitions        *prometheus.CounterVec
	TransitionDuration *prometheus.HistogramVec
	BoardCacheHits     prometheus.Counter
	BoardCacheMisses   prometheus.Counter
}

// New creates a Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "visuplant_unit_transitions_total",
			Help: "Unit status transitions by operation and outcome",
		}, []string{"operation", "outcome"}),
		TransitionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "visuplant_unit_transition_duration_seconds",
			Help:    "Duration of unit transition operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		BoardCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "visuplant_board_cache_hits_total",
			Help: "Unit board list requests served from cache",
		}),
		BoardCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "visuplant_board_cache_misses_total",
			Help: "Unit board list requests served from the store",
		}),
	}
}

// RecordTransition records one transition attempt.
func (m *Metrics) RecordTransition(operation, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(operation, outcome).Inc()
	m.TransitionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordCacheHit counts a board list served from cache.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.BoardCacheHits.Inc()
}

// RecordCacheMiss counts a board list served from the store.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.BoardCacheMisses.Inc()
}
