package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCoordinationMetrics() {
	r.ElevationDefaultsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "coordination_elevation_defaults_total",
			Help: "Elements defaulted to floor level for lack of a height rule",
		},
	)

	r.NudgesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "coordination_nudges_total",
			Help: "Total number of upward separation nudges applied",
		},
	)

	r.NudgeMagnitude = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coordination_nudge_magnitude_meters",
			Help:    "Magnitude of separation nudges in meters",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		},
	)

	r.CascadeFlagsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "coordination_cascade_flags_total",
			Help: "Elements flagged for manual coordination after excessive cascading nudges",
		},
	)

	r.ClashesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordination_clashes_total",
			Help: "Predicted clashes by severity",
		},
		[]string{"severity"},
	)
}
