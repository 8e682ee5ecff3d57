package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRoutingMetrics() {
	r.DevicesGeneratedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "coordination_devices_generated_total",
			Help: "Devices generated by the placement generator",
		},
	)

	r.GridViolationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "coordination_grid_violations_total",
			Help: "Compliance violations emitted by the placement generator",
		},
	)

	r.ZonesRoutedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "coordination_zones_routed_total",
			Help: "Supply zones routed successfully",
		},
	)

	r.ZonesFailedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "coordination_zones_failed_total",
			Help: "Supply zones that failed with topology errors",
		},
	)

	r.StandaloneRoutesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "coordination_standalone_routes_total",
			Help: "Devices connected by standalone fallback routing",
		},
	)

	r.NetworkSegmentsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordination_network_segments_total",
			Help: "Distribution segments built, by kind",
		},
		[]string{"kind"}, // trunk, branch, standalone
	)

	r.NetworkLengthMeters = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "coordination_network_length_meters_total",
			Help: "Distribution length built in meters, by kind",
		},
		[]string{"kind"},
	)
}
