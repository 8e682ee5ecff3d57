// Package metrics exposes prometheus instrumentation for the coordination
// pipeline. Each Registry owns a private prometheus registry so embedding
// applications can scrape or ignore it without global state.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the coordination engine
type Registry struct {
	// Pipeline metrics
	ElementsProcessedTotal *prometheus.CounterVec
	StageDuration          *prometheus.HistogramVec
	PipelineRunsTotal      *prometheus.CounterVec

	// Coordination metrics
	ElevationDefaultsTotal prometheus.Counter
	NudgesTotal            prometheus.Counter
	NudgeMagnitude         prometheus.Histogram
	CascadeFlagsTotal      prometheus.Counter
	ClashesTotal           *prometheus.CounterVec

	// Generation and routing metrics
	DevicesGeneratedTotal prometheus.Counter
	GridViolationsTotal   prometheus.Counter
	ZonesRoutedTotal      prometheus.Counter
	ZonesFailedTotal      prometheus.Counter
	StandaloneRoutesTotal prometheus.Counter
	NetworkSegmentsTotal  *prometheus.CounterVec
	NetworkLengthMeters   *prometheus.CounterVec

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initPipelineMetrics()
	r.initCoordinationMetrics()
	r.initRoutingMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
