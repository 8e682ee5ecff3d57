package metrics

import (
	"time"
)

// RecordStage records one pipeline stage execution
func (r *Registry) RecordStage(stage string, elements int, duration time.Duration) {
	r.ElementsProcessedTotal.WithLabelValues(stage).Add(float64(elements))
	r.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordRun records the outcome of a full pipeline run
func (r *Registry) RecordRun(err error) {
	if err != nil {
		r.PipelineRunsTotal.WithLabelValues("error").Inc()
		return
	}
	r.PipelineRunsTotal.WithLabelValues("ok").Inc()
}

// RecordNudge records one upward separation nudge
func (r *Registry) RecordNudge(magnitude float64) {
	r.NudgesTotal.Inc()
	r.NudgeMagnitude.Observe(magnitude)
}

// RecordClash records one predicted clash
func (r *Registry) RecordClash(severity string) {
	r.ClashesTotal.WithLabelValues(severity).Inc()
}

// RecordGeneration records a placement generation run
func (r *Registry) RecordGeneration(devices, violations int) {
	r.DevicesGeneratedTotal.Add(float64(devices))
	r.GridViolationsTotal.Add(float64(violations))
}

// RecordRouting records a routing run's zone and segment outcomes
func (r *Registry) RecordRouting(routed, failed, standalone int, segmentsByKind map[string]int, lengthByKind map[string]float64) {
	r.ZonesRoutedTotal.Add(float64(routed))
	r.ZonesFailedTotal.Add(float64(failed))
	r.StandaloneRoutesTotal.Add(float64(standalone))
	for kind, count := range segmentsByKind {
		r.NetworkSegmentsTotal.WithLabelValues(kind).Add(float64(count))
	}
	for kind, meters := range lengthByKind {
		r.NetworkLengthMeters.WithLabelValues(kind).Add(meters)
	}
}
