// Package pipeline orchestrates the coordination stages: elevation
// assignment, vertical separation, clash prediction, and independently
// placement generation with distribution routing. The pipeline is a
// synchronous in-memory batch transform; any parallelism stays inside a
// single call and touches only disjoint partitions.
package pipeline

import (
	"time"

	"github.com/red1oon/2DtoBlender-sub002/pkg/clash"
	"github.com/red1oon/2DtoBlender-sub002/pkg/elevation"
	"github.com/red1oon/2DtoBlender-sub002/pkg/logging"
	"github.com/red1oon/2DtoBlender-sub002/pkg/metrics"
	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
	"github.com/red1oon/2DtoBlender-sub002/pkg/parallel"
	"github.com/red1oon/2DtoBlender-sub002/pkg/separation"
	"github.com/red1oon/2DtoBlender-sub002/pkg/standards"
)

// Pipeline wires the coordination components over shared immutable
// reference tables. Construct with New, then adjust exported fields before
// the first run if needed.
type Pipeline struct {
	Config     Config
	Standards  *standards.Table
	Heights    *standards.HeightTable
	Clearances *standards.ClearanceRules
	Profile    standards.BuildingProfile

	logger  logging.Logger
	metrics *metrics.Registry
}

// New creates a pipeline over the built-in rule tables. A nil logger
// disables logging; a nil registry disables metrics recording.
func New(cfg Config, profile standards.BuildingProfile, logger logging.Logger, registry *metrics.Registry) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		Config:     cfg,
		Standards:  standards.DefaultTable(),
		Heights:    standards.DefaultHeightTable(),
		Clearances: standards.DefaultClearanceRules(),
		Profile:    profile,
		logger:     logging.OrNop(logger),
		metrics:    registry,
	}, nil
}

// Result is the outcome of one coordination run. Every element that entered
// the run exits with an assigned elevation or an explicit diagnostic; the
// clash report rides alongside as a side channel.
type Result struct {
	Elements    []*model.SpatialElement
	Clashes     []clash.Record
	Diagnostics model.Diagnostics
}

// Coordinate runs elevation assignment, vertical separation, then clash
// prediction over the element collection in place
func (p *Pipeline) Coordinate(elements []*model.SpatialElement) (*Result, error) {
	result := &Result{
		Elements:    elements,
		Diagnostics: make(model.Diagnostics, 0),
	}

	// Stage 1: elevations, which everything downstream depends on
	start := time.Now()
	assigner := elevation.NewAssigner(p.Heights, p.Profile, p.logger)
	assignDiags := assigner.AssignAll(elements)
	result.Diagnostics.Append(assignDiags)
	p.recordStage("elevation", len(elements), time.Since(start))
	if p.metrics != nil {
		for range assignDiags.OfType(model.UnmappedConfiguration) {
			p.metrics.ElevationDefaultsTotal.Inc()
		}
	}

	// Stage 2: per-bucket separation, fanned out when workers are configured
	start = time.Now()
	resolver := separation.NewResolver(p.Config.MinClearance, p.logger)
	resolver.CellSize = p.Config.CellSize
	resolver.CascadeCeiling = p.Config.CascadeCeiling

	buckets := resolver.Buckets(elements)
	outcomes := parallel.MapPartitions(p.Config.Workers, buckets, resolver.ResolveBucket, p.logger)
	var nudges []float64
	for _, outcome := range outcomes {
		result.Diagnostics.Append(outcome.Diagnostics)
		nudges = append(nudges, outcome.Nudges...)
	}
	p.recordStage("separation", len(elements), time.Since(start))
	if p.metrics != nil {
		for _, magnitude := range nudges {
			p.metrics.RecordNudge(magnitude)
		}
		for range result.Diagnostics.OfType(model.VerticalCascade) {
			p.metrics.CascadeFlagsTotal.Inc()
		}
	}

	// Stage 3: clash prediction over the separated set, read-only
	start = time.Now()
	predictor := clash.NewPredictor(p.Clearances, p.logger)
	result.Clashes = predictor.Predict(elements)
	p.recordStage("clash", len(elements), time.Since(start))
	if p.metrics != nil {
		for _, rec := range result.Clashes {
			p.metrics.RecordClash(rec.Severity.String())
		}
	}

	p.recordRun(nil)
	p.logger.Info("coordination complete",
		logging.Int("elements", len(elements)),
		logging.Int("clashes", len(result.Clashes)),
		logging.Int("diagnostics", len(result.Diagnostics)))
	return result, nil
}

// recordStage records stage metrics when a registry is attached
func (p *Pipeline) recordStage(stage string, elements int, d time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordStage(stage, elements, d)
	}
}

// recordRun records the run outcome when a registry is attached
func (p *Pipeline) recordRun(err error) {
	if p.metrics != nil {
		p.metrics.RecordRun(err)
	}
}
