package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/red1oon/2DtoBlender-sub002/pkg/logging"
	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
	"github.com/red1oon/2DtoBlender-sub002/pkg/placement"
	"github.com/red1oon/2DtoBlender-sub002/pkg/routing"
	"github.com/red1oon/2DtoBlender-sub002/pkg/standards"
)

// GenerationResult is the outcome of one generate-and-route run. Devices are
// also materialized as spatial elements so callers can merge them into the
// main element collection for persistence.
type GenerationResult struct {
	Grid        *placement.GridResult
	Devices     []routing.Device
	Elements    []*model.SpatialElement
	Network     *routing.Network
	Stats       []routing.ZoneStats
	Diagnostics model.Diagnostics
}

// GenerateLayout computes a code-compliant device grid for the region. A
// missing standards entry falls back to the built-in sprinkler rule with an
// unmapped-configuration diagnostic rather than failing, matching the
// never-fatal policy for table gaps.
func (p *Pipeline) GenerateLayout(region placement.Region, d model.Discipline, c model.ElementClass) (*placement.GridResult, model.Diagnostics, error) {
	diags := make(model.Diagnostics, 0)

	std, ok := p.Standards.Lookup(d, c)
	if !ok {
		fallback, fbOK := p.Standards.Lookup(model.FireProtection, model.TerminalDevice)
		if !fbOK {
			return nil, diags, fmt.Errorf("no placement standard for %s/%s and no fallback available", d, c)
		}
		diags.Add(model.UnmappedConfiguration, model.Warning, "",
			"no placement standard for %s/%s, using %s/%s rules",
			d, c, model.FireProtection, model.TerminalDevice)
		std = fallback
	}

	grid, err := placement.NewGenerator(p.logger).Generate(region, std, std.MinWallClearance, p.mountHeight(d, c))
	if err != nil {
		return nil, diags, err
	}
	diags.Append(grid.Diagnostics)

	if p.metrics != nil {
		violations := 0
		for _, d := range grid.Diagnostics.OfType(model.ComplianceViolation) {
			if d.Severity >= model.Warning {
				violations++
			}
		}
		p.metrics.RecordGeneration(len(grid.Positions), violations)
	}
	return grid, diags, nil
}

// GenerateAndRoute generates a device grid in the region and routes the
// devices back to the supply points along the corridor graph
func (p *Pipeline) GenerateAndRoute(region placement.Region, d model.Discipline, c model.ElementClass, graph *routing.Graph, supplies []routing.SupplyPoint) (*GenerationResult, error) {
	grid, diags, err := p.GenerateLayout(region, d, c)
	if err != nil {
		p.recordRun(err)
		return nil, err
	}

	result := &GenerationResult{
		Grid:        grid,
		Devices:     make([]routing.Device, 0, len(grid.Positions)),
		Elements:    make([]*model.SpatialElement, 0, len(grid.Positions)),
		Diagnostics: diags,
	}

	for _, pos := range grid.Positions {
		id := uuid.New().String()
		result.Devices = append(result.Devices, routing.Device{ID: id, Position: pos})

		el := &model.SpatialElement{
			ID:         id,
			Discipline: d,
			Class:      c,
			Anchor:     pos.Plan(),
		}
		if err := el.SetElevation(pos.Z); err != nil {
			return nil, err
		}
		el.Annotate("generated at %.3f, %.3f by placement grid", pos.X, pos.Y)
		result.Elements = append(result.Elements, el)
	}

	router := routing.NewRouter(p.trunkElevation(d), p.logger)
	router.SearchRadius = p.Config.SearchRadius
	network, err := router.Route(result.Devices, graph, supplies)
	if err != nil {
		p.recordRun(err)
		return nil, err
	}
	result.Network = network
	result.Stats = network.Stats()
	result.Diagnostics.Append(network.Diagnostics)

	if p.metrics != nil {
		segments := make(map[string]int)
		lengths := make(map[string]float64)
		for _, zone := range result.Stats {
			for kind, count := range zone.SegmentsByKind {
				segments[kind] += count
			}
			lengths[routing.Trunk.String()] += zone.TrunkLength
			lengths[routing.Branch.String()] += zone.BranchLength
			lengths[routing.Standalone.String()] += zone.StandaloneLength
		}
		standalone := len(network.Diagnostics.OfType(model.ConnectivityFallback))
		p.metrics.RecordRouting(len(network.Trees), len(network.ZoneFailures), standalone, segments, lengths)
	}

	p.recordRun(nil)
	p.logger.Info("generation and routing complete",
		logging.Int("devices", len(result.Devices)),
		logging.Int("zones", len(network.Trees)))
	return result, nil
}

// mountHeight returns the device mounting elevation from the height table,
// defaulting to the ceiling plane
func (p *Pipeline) mountHeight(d model.Discipline, c model.ElementClass) float64 {
	if rule, ok := p.Heights.Lookup(d, c); ok {
		switch rule.Mount {
		case standards.MountCeilingOffset:
			return p.Profile.CeilingHeight - rule.Offset
		case standards.MountAbsolute:
			return rule.Offset
		}
	}
	return p.Profile.CeilingHeight
}

// trunkElevation returns the distribution trunk elevation for a discipline:
// its pipe-run height when mapped, otherwise just below the ceiling
func (p *Pipeline) trunkElevation(d model.Discipline) float64 {
	if rule, ok := p.Heights.Lookup(d, model.PipeSegment); ok && rule.Mount == standards.MountCeilingOffset {
		return p.Profile.CeilingHeight - rule.Offset
	}
	return p.Profile.CeilingHeight - 0.1
}
