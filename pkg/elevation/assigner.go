// Package elevation assigns each classified 2D element a nominal vertical
// position from the discipline height table and the building profile.
package elevation

import (
	"hash/fnv"

	"github.com/red1oon/2DtoBlender-sub002/pkg/logging"
	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
	"github.com/red1oon/2DtoBlender-sub002/pkg/standards"
)

// tieBreakSpan is the width of the deterministic de-duplication offset in
// meters. Elements sharing a (discipline, class) rule receive a sub-millimeter
// elevation offset derived from a stable hash of their ID, so co-located
// elements never sit at exactly the same height and re-runs reproduce the
// same values exactly.
const tieBreakSpan = 0.001

// Assigner looks up nominal elevations from an immutable height table
type Assigner struct {
	table   *standards.HeightTable
	profile standards.BuildingProfile
	logger  logging.Logger
}

// NewAssigner creates an assigner over the given height table and building
// profile. A nil logger disables logging.
func NewAssigner(table *standards.HeightTable, profile standards.BuildingProfile, logger logging.Logger) *Assigner {
	return &Assigner{
		table:   table,
		profile: profile,
		logger:  logging.OrNop(logger),
	}
}

// Assign sets the element's elevation from the height table and returns it.
// Unknown (discipline, class) pairs never error: they default to floor level
// and are annotated so downstream review can catch unmapped cases.
func (a *Assigner) Assign(el *model.SpatialElement) (float64, model.Diagnostics) {
	diags := make(model.Diagnostics, 0)

	rule, ok := a.table.Lookup(el.Discipline, el.Class)
	if !ok {
		el.Annotate("no height rule for %s/%s, defaulted to floor level", el.Discipline, el.Class)
		diags.Add(model.UnmappedConfiguration, model.Warning, el.ID,
			"no height rule for %s/%s", el.Discipline, el.Class)
		a.logger.Warn("unmapped height rule",
			logging.String("element", el.ID),
			logging.String("discipline", string(el.Discipline)),
			logging.String("class", string(el.Class)))
		if err := el.SetElevation(0); err != nil {
			diags.Add(model.UnmappedConfiguration, model.Error, el.ID, "cannot default elevation: %v", err)
		}
		return el.ElevationOrZero(), diags
	}

	var z float64
	switch rule.Mount {
	case standards.MountCeilingOffset:
		z = a.profile.CeilingHeight - rule.Offset
	case standards.MountAbsolute:
		z = rule.Offset
	}
	z += tieBreakOffset(el.ID)

	if err := el.SetElevation(z); err != nil {
		// Already assigned higher by an earlier pass; keep the higher value
		el.Annotate("kept existing elevation %.4f over nominal %.4f", el.ElevationOrZero(), z)
	}
	return el.ElevationOrZero(), diags
}

// AssignAll assigns elevations to every element in order and collects the
// diagnostics for unmapped pairs
func (a *Assigner) AssignAll(elements []*model.SpatialElement) model.Diagnostics {
	diags := make(model.Diagnostics, 0)
	for _, el := range elements {
		_, d := a.Assign(el)
		diags.Append(d)
	}
	a.logger.Debug("elevations assigned", logging.Int("elements", len(elements)))
	return diags
}

// tieBreakOffset derives a stable sub-millimeter offset from the element ID
func tieBreakOffset(id string) float64 {
	h := fnv.New32a()
	h.Write([]byte(id))
	return float64(h.Sum32()%1000) / 1000.0 * tieBreakSpan
}
