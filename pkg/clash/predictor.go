// Package clash predicts remaining conflicts between service disciplines
// after vertical separation. The test is a bounding-extent approximation:
// it may over-report at corners but never under-reports for axis-aligned
// rectangular extents.
package clash

import (
	"math"
	"sort"

	"github.com/red1oon/2DtoBlender-sub002/pkg/logging"
	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
	"github.com/red1oon/2DtoBlender-sub002/pkg/standards"
)

// Record describes one predicted clash between two elements of different
// disciplines. Records are immutable once produced.
type Record struct {
	ElementA          string           `json:"element_a"`
	ElementB          string           `json:"element_b"`
	DisciplineA       model.Discipline `json:"discipline_a"`
	DisciplineB       model.Discipline `json:"discipline_b"`
	Clearance         float64          `json:"clearance"`          // Pair clearance applied to the test
	HorizontalOverlap float64          `json:"horizontal_overlap"` // Penetration of the expanded footprints
	VerticalOverlap   float64          `json:"vertical_overlap"`   // Penetration of the expanded vertical extents, 0 when elevations are unassigned
	Severity          model.Severity   `json:"severity"`
}

// Predictor performs pairwise clash scans within discipline-pair clearance
// rules. It is read-only over the element set and idempotent.
type Predictor struct {
	rules  *standards.ClearanceRules
	logger logging.Logger
}

// NewPredictor creates a predictor over an immutable clearance rule set
func NewPredictor(rules *standards.ClearanceRules, logger logging.Logger) *Predictor {
	return &Predictor{
		rules:  rules,
		logger: logging.OrNop(logger),
	}
}

// Predict scans all cross-discipline element pairs and returns the clash
// report sorted by element IDs. Walls and other planar architecture are
// excluded: services clash with each other, not with the fabric they mount
// on.
func (p *Predictor) Predict(elements []*model.SpatialElement) []Record {
	byDiscipline := make(map[model.Discipline][]*model.SpatialElement)
	disciplines := make([]model.Discipline, 0)
	for _, el := range elements {
		if el.Kind() == model.KindPlanar {
			continue
		}
		if _, seen := byDiscipline[el.Discipline]; !seen {
			disciplines = append(disciplines, el.Discipline)
		}
		byDiscipline[el.Discipline] = append(byDiscipline[el.Discipline], el)
	}
	sort.Slice(disciplines, func(i, j int) bool { return disciplines[i] < disciplines[j] })

	records := make([]Record, 0)
	for i := 0; i < len(disciplines); i++ {
		for j := i + 1; j < len(disciplines); j++ {
			clearance := p.rules.Clearance(disciplines[i], disciplines[j])
			for _, a := range byDiscipline[disciplines[i]] {
				for _, b := range byDiscipline[disciplines[j]] {
					if rec, clashed := p.checkPair(a, b, clearance); clashed {
						records = append(records, rec)
					}
				}
			}
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].ElementA != records[j].ElementA {
			return records[i].ElementA < records[j].ElementA
		}
		return records[i].ElementB < records[j].ElementB
	})

	p.logger.Info("clash scan complete",
		logging.Int("elements", len(elements)),
		logging.Int("clashes", len(records)))
	return records
}

// checkPair runs the Minkowski-expansion overlap test for one element pair.
// A clash is recorded only when the horizontal expanded extents overlap and,
// if both elevations are assigned, the vertical extents do too.
func (p *Predictor) checkPair(a, b *model.SpatialElement, clearance float64) (Record, bool) {
	// Zero-size extents degrade to points: the expansion then carries the
	// pair clearance alone
	overlapX := (a.Extent.Width+b.Extent.Width)/2 + clearance - math.Abs(a.Anchor.X-b.Anchor.X)
	overlapY := (a.Extent.Depth+b.Extent.Depth)/2 + clearance - math.Abs(a.Anchor.Y-b.Anchor.Y)
	if overlapX <= 0 || overlapY <= 0 {
		return Record{}, false
	}
	horizontal := math.Min(overlapX, overlapY)

	vertical := 0.0
	if a.HasElevation() && b.HasElevation() {
		vertical = (a.Height+b.Height)/2 + clearance - math.Abs(a.ElevationOrZero()-b.ElevationOrZero())
		if vertical <= 0 {
			return Record{}, false
		}
	}

	// Stable record orientation: lower element ID first
	first, second := a, b
	if second.ID < first.ID {
		first, second = second, first
	}
	rec := Record{
		ElementA:          first.ID,
		ElementB:          second.ID,
		DisciplineA:       first.Discipline,
		DisciplineB:       second.Discipline,
		Clearance:         clearance,
		HorizontalOverlap: horizontal,
		VerticalOverlap:   vertical,
		Severity:          severityFor(a, b, horizontal, clearance),
	}
	return rec, true
}

// severityFor tiers a clash by how deep the overlap runs. Penetration past
// the clearance margin means the solids themselves intersect. Pairs
// involving life-safety piping escalate one tier.
func severityFor(a, b *model.SpatialElement, horizontal, clearance float64) model.Severity {
	severity := model.Info
	if horizontal > clearance {
		// Footprints overlap even without the clearance expansion
		severity = model.Warning
	}
	if a.Discipline == model.FireProtection || b.Discipline == model.FireProtection {
		if severity < model.Error {
			severity++
		}
	}
	return severity
}
