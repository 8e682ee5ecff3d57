package clash

import (
	"testing"

	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
	"github.com/red1oon/2DtoBlender-sub002/pkg/standards"
)

func element(id string, d model.Discipline, c model.ElementClass, x, y, w, depth float64) *model.SpatialElement {
	return &model.SpatialElement{
		ID:         id,
		Discipline: d,
		Class:      c,
		Anchor:     model.Point{X: x, Y: y},
		Extent:     model.Extent{Width: w, Depth: depth},
	}
}

// TestPredict_ExpandedOverlap tests that two elements whose footprints only
// meet through the clearance expansion are reported
func TestPredict_ExpandedOverlap(t *testing.T) {
	p := NewPredictor(standards.DefaultClearanceRules(), nil)

	// 0.2 m pipe and 0.4 m duct, centers 0.4 m apart: raw half-width sum is
	// 0.3 < 0.4, but the 0.15 m fire/ventilation clearance expands it to 0.45
	pipe := element("pipe-1", model.FireProtection, model.PipeSegment, 0.0, 0.0, 0.2, 0.2)
	duct := element("duct-1", model.Ventilation, model.DuctSegment, 0.4, 0.0, 0.4, 0.4)

	records := p.Predict([]*model.SpatialElement{pipe, duct})
	if len(records) != 1 {
		t.Fatalf("Expected one clash record, got %d", len(records))
	}

	rec := records[0]
	if rec.ElementA != "duct-1" || rec.ElementB != "pipe-1" {
		t.Errorf("Record not ID-ordered: %s, %s", rec.ElementA, rec.ElementB)
	}
	if rec.Clearance != 0.15 {
		t.Errorf("Expected pair clearance 0.15, got %v", rec.Clearance)
	}
	if !almostEqual(rec.HorizontalOverlap, 0.05) {
		t.Errorf("Expected horizontal overlap 0.05, got %v", rec.HorizontalOverlap)
	}
	// Only the expansion overlaps, not the solids, but fire protection
	// escalates one tier above Info
	if rec.Severity != model.Warning {
		t.Errorf("Expected Warning severity, got %v", rec.Severity)
	}
}

// TestPredict_DisjointPairClean tests that separated elements produce no record
func TestPredict_DisjointPairClean(t *testing.T) {
	p := NewPredictor(standards.DefaultClearanceRules(), nil)

	pipe := element("pipe-1", model.FireProtection, model.PipeSegment, 0.0, 0.0, 0.2, 0.2)
	duct := element("duct-1", model.Ventilation, model.DuctSegment, 1.0, 0.0, 0.4, 0.4)

	if records := p.Predict([]*model.SpatialElement{pipe, duct}); len(records) != 0 {
		t.Errorf("Expected no clashes, got %v", records)
	}
}

// TestPredict_SameDisciplineIgnored tests that intra-discipline pairs are
// not scanned
func TestPredict_SameDisciplineIgnored(t *testing.T) {
	p := NewPredictor(standards.DefaultClearanceRules(), nil)

	a := element("a", model.Plumbing, model.PipeSegment, 0.0, 0.0, 0.3, 0.3)
	b := element("b", model.Plumbing, model.PipeSegment, 0.1, 0.0, 0.3, 0.3)

	if records := p.Predict([]*model.SpatialElement{a, b}); len(records) != 0 {
		t.Errorf("Same-discipline pair reported: %v", records)
	}
}

// TestPredict_PlanarExcluded tests that walls never enter the scan
func TestPredict_PlanarExcluded(t *testing.T) {
	p := NewPredictor(standards.DefaultClearanceRules(), nil)

	wall := element("wall-1", model.Architecture, model.Wall, 0.0, 0.0, 10.0, 0.2)
	pipe := element("pipe-1", model.Plumbing, model.PipeSegment, 0.0, 0.0, 0.1, 0.1)

	if records := p.Predict([]*model.SpatialElement{wall, pipe}); len(records) != 0 {
		t.Errorf("Planar element produced clashes: %v", records)
	}
}

// TestPredict_VerticalSeparationClears tests that assigned elevations far
// enough apart suppress a horizontal overlap
func TestPredict_VerticalSeparationClears(t *testing.T) {
	p := NewPredictor(standards.DefaultClearanceRules(), nil)

	pipe := element("pipe-1", model.FireProtection, model.PipeSegment, 0.0, 0.0, 0.2, 0.2)
	pipe.Height = 0.1
	pipe.SetElevation(3.4)
	duct := element("duct-1", model.Ventilation, model.DuctSegment, 0.0, 0.0, 0.4, 0.4)
	duct.Height = 0.3
	duct.SetElevation(2.9)

	// Same plan position but 0.5 m apart vertically against a 0.35 m
	// expanded requirement
	if records := p.Predict([]*model.SpatialElement{pipe, duct}); len(records) != 0 {
		t.Errorf("Vertically separated pair reported: %v", records)
	}

	// Close the vertical gap and the clash appears with a vertical overlap
	duct.SetElevation(3.3)
	records := p.Predict([]*model.SpatialElement{pipe, duct})
	if len(records) != 1 {
		t.Fatalf("Expected one clash after closing the gap, got %d", len(records))
	}
	if !almostEqual(records[0].VerticalOverlap, 0.25) {
		t.Errorf("Expected vertical overlap 0.25, got %v", records[0].VerticalOverlap)
	}
}

// TestPredict_PointExtentDegrades tests that zero-size extents still clash
// within the pair clearance radius
func TestPredict_PointExtentDegrades(t *testing.T) {
	p := NewPredictor(standards.DefaultClearanceRules(), nil)

	head := element("head-1", model.FireProtection, model.TerminalDevice, 0.0, 0.0, 0, 0)
	tray := element("tray-1", model.Power, model.CableTray, 0.05, 0.0, 0, 0)

	// Fire/power clearance 0.1 exceeds the 0.05 separation
	records := p.Predict([]*model.SpatialElement{head, tray})
	if len(records) != 1 {
		t.Fatalf("Expected point-extent clash, got %d records", len(records))
	}
}

// TestPredict_SeverityTiers tests the overlap depth tiering and the
// life-safety escalation
func TestPredict_SeverityTiers(t *testing.T) {
	p := NewPredictor(standards.DefaultClearanceRules(), nil)

	// Power/ventilation pair overlapping only through the expansion: Info
	tray := element("tray-1", model.Power, model.CableTray, 0.0, 0.0, 0.2, 0.2)
	duct := element("duct-1", model.Ventilation, model.DuctSegment, 0.35, 0.0, 0.4, 0.4)
	records := p.Predict([]*model.SpatialElement{tray, duct})
	if len(records) != 1 || records[0].Severity != model.Info {
		t.Fatalf("Expected single Info clash, got %v", records)
	}

	// Solid footprints intersecting: Warning
	duct.Anchor.X = 0.2
	records = p.Predict([]*model.SpatialElement{tray, duct})
	if len(records) != 1 || records[0].Severity != model.Warning {
		t.Fatalf("Expected Warning for solid overlap, got %v", records)
	}

	// Fire protection in a solid overlap escalates to Error
	main := element("main-1", model.FireProtection, model.PipeSegment, 0.15, 0.0, 0.2, 0.2)
	records = p.Predict([]*model.SpatialElement{tray, main})
	if len(records) != 1 || records[0].Severity != model.Error {
		t.Fatalf("Expected Error for fire-protection solid overlap, got %v", records)
	}
}

// TestPredict_Idempotent tests that repeated scans return identical reports
func TestPredict_Idempotent(t *testing.T) {
	p := NewPredictor(standards.DefaultClearanceRules(), nil)
	elements := []*model.SpatialElement{
		element("a", model.FireProtection, model.PipeSegment, 0.0, 0.0, 0.2, 0.2),
		element("b", model.Ventilation, model.DuctSegment, 0.3, 0.0, 0.4, 0.4),
		element("c", model.Power, model.CableTray, 0.1, 0.1, 0.2, 0.2),
	}

	first := p.Predict(elements)
	second := p.Predict(elements)
	if len(first) != len(second) {
		t.Fatalf("Scan not stable: %d vs %d records", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Record %d differs between scans: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
