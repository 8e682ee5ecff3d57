package elevation

import (
	"math"
	"testing"

	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
	"github.com/red1oon/2DtoBlender-sub002/pkg/standards"
)

func testAssigner(t *testing.T) *Assigner {
	t.Helper()
	profile := standards.BuildingProfile{CeilingHeight: 3.5, BuildingType: "office"}
	return NewAssigner(standards.DefaultHeightTable(), profile, nil)
}

// TestAssign_CeilingOffset tests nominal assignment from a ceiling-offset rule
func TestAssign_CeilingOffset(t *testing.T) {
	a := testAssigner(t)
	el := &model.SpatialElement{ID: "duct-1", Discipline: model.Ventilation, Class: model.DuctSegment}

	z, diags := a.Assign(el)
	if len(diags) != 0 {
		t.Errorf("Unexpected diagnostics: %v", diags)
	}
	// Nominal 3.5 - 0.6 = 2.9, plus a sub-millimeter tie-break offset
	if z < 2.9 || z >= 2.9+tieBreakSpan {
		t.Errorf("Expected elevation in [2.9, 2.901), got %v", z)
	}
}

// TestAssign_Absolute tests absolute mount rules ignore the ceiling height
func TestAssign_Absolute(t *testing.T) {
	a := testAssigner(t)
	el := &model.SpatialElement{ID: "panel-1", Discipline: model.Power, Class: model.PanelBoard}

	z, _ := a.Assign(el)
	if z < 1.5 || z >= 1.5+tieBreakSpan {
		t.Errorf("Expected elevation in [1.5, 1.501), got %v", z)
	}
}

// TestAssign_UnmappedDefaultsToFloor tests the never-fatal policy for
// unknown (discipline, class) pairs
func TestAssign_UnmappedDefaultsToFloor(t *testing.T) {
	a := testAssigner(t)
	el := &model.SpatialElement{ID: "x-1", Discipline: model.Architecture, Class: model.Equipment}

	z, diags := a.Assign(el)
	if z != 0 {
		t.Errorf("Expected floor-level default, got %v", z)
	}
	if len(diags.OfType(model.UnmappedConfiguration)) != 1 {
		t.Errorf("Expected one unmapped-configuration diagnostic, got %v", diags)
	}
	if len(el.Annotations) == 0 {
		t.Error("Expected an annotation recording the default")
	}
}

// TestAssign_KeepsHigherElevation tests that re-assignment never lowers an
// element already raised by a later stage
func TestAssign_KeepsHigherElevation(t *testing.T) {
	a := testAssigner(t)
	el := &model.SpatialElement{ID: "pipe-1", Discipline: model.FireProtection, Class: model.PipeSegment}
	el.SetElevation(3.6) // Above the nominal 3.4

	z, _ := a.Assign(el)
	if z != 3.6 {
		t.Errorf("Expected higher elevation kept, got %v", z)
	}
}

// TestAssign_Deterministic tests that the tie-break offset reproduces
// exactly across runs and separates distinct IDs
func TestAssign_Deterministic(t *testing.T) {
	a := testAssigner(t)

	first := &model.SpatialElement{ID: "pipe-a", Discipline: model.Plumbing, Class: model.PipeSegment}
	again := &model.SpatialElement{ID: "pipe-a", Discipline: model.Plumbing, Class: model.PipeSegment}
	other := &model.SpatialElement{ID: "pipe-b", Discipline: model.Plumbing, Class: model.PipeSegment}

	z1, _ := a.Assign(first)
	z2, _ := a.Assign(again)
	z3, _ := a.Assign(other)

	if z1 != z2 {
		t.Errorf("Same ID produced different elevations: %v vs %v", z1, z2)
	}
	if z1 == z3 {
		t.Error("Distinct IDs collided at the same elevation")
	}
	if math.Abs(z1-z3) >= tieBreakSpan {
		t.Errorf("Tie-break spread %v exceeds span %v", math.Abs(z1-z3), tieBreakSpan)
	}
}

// TestAssignAll_CollectsDiagnostics tests batch assignment over a mixed set
func TestAssignAll_CollectsDiagnostics(t *testing.T) {
	a := testAssigner(t)
	elements := []*model.SpatialElement{
		{ID: "p1", Discipline: model.Plumbing, Class: model.PipeSegment},
		{ID: "d1", Discipline: model.Ventilation, Class: model.DuctSegment},
		{ID: "u1", Discipline: model.Structure, Class: model.Equipment}, // Unmapped
	}

	diags := a.AssignAll(elements)
	for _, el := range elements {
		if !el.HasElevation() {
			t.Errorf("Element %s left without elevation", el.ID)
		}
	}
	if len(diags.OfType(model.UnmappedConfiguration)) != 1 {
		t.Errorf("Expected one unmapped diagnostic, got %d", len(diags))
	}
}
