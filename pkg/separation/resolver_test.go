package separation

import (
	"testing"

	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
)

func elementAt(id string, d model.Discipline, c model.ElementClass, x, y, height, z float64) *model.SpatialElement {
	el := &model.SpatialElement{
		ID:         id,
		Discipline: d,
		Class:      c,
		Anchor:     model.Point{X: x, Y: y},
		Height:     height,
	}
	el.SetElevation(z)
	return el
}

// TestBuckets_GroupsByCell tests horizontal proximity bucketing
func TestBuckets_GroupsByCell(t *testing.T) {
	r := NewResolver(0.15, nil)
	elements := []*model.SpatialElement{
		elementAt("a", model.Plumbing, model.PipeSegment, 0.2, 0.2, 0.1, 2.6),
		elementAt("b", model.Ventilation, model.DuctSegment, 0.8, 0.8, 0.3, 2.9),
		elementAt("c", model.Power, model.CableTray, 5.0, 5.0, 0.1, 3.15), // Alone in its cell
	}

	buckets := r.Buckets(elements)
	if len(buckets) != 1 {
		t.Fatalf("Expected one multi-element bucket, got %d", len(buckets))
	}
	if len(buckets[0]) != 2 {
		t.Errorf("Expected bucket of 2, got %d", len(buckets[0]))
	}
	// Sorted elevation ascending
	if buckets[0][0].ID != "a" || buckets[0][1].ID != "b" {
		t.Errorf("Bucket not sorted by elevation: %s, %s", buckets[0][0].ID, buckets[0][1].ID)
	}
}

// TestBuckets_SkipsUnassigned tests that elements without elevations are
// excluded from resolution
func TestBuckets_SkipsUnassigned(t *testing.T) {
	r := NewResolver(0.15, nil)
	assigned := elementAt("a", model.Plumbing, model.PipeSegment, 0.5, 0.5, 0.1, 2.6)
	unassigned := &model.SpatialElement{ID: "b", Anchor: model.Point{X: 0.5, Y: 0.5}}

	buckets := r.Buckets([]*model.SpatialElement{assigned, unassigned})
	if len(buckets) != 0 {
		t.Errorf("Expected no buckets with one assigned element, got %d", len(buckets))
	}
}

// TestResolveBucket_SufficientGapUntouched tests that a stack already
// satisfying clearance is left alone. A 0.3 m duct at 2.9 and a 0.1 m pipe
// at 3.4 leave a 0.3 m surface gap, well over the 0.15 m requirement.
func TestResolveBucket_SufficientGapUntouched(t *testing.T) {
	r := NewResolver(0.15, nil)
	duct := elementAt("duct-1", model.Ventilation, model.DuctSegment, 3.0, 3.0, 0.3, 2.9)
	pipe := elementAt("pipe-1", model.FireProtection, model.PipeSegment, 3.0, 3.0, 0.1, 3.4)

	outcome := r.ResolveBucket([]*model.SpatialElement{duct, pipe})
	if len(outcome.Nudges) != 0 {
		t.Errorf("Expected no nudges, got %v", outcome.Nudges)
	}
	if pipe.ElevationOrZero() != 3.4 || duct.ElevationOrZero() != 2.9 {
		t.Error("Elevations changed despite sufficient clearance")
	}
}

// TestResolveBucket_RaisesUpperElement tests the upward nudge: the upper
// element rises until the extent gap meets the clearance, the lower never moves
func TestResolveBucket_RaisesUpperElement(t *testing.T) {
	r := NewResolver(0.15, nil)
	duct := elementAt("duct-1", model.Ventilation, model.DuctSegment, 3.0, 3.0, 0.3, 3.2)
	pipe := elementAt("pipe-1", model.FireProtection, model.PipeSegment, 3.0, 3.0, 0.1, 3.4)

	outcome := r.ResolveBucket([]*model.SpatialElement{duct, pipe})
	if len(outcome.Nudges) != 1 {
		t.Fatalf("Expected one nudge, got %v", outcome.Nudges)
	}
	// Needed center gap 0.15+0.05+0.15 = 0.35, had 0.2, shortfall 0.15
	if !almostEqual(outcome.Nudges[0], 0.15) {
		t.Errorf("Expected nudge 0.15, got %v", outcome.Nudges[0])
	}
	if !almostEqual(pipe.ElevationOrZero(), 3.55) {
		t.Errorf("Expected pipe at 3.55, got %v", pipe.ElevationOrZero())
	}
	if duct.ElevationOrZero() != 3.2 {
		t.Errorf("Lower element moved to %v", duct.ElevationOrZero())
	}
	if gap := pipe.Bottom() - duct.Top(); gap < r.MinClearance-1e-9 {
		t.Errorf("Surface gap %v below clearance %v", gap, r.MinClearance)
	}
	if len(pipe.Annotations) == 0 {
		t.Error("Expected annotation on raised element")
	}
}

// TestResolveBucket_CascadePropagates tests that a three-element stack
// resolves in one bottom-to-top sweep without re-violating earlier pairs
func TestResolveBucket_CascadePropagates(t *testing.T) {
	r := NewResolver(0.1, nil)
	a := elementAt("a", model.Plumbing, model.PipeSegment, 1.0, 1.0, 0.2, 2.0)
	b := elementAt("b", model.Ventilation, model.DuctSegment, 1.0, 1.0, 0.4, 2.1)
	c := elementAt("c", model.Power, model.CableTray, 1.0, 1.0, 0.1, 2.2)

	r.ResolveBucket([]*model.SpatialElement{a, b, c})

	if gap := b.Bottom() - a.Top(); gap < r.MinClearance-1e-9 {
		t.Errorf("a/b gap %v below clearance", gap)
	}
	if gap := c.Bottom() - b.Top(); gap < r.MinClearance-1e-9 {
		t.Errorf("b/c gap %v below clearance", gap)
	}
	if a.ElevationOrZero() != 2.0 {
		t.Error("Bottom element must never move")
	}
}

// TestResolveBucket_CascadeCeilingFlagged tests the manual-review flag for
// large cumulative nudges
func TestResolveBucket_CascadeCeilingFlagged(t *testing.T) {
	r := NewResolver(0.2, nil)
	r.CascadeCeiling = 0.5

	lower := elementAt("lower", model.Ventilation, model.DuctSegment, 1.0, 1.0, 1.2, 2.0)
	upper := elementAt("upper", model.FireProtection, model.PipeSegment, 1.0, 1.0, 0.1, 2.1)

	outcome := r.ResolveBucket([]*model.SpatialElement{lower, upper})
	// Needed 0.6+0.05+0.2 = 0.85, had 0.1, nudge 0.75 above the 0.5 ceiling
	flags := outcome.Diagnostics.OfType(model.VerticalCascade)
	if len(flags) != 1 {
		t.Fatalf("Expected one cascade flag, got %v", outcome.Diagnostics)
	}
	if flags[0].ElementID != "upper" {
		t.Errorf("Flag attached to %s, want upper", flags[0].ElementID)
	}
}

// TestResolve_Idempotent tests that a second pass over resolved elements
// applies no further nudges
func TestResolve_Idempotent(t *testing.T) {
	r := NewResolver(0.15, nil)
	elements := []*model.SpatialElement{
		elementAt("a", model.Plumbing, model.PipeSegment, 1.0, 1.0, 0.2, 2.6),
		elementAt("b", model.Ventilation, model.DuctSegment, 1.0, 1.0, 0.3, 2.7),
		elementAt("c", model.FireProtection, model.PipeSegment, 1.0, 1.0, 0.1, 2.8),
	}

	first := r.Resolve(elements)
	if len(first.Nudges) == 0 {
		t.Fatal("Expected nudges on the first pass")
	}

	second := r.Resolve(elements)
	if len(second.Nudges) != 0 {
		t.Errorf("Second pass applied nudges: %v", second.Nudges)
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
