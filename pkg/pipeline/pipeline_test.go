package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
	"github.com/red1oon/2DtoBlender-sub002/pkg/placement"
	"github.com/red1oon/2DtoBlender-sub002/pkg/routing"
	"github.com/red1oon/2DtoBlender-sub002/pkg/standards"
)

func officePipeline(t *testing.T) *Pipeline {
	t.Helper()
	profile := standards.BuildingProfile{CeilingHeight: 3.5, BuildingType: "office"}
	p, err := New(DefaultConfig(), profile, nil, nil)
	require.NoError(t, err)
	return p
}

// floorPlan builds a small mixed-discipline element set with three services
// stacked near the same plan position
func floorPlan() []*model.SpatialElement {
	return []*model.SpatialElement{
		{ID: "chw-1", Discipline: model.Plumbing, Class: model.PipeSegment,
			Anchor: model.Point{X: 5.2, Y: 5.2}, Extent: model.Extent{Width: 0.2, Depth: 0.2}, Height: 0.2},
		{ID: "duct-1", Discipline: model.Ventilation, Class: model.DuctSegment,
			Anchor: model.Point{X: 5.4, Y: 5.4}, Extent: model.Extent{Width: 0.6, Depth: 0.6}, Height: 0.4},
		{ID: "tray-1", Discipline: model.Power, Class: model.CableTray,
			Anchor: model.Point{X: 5.3, Y: 5.1}, Extent: model.Extent{Width: 0.3, Depth: 0.3}, Height: 0.1},
		{ID: "main-1", Discipline: model.FireProtection, Class: model.PipeSegment,
			Anchor: model.Point{X: 5.1, Y: 5.3}, Extent: model.Extent{Width: 0.1, Depth: 0.1}, Height: 0.1},
		{ID: "wall-1", Discipline: model.Architecture, Class: model.Wall,
			Anchor: model.Point{X: 5.0, Y: 5.0}, Extent: model.Extent{Width: 8.0, Depth: 0.2}, Height: 3.5},
	}
}

// TestCoordinate_FullRun tests the three coordination stages end to end
func TestCoordinate_FullRun(t *testing.T) {
	p := officePipeline(t)
	elements := floorPlan()

	result, err := p.Coordinate(elements)
	require.NoError(t, err)

	// Every element exits with an elevation
	for _, el := range result.Elements {
		assert.True(t, el.HasElevation(), "element %s has no elevation", el.ID)
	}

	// The co-located stack must satisfy the configured clearance pairwise
	byID := make(map[string]*model.SpatialElement)
	for _, el := range result.Elements {
		byID[el.ID] = el
	}
	stack := []*model.SpatialElement{byID["chw-1"], byID["duct-1"], byID["tray-1"], byID["main-1"]}
	for i := range stack {
		for j := i + 1; j < len(stack); j++ {
			lower, upper := stack[i], stack[j]
			if lower.ElevationOrZero() > upper.ElevationOrZero() {
				lower, upper = upper, lower
			}
			gap := upper.Bottom() - lower.Top()
			assert.GreaterOrEqual(t, gap, p.Config.MinClearance-1e-6,
				"%s over %s gap %.4f", upper.ID, lower.ID, gap)
		}
	}

	// The wall is never moved by separation and never enters the clash scan
	assert.Equal(t, 0.0, byID["wall-1"].Height-3.5)
	for _, rec := range result.Clashes {
		assert.NotEqual(t, "wall-1", rec.ElementA)
		assert.NotEqual(t, "wall-1", rec.ElementB)
	}
}

// TestCoordinate_Idempotent tests that a second run over coordinated
// elements changes nothing
func TestCoordinate_Idempotent(t *testing.T) {
	p := officePipeline(t)
	elements := floorPlan()

	first, err := p.Coordinate(elements)
	require.NoError(t, err)

	snapshot := make(map[string]float64)
	for _, el := range first.Elements {
		snapshot[el.ID] = el.ElevationOrZero()
	}

	second, err := p.Coordinate(elements)
	require.NoError(t, err)
	for _, el := range second.Elements {
		assert.Equal(t, snapshot[el.ID], el.ElevationOrZero(),
			"element %s moved on re-run", el.ID)
	}
	assert.Equal(t, len(first.Clashes), len(second.Clashes))
}

// TestCoordinate_ParallelMatchesSerial tests that worker fan-out does not
// change the outcome
func TestCoordinate_ParallelMatchesSerial(t *testing.T) {
	profile := standards.BuildingProfile{CeilingHeight: 3.5}

	serial, err := New(DefaultConfig(), profile, nil, nil)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Workers = 4
	parallel, err := New(cfg, profile, nil, nil)
	require.NoError(t, err)

	a, b := floorPlan(), floorPlan()
	resultA, err := serial.Coordinate(a)
	require.NoError(t, err)
	resultB, err := parallel.Coordinate(b)
	require.NoError(t, err)

	for i := range a {
		assert.Equal(t, a[i].ElevationOrZero(), b[i].ElevationOrZero(),
			"element %s differs between serial and parallel runs", a[i].ID)
	}
	assert.Equal(t, len(resultA.Clashes), len(resultB.Clashes))
}

// TestGenerateAndRoute_E2E tests the generation path: grid, materialized
// elements, and a validated distribution network
func TestGenerateAndRoute_E2E(t *testing.T) {
	p := officePipeline(t)

	region := placement.Region{MinX: 0, MinY: 0, MaxX: 20, MaxY: 15}
	graph := &routing.Graph{Corridors: []routing.Corridor{
		{ID: "main", Start: model.Point{X: 0, Y: 7.5}, End: model.Point{X: 20, Y: 7.5}},
	}}
	supplies := []routing.SupplyPoint{{ID: "riser-1", Position: model.Point{X: 0, Y: 7.5}}}

	result, err := p.GenerateAndRoute(region, model.FireProtection, model.TerminalDevice, graph, supplies)
	require.NoError(t, err)

	assert.Len(t, result.Devices, 30, "office floor should carry a 6 x 5 sprinkler grid")
	assert.Len(t, result.Elements, 30)
	require.NotNil(t, result.Network)
	require.Len(t, result.Network.Trees, 1)

	tree := result.Network.Trees[0]
	assert.Equal(t, "riser-1", tree.SupplyID)
	assert.Equal(t, 30, tree.DeviceCount)
	assert.NoError(t, tree.Validate())

	// Generated elements carry the sprinkler mounting elevation and a
	// provenance annotation
	for _, el := range result.Elements {
		require.True(t, el.HasElevation())
		assert.InDelta(t, 3.45, el.ElevationOrZero(), 1e-9)
		assert.NotEmpty(t, el.Annotations)
	}

	// Trunks sit at the fire main elevation below the ceiling
	for _, node := range tree.Nodes {
		if node.Role == routing.RoleJunction {
			assert.InDelta(t, 3.4, node.Position.Z, 1e-9)
		}
	}

	// Per-zone statistics ride along for reporting
	require.Len(t, result.Stats, 1)
	stats := result.Stats[0]
	assert.Equal(t, "riser-1", stats.ZoneID)
	assert.Equal(t, 30, stats.DeviceCount)
	assert.Greater(t, stats.TrunkLength, 0.0)
	assert.Greater(t, stats.BranchLength, 0.0)
	assert.NotEmpty(t, stats.SizeCounts)
}

// TestGenerateLayout_UnmappedFallsBack tests the never-fatal fallback for a
// missing placement standard
func TestGenerateLayout_UnmappedFallsBack(t *testing.T) {
	p := officePipeline(t)
	region := placement.Region{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

	grid, diags, err := p.GenerateLayout(region, model.Structure, model.Equipment)
	require.NoError(t, err)
	assert.NotEmpty(t, grid.Positions)
	assert.NotEmpty(t, diags.OfType(model.UnmappedConfiguration))
}

// TestLoadConfig tests YAML config parsing with defaults for omitted fields
func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader("min_clearance: 0.2\nworkers: 8\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.MinClearance)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, DefaultConfig().CellSize, cfg.CellSize)

	_, err = LoadConfig(strings.NewReader("min_clearance: -1\n"))
	assert.Error(t, err)

	_, err = LoadConfig(strings.NewReader("\t bogus yaml ["))
	assert.Error(t, err)
}
