// Package placement generates code-compliant device grids inside a region
// when no source layout exists. The base algorithm covers axis-aligned
// rectangular regions; polygonal regions are a known extension point.
package placement

import (
	"fmt"
	"math"

	"github.com/red1oon/2DtoBlender-sub002/pkg/logging"
	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
	"github.com/red1oon/2DtoBlender-sub002/pkg/standards"
)

// DefaultMaxIterations bounds the spacing adjustment retries per axis
const DefaultMaxIterations = 8

// Region is an axis-aligned rectangular placement boundary
type Region struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns the region extent along X
func (r Region) Width() float64 { return r.MaxX - r.MinX }

// Height returns the region extent along Y
func (r Region) Height() float64 { return r.MaxY - r.MinY }

// Area returns the region floor area
func (r Region) Area() float64 { return r.Width() * r.Height() }

// GridResult is the outcome of one grid generation run. Compliance
// violations attach here rather than to individual positions, so a
// best-effort grid is always returned alongside its diagnostics.
type GridResult struct {
	Positions       []model.Position  `json:"positions"`
	Rows            int               `json:"rows"`
	Cols            int               `json:"cols"`
	SpacingX        float64           `json:"spacing_x"`
	SpacingY        float64           `json:"spacing_y"`
	DiagonalSpacing float64           `json:"diagonal_spacing"`
	CoveragePerUnit float64           `json:"coverage_per_unit"` // Region area / device count
	Diagnostics     model.Diagnostics `json:"-"`
}

// Compliant reports whether the grid satisfied the spacing, coverage and
// clearance constraints. Info-tier notes such as the diagonal self-check do
// not break compliance; the compliance band is axial.
func (g *GridResult) Compliant() bool {
	if g.Diagnostics.HasErrors() {
		return false
	}
	for _, d := range g.Diagnostics.OfType(model.ComplianceViolation) {
		if d.Severity >= model.Warning {
			return false
		}
	}
	return true
}

// Generator computes regular device grids under spacing, coverage and wall
// clearance constraints
type Generator struct {
	MaxIterations int // Spacing retry bound, defaults to DefaultMaxIterations
	logger        logging.Logger
}

// NewGenerator creates a generator. A nil logger disables logging.
func NewGenerator(logger logging.Logger) *Generator {
	return &Generator{
		MaxIterations: DefaultMaxIterations,
		logger:        logging.OrNop(logger),
	}
}

// Generate computes the smallest grid whose per-device coverage stays within
// the standard's maximum while both axis spacings stay inside
// [min_spacing, max_spacing]. The grid is inset from every boundary edge by
// the wall clearance, and devices are placed at mountHeight.
//
// If the constraints cannot all be met within the iteration bound, the best
// achievable grid is returned with a compliance-violation diagnostic instead
// of failing outright.
func (g *Generator) Generate(region Region, std standards.PlacementStandard, wallClearance, mountHeight float64) (*GridResult, error) {
	if region.Width() <= 0 || region.Height() <= 0 {
		return nil, fmt.Errorf("degenerate region %.3f x %.3f", region.Width(), region.Height())
	}

	// The standard's own wall clearance is a floor for the caller's value
	inset := math.Max(wallClearance, std.MinWallClearance)

	result := &GridResult{Diagnostics: make(model.Diagnostics, 0)}

	usableW := region.Width() - 2*inset
	usableH := region.Height() - 2*inset
	if usableW <= 0 || usableH <= 0 {
		// Region thinner than twice the clearance: one centered device is
		// the only placement, reported as non-compliant
		result.Rows, result.Cols = 1, 1
		result.Positions = []model.Position{{
			X: region.MinX + region.Width()/2,
			Y: region.MinY + region.Height()/2,
			Z: mountHeight,
		}}
		result.CoveragePerUnit = region.Area()
		result.Diagnostics.Add(model.ComplianceViolation, model.Warning, "",
			"region %.3f x %.3f cannot honor wall clearance %.3f, single centered device emitted",
			region.Width(), region.Height(), inset)
		return result, nil
	}

	maxIter := g.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	cols, spacingX := g.axisCount(usableW, std, maxIter, result, "x")
	rows, spacingY := g.axisCount(usableH, std, maxIter, result, "y")

	// Densify until the per-device coverage meets the code maximum, growing
	// the axis with the larger spacing so the grid stays near-square
	for iter := 0; iter < maxIter && region.Area()/float64(rows*cols) > std.MaxCoverageArea; iter++ {
		if spacingX >= spacingY {
			cols++
			spacingX = axisSpacing(usableW, cols)
		} else {
			rows++
			spacingY = axisSpacing(usableH, rows)
		}
	}
	if region.Area()/float64(rows*cols) > std.MaxCoverageArea {
		result.Diagnostics.Add(model.ComplianceViolation, model.Warning, "",
			"coverage %.3f m² per device exceeds maximum %.3f m² after %d iterations",
			region.Area()/float64(rows*cols), std.MaxCoverageArea, maxIter)
	}
	if spacingX < std.MinSpacing || spacingY < std.MinSpacing {
		result.Diagnostics.Add(model.ComplianceViolation, model.Warning, "",
			"axial spacing %.3f/%.3f fell below minimum %.3f while densifying for coverage",
			spacingX, spacingY, std.MinSpacing)
	}

	result.Rows, result.Cols = rows, cols
	result.SpacingX, result.SpacingY = spacingX, spacingY
	result.CoveragePerUnit = region.Area() / float64(rows*cols)
	result.Positions = gridPositions(region, inset, rows, cols, spacingX, spacingY, mountHeight)

	// Self-validation: diagonal neighbor distance exceeds axial spacing, so
	// an axial-only check under-counts non-compliance. Surfaced here as an
	// informational note, not left to the caller; compliance stays axial.
	result.DiagonalSpacing = math.Hypot(spacingX, spacingY)
	if rows > 1 && cols > 1 && result.DiagonalSpacing > std.MaxSpacing {
		result.Diagnostics.Add(model.ComplianceViolation, model.Info, "",
			"diagonal neighbor distance %.3f exceeds axial maximum %.3f",
			result.DiagonalSpacing, std.MaxSpacing)
	}

	g.logger.Info("grid generated",
		logging.Int("rows", rows),
		logging.Int("cols", cols),
		logging.Float64("coverage", result.CoveragePerUnit),
		logging.Bool("compliant", result.Compliant()))
	return result, nil
}

// axisCount picks the device count along one axis: start from the optimal
// spacing, then adjust the count until the recomputed spacing lands inside
// [min_spacing, max_spacing], bounded by maxIter.
func (g *Generator) axisCount(usable float64, std standards.PlacementStandard, maxIter int, result *GridResult, axis string) (int, float64) {
	count := int(math.Ceil(usable / std.OptimalSpacing))
	if count < 1 {
		count = 1
	}

	spacing := axisSpacing(usable, count)
	for iter := 0; iter < maxIter; iter++ {
		if spacing > std.MaxSpacing {
			count++
		} else if spacing < std.MinSpacing && count > 1 {
			count--
		} else {
			return count, spacing
		}
		spacing = axisSpacing(usable, count)
	}

	result.Diagnostics.Add(model.ComplianceViolation, model.Warning, "",
		"%s spacing %.3f outside [%.3f, %.3f] after %d iterations, best effort emitted",
		axis, spacing, std.MinSpacing, std.MaxSpacing, maxIter)
	return count, spacing
}

// axisSpacing returns the device pitch along one axis. A single device uses
// center-of-cell spacing: the usable dimension itself.
func axisSpacing(usable float64, count int) float64 {
	if count <= 1 {
		return usable
	}
	return usable / float64(count-1)
}

// gridPositions lays out the rows x cols grid inset from the region boundary
func gridPositions(region Region, inset float64, rows, cols int, spacingX, spacingY, z float64) []model.Position {
	positions := make([]model.Position, 0, rows*cols)
	originX := region.MinX + inset
	originY := region.MinY + inset
	if cols == 1 {
		originX = region.MinX + region.Width()/2
	}
	if rows == 1 {
		originY = region.MinY + region.Height()/2
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			positions = append(positions, model.Position{
				X: originX + float64(c)*spacingX,
				Y: originY + float64(r)*spacingY,
				Z: z,
			})
		}
	}
	return positions
}
