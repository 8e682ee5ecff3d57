package model

import (
	"math"
)

// Point represents a 2D coordinate in plan view (meters)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance between two points
func (p Point) DistanceTo(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Extent represents an axis-aligned horizontal bounding extent centered on an anchor
type Extent struct {
	Width float64 `json:"width"` // Extent along X
	Depth float64 `json:"depth"` // Extent along Y
}

// IsPoint reports whether the extent has zero size and should be treated as a point
func (e Extent) IsPoint() bool {
	return e.Width <= 0 && e.Depth <= 0
}

// Position represents a 3D coordinate for generated devices and network nodes
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Plan returns the 2D projection of the position
func (p Position) Plan() Point {
	return Point{X: p.X, Y: p.Y}
}
