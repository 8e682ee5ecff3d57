package routing

import (
	"math"

	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
)

// vertexQuantum is the snap distance for corridor endpoints. Endpoints
// closer than this are the same graph vertex.
const vertexQuantum = 1e-3

// Corridor is one walkable centerline segment of the circulation graph
type Corridor struct {
	ID    string      `json:"id"`
	Start model.Point `json:"start"`
	End   model.Point `json:"end"`
	// SupplyID optionally tags a supply point known to sit near this corridor
	SupplyID string `json:"supply_id,omitempty"`
}

// Length returns the corridor centerline length
func (c Corridor) Length() float64 {
	return c.Start.DistanceTo(c.End)
}

// Project returns the closest point to p on the corridor segment, the
// distance from p to that point, and the parameter t in [0,1] along the
// segment
func (c Corridor) Project(p model.Point) (model.Point, float64, float64) {
	dx := c.End.X - c.Start.X
	dy := c.End.Y - c.Start.Y
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		// Degenerate corridor collapses to a point
		return c.Start, p.DistanceTo(c.Start), 0
	}

	t := ((p.X-c.Start.X)*dx + (p.Y-c.Start.Y)*dy) / lengthSq
	t = math.Max(0, math.Min(1, t))
	closest := model.Point{X: c.Start.X + t*dx, Y: c.Start.Y + t*dy}
	return closest, p.DistanceTo(closest), t
}

// SupplyPoint anchors one distribution zone
type SupplyPoint struct {
	ID       string      `json:"id"`
	Position model.Point `json:"position"`
}

// Graph is a circulation graph of corridor centerlines. Connectivity is
// derived from shared endpoints, snapped to vertexQuantum.
type Graph struct {
	Corridors []Corridor `json:"corridors"`
}

// vertexKey is a quantized endpoint coordinate
type vertexKey struct {
	x, y int64
}

// keyFor quantizes a point into a vertex key
func keyFor(p model.Point) vertexKey {
	return vertexKey{
		x: int64(math.Round(p.X / vertexQuantum)),
		y: int64(math.Round(p.Y / vertexQuantum)),
	}
}

// halfEdge is one direction of a corridor in the adjacency index
type halfEdge struct {
	to       vertexKey
	corridor int // Index into Graph.Corridors
	length   float64
}

// adjacency indexes the graph by quantized endpoint
type adjacency struct {
	vertices map[vertexKey]model.Point
	edges    map[vertexKey][]halfEdge
}

// buildAdjacency derives the endpoint connectivity of the graph
func (g *Graph) buildAdjacency() *adjacency {
	adj := &adjacency{
		vertices: make(map[vertexKey]model.Point),
		edges:    make(map[vertexKey][]halfEdge),
	}
	for i, c := range g.Corridors {
		startKey, endKey := keyFor(c.Start), keyFor(c.End)
		adj.vertices[startKey] = c.Start
		adj.vertices[endKey] = c.End
		length := c.Length()
		adj.edges[startKey] = append(adj.edges[startKey], halfEdge{to: endKey, corridor: i, length: length})
		adj.edges[endKey] = append(adj.edges[endKey], halfEdge{to: startKey, corridor: i, length: length})
	}
	return adj
}

// nearestVertex returns the vertex closest to p and its distance. The second
// return is false for an empty graph.
func (a *adjacency) nearestVertex(p model.Point) (vertexKey, float64, bool) {
	best := vertexKey{}
	bestDist := math.Inf(1)
	found := false
	for key, pos := range a.vertices {
		d := p.DistanceTo(pos)
		if d < bestDist || (d == bestDist && found && lessKey(key, best)) {
			best, bestDist, found = key, d, true
		}
	}
	return best, bestDist, found
}

// lessKey orders vertex keys deterministically
func lessKey(a, b vertexKey) bool {
	if a.x != b.x {
		return a.x < b.x
	}
	return a.y < b.y
}
