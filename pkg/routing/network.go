package routing

import (
	"fmt"

	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
)

// NodeRole classifies a distribution network node
type NodeRole int

const (
	RoleSupply NodeRole = iota
	RoleJunction
	RoleDevice
)

func (r NodeRole) String() string {
	switch r {
	case RoleSupply:
		return "supply"
	case RoleJunction:
		return "junction"
	case RoleDevice:
		return "device"
	default:
		return "unknown"
	}
}

// SegmentKind classifies a distribution segment
type SegmentKind int

const (
	// Trunk segments run along corridor centerlines toward the supply
	Trunk SegmentKind = iota
	// Branch segments drop from a corridor junction to one device
	Branch
	// Standalone segments connect devices that could not be projected onto
	// any corridor within the search radius. Flagged for review.
	Standalone
)

func (k SegmentKind) String() string {
	switch k {
	case Trunk:
		return "trunk"
	case Branch:
		return "branch"
	case Standalone:
		return "standalone"
	default:
		return "unknown"
	}
}

// SizeClass is a nominal segment diameter in millimeters
type SizeClass int

// Nominal pipe size classes, smallest to largest
const (
	Size25  SizeClass = 25
	Size32  SizeClass = 32
	Size40  SizeClass = 40
	Size50  SizeClass = 50
	Size65  SizeClass = 65
	Size80  SizeClass = 80
	Size100 SizeClass = 100
)

// SizeFor returns the smallest size class that accommodates the given
// downstream device count. Counts are cumulative toward the root, so sizes
// never shrink walking rootward.
func SizeFor(devices int) SizeClass {
	switch {
	case devices <= 1:
		return Size25
	case devices <= 3:
		return Size32
	case devices <= 5:
		return Size40
	case devices <= 10:
		return Size50
	case devices <= 30:
		return Size65
	case devices <= 60:
		return Size80
	default:
		return Size100
	}
}

// Node is one distribution network node
type Node struct {
	ID       string         `json:"id"`
	Role     NodeRole       `json:"role"`
	Position model.Position `json:"position"`
}

// Segment is one distribution network edge, directed from the supply side
// (From) toward the device side (To)
type Segment struct {
	From       string      `json:"from"`
	To         string      `json:"to"`
	Length     float64     `json:"length"`
	Kind       SegmentKind `json:"kind"`
	Size       SizeClass   `json:"size"`
	Downstream int         `json:"downstream"` // Devices served at or below this segment
}

// Tree is the distribution tree of one supply zone
type Tree struct {
	ZoneID      string    `json:"zone_id"`
	SupplyID    string    `json:"supply_id"`
	Nodes       []Node    `json:"nodes"`
	Segments    []Segment `json:"segments"`
	DeviceCount int       `json:"device_count"`
}

// Network is a forest of per-zone distribution trees. It is built once per
// routing run and not mutated afterward.
type Network struct {
	Trees        []Tree            `json:"trees"`
	Diagnostics  model.Diagnostics `json:"-"`
	ZoneFailures map[string]error  `json:"-"`
}

// ZoneStats summarizes one zone tree for reporting: device count, built
// length by segment kind, and the size-class histogram
type ZoneStats struct {
	ZoneID           string            `json:"zone_id"`
	DeviceCount      int               `json:"device_count"`
	TrunkLength      float64           `json:"trunk_length"`
	BranchLength     float64           `json:"branch_length"`
	StandaloneLength float64           `json:"standalone_length"`
	SegmentsByKind   map[string]int    `json:"segments_by_kind"`
	SizeCounts       map[SizeClass]int `json:"size_counts"`
}

// TotalLength returns the built length across all segment kinds
func (s ZoneStats) TotalLength() float64 {
	return s.TrunkLength + s.BranchLength + s.StandaloneLength
}

// Stats aggregates the tree's segments into per-zone statistics
func (t *Tree) Stats() ZoneStats {
	stats := ZoneStats{
		ZoneID:         t.ZoneID,
		DeviceCount:    t.DeviceCount,
		SegmentsByKind: make(map[string]int),
		SizeCounts:     make(map[SizeClass]int),
	}
	for _, seg := range t.Segments {
		stats.SegmentsByKind[seg.Kind.String()]++
		stats.SizeCounts[seg.Size]++
		switch seg.Kind {
		case Trunk:
			stats.TrunkLength += seg.Length
		case Branch:
			stats.BranchLength += seg.Length
		case Standalone:
			stats.StandaloneLength += seg.Length
		}
	}
	return stats
}

// Stats summarizes every routed zone, in tree order
func (n *Network) Stats() []ZoneStats {
	stats := make([]ZoneStats, 0, len(n.Trees))
	for i := range n.Trees {
		stats = append(stats, n.Trees[i].Stats())
	}
	return stats
}

// Validate checks the tree invariant: exactly one root, edge count equals
// node count minus one, and no cycle (union-find over segments).
func (t *Tree) Validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("zone %s: tree has no nodes", t.ZoneID)
	}
	if len(t.Segments) != len(t.Nodes)-1 {
		return fmt.Errorf("zone %s: %d segments for %d nodes, want %d",
			t.ZoneID, len(t.Segments), len(t.Nodes), len(t.Nodes)-1)
	}

	uf := newUnionFind()
	for _, n := range t.Nodes {
		uf.add(n.ID)
	}
	for _, s := range t.Segments {
		if !uf.union(s.From, s.To) {
			return fmt.Errorf("zone %s: cycle through segment %s -> %s", t.ZoneID, s.From, s.To)
		}
	}
	return nil
}

// unionFind is a path-compressed disjoint set over node IDs
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) add(id string) {
	if _, ok := u.parent[id]; !ok {
		u.parent[id] = id
	}
}

func (u *unionFind) find(id string) string {
	root := id
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[id] != root {
		u.parent[id], id = root, u.parent[id]
	}
	return root
}

// union merges the sets of a and b, returning false if they were already
// connected (a cycle)
func (u *unionFind) union(a, b string) bool {
	u.add(a)
	u.add(b)
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	u.parent[ra] = rb
	return true
}
