// Package routing builds hierarchical distribution networks connecting
// generated devices back to supply points along a circulation graph.
// Routing is constrained to the 2D corridor graph with a fixed trunk
// elevation; it is not general 3D pathfinding.
package routing

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/red1oon/2DtoBlender-sub002/pkg/logging"
	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
)

// DefaultSearchRadius is the maximum device-to-corridor projection distance
// in meters before a device degrades to standalone routing
const DefaultSearchRadius = 10.0

var (
	// ErrNoCorridors is returned when the circulation graph is empty
	ErrNoCorridors = errors.New("circulation graph has no corridors")
	// ErrNoSupplies is returned when no supply points are given
	ErrNoSupplies = errors.New("no supply points")
	// ErrZoneUnroutable marks a zone whose corridor subgraph cannot be
	// reached from its supply point. Other zones route independently.
	ErrZoneUnroutable = errors.New("zone unroutable")
	// ErrNoRoutableZones is returned when every zone failed
	ErrNoRoutableZones = errors.New("no routable zones")
)

// Device is one generated device to connect into the network
type Device struct {
	ID       string         `json:"id"`
	Position model.Position `json:"position"`
}

// Router assigns devices to zones and builds one distribution tree per
// supply point
type Router struct {
	SearchRadius   float64 // Projection cutoff, defaults to DefaultSearchRadius
	TrunkElevation float64 // Z coordinate of trunk runs and junctions
	logger         logging.Logger
}

// NewRouter creates a router with the given trunk elevation. A nil logger
// disables logging.
func NewRouter(trunkElevation float64, logger logging.Logger) *Router {
	return &Router{
		SearchRadius:   DefaultSearchRadius,
		TrunkElevation: trunkElevation,
		logger:         logging.OrNop(logger),
	}
}

// treeEdge is one corridor selected into a zone's spanning structure,
// oriented from the supply side (parent) outward
type treeEdge struct {
	corridor     int
	parentVertex vertexKey
	childVertex  vertexKey
}

// projection records where a device meets its assigned corridor
type projection struct {
	device     Device
	point      model.Point
	fromParent float64 // Normalized position along the tree edge, measured from the parent vertex
}

// Route runs the two-phase algorithm: zone assignment over the corridor
// graph, then branch generation and leaf-to-root sizing. Per-zone topology
// failures are isolated in Network.ZoneFailures; the returned error is
// reserved for conditions that sink the whole run.
func (r *Router) Route(devices []Device, graph *Graph, supplies []SupplyPoint) (*Network, error) {
	if len(supplies) == 0 {
		return nil, ErrNoSupplies
	}
	if graph == nil || len(graph.Corridors) == 0 {
		return nil, ErrNoCorridors
	}

	radius := r.SearchRadius
	if radius <= 0 {
		radius = DefaultSearchRadius
	}

	network := &Network{
		Trees:        make([]Tree, 0, len(supplies)),
		Diagnostics:  make(model.Diagnostics, 0),
		ZoneFailures: make(map[string]error),
	}

	// Supplies are processed in ID order so zone assignment ties resolve
	// the same way on every run
	ordered := make([]SupplyPoint, len(supplies))
	copy(ordered, supplies)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	adj := graph.buildAdjacency()
	owner, parent, attach := r.assignZones(ordered, adj, radius, network)

	// Select each zone's spanning structure: the shortest-path parent edges
	edgesByZone := make(map[int][]treeEdge)
	for key, p := range parent {
		zone := owner[key]
		edgesByZone[zone] = append(edgesByZone[zone], treeEdge{
			corridor:     p.corridor,
			parentVertex: p.prev,
			childVertex:  key,
		})
	}
	for zone := range edgesByZone {
		sortTreeEdges(edgesByZone[zone])
	}

	assigned, standalone := r.assignDevices(devices, graph, owner, edgesByZone, radius)

	builder := newTreeBuilder(r.TrunkElevation, adj)
	for idx, supply := range ordered {
		if _, failed := network.ZoneFailures[supply.ID]; failed {
			continue
		}
		tree, err := builder.build(supply, idx, attach[idx], edgesByZone[idx], assigned[idx])
		if err != nil {
			network.ZoneFailures[supply.ID] = err
			network.Diagnostics.AddZone(model.TopologyFailure, model.Error, supply.ID,
				"zone %s: %v", supply.ID, err)
			continue
		}
		network.Trees = append(network.Trees, *tree)
	}

	if len(network.Trees) == 0 {
		return nil, fmt.Errorf("%w: %d zones failed", ErrNoRoutableZones, len(network.ZoneFailures))
	}

	r.connectStandalone(network, standalone)

	for i := range network.Trees {
		sizeTree(&network.Trees[i])
		if err := network.Trees[i].Validate(); err != nil {
			return nil, fmt.Errorf("network invariant violated: %w", err)
		}
	}

	r.logger.Info("routing complete",
		logging.Int("zones", len(network.Trees)),
		logging.Int("devices", len(devices)),
		logging.Int("standalone", len(standalone)),
		logging.Int("failed_zones", len(network.ZoneFailures)))
	return network, nil
}

// parentRef records the shortest-path predecessor of a vertex
type parentRef struct {
	prev     vertexKey
	corridor int
}

// zoneItem is a priority queue entry for the multi-source Dijkstra
type zoneItem struct {
	dist   float64
	supply int
	vertex vertexKey
	parent parentRef
	seed   bool
}

type zoneQueue []zoneItem

func (q zoneQueue) Len() int { return len(q) }
func (q zoneQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	if q[i].supply != q[j].supply {
		return q[i].supply < q[j].supply
	}
	return lessKey(q[i].vertex, q[j].vertex)
}
func (q zoneQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *zoneQueue) Push(x any)   { *q = append(*q, x.(zoneItem)) }
func (q *zoneQueue) Pop() any {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}

// assignZones runs a multi-source Dijkstra seeded at each supply's nearest
// corridor vertex. Every reachable vertex is labeled with the supply of
// minimal trunk distance; because labels propagate along relaxed edges,
// each zone's vertex set is connected to its own seed. Supplies whose
// nearest vertex lies beyond the search radius fail their zone.
func (r *Router) assignZones(supplies []SupplyPoint, adj *adjacency, radius float64, network *Network) (map[vertexKey]int, map[vertexKey]parentRef, map[int]vertexKey) {
	owner := make(map[vertexKey]int)
	parent := make(map[vertexKey]parentRef)
	attach := make(map[int]vertexKey)

	queue := &zoneQueue{}
	heap.Init(queue)
	for idx, supply := range supplies {
		vertex, dist, ok := adj.nearestVertex(supply.Position)
		if !ok || dist > radius {
			network.ZoneFailures[supply.ID] = fmt.Errorf("%w: supply %s is %.3f m from the nearest corridor",
				ErrZoneUnroutable, supply.ID, dist)
			network.Diagnostics.AddZone(model.TopologyFailure, model.Error, supply.ID,
				"zone %s disconnected from circulation graph", supply.ID)
			continue
		}
		attach[idx] = vertex
		heap.Push(queue, zoneItem{dist: dist, supply: idx, vertex: vertex, seed: true})
	}

	best := make(map[vertexKey]float64)
	for queue.Len() > 0 {
		item := heap.Pop(queue).(zoneItem)
		if _, settled := owner[item.vertex]; settled {
			continue
		}
		owner[item.vertex] = item.supply
		if !item.seed {
			parent[item.vertex] = item.parent
		}

		for _, edge := range adj.edges[item.vertex] {
			if _, settled := owner[edge.to]; settled {
				continue
			}
			next := item.dist + edge.length
			if known, ok := best[edge.to]; ok && next >= known {
				continue
			}
			best[edge.to] = next
			heap.Push(queue, zoneItem{
				dist:   next,
				supply: item.supply,
				vertex: edge.to,
				parent: parentRef{prev: item.vertex, corridor: edge.corridor},
			})
		}
	}
	return owner, parent, attach
}

// sortTreeEdges orders a zone's edges deterministically by corridor index
func sortTreeEdges(edges []treeEdge) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].corridor < edges[j].corridor })
}

// assignDevices projects each device onto the nearest corridor of any
// zone's spanning structure. Devices beyond the search radius fall into the
// standalone list so they can still be connected, flagged, to the nearest
// trunk node.
func (r *Router) assignDevices(devices []Device, graph *Graph, owner map[vertexKey]int, edgesByZone map[int][]treeEdge, radius float64) (map[int]map[int][]projection, []Device) {
	// zone -> corridor index -> projections on that corridor
	assigned := make(map[int]map[int][]projection)
	standalone := make([]Device, 0)

	zones := make([]int, 0, len(edgesByZone))
	for zone := range edgesByZone {
		zones = append(zones, zone)
	}
	sort.Ints(zones)

	for _, dev := range devices {
		bestDist := math.Inf(1)
		bestZone, bestCorridor := -1, -1
		var bestProj projection

		for _, zone := range zones {
			for _, edge := range edgesByZone[zone] {
				c := graph.Corridors[edge.corridor]
				point, dist, t := c.Project(dev.Position.Plan())
				// Strict improvement plus ordered iteration keeps equal-distance
				// ties on the lowest corridor index across runs
				if dist >= bestDist {
					continue
				}
				fromParent := t
				if keyFor(c.Start) != edge.parentVertex {
					fromParent = 1 - t
				}
				bestDist = dist
				bestZone, bestCorridor = zone, edge.corridor
				bestProj = projection{device: dev, point: point, fromParent: fromParent}
			}
		}

		if bestZone < 0 || bestDist > radius {
			standalone = append(standalone, dev)
			continue
		}
		if assigned[bestZone] == nil {
			assigned[bestZone] = make(map[int][]projection)
		}
		assigned[bestZone][bestCorridor] = append(assigned[bestZone][bestCorridor], bestProj)
	}

	// Order projections along each corridor walking outward from the parent
	for _, byCorridor := range assigned {
		for _, projections := range byCorridor {
			sort.Slice(projections, func(i, j int) bool {
				if projections[i].fromParent != projections[j].fromParent {
					return projections[i].fromParent < projections[j].fromParent
				}
				return projections[i].device.ID < projections[j].device.ID
			})
		}
	}
	return assigned, standalone
}

// connectStandalone attaches each unreachable device to the nearest trunk
// node of any routed tree with an explicitly flagged standalone segment
func (r *Router) connectStandalone(network *Network, standalone []Device) {
	for _, dev := range standalone {
		treeIdx, nodeIdx := nearestTrunkNode(network.Trees, dev.Position)
		if treeIdx < 0 {
			// Unreachable with no routed trees was caught earlier
			continue
		}
		tree := &network.Trees[treeIdx]
		anchor := tree.Nodes[nodeIdx]
		node := Node{ID: dev.ID, Role: RoleDevice, Position: dev.Position}
		tree.Nodes = append(tree.Nodes, node)
		tree.Segments = append(tree.Segments, Segment{
			From:   anchor.ID,
			To:     dev.ID,
			Length: distance3(anchor.Position, dev.Position),
			Kind:   Standalone,
		})
		tree.DeviceCount++
		network.Diagnostics = append(network.Diagnostics, model.Diagnostic{
			Type:      model.ConnectivityFallback,
			Severity:  model.Warning,
			ElementID: dev.ID,
			ZoneID:    tree.ZoneID,
			Message: fmt.Sprintf("device %s beyond search radius, connected standalone to %s in zone %s",
				dev.ID, anchor.ID, tree.ZoneID),
		})
	}
}

// nearestTrunkNode finds the closest supply or junction node across all trees
func nearestTrunkNode(trees []Tree, p model.Position) (int, int) {
	bestTree, bestNode := -1, -1
	bestDist := math.Inf(1)
	for ti := range trees {
		for ni, node := range trees[ti].Nodes {
			if node.Role == RoleDevice {
				continue
			}
			d := distance3(node.Position, p)
			if d < bestDist {
				bestTree, bestNode, bestDist = ti, ni, d
			}
		}
	}
	return bestTree, bestNode
}

// distance3 returns the Euclidean distance between two 3D positions
func distance3(a, b model.Position) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// treeBuilder assembles one zone tree from its spanning edges and device
// projections
type treeBuilder struct {
	trunkZ float64
	adj    *adjacency
}

func newTreeBuilder(trunkZ float64, adj *adjacency) *treeBuilder {
	return &treeBuilder{trunkZ: trunkZ, adj: adj}
}

// build creates the zone tree: a supply root, junction nodes at corridor
// vertices and device projections, trunk segments chained along each
// corridor, and one branch per device
func (b *treeBuilder) build(supply SupplyPoint, zone int, attach vertexKey, edges []treeEdge, byCorridor map[int][]projection) (*Tree, error) {
	_, ok := b.adj.vertices[attach]
	if !ok {
		return nil, fmt.Errorf("%w: supply %s has no corridor attachment", ErrZoneUnroutable, supply.ID)
	}

	tree := &Tree{
		ZoneID:   supply.ID,
		SupplyID: supply.ID,
		Nodes:    make([]Node, 0),
		Segments: make([]Segment, 0),
	}

	supplyNode := Node{
		ID:       supply.ID,
		Role:     RoleSupply,
		Position: model.Position{X: supply.Position.X, Y: supply.Position.Y, Z: b.trunkZ},
	}
	tree.Nodes = append(tree.Nodes, supplyNode)

	// Junction nodes for every corridor vertex in the zone
	junction := make(map[vertexKey]Node)
	addVertex := func(key vertexKey) Node {
		if node, ok := junction[key]; ok {
			return node
		}
		pos := b.adj.vertices[key]
		node := Node{
			ID:       uuid.New().String(),
			Role:     RoleJunction,
			Position: model.Position{X: pos.X, Y: pos.Y, Z: b.trunkZ},
		}
		junction[key] = node
		tree.Nodes = append(tree.Nodes, node)
		return node
	}

	attachNode := addVertex(attach)
	tree.Segments = append(tree.Segments, Segment{
		From:   supplyNode.ID,
		To:     attachNode.ID,
		Length: distance3(supplyNode.Position, attachNode.Position),
		Kind:   Trunk,
	})

	for _, edge := range edges {
		parentNode := addVertex(edge.parentVertex)
		childNode := addVertex(edge.childVertex)

		// Chain trunk segments through each device projection, walking
		// outward from the parent vertex
		prev := parentNode
		for _, proj := range byCorridor[edge.corridor] {
			jNode := Node{
				ID:       uuid.New().String(),
				Role:     RoleJunction,
				Position: model.Position{X: proj.point.X, Y: proj.point.Y, Z: b.trunkZ},
			}
			tree.Nodes = append(tree.Nodes, jNode)
			tree.Segments = append(tree.Segments, Segment{
				From:   prev.ID,
				To:     jNode.ID,
				Length: distance3(prev.Position, jNode.Position),
				Kind:   Trunk,
			})

			devNode := Node{ID: proj.device.ID, Role: RoleDevice, Position: proj.device.Position}
			tree.Nodes = append(tree.Nodes, devNode)
			tree.Segments = append(tree.Segments, Segment{
				From:   jNode.ID,
				To:     devNode.ID,
				Length: distance3(jNode.Position, devNode.Position),
				Kind:   Branch,
			})
			tree.DeviceCount++
			prev = jNode
		}
		tree.Segments = append(tree.Segments, Segment{
			From:   prev.ID,
			To:     childNode.ID,
			Length: distance3(prev.Position, childNode.Position),
			Kind:   Trunk,
		})
	}

	return tree, nil
}

// sizeTree walks each tree leaf-to-root, accumulating downstream device
// counts and assigning every segment the smallest size class that
// accommodates its count. Counts only grow toward the root, so trunk sizes
// never fall below the branches they aggregate.
func sizeTree(tree *Tree) {
	children := make(map[string][]int, len(tree.Nodes))
	for i, seg := range tree.Segments {
		children[seg.From] = append(children[seg.From], i)
	}
	roles := make(map[string]NodeRole, len(tree.Nodes))
	for _, node := range tree.Nodes {
		roles[node.ID] = node.Role
	}

	// Iterative post-order with an explicit stack
	counts := make(map[string]int, len(tree.Nodes))
	type frame struct {
		node     string
		expanded bool
	}
	stack := []frame{{node: tree.SupplyID}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if !top.expanded {
			top.expanded = true
			for _, segIdx := range children[top.node] {
				stack = append(stack, frame{node: tree.Segments[segIdx].To})
			}
			continue
		}
		node := top.node
		stack = stack[:len(stack)-1]

		total := 0
		if roles[node] == RoleDevice {
			total = 1
		}
		for _, segIdx := range children[node] {
			total += counts[tree.Segments[segIdx].To]
		}
		counts[node] = total
	}

	for i := range tree.Segments {
		seg := &tree.Segments[i]
		seg.Downstream = counts[seg.To]
		seg.Size = SizeFor(seg.Downstream)
	}
}
