// Package routegraph builds the directed graph of point objects and the
// route/DCT edges between them, valid at a single instant (§4.2.1).
package routegraph

import (
	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

// EdgeKind distinguishes a published route segment from an ad-hoc direct.
type EdgeKind int

const (
	EdgeRouteSegment EdgeKind = iota
	EdgeDct
)

// Edge is one (start, end, route-or-dct) triple valid at the instant the
// graph was built for.
type Edge struct {
	Kind       EdgeKind
	Start, End uuid.UUID
	Route      uuid.UUID // zero for EdgeDct
	Availability model.BidirAltRange
	DistanceNM float64
}

// Vertex is one point object participating in the graph.
type Vertex struct {
	ID    uuid.UUID
	Coord geo.Point
}

// Graph is the directed multigraph of §4.2.1, built for a single instant.
type Graph struct {
	At       model.Time
	vertices map[uuid.UUID]Vertex
	out      map[uuid.UUID][]Edge
}

// New returns an empty graph anchored at instant t.
func New(t model.Time) *Graph {
	return &Graph{At: t, vertices: map[uuid.UUID]Vertex{}, out: map[uuid.UUID][]Edge{}}
}

// AddVertex registers a point object in the graph.
func (g *Graph) AddVertex(id uuid.UUID, coord geo.Point) {
	g.vertices[id] = Vertex{ID: id, Coord: coord}
}

// AddEdge registers a directed edge available at g.At. Route segments are
// added once per direction the caller observed data for; the bidirectional
// availability itself determines which directions are actually usable.
func (g *Graph) AddEdge(e Edge) {
	g.out[e.Start] = append(g.out[e.Start], e)
}

// Vertex looks up a vertex by ID.
func (g *Graph) Vertex(id uuid.UUID) (Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// Edges returns the outgoing edges from id.
func (g *Graph) Edges(id uuid.UUID) []Edge {
	return g.out[id]
}

// BuildFromSegment adds both the graph vertices (if not already present)
// and the edge for one RouteSegmentSlice, resolved from its Refs.
func (g *Graph) BuildFromSegment(startID, endID, routeID uuid.UUID, startCoord, endCoord geo.Point, avail model.BidirAltRange) {
	g.AddVertex(startID, startCoord)
	g.AddVertex(endID, endCoord)
	dist := geo.NMDistance(startCoord, endCoord)
	g.AddEdge(Edge{Kind: EdgeRouteSegment, Start: startID, End: endID, Route: routeID, Availability: avail, DistanceNM: dist})
	// the reverse direction is the same physical edge; backward availability
	// is carried on the same Edge rather than a mirrored one so callers
	// filtering by direction read Availability[model.Backward] directly.
}

// AltrangeTimeEdgeFilter is the decorator of §4.2.1: it yields only the
// edges of the underlying graph whose availability in Direction intersects
// a requested altitude band. At and Box are carried on the filter but are
// not applied to the edges.
type AltrangeTimeEdgeFilter struct {
	Graph    *Graph
	AltBand  model.AltRange
	At       model.Time
	Box      geo.Rect
	Direction model.Direction
}

// Edges returns the subset of g's outgoing edges from id passing the
// filter's altitude constraint.
func (f AltrangeTimeEdgeFilter) Edges(id uuid.UUID) []Edge {
	var out []Edge
	for _, e := range f.Graph.Edges(id) {
		avail := e.Availability[f.Direction]
		if !avail.Intersect(model.AltIntervalSet{Intervals: []model.AltInterval{{LowerFt: f.AltBand.Lower.Feet, UpperFt: f.AltBand.Upper.Feet}}}).IsEmpty() {
			out = append(out, e)
		}
	}
	return out
}

// ShortestPath runs Dijkstra's algorithm from src to dst using geodesic
// distance as edge weight (§4.2.1: "the weight function ... is geodesic
// distance"), restricted to edges the given filter admits.
func ShortestPath(f AltrangeTimeEdgeFilter, src, dst uuid.UUID) ([]uuid.UUID, float64, bool) {
	const inf = 1e18
	dist := map[uuid.UUID]float64{src: 0}
	prev := map[uuid.UUID]uuid.UUID{}
	visited := map[uuid.UUID]struct{}{}

	for {
		// pick the unvisited vertex with smallest known distance
		var u uuid.UUID
		found := false
		best := inf
		for v, d := range dist {
			if _, done := visited[v]; done {
				continue
			}
			if d < best {
				best = d
				u = v
				found = true
			}
		}
		if !found {
			break
		}
		if u == dst {
			break
		}
		visited[u] = struct{}{}

		for _, e := range f.Edges(u) {
			nd := dist[u] + e.DistanceNM
			if cur, ok := dist[e.End]; !ok || nd < cur {
				dist[e.End] = nd
				prev[e.End] = u
			}
		}
	}

	d, ok := dist[dst]
	if !ok {
		return nil, 0, false
	}
	var path []uuid.UUID
	for at := dst; ; {
		path = append([]uuid.UUID{at}, path...)
		if at == src {
			break
		}
		p, ok := prev[at]
		if !ok {
			return nil, 0, false
		}
		at = p
	}
	return path, d, true
}
