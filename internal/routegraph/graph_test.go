package routegraph

import (
	"testing"

	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

func fullBidir() model.BidirAltRange {
	full := model.Full()
	return model.BidirAltRange{full, full}
}

func TestShortestPathDirect(t *testing.T) {
	g := New(model.Time{})
	a, b, c := uuid.UUID{1}, uuid.UUID{2}, uuid.UUID{3}
	g.AddVertex(a, geo.Point{Lat: 0, Lon: 0})
	g.AddVertex(b, geo.Point{Lat: 0, Lon: 1})
	g.AddVertex(c, geo.Point{Lat: 0, Lon: 2})
	g.AddEdge(Edge{Start: a, End: b, Availability: fullBidir(), DistanceNM: 60})
	g.AddEdge(Edge{Start: b, End: c, Availability: fullBidir(), DistanceNM: 60})
	g.AddEdge(Edge{Start: a, End: c, Availability: fullBidir(), DistanceNM: 200})

	f := AltrangeTimeEdgeFilter{
		Graph:   g,
		AltBand: model.AltRange{Lower: model.Alt{Mode: model.AltModeSTD, Feet: 0}, Upper: model.Alt{Mode: model.AltModeSTD, Feet: 40000}},
	}
	path, dist, ok := ShortestPath(f, a, c)
	if !ok {
		t.Fatalf("expected a path")
	}
	if dist != 120 {
		t.Fatalf("expected the two-hop 120nm path to win over the 200nm direct edge, got %v via %v", dist, path)
	}
	if len(path) != 3 || path[0] != a || path[2] != c {
		t.Fatalf("unexpected path %v", path)
	}
}

func TestShortestPathFiltersByAltitude(t *testing.T) {
	g := New(model.Time{})
	a, b := uuid.UUID{1}, uuid.UUID{2}
	g.AddVertex(a, geo.Point{Lat: 0, Lon: 0})
	g.AddVertex(b, geo.Point{Lat: 0, Lon: 1})

	lowOnly := model.BidirAltRange{
		model.AltIntervalSet{Intervals: []model.AltInterval{{LowerFt: 0, UpperFt: 10000}}},
		model.AltIntervalSet{Intervals: []model.AltInterval{{LowerFt: 0, UpperFt: 10000}}},
	}
	g.AddEdge(Edge{Start: a, End: b, Availability: lowOnly, DistanceNM: 10})

	f := AltrangeTimeEdgeFilter{
		Graph:   g,
		AltBand: model.AltRange{Lower: model.Alt{Mode: model.AltModeSTD, Feet: 30000}, Upper: model.Alt{Mode: model.AltModeSTD, Feet: 40000}},
	}
	if _, _, ok := ShortestPath(f, a, b); ok {
		t.Fatalf("expected no path at FL300-400 over an edge only available below 10000ft")
	}
}
