package dct

import (
	"testing"

	"github.com/vfrnav/adr/internal/condition"
	"github.com/vfrnav/adr/internal/evaluator"
	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/internal/routegraph"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

func mustAlt(lo, hi int32) model.AltIntervalSet {
	return model.AltIntervalSet{Intervals: []model.AltInterval{{LowerFt: lo, UpperFt: hi}}}
}

func TestPairsRespectsRadiusAndAirportException(t *testing.T) {
	near := Candidate{ID: uuid.New(), Coord: geo.Point{Lat: 50, Lon: 0}, RadiusNM: 50}
	far := Candidate{ID: uuid.New(), Coord: geo.Point{Lat: 50.5, Lon: 0}, RadiusNM: 50}
	airport := Candidate{ID: uuid.New(), Coord: geo.Point{Lat: 60, Lon: 0}, RadiusNM: 0, IsAirport: true}

	pairs := Pairs([]Candidate{near, far, airport})

	foundNearFar, foundAirport := false, false
	for _, p := range pairs {
		if (p[0] == near && p[1] == far) || (p[0] == far && p[1] == near) {
			foundNearFar = true
		}
		if p[0] == airport || p[1] == airport {
			foundAirport = true
		}
	}
	if !foundNearFar {
		t.Fatal("expected near/far pair within radius")
	}
	if !foundAirport {
		t.Fatal("expected airport to pair regardless of radius")
	}
}

func TestPairsExcludesOutOfRadiusEnroutePair(t *testing.T) {
	a := Candidate{ID: uuid.New(), Coord: geo.Point{Lat: 0, Lon: 0}, RadiusNM: 10}
	b := Candidate{ID: uuid.New(), Coord: geo.Point{Lat: 5, Lon: 0}, RadiusNM: 10}
	pairs := Pairs([]Candidate{a, b})
	if len(pairs) != 0 {
		t.Fatalf("expected no pair beyond radius, got %d", len(pairs))
	}
}

// sidLimitedRule builds a single forbidden rule whose condition is a
// CrossingPoint leaf on one named point, modelling a SID-only route segment whose DCT is only
// forbidden from that point.
func sidLimitedRule(pointID uuid.UUID, forbidLo, forbidHi int32, span model.TimeInterval) ApplicableRule {
	cond := model.Condition{
		Kind:     model.ConditionCrossingPoint,
		Point:    model.Ref{ID: pointID},
		AltRange: model.AltRange{Lower: model.Alt{Feet: forbidLo}, Upper: model.Alt{Feet: forbidHi}},
	}
	slice := &model.FlightRestrictionSlice{
		Ident:     "UR150",
		Type:      model.RestrictionTypeForbidden,
		Condition: cond,
	}
	rule := evaluator.PrepareRule(slice, condition.SimplifyContext{})
	return ApplicableRule{Rule: rule, TimeSpan: span}
}

func TestComputePairSidOnlyRouteSegmentForbidsOnlyAtNamedPoint(t *testing.T) {
	full := model.TimeInterval{Start: 0, End: 1000}
	a := Candidate{ID: uuid.New(), Coord: geo.Point{Lat: 50, Lon: 0}}
	b := Candidate{ID: uuid.New(), Coord: geo.Point{Lat: 50.5, Lon: 0}}

	rule := sidLimitedRule(a.ID, 0, 5000, full)
	res := ComputePair(a, b, []ApplicableRule{rule}, nil, 0, 1000, nil, nil)

	if len(res.Subs) != 1 {
		t.Fatalf("expected one sub-interval, got %d", len(res.Subs))
	}
	sub := res.Subs[0]
	if !sub.Alt[model.Forward].Intersect(mustAlt(0, 5000)).IsEmpty() {
		t.Fatal("expected low band forbidden at candidate a")
	}
	if sub.Alt[model.Forward].Intersect(mustAlt(10000, 20000)).IsEmpty() {
		t.Fatal("expected high band to remain available")
	}
}

func TestComputePairBidirectionalDctWithLimitAppliesBothDirections(t *testing.T) {
	full := model.TimeInterval{Start: 0, End: 1000}
	a := Candidate{ID: uuid.New(), Coord: geo.Point{Lat: 50, Lon: 0}}
	b := Candidate{ID: uuid.New(), Coord: geo.Point{Lat: 50.5, Lon: 0}}

	rule := sidLimitedRule(a.ID, 0, 3000, full)
	res := ComputePair(a, b, []ApplicableRule{rule}, nil, 0, 1000, nil, nil)

	sub := res.Subs[0]
	if !sub.Alt[model.Forward].Intersect(mustAlt(0, 3000)).IsEmpty() {
		t.Fatal("expected forward direction forbidden band excluded")
	}
	if !sub.Alt[model.Backward].Intersect(mustAlt(0, 3000)).IsEmpty() {
		t.Fatal("expected backward direction forbidden band excluded symmetrically")
	}
}

type fakeOracle struct{ elevFt int32 }

func (o fakeOracle) ElevationFt(a, b geo.Point) (int32, error) { return o.elevFt, nil }

func TestComputePairAppliesTerrainFloor(t *testing.T) {
	full := model.TimeInterval{Start: 0, End: 1000}
	a := Candidate{ID: uuid.New(), Coord: geo.Point{Lat: 50, Lon: 0}}
	b := Candidate{ID: uuid.New(), Coord: geo.Point{Lat: 50.5, Lon: 0}}

	res := ComputePair(a, b, nil, nil, 0, 1000, fakeOracle{elevFt: 5800}, nil)

	sub := res.Subs[0]
	if !sub.Alt[model.Forward].Intersect(mustAlt(-1000, 7999)).IsEmpty() {
		t.Fatal("expected everything below FL080 clamped out by the terrain floor")
	}
	if sub.Alt[model.Forward].Intersect(mustAlt(8000, 20000)).IsEmpty() {
		t.Fatal("expected altitudes at/above the terrain floor to remain available")
	}
}

func TestComputePairDiscontinuityFoldingSplitsSubIntervals(t *testing.T) {
	a := Candidate{ID: uuid.New(), Coord: geo.Point{Lat: 50, Lon: 0}}
	b := Candidate{ID: uuid.New(), Coord: geo.Point{Lat: 50.5, Lon: 0}}

	table := model.TimeTable{Intervals: []model.TimeInterval{{Start: 500, End: 1000}}}
	rule := ApplicableRule{
		Rule:     evaluator.PrepareRule(&model.FlightRestrictionSlice{Ident: "R1", Type: model.RestrictionTypeForbidden}, condition.SimplifyContext{}),
		TimeSpan: model.TimeInterval{Start: 500, End: 1000},
		Table:    table,
	}

	res := ComputePair(a, b, []ApplicableRule{rule}, nil, 0, 1000, nil, nil)
	if len(res.Subs) < 2 {
		t.Fatalf("expected the rule's time-table boundary to split the pair into sub-intervals, got %d", len(res.Subs))
	}
}

func TestApplyAirwayElisionTrimsToPathAvailability(t *testing.T) {
	g := routegraph.New(0)
	aID, bID := uuid.New(), uuid.New()
	g.AddVertex(aID, geo.Point{Lat: 50, Lon: 0})
	g.AddVertex(bID, geo.Point{Lat: 50.01, Lon: 0})
	low := model.BidirAltRange{mustAlt(0, 5000), mustAlt(0, 5000)}
	g.AddEdge(routegraph.Edge{Start: aID, End: bID, Availability: low})
	g.AddEdge(routegraph.Edge{Start: bID, End: aID, Availability: low})

	a := Candidate{ID: aID, Coord: geo.Point{Lat: 50, Lon: 0}}
	b := Candidate{ID: bID, Coord: geo.Point{Lat: 50.01, Lon: 0}}

	trimmed := applyAirwayElision(a, b, model.FullBidir(), g)
	if !trimmed.Equal(model.BidirAltRange{mustAlt(0, 5000), mustAlt(0, 5000)}) {
		t.Fatalf("expected elision to trim to the airway's own availability, got %+v", trimmed)
	}
}

// TestApplyAirwayElisionFoldsMultiHopPath covers the case no direct a->b edge
// exists at all: the shortest path runs a->mid->b, each leg with a
// different altitude ceiling, and the trim must be the intersection of both
// legs, not the full range a naive direct-edge-only check would return.
func TestApplyAirwayElisionFoldsMultiHopPath(t *testing.T) {
	g := routegraph.New(0)
	aID, midID, bID := uuid.New(), uuid.New(), uuid.New()
	g.AddVertex(aID, geo.Point{Lat: 50, Lon: 0})
	g.AddVertex(midID, geo.Point{Lat: 50.005, Lon: 0})
	g.AddVertex(bID, geo.Point{Lat: 50.01, Lon: 0})

	leg1 := model.BidirAltRange{mustAlt(0, 8000), mustAlt(0, 8000)}
	leg2 := model.BidirAltRange{mustAlt(0, 5000), mustAlt(0, 5000)}
	g.AddEdge(routegraph.Edge{Start: aID, End: midID, Availability: leg1})
	g.AddEdge(routegraph.Edge{Start: midID, End: bID, Availability: leg2})

	a := Candidate{ID: aID, Coord: geo.Point{Lat: 50, Lon: 0}}
	b := Candidate{ID: bID, Coord: geo.Point{Lat: 50.01, Lon: 0}}

	trimmed := applyAirwayElision(a, b, model.FullBidir(), g)
	want := model.BidirAltRange{mustAlt(0, 5000), mustAlt(0, 5000)}
	if !trimmed.Equal(want) {
		t.Fatalf("expected elision to fold both legs down to the lower leg's ceiling, got %+v", trimmed)
	}
}
