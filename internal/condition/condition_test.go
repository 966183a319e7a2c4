package condition

import (
	"testing"

	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

func mustAlt(ft int32) model.Alt {
	return model.Alt{Feet: ft, Mode: model.AltModeSTD}
}

func fullAlt() model.AltRange {
	return model.AltRange{Lower: mustAlt(0), Upper: mustAlt(60000)}
}

func TestAndOrNotAlgebra(t *testing.T) {
	tru := Const(true)
	fls := Const(false)
	unk := Unknown()

	if And(tru, fls).Value != False {
		t.Fatalf("true AND false should be false")
	}
	if And(tru, unk).Value != Indeterminate {
		t.Fatalf("true AND indeterminate should be indeterminate")
	}
	if Or(fls, unk).Value != Indeterminate {
		t.Fatalf("false OR indeterminate should be indeterminate")
	}
	if Or(tru, unk).Value != True {
		t.Fatalf("true OR indeterminate should be true")
	}
	if Not(tru).Value != False || Not(fls).Value != True || Not(unk).Value != Indeterminate {
		t.Fatalf("Not did not invert tri-state correctly")
	}
}

func TestAndWitnessUnion(t *testing.T) {
	a := CondResult{Value: True, Vertices: newIndexSet(0, 1)}
	b := CondResult{Value: True, Vertices: newIndexSet(2)}
	r := And(a, b)
	if r.Vertices.len() != 3 {
		t.Fatalf("expected union of 3 vertices, got %d", r.Vertices.len())
	}
}

func TestOrPicksSmallerWitnessSet(t *testing.T) {
	a := CondResult{Value: True, Vertices: newIndexSet(0, 1, 2)}
	b := CondResult{Value: True, Vertices: newIndexSet(5)}
	r := Or(a, b)
	if r.Vertices.len() != 1 {
		t.Fatalf("Or should keep the smaller witness set, got %d", r.Vertices.len())
	}
}

func TestEvaluateCrossingPoint(t *testing.T) {
	pointID := uuid.UUID{1, 2, 3, 4}
	c := &model.Condition{
		Kind:     model.ConditionCrossingPoint,
		Point:    model.Ref{ID: pointID},
		AltRange: fullAlt(),
	}
	plan := Plan{Waypoints: []Waypoint{
		{ID: uuid.UUID{9}, AltFt: 10000},
		{ID: pointID, AltFt: 20000},
	}}
	r := Evaluate(c, plan, nil)
	if r.Value != True {
		t.Fatalf("expected true, got %v", r.Value)
	}
	if _, ok := r.Vertices[1]; !ok {
		t.Fatalf("expected witness vertex 1, got %v", r.Vertices)
	}
}

func TestEvaluateCrossingPointInverted(t *testing.T) {
	pointID := uuid.UUID{1}
	c := &model.Condition{
		Kind:     model.ConditionCrossingPoint,
		Inv:      true,
		Point:    model.Ref{ID: pointID},
		AltRange: fullAlt(),
	}
	plan := Plan{Waypoints: []Waypoint{{ID: uuid.UUID{9}, AltFt: 10000}}}
	r := Evaluate(c, plan, nil)
	if r.Value != True {
		t.Fatalf("not-crossing-absent-point should evaluate true, got %v", r.Value)
	}
}

func TestEvaluateAircraftEmptyMeansAny(t *testing.T) {
	c := &model.Condition{Kind: model.ConditionAircraft}
	plan := Plan{AircraftClass: "J", EngineClass: "T"}
	if Evaluate(c, plan, nil).Value != True {
		t.Fatalf("empty class lists should match any aircraft")
	}
}

func TestEvaluateDctLimit(t *testing.T) {
	c := &model.Condition{Kind: model.ConditionDctLimit, DctLimitNM: 5}
	plan := Plan{Waypoints: []Waypoint{
		{ID: uuid.UUID{1}, Coord: geo.Point{Lat: 0, Lon: 0}},
		{ID: uuid.UUID{2}, Coord: geo.Point{Lat: 1, Lon: 0}},
	}}
	r := Evaluate(c, plan, nil)
	if r.Value != True {
		t.Fatalf("a 60nm leg should exceed a 5nm DCT limit, got %v", r.Value)
	}
}

func TestPropagateRouteStaticConstant(t *testing.T) {
	c := &model.Condition{Kind: model.ConditionConstant, ConstantValue: true}
	if PropagateRouteStatic(c) != StaticTrue {
		t.Fatalf("constant true should propagate as StaticTrue")
	}
}

func TestPropagateRouteStaticAndWithUnknown(t *testing.T) {
	c := &model.Condition{
		Kind: model.ConditionAnd,
		Children: []model.Condition{
			{Kind: model.ConditionConstant, ConstantValue: true},
			{Kind: model.ConditionCrossingPoint},
		},
	}
	if PropagateRouteStatic(c) != StaticUnknown {
		t.Fatalf("And(true, crossing-point) should be StaticUnknown")
	}
}

func TestSimplifyConstantFolding(t *testing.T) {
	c := &model.Condition{
		Kind: model.ConditionAnd,
		Children: []model.Condition{
			{Kind: model.ConditionConstant, ConstantValue: true},
			{Kind: model.ConditionConstant, ConstantValue: false},
		},
	}
	sc := Simplify(c, SimplifyContext{})
	if sc.Kind != model.ConditionConstant || sc.ConstantValue != false {
		t.Fatalf("expected folded constant false, got %+v", sc)
	}
}

func TestSimplifyAircraftSpecialisation(t *testing.T) {
	c := &model.Condition{Kind: model.ConditionAircraft, AircraftClasses: []string{"L"}}
	sc := Simplify(c, SimplifyContext{AircraftClass: "J"})
	if sc.Kind != model.ConditionConstant || sc.ConstantValue != false {
		t.Fatalf("a non-matching aircraft class should specialise to constant false")
	}
}

func TestExtractCrossingPointsDedup(t *testing.T) {
	id := uuid.UUID{7}
	c := &model.Condition{
		Kind: model.ConditionAnd,
		Children: []model.Condition{
			{Kind: model.ConditionCrossingPoint, Point: model.Ref{ID: id}},
			{Kind: model.ConditionCrossingPoint, Point: model.Ref{ID: id}},
		},
	}
	pts := ExtractCrossingPoints(c)
	if len(pts) != 1 {
		t.Fatalf("expected 1 deduped point, got %d", len(pts))
	}
}

func routeSegmentRef(start, end uuid.UUID, avail model.BidirAltRange) model.Ref {
	obj := &model.Object{
		ID:   uuid.New(),
		Kind: model.KindRouteSegment,
		Slices: []model.Slice{{
			Interval: model.TimeInterval{Start: model.TimeUnboundedPast, End: model.TimeUnboundedFuture},
			Payload:  &model.RouteSegmentSlice{Start: model.Ref{ID: start}, End: model.Ref{ID: end}, Availability: avail},
		}},
	}
	return model.Ref{ID: obj.ID, Object: obj}
}

func TestEvaluateCrossingAirwayMatchesRealSegmentEndpoints(t *testing.T) {
	a, b, c := uuid.UUID{10}, uuid.UUID{11}, uuid.UUID{12}
	full := model.BidirAltRange{fullAlt2(), fullAlt2()}
	segAB := routeSegmentRef(a, b, full)
	segBC := routeSegmentRef(b, c, full)

	cond := &model.Condition{
		Kind:     model.ConditionCrossingAirway,
		Segments: []model.Ref{segAB, segBC},
		AltRange: fullAlt(),
	}

	plan := Plan{Waypoints: []Waypoint{
		{ID: a, Coord: geo.Point{Lat: 0, Lon: 0}, AltFt: 10000},
		{ID: b, Coord: geo.Point{Lat: 0.1, Lon: 0}, AltFt: 10000},
		{ID: c, Coord: geo.Point{Lat: 0.2, Lon: 0}, AltFt: 10000},
	}}

	got := Evaluate(cond, plan, nil)
	if got.Value != True {
		t.Fatalf("expected a plan that actually flies the named segments to match, got %v", got.Value)
	}
}

func TestEvaluateCrossingAirwayRejectsPlanNotOnAirway(t *testing.T) {
	a, b, c := uuid.UUID{20}, uuid.UUID{21}, uuid.UUID{22}
	other := uuid.UUID{23}
	full := model.BidirAltRange{fullAlt2(), fullAlt2()}
	segAB := routeSegmentRef(a, b, full)

	cond := &model.Condition{
		Kind:     model.ConditionCrossingAirway,
		Segments: []model.Ref{segAB},
		AltRange: fullAlt(),
	}

	// plan never visits b; it diverges to an unrelated point instead, so
	// the named airway segment was never actually flown.
	plan := Plan{Waypoints: []Waypoint{
		{ID: a, Coord: geo.Point{Lat: 0, Lon: 0}, AltFt: 10000},
		{ID: other, Coord: geo.Point{Lat: 5, Lon: 5}, AltFt: 10000},
		{ID: c, Coord: geo.Point{Lat: 0.2, Lon: 0}, AltFt: 10000},
	}}

	got := Evaluate(cond, plan, nil)
	if got.Value != False {
		t.Fatalf("expected plan that never flies the named segment to not match, got %v", got.Value)
	}
}

func fullAlt2() model.AltIntervalSet {
	return model.AltIntervalSet{Intervals: []model.AltInterval{{LowerFt: -1000, UpperFt: 600000}}}
}

func TestMatchAirwayExclusion(t *testing.T) {
	airwayID := uuid.UUID{3}
	x := uuid.UUID{4}
	y := uuid.UUID{5}
	c := &model.Condition{
		Kind: model.ConditionAnd,
		Children: []model.Condition{
			{Kind: model.ConditionCrossingAirway, Route: model.Ref{ID: airwayID}},
			{
				Kind: model.ConditionAnd,
				Inv:  true,
				Children: []model.Condition{
					{Kind: model.ConditionCrossingPoint, Point: model.Ref{ID: x}},
					{Kind: model.ConditionCrossingPoint, Point: model.Ref{ID: y}},
				},
			},
		},
	}
	ex, ok := MatchAirwayExclusion(c)
	if !ok {
		t.Fatalf("expected pattern to match")
	}
	if ex.Airway.ID != airwayID || len(ex.Excluded) != 2 {
		t.Fatalf("unexpected decomposition: %+v", ex)
	}
}
