package model

import (
	"testing"

	"github.com/vfrnav/adr/internal/archive"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

func TestAirportTypeByteScenario(t *testing.T) {
	s := &AirportSlice{Flags: AirportCivil | AirportIFRDeparture | AirportIFRArrival}
	if got := s.TypeByte(); got != 0x40|0x0C {
		t.Fatalf("TypeByte() = %#x, want %#x", got, 0x40|0x0C)
	}
}

func TestObjectHibernateRoundTrip(t *testing.T) {
	id := uuid.New()
	orig := &Object{
		ID:       id,
		Kind:     KindAirport,
		Modified: Time(1000),
		Slices: []Slice{
			{
				Interval: TimeInterval{Start: TimeUnboundedPast, End: Time(500)},
				Payload: &AirportSlice{
					Ident:       "LSGG",
					Name:        "Geneva",
					ElevationFt: 1411,
					Coord:       geo.Point{Lat: 46.238, Lon: 6.109},
					Flags:       AirportIFRDeparture | AirportIFRArrival,
				},
			},
			{
				Interval: TimeInterval{Start: Time(500), End: TimeUnboundedFuture},
				Payload: &AirportSlice{
					Ident:       "LSGG",
					Name:        "Geneva",
					ElevationFt: 1411,
					Coord:       geo.Point{Lat: 46.238, Lon: 6.109},
					Flags:       AirportMilitary,
				},
			},
		},
	}

	sa := archive.NewSaveArchive()
	if err := orig.Hibernate(sa); err != nil {
		t.Fatalf("save: %v", err)
	}

	la := archive.NewLoadArchive(sa.Bytes())
	got := &Object{}
	if err := got.Hibernate(la); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.ID != id || got.Kind != KindAirport || got.Modified != Time(1000) {
		t.Fatalf("header mismatch: %+v", got)
	}
	if len(got.Slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(got.Slices))
	}
	p0, ok := got.Slices[0].Payload.(*AirportSlice)
	if !ok || p0.Ident != "LSGG" || p0.Flags != (AirportIFRDeparture|AirportIFRArrival) {
		t.Fatalf("slice 0 mismatch: %+v", got.Slices[0].Payload)
	}

	slice, ok := got.SliceAt(Time(10))
	if !ok || slice != &got.Slices[0] {
		t.Fatalf("SliceAt(10) should hit slice 0")
	}
	if _, ok := got.SliceAt(Time(500)); !ok {
		t.Fatalf("SliceAt(500) should hit slice 1 (half-open boundary)")
	}

	bbox := got.BBox()
	if bbox == nil {
		t.Fatalf("expected non-nil bbox")
	}
}

func TestObjectClone(t *testing.T) {
	orig := &Object{
		ID:   uuid.New(),
		Kind: KindNavaid,
		Slices: []Slice{{
			Payload: &NavaidSlice{Ident: "GVA", Type: NavaidVORDME},
		}},
	}
	clone := orig.Clone()
	clone.Slices[0].Payload.(*NavaidSlice).Ident = "CHANGED"
	if orig.Slices[0].Payload.(*NavaidSlice).Ident == "CHANGED" {
		t.Fatalf("clone should not alias original slice payload")
	}
}

func TestAltIntervalSetAlgebra(t *testing.T) {
	a := AltIntervalSet{Intervals: []AltInterval{{LowerFt: 0, UpperFt: 10000}}}
	b := AltIntervalSet{Intervals: []AltInterval{{LowerFt: 5000, UpperFt: 15000}}}

	u := a.Union(b)
	if !u.Equal(AltIntervalSet{Intervals: []AltInterval{{LowerFt: 0, UpperFt: 15000}}}) {
		t.Fatalf("union mismatch: %+v", u)
	}

	in := a.Intersect(b)
	if !in.Equal(AltIntervalSet{Intervals: []AltInterval{{LowerFt: 5000, UpperFt: 10000}}}) {
		t.Fatalf("intersect mismatch: %+v", in)
	}

	sub := a.Subtract(b)
	if !sub.Equal(AltIntervalSet{Intervals: []AltInterval{{LowerFt: 0, UpperFt: 4999}}}) {
		t.Fatalf("subtract mismatch: %+v", sub)
	}

	full := Full()
	comp := a.Complement()
	if !comp.Union(a).Equal(full) {
		t.Fatalf("complement union with self should cover full range")
	}
}

func TestBidirAltRangeBoolean(t *testing.T) {
	fwd := AltIntervalSet{Intervals: []AltInterval{{LowerFt: 0, UpperFt: 10000}}}
	bwd := AltIntervalSet{Intervals: []AltInterval{{LowerFt: 5000, UpperFt: 10000}}}
	r := BidirAltRange{fwd, bwd}

	and := r.And(r)
	if !and.Equal(r) {
		t.Fatalf("r AND r should equal r")
	}

	xor := r.Xor(r)
	if !xor.Empty() {
		t.Fatalf("r XOR r should be empty, got %+v", xor)
	}
}

func TestTimeTableSplitAndDiscontinuities(t *testing.T) {
	tt := TimeTable{Intervals: []TimeInterval{
		{Start: Time(100), End: Time(200)},
		{Start: Time(300), End: Time(400)},
	}}
	span := TimeInterval{Start: TimeUnboundedPast, End: TimeUnboundedFuture}

	disc := tt.Discontinuities(span)
	want := []Time{100, 200, 300, 400}
	if len(disc) != len(want) {
		t.Fatalf("discontinuities = %v, want %v", disc, want)
	}
	for i := range want {
		if disc[i] != want[i] {
			t.Fatalf("discontinuities[%d] = %v, want %v", i, disc[i], want[i])
		}
	}

	parts := tt.Split(span)
	if len(parts) != len(disc)+1 {
		t.Fatalf("Split produced %d parts, want %d", len(parts), len(disc)+1)
	}
}

func TestRestrictionConditionRoundTrip(t *testing.T) {
	airspace := Ref{ID: uuid.New()}
	cond := Condition{
		Kind: ConditionAnd,
		Children: []Condition{
			{
				Kind:              ConditionCrossingAirspace1,
				Airspace:          airspace,
				AltRange:          AltRange{Lower: Alt{Feet: 0, Mode: AltModeQNH}, Upper: Alt{Feet: 66000, Mode: AltModeQNH}},
				ReferenceLocation: true,
			},
			{
				Kind:          ConditionAircraft,
				AircraftClasses: []string{"J"},
				PBN:           []string{"B1"},
			},
		},
	}

	sa := archive.NewSaveArchive()
	if err := cond.Hibernate(sa); err != nil {
		t.Fatalf("save: %v", err)
	}
	la := archive.NewLoadArchive(sa.Bytes())
	var got Condition
	if err := got.Hibernate(la); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Kind != ConditionAnd || len(got.Children) != 2 {
		t.Fatalf("unexpected round trip: %+v", got)
	}
	if got.Children[0].Kind != ConditionCrossingAirspace1 || got.Children[0].Airspace.ID != airspace.ID {
		t.Fatalf("crossing airspace child mismatch: %+v", got.Children[0])
	}
	if got.Children[1].Kind != ConditionAircraft || len(got.Children[1].AircraftClasses) != 1 || got.Children[1].AircraftClasses[0] != "J" {
		t.Fatalf("aircraft child mismatch: %+v", got.Children[1])
	}
}

func TestFlightRestrictionSliceRoundTrip(t *testing.T) {
	airspace := Ref{ID: uuid.New()}
	orig := &FlightRestrictionSlice{
		Ident:    "LSAG01",
		Type:     RestrictionTypeMandatory,
		ProcKind: ProcKindTFR,
		BBox_:    geo.Rect{SWLat: -100, SWLon: -100, NELat: 100, NELon: 100},
		Condition: Condition{
			Kind:     ConditionCrossingAirspaceActive,
			Airspace: airspace,
		},
		Restrictions: Restrictions{
			RestrictionSequence{
				RestrictionElement{Kind: RestrictionElementAirspace, Airspace: airspace},
			},
		},
		Enabled:     true,
		Instruction: "AVOID LSAG",
	}

	sa := archive.NewSaveArchive()
	if err := orig.Hibernate(sa); err != nil {
		t.Fatalf("save: %v", err)
	}
	la := archive.NewLoadArchive(sa.Bytes())
	got := &FlightRestrictionSlice{}
	if err := got.Hibernate(la); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Ident != orig.Ident || got.Type != orig.Type || got.ProcKind != orig.ProcKind {
		t.Fatalf("header mismatch: %+v", got)
	}
	if got.Type.TypeChar() != 'M' {
		t.Fatalf("TypeChar() = %q, want 'M'", got.Type.TypeChar())
	}
	if len(got.Restrictions) != 1 || len(got.Restrictions[0]) != 1 {
		t.Fatalf("restrictions mismatch: %+v", got.Restrictions)
	}
	if got.Condition.Kind != ConditionCrossingAirspaceActive || got.Condition.Airspace.ID != airspace.ID {
		t.Fatalf("condition mismatch: %+v", got.Condition)
	}
}
