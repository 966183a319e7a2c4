package store

import (
	"context"
	"testing"

	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{Path: ":memory:", CacheSize: 64})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id := uuid.New()
	o := &model.Object{
		ID:   id,
		Kind: model.KindAirport,
		Slices: []model.Slice{{
			Interval: model.TimeInterval{Start: model.TimeUnboundedPast, End: model.TimeUnboundedFuture},
			Payload: &model.AirportSlice{
				Ident: "LSGG", Name: "Geneva", ElevationFt: 1411,
				Coord: geo.Point{Lat: 46.2381, Lon: 6.1089},
				Flags: model.AirportIFRDeparture | model.AirportIFRArrival,
			},
		}},
	}
	if err := s.Save(ctx, o); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx, id, LoadObject)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p, ok := got.Slices[0].Payload.(*model.AirportSlice)
	if !ok || p.Ident != "LSGG" {
		t.Fatalf("unexpected payload: %+v", got.Slices[0].Payload)
	}

	found, err := s.FindByIdent(ctx, "LSGG", IdentExact, LoadUUIDOnly)
	if err != nil {
		t.Fatalf("find_by_ident: %v", err)
	}
	if len(found) != 1 || found[0].ID != id {
		t.Fatalf("find_by_ident returned %+v, want [%v]", found, id)
	}
}

func TestFindByBboxWraparound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id := uuid.New()
	o := &model.Object{
		ID:   id,
		Kind: model.KindDesignatedPoint,
		Slices: []model.Slice{{
			Interval: model.TimeInterval{Start: model.TimeUnboundedPast, End: model.TimeUnboundedFuture},
			Payload: &model.DesignatedPointSlice{
				Ident: "ANTIM", Coord: geo.Point{Lat: 0, Lon: 179.9}, Type: model.PointTypeCoordinate,
			},
		}},
	}
	if err := s.Save(ctx, o); err != nil {
		t.Fatalf("save: %v", err)
	}

	query := geo.Rect{SWLat: -1000, SWLon: geo.ToFixed(170), NELat: 1000, NELon: geo.ToFixed(-170)}
	if !query.Wraps() {
		t.Fatalf("query rect should wrap")
	}
	found, err := s.FindByBbox(ctx, query, Filter{}, LoadUUIDOnly)
	if err != nil {
		t.Fatalf("find_by_bbox: %v", err)
	}
	if len(found) != 1 || found[0].ID != id {
		t.Fatalf("expected to find the antimeridian point, got %+v", found)
	}
}

func TestLinkResolution(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	navaid := &model.Object{
		ID:   uuid.New(),
		Kind: model.KindNavaid,
		Slices: []model.Slice{{
			Payload: &model.NavaidSlice{Ident: "GVA", Type: model.NavaidVORDME},
		}},
	}
	if err := s.Save(ctx, navaid); err != nil {
		t.Fatalf("save navaid: %v", err)
	}

	point := &model.Object{
		ID:   uuid.New(),
		Kind: model.KindAngleIndication,
		Slices: []model.Slice{{
			Payload: &model.AngleIndicationSlice{Navaid: model.Ref{ID: navaid.ID}, AngleDeg: 42},
		}},
	}
	if err := s.Save(ctx, point); err != nil {
		t.Fatalf("save point: %v", err)
	}

	got, err := s.Load(ctx, point.ID, LoadObjectLinked)
	if err != nil {
		t.Fatalf("load linked: %v", err)
	}
	payload := got.Slices[0].Payload.(*model.AngleIndicationSlice)
	if !payload.Navaid.Resolved() {
		t.Fatalf("expected navaid link to resolve")
	}
	if payload.Navaid.Object.ID != navaid.ID {
		t.Fatalf("resolved navaid ID mismatch")
	}
}
