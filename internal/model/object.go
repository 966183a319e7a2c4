package model

import (
	"fmt"

	"github.com/vfrnav/adr/internal/archive"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

// Kind enumerates the ATS entity kinds (§3). The low byte of the original
// discriminant also carried flag bits in the source system; here flags
// that matter (e.g. Airport civil/military, IFR dep/arr) live as ordinary
// struct fields on the slice payload instead of being packed into the
// discriminant, which only needs to select the payload's Go type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindAirport
	KindNavaid
	KindDesignatedPoint
	KindAngleIndication
	KindDistanceIndication
	KindRouteSegment
	KindRoute
	KindSID
	KindSTAR
	KindDepartureLeg
	KindArrivalLeg
	KindStandardLevelTable
	KindAirportCollocation
	KindAirspace
	KindFlightRestriction
)

func (k Kind) String() string {
	switch k {
	case KindAirport:
		return "Airport"
	case KindNavaid:
		return "Navaid"
	case KindDesignatedPoint:
		return "DesignatedPoint"
	case KindAngleIndication:
		return "AngleIndication"
	case KindDistanceIndication:
		return "DistanceIndication"
	case KindRouteSegment:
		return "RouteSegment"
	case KindRoute:
		return "Route"
	case KindSID:
		return "StandardInstrumentDeparture"
	case KindSTAR:
		return "StandardInstrumentArrival"
	case KindDepartureLeg:
		return "DepartureLeg"
	case KindArrivalLeg:
		return "ArrivalLeg"
	case KindStandardLevelTable:
		return "StandardLevelTable"
	case KindAirportCollocation:
		return "AirportCollocation"
	case KindAirspace:
		return "Airspace"
	case KindFlightRestriction:
		return "FlightRestriction"
	default:
		return "Invalid"
	}
}

// Ref is a reference to another object, resolved lazily by the store.
// Every cross-object reference in the model uses this one instantiation
// of archive.Link, since every entity is represented uniformly as *Object
// regardless of its Kind (§9: "Replace deep inheritance with tagged
// sum types").
type Ref = archive.Link[*Object]

// RefSet is an ordered set of Refs, as LinkSet (§3 LinkSet).
type RefSet = archive.LinkSet[*Object]

// SlicePayload is implemented by each kind-specific slice body. Shared
// behavior is expressed as ordinary functions pattern-matching on Kind()
// rather than through interface methods with per-kind overrides, per the
// design notes' "avoid deep inheritance" guidance; the interface itself
// stays minimal (serialization plus the two properties every kind must
// expose: a bounding box, if any, and the kind it belongs to).
type SlicePayload interface {
	Kind() Kind
	Hibernate(a *archive.Archive) error
	BBox() *geo.Rect
}

// Slice is one time-bounded state snapshot of an Object (§3 TimeSlice).
type Slice struct {
	Interval TimeInterval
	Payload  SlicePayload
}

func (s *Slice) Hibernate(a *archive.Archive, kind Kind) error {
	if err := s.Interval.Hibernate(a); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		p, err := newPayload(kind)
		if err != nil {
			return err
		}
		s.Payload = p
	}
	if s.Payload == nil {
		return fmt.Errorf("model: nil slice payload for kind %v", kind)
	}
	return s.Payload.Hibernate(a)
}

func newPayload(k Kind) (SlicePayload, error) {
	switch k {
	case KindAirport:
		return &AirportSlice{}, nil
	case KindNavaid:
		return &NavaidSlice{}, nil
	case KindDesignatedPoint:
		return &DesignatedPointSlice{}, nil
	case KindAngleIndication:
		return &AngleIndicationSlice{}, nil
	case KindDistanceIndication:
		return &DistanceIndicationSlice{}, nil
	case KindRouteSegment:
		return &RouteSegmentSlice{}, nil
	case KindRoute:
		return &RouteSlice{}, nil
	case KindSID:
		return &ProcedureSlice{IsStar: false}, nil
	case KindSTAR:
		return &ProcedureSlice{IsStar: true}, nil
	case KindDepartureLeg:
		return &ProcedureLegSlice{IsArrival: false}, nil
	case KindArrivalLeg:
		return &ProcedureLegSlice{IsArrival: true}, nil
	case KindStandardLevelTable:
		return &StandardLevelTableSlice{}, nil
	case KindAirportCollocation:
		return &AirportCollocationSlice{}, nil
	case KindAirspace:
		return &AirspaceSlice{}, nil
	case KindFlightRestriction:
		return &FlightRestrictionSlice{}, nil
	default:
		return nil, fmt.Errorf("model: unknown discriminant %d", k)
	}
}

// Object is the uniform representation of every ATS entity: an identifier,
// a kind, and the ordered sequence of time slices describing its state
// over disjoint intervals (§3). Every entity kind shares this one Go type;
// the kind-specific payload lives in Slices[i].Payload.
type Object struct {
	ID       uuid.UUID
	Kind     Kind
	Modified Time
	Slices   []Slice
}

// Hibernate is the single save/load/scandeps/resolvelinks routine for the
// whole object, per §4.1.1.
func (o *Object) Hibernate(a *archive.Archive) error {
	if err := a.UUID(&o.ID); err != nil {
		return err
	}
	k := uint8(o.Kind)
	if err := a.Discriminant(&k); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		o.Kind = Kind(k)
	}
	if err := o.Modified.Hibernate(a); err != nil {
		return err
	}
	return archive.Slice(a, &o.Slices, func(a *archive.Archive, s *Slice) error {
		return s.Hibernate(a, o.Kind)
	})
}

// SliceAt returns the slice containing instant t, if any (§3: "At most
// one slice contains a given instant").
func (o *Object) SliceAt(t Time) (*Slice, bool) {
	for i := range o.Slices {
		if o.Slices[i].Interval.Contains(t) {
			return &o.Slices[i], true
		}
	}
	return nil, false
}

// BBox returns the union of every slice's bounding box, or nil if no
// slice carries one.
func (o *Object) BBox() *geo.Rect {
	var u *geo.Rect
	for i := range o.Slices {
		b := o.Slices[i].Payload.BBox()
		if b == nil {
			continue
		}
		if u == nil {
			r := *b
			u = &r
		} else {
			r := u.Union(*b)
			u = &r
		}
	}
	return u
}

// Clone returns a deep copy of o, used by the store and evaluator when an
// in-flight mutation must not be observed by readers holding the cached
// instance (§3 Lifecycle: "may be cloned to preserve a snapshot while
// mutating").
func (o *Object) Clone() *Object {
	return deepCopyObject(o)
}
