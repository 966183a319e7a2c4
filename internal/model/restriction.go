package model

import (
	"fmt"

	"github.com/vfrnav/adr/internal/archive"
	"github.com/vfrnav/adr/pkg/geo"
)

// ConditionKind enumerates the Condition tree node kinds (§4.2.2). The
// zero value, ConditionInvalid, is the archive's "absent" discriminant
// (archive.InvalidDiscriminant is used on the wire; ConditionInvalid is
// its in-memory counterpart).
type ConditionKind uint8

const (
	ConditionInvalid ConditionKind = iota
	ConditionAnd
	ConditionSeq
	ConditionConstant
	ConditionCrossingAirspace1
	ConditionCrossingAirspace2
	ConditionCrossingDct
	ConditionCrossingAirway
	ConditionCrossingPoint
	ConditionDepArr
	ConditionDepArrAirspace
	ConditionSidStar
	ConditionCrossingAirspaceActive
	ConditionCrossingAirwayAvailable
	ConditionDctLimit
	ConditionAircraft
	ConditionFlight
)

// Condition is a tagged tree (§4.2.2). A single flat struct holds the
// fields any variant might use; which are meaningful is determined by
// Kind, matching the design notes' "tagged sum types ... avoid deep
// inheritance" guidance and mirroring the teacher's AirspaceVolume, which
// uses the identical flat-struct-plus-type-tag shape for its two
// variants (polygon/circle).
type Condition struct {
	Kind ConditionKind
	Inv  bool // invert flag, meaningful on And (And+Inv behaves as Or) and leaves

	Children []Condition // And, Seq

	ConstantValue bool // Constant

	Airspace  Ref // CrossingAirspace1, CrossingAirspaceActive, DepArrAirspace
	Airspace2 Ref // CrossingAirspace2 (the "ends in" airspace)
	Point     Ref // CrossingPoint, CrossingDct endpoint A
	Point2    Ref // CrossingDct endpoint B
	Route     Ref // CrossingAirway, CrossingAirwayAvailable
	Segments  []Ref // multi-segment airway path, in order
	Proc      Ref   // SidStar
	Airport   Ref   // DepArr, DepArrAirspace

	AltRange AltRange

	ReferenceLocation bool // CrossingAirspace1: this condition supplies the refloc
	FuzzySweep        bool // CrossingAirspace2: probe offset azimuths
	IsStar            bool // SidStar: STAR vs SID test
	IsDeparture       bool // DepArr/DepArrAirspace: test first vs last waypoint

	DctLimitNM float64 // DctLimit

	AircraftClasses []string // Aircraft
	EngineClasses   []string // Aircraft
	PBN             []string // Aircraft
	FlightTypes     []string // Flight
}

func (c *Condition) Hibernate(a *archive.Archive) error {
	k := uint8(c.Kind)
	if c.Kind == ConditionInvalid {
		k = archive.InvalidDiscriminant
	}
	if err := a.Discriminant(&k); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		c.Kind = ConditionKind(k)
		if k == archive.InvalidDiscriminant {
			c.Kind = ConditionInvalid
		}
	}
	if c.Kind == ConditionInvalid {
		return nil
	}
	if err := a.Bool(&c.Inv); err != nil {
		return err
	}

	switch c.Kind {
	case ConditionAnd, ConditionSeq:
		if err := archive.Slice(a, &c.Children, func(a *archive.Archive, ch *Condition) error {
			return ch.Hibernate(a)
		}); err != nil {
			return err
		}
	case ConditionConstant:
		if err := a.Bool(&c.ConstantValue); err != nil {
			return err
		}
	case ConditionCrossingAirspace1:
		if err := archive.HibernateLink(a, &c.Airspace); err != nil {
			return err
		}
		if err := c.AltRange.Hibernate(a); err != nil {
			return err
		}
		if err := a.Bool(&c.ReferenceLocation); err != nil {
			return err
		}
	case ConditionCrossingAirspace2:
		if err := archive.HibernateLink(a, &c.Airspace); err != nil {
			return err
		}
		if err := archive.HibernateLink(a, &c.Airspace2); err != nil {
			return err
		}
		if err := c.AltRange.Hibernate(a); err != nil {
			return err
		}
		if err := a.Bool(&c.FuzzySweep); err != nil {
			return err
		}
	case ConditionCrossingDct:
		if err := archive.HibernateLink(a, &c.Point); err != nil {
			return err
		}
		if err := archive.HibernateLink(a, &c.Point2); err != nil {
			return err
		}
		if err := c.AltRange.Hibernate(a); err != nil {
			return err
		}
	case ConditionCrossingAirway, ConditionCrossingAirwayAvailable:
		if err := archive.HibernateLink(a, &c.Route); err != nil {
			return err
		}
		if err := archive.Slice(a, &c.Segments, func(a *archive.Archive, r *Ref) error {
			return archive.HibernateLink(a, r)
		}); err != nil {
			return err
		}
		if err := c.AltRange.Hibernate(a); err != nil {
			return err
		}
	case ConditionCrossingPoint:
		if err := archive.HibernateLink(a, &c.Point); err != nil {
			return err
		}
		if err := c.AltRange.Hibernate(a); err != nil {
			return err
		}
	case ConditionDepArr:
		if err := archive.HibernateLink(a, &c.Airport); err != nil {
			return err
		}
		if err := a.Bool(&c.IsDeparture); err != nil {
			return err
		}
	case ConditionDepArrAirspace:
		if err := archive.HibernateLink(a, &c.Airspace); err != nil {
			return err
		}
		if err := a.Bool(&c.IsDeparture); err != nil {
			return err
		}
	case ConditionSidStar:
		if err := archive.HibernateLink(a, &c.Proc); err != nil {
			return err
		}
		if err := a.Bool(&c.IsStar); err != nil {
			return err
		}
	case ConditionCrossingAirspaceActive:
		if err := archive.HibernateLink(a, &c.Airspace); err != nil {
			return err
		}
	case ConditionDctLimit:
		if err := a.Float64(&c.DctLimitNM); err != nil {
			return err
		}
	case ConditionAircraft:
		if err := hibernateStrings(a, &c.AircraftClasses); err != nil {
			return err
		}
		if err := hibernateStrings(a, &c.EngineClasses); err != nil {
			return err
		}
		if err := hibernateStrings(a, &c.PBN); err != nil {
			return err
		}
	case ConditionFlight:
		if err := hibernateStrings(a, &c.FlightTypes); err != nil {
			return err
		}
	default:
		return fmt.Errorf("model: unknown condition discriminant %d", c.Kind)
	}
	return nil
}

func hibernateStrings(a *archive.Archive, s *[]string) error {
	return archive.Slice(a, s, func(a *archive.Archive, v *string) error {
		return a.String(v)
	})
}

// RestrictionElementKind enumerates the restriction-element variants
// (§4.2.4).
type RestrictionElementKind uint8

const (
	RestrictionElementInvalid RestrictionElementKind = iota
	RestrictionElementRoute
	RestrictionElementPoint
	RestrictionElementSidStar
	RestrictionElementAirspace
)

// RestrictionElement is one member of a RestrictionSequence (§4.2.4).
type RestrictionElement struct {
	Kind RestrictionElementKind

	Wpt0, Wpt1 Ref   // Route
	Route      Ref   // Route (optional: along a specific airway)
	Segments   []Ref // Route (optional: specific segment chain)
	Point      Ref   // Point
	Proc       Ref   // SidStar
	IsStar     bool  // SidStar
	Airspace   Ref   // Airspace

	AltRange AltRange
}

func (e *RestrictionElement) Hibernate(a *archive.Archive) error {
	k := uint8(e.Kind)
	if err := a.Discriminant(&k); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		e.Kind = RestrictionElementKind(k)
	}
	switch e.Kind {
	case RestrictionElementRoute:
		if err := archive.HibernateLink(a, &e.Wpt0); err != nil {
			return err
		}
		if err := archive.HibernateLink(a, &e.Wpt1); err != nil {
			return err
		}
		if err := archive.HibernateLink(a, &e.Route); err != nil {
			return err
		}
		if err := archive.Slice(a, &e.Segments, func(a *archive.Archive, r *Ref) error {
			return archive.HibernateLink(a, r)
		}); err != nil {
			return err
		}
	case RestrictionElementPoint:
		if err := archive.HibernateLink(a, &e.Point); err != nil {
			return err
		}
	case RestrictionElementSidStar:
		if err := archive.HibernateLink(a, &e.Proc); err != nil {
			return err
		}
		if err := a.Bool(&e.IsStar); err != nil {
			return err
		}
	case RestrictionElementAirspace:
		if err := archive.HibernateLink(a, &e.Airspace); err != nil {
			return err
		}
	default:
		return fmt.Errorf("model: unknown restriction element discriminant %d", e.Kind)
	}
	return e.AltRange.Hibernate(a)
}

// RestrictionSequence is a conjunction of RestrictionElements (§4.2.4).
type RestrictionSequence []RestrictionElement

func (s *RestrictionSequence) Hibernate(a *archive.Archive) error {
	return archive.Slice(a, (*[]RestrictionElement)(s), func(a *archive.Archive, e *RestrictionElement) error {
		return e.Hibernate(a)
	})
}

// Restrictions is the full set of RestrictionSequence alternatives a
// mandatory/forbidden rule is checked against (§4.2.4).
type Restrictions []RestrictionSequence

func (r *Restrictions) Hibernate(a *archive.Archive) error {
	return archive.Slice(a, (*[]RestrictionSequence)(r), func(a *archive.Archive, s *RestrictionSequence) error {
		return s.Hibernate(a)
	})
}

// FlightRestrictionType enumerates the rule semantics (§3, §4.2.5).
type FlightRestrictionType uint8

const (
	RestrictionTypeInvalid FlightRestrictionType = iota
	RestrictionTypeMandatory
	RestrictionTypeForbidden
	RestrictionTypeClosed
	RestrictionTypeAllowed
)

// TypeChar renders the rule output type character (§6.4).
func (t FlightRestrictionType) TypeChar() byte {
	switch t {
	case RestrictionTypeMandatory:
		return 'M'
	case RestrictionTypeAllowed:
		return 'A'
	case RestrictionTypeForbidden:
		return 'F'
	case RestrictionTypeClosed:
		return 'C'
	default:
		return '-'
	}
}

// ProceduralKind enumerates the rule's procedural category (§3).
type ProceduralKind uint8

const (
	ProcKindInvalid ProceduralKind = iota
	ProcKindTFR
	ProcKindRADDCT
	ProcKindFRADCT
	ProcKindFPR
	ProcKindADCP
	ProcKindADFltRule
	ProcKindFltProp
)

// FlightRestrictionSlice is the time-sliced state of a FlightRestriction
// entity (§3).
type FlightRestrictionSlice struct {
	Ident        string
	Type         FlightRestrictionType
	ProcKind     ProceduralKind
	TimeTable    TimeTable
	BBox_        geo.Rect
	Condition    Condition
	Restrictions Restrictions
	Enabled      bool
	Trace        bool
	Instruction  string
}

func (FlightRestrictionSlice) Kind() Kind { return KindFlightRestriction }

func (s *FlightRestrictionSlice) BBox() *geo.Rect {
	r := s.BBox_
	return &r
}

func (s *FlightRestrictionSlice) Hibernate(a *archive.Archive) error {
	if err := a.String(&s.Ident); err != nil {
		return err
	}
	t := uint8(s.Type)
	if err := a.Uint8(&t); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		s.Type = FlightRestrictionType(t)
	}
	pk := uint8(s.ProcKind)
	if err := a.Uint8(&pk); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		s.ProcKind = ProceduralKind(pk)
	}
	if err := s.TimeTable.Hibernate(a); err != nil {
		return err
	}
	var sw, se, nw, ne int32
	if a.Mode == archive.ModeSave {
		sw, se, nw, ne = s.BBox_.SWLat, s.BBox_.SWLon, s.BBox_.NELat, s.BBox_.NELon
	}
	for _, f := range []*int32{&sw, &se, &nw, &ne} {
		if err := a.Int32(f); err != nil {
			return err
		}
	}
	if a.Mode == archive.ModeLoad {
		s.BBox_ = geo.Rect{SWLat: sw, SWLon: se, NELat: nw, NELon: ne}
	}
	if err := s.Condition.Hibernate(a); err != nil {
		return err
	}
	if err := s.Restrictions.Hibernate(a); err != nil {
		return err
	}
	if err := a.Bool(&s.Enabled); err != nil {
		return err
	}
	if err := a.Bool(&s.Trace); err != nil {
		return err
	}
	return a.String(&s.Instruction)
}
