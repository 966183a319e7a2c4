package model

import (
	"github.com/vfrnav/adr/internal/archive"
	"github.com/vfrnav/adr/pkg/geo"
)

// DesignatedPointType enumerates how a point's position is defined (§3
// DesignatedPoint).
type DesignatedPointType uint8

const (
	PointTypeInvalid DesignatedPointType = iota
	PointTypeICAO                       // published 5-letter name
	PointTypeTerminal                   // terminal-area only significance
	PointTypeCoordinate                 // named by its lat/lon
	PointTypeBoundary                   // FIR/airspace boundary crossing point
	PointTypeReference                  // reference point for another construct
)

// DesignatedPointSlice is the time-sliced state of a DesignatedPoint
// entity.
type DesignatedPointSlice struct {
	Ident string
	Name  string
	Coord geo.Point
	Type  DesignatedPointType
}

func (DesignatedPointSlice) Kind() Kind { return KindDesignatedPoint }

func (s *DesignatedPointSlice) BBox() *geo.Rect {
	r := geo.RectFromPoints(s.Coord)
	return &r
}

func (s *DesignatedPointSlice) Hibernate(a *archive.Archive) error {
	if err := a.String(&s.Ident); err != nil {
		return err
	}
	if err := a.String(&s.Name); err != nil {
		return err
	}
	if err := hibernatePoint(a, &s.Coord); err != nil {
		return err
	}
	t := uint8(s.Type)
	if err := a.Uint8(&t); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		s.Type = DesignatedPointType(t)
	}
	return nil
}

// AngleIndicationSlice carries an angle (e.g. a radial) defined relative
// to a (fix, navaid) pair (§3).
type AngleIndicationSlice struct {
	Fix        Ref
	Navaid     Ref
	AngleDeg   float32
}

func (AngleIndicationSlice) Kind() Kind    { return KindAngleIndication }
func (*AngleIndicationSlice) BBox() *geo.Rect { return nil }

func (s *AngleIndicationSlice) Hibernate(a *archive.Archive) error {
	if err := archive.HibernateLink(a, &s.Fix); err != nil {
		return err
	}
	if err := archive.HibernateLink(a, &s.Navaid); err != nil {
		return err
	}
	return a.Float32(&s.AngleDeg)
}

// DistanceIndicationSlice carries a distance defined relative to a (fix,
// navaid) pair (§3).
type DistanceIndicationSlice struct {
	Fix        Ref
	Navaid     Ref
	DistanceNM float32
}

func (DistanceIndicationSlice) Kind() Kind       { return KindDistanceIndication }
func (*DistanceIndicationSlice) BBox() *geo.Rect { return nil }

func (s *DistanceIndicationSlice) Hibernate(a *archive.Archive) error {
	if err := archive.HibernateLink(a, &s.Fix); err != nil {
		return err
	}
	if err := archive.HibernateLink(a, &s.Navaid); err != nil {
		return err
	}
	return a.Float32(&s.DistanceNM)
}
