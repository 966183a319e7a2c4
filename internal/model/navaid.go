package model

import (
	"github.com/vfrnav/adr/internal/archive"
	"github.com/vfrnav/adr/pkg/geo"
)

// NavaidType enumerates the VOR/DME/NDB/ILS/LOC/MKR/TACAN family and its
// subvariants (§3 Navaid).
type NavaidType uint8

const (
	NavaidInvalid NavaidType = iota
	NavaidVOR
	NavaidVORDME
	NavaidVORTAC
	NavaidDME
	NavaidNDB
	NavaidNDBDME
	NavaidILS
	NavaidLOC
	NavaidLOCDME
	NavaidMKR
	NavaidTACAN
)

// NavaidSlice is the time-sliced state of a Navaid entity.
type NavaidSlice struct {
	Ident       string
	Name        string
	Coord       geo.Point
	ElevationFt int32
	Type        NavaidType
}

func (NavaidSlice) Kind() Kind { return KindNavaid }

func (s *NavaidSlice) BBox() *geo.Rect {
	r := geo.RectFromPoints(s.Coord)
	return &r
}

func (s *NavaidSlice) Hibernate(a *archive.Archive) error {
	if err := a.String(&s.Ident); err != nil {
		return err
	}
	if err := a.String(&s.Name); err != nil {
		return err
	}
	if err := hibernatePoint(a, &s.Coord); err != nil {
		return err
	}
	if err := a.Int32(&s.ElevationFt); err != nil {
		return err
	}
	t := uint8(s.Type)
	if err := a.Uint8(&t); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		s.Type = NavaidType(t)
	}
	return nil
}

// hibernatePoint hibernates a geo.Point through its wire fixed-point
// representation; shared by every entity that carries a single coordinate.
func hibernatePoint(a *archive.Archive, p *geo.Point) error {
	var lat, lon int32
	if a.Mode == archive.ModeSave {
		lat, lon = geo.ToFixed(p.Lat), geo.ToFixed(p.Lon)
	}
	if err := a.Coord(&lat, &lon); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		*p = geo.Point{Lat: geo.FromFixed(lat), Lon: geo.FromFixed(lon)}
	}
	return nil
}
