package model

import (
	"github.com/vfrnav/adr/internal/archive"
	"github.com/vfrnav/adr/pkg/geo"
)

// AirportFlags captures the civil/military and IFR departure/arrival
// capability bits the original discriminant packed alongside the kind
// byte (§9 design notes: flags live as ordinary fields here instead).
// Civil is the absence of the Military bit rather than a bit of its own,
// matching the concrete scenario in §8 where civ|depifr|arrifr renders as
// 0x0C.
type AirportFlags uint8

const (
	AirportCivil        AirportFlags = 0
	AirportMilitary     AirportFlags = 1 << 0
	AirportIFRDeparture AirportFlags = 1 << 2
	AirportIFRArrival   AirportFlags = 1 << 3
)

// AirportSlice is the time-sliced state of an Airport entity (§3).
type AirportSlice struct {
	Ident        string // ICAO identifier
	Name         string
	IATA         string
	ElevationFt  int32
	Coord        geo.Point
	Flags        AirportFlags
	ServedCities []string
}

func (AirportSlice) Kind() Kind { return KindAirport }

func (s *AirportSlice) BBox() *geo.Rect {
	r := geo.RectFromPoints(s.Coord)
	return &r
}

// TypeByte renders the legacy-compatible discriminant byte combining the
// category nibble (Airport = 0x40) with the flag bits, reproducing the
// concrete scenario in §8 ("the computed type byte to be 0x40 | 0x0C").
func (s *AirportSlice) TypeByte() byte {
	return 0x40 | byte(s.Flags)
}

func (s *AirportSlice) Hibernate(a *archive.Archive) error {
	if err := a.String(&s.Ident); err != nil {
		return err
	}
	if err := a.String(&s.Name); err != nil {
		return err
	}
	if err := a.String(&s.IATA); err != nil {
		return err
	}
	if err := a.Int32(&s.ElevationFt); err != nil {
		return err
	}
	if err := hibernatePoint(a, &s.Coord); err != nil {
		return err
	}
	flags := uint8(s.Flags)
	if err := a.Uint8(&flags); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		s.Flags = AirportFlags(flags)
	}
	return archive.Slice(a, &s.ServedCities, func(a *archive.Archive, v *string) error {
		return a.String(v)
	})
}
