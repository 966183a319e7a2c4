package model

import (
	"github.com/vfrnav/adr/internal/archive"
	"github.com/vfrnav/adr/pkg/geo"
)

// RouteSlice is the time-sliced state of a Route entity — little more than
// its identifier; the interesting state lives on the RouteSegments that
// reference it (§3 Route).
type RouteSlice struct {
	Ident string
}

func (RouteSlice) Kind() Kind       { return KindRoute }
func (*RouteSlice) BBox() *geo.Rect { return nil }

func (s *RouteSlice) Hibernate(a *archive.Archive) error {
	return a.String(&s.Ident)
}

// LevelEntry and AvailabilityEntry model the per-segment altitude/level
// publication data a RouteSegment carries (§3 RouteSegment).
type LevelEntry struct {
	AltRange  AltRange
	Direction Direction
}

func (e *LevelEntry) Hibernate(a *archive.Archive) error {
	if err := e.AltRange.Hibernate(a); err != nil {
		return err
	}
	d := uint8(e.Direction)
	if err := a.Uint8(&d); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		e.Direction = Direction(d)
	}
	return nil
}

// RouteSegmentSlice is the time-sliced state of a RouteSegment entity: a
// directed edge between two points along a named route, carrying the
// altitude band(s) it is available at (§3 RouteSegment).
type RouteSegmentSlice struct {
	Start             Ref
	End               Ref
	Route             Ref
	AltBand           AltRange
	LevelEntries      []LevelEntry
	Availability      BidirAltRange
	TerrainElevFt     int32 // computed corridor terrain elevation, if known
	HasTerrainElev    bool
}

func (RouteSegmentSlice) Kind() Kind       { return KindRouteSegment }
func (*RouteSegmentSlice) BBox() *geo.Rect { return nil } // resolved via endpoints by the caller

func (s *RouteSegmentSlice) Hibernate(a *archive.Archive) error {
	if err := archive.HibernateLink(a, &s.Start); err != nil {
		return err
	}
	if err := archive.HibernateLink(a, &s.End); err != nil {
		return err
	}
	if err := archive.HibernateLink(a, &s.Route); err != nil {
		return err
	}
	if err := s.AltBand.Hibernate(a); err != nil {
		return err
	}
	if err := archive.Slice(a, &s.LevelEntries, func(a *archive.Archive, e *LevelEntry) error {
		return e.Hibernate(a)
	}); err != nil {
		return err
	}
	if err := s.Availability.Hibernate(a); err != nil {
		return err
	}
	if err := a.Bool(&s.HasTerrainElev); err != nil {
		return err
	}
	return a.Int32(&s.TerrainElevFt)
}

// ProcedureStatus mirrors the SID/STAR status field (§3).
type ProcedureStatus uint8

const (
	ProcedureStatusUnknown ProcedureStatus = iota
	ProcedureStatusActive
	ProcedureStatusProposed
	ProcedureStatusWithdrawn
)

// ProcedureSlice is the shared time-sliced state for a
// StandardInstrumentDeparture or StandardInstrumentArrival entity; IsStar
// distinguishes the two (§3). IAF is only meaningful when IsStar is true.
type ProcedureSlice struct {
	IsStar          bool
	Ident           string
	Status          ProcedureStatus
	Airport         Ref
	ConnectionPoints RefSet
	IAF             Ref
	TimeTable       TimeTable
	Instruction     string
}

func (s *ProcedureSlice) Kind() Kind {
	if s.IsStar {
		return KindSTAR
	}
	return KindSID
}

func (*ProcedureSlice) BBox() *geo.Rect { return nil }

func (s *ProcedureSlice) Hibernate(a *archive.Archive) error {
	if err := a.String(&s.Ident); err != nil {
		return err
	}
	st := uint8(s.Status)
	if err := a.Uint8(&st); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		s.Status = ProcedureStatus(st)
	}
	if err := archive.HibernateLink(a, &s.Airport); err != nil {
		return err
	}
	if err := archive.HibernateLinkSet(a, &s.ConnectionPoints); err != nil {
		return err
	}
	if s.IsStar {
		if err := archive.HibernateLink(a, &s.IAF); err != nil {
			return err
		}
	}
	if err := s.TimeTable.Hibernate(a); err != nil {
		return err
	}
	return a.String(&s.Instruction)
}

// ProcedureLegSlice is a RouteSegment-like leg living inside a SID/STAR's
// published path (§3 Departure/ArrivalLeg).
type ProcedureLegSlice struct {
	IsArrival bool
	Procedure Ref
	Start     Ref
	End       Ref
	AltBand   AltRange
}

func (s *ProcedureLegSlice) Kind() Kind {
	if s.IsArrival {
		return KindArrivalLeg
	}
	return KindDepartureLeg
}

func (*ProcedureLegSlice) BBox() *geo.Rect { return nil }

func (s *ProcedureLegSlice) Hibernate(a *archive.Archive) error {
	if err := archive.HibernateLink(a, &s.Procedure); err != nil {
		return err
	}
	if err := archive.HibernateLink(a, &s.Start); err != nil {
		return err
	}
	if err := archive.HibernateLink(a, &s.End); err != nil {
		return err
	}
	return s.AltBand.Hibernate(a)
}

// LevelSeries partitions ICAO cruising levels by direction of flight (§3
// StandardLevelTable).
type LevelSeries uint8

const (
	SeriesEven LevelSeries = iota
	SeriesOdd
	SeriesUnidirectional
)

// StandardLevelColumn is one column of a StandardLevelTable: the set of
// flight levels assigned to a given direction series within an altitude
// band.
type StandardLevelColumn struct {
	Series LevelSeries
	Band   AltRange
	Levels []int32 // flight levels, in hundreds of feet
}

func (c *StandardLevelColumn) Hibernate(a *archive.Archive) error {
	s := uint8(c.Series)
	if err := a.Uint8(&s); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		c.Series = LevelSeries(s)
	}
	if err := c.Band.Hibernate(a); err != nil {
		return err
	}
	return archive.Slice(a, &c.Levels, func(a *archive.Archive, v *int32) error {
		return a.Int32(v)
	})
}

// StandardLevelTableSlice is the time-sliced state of a
// StandardLevelTable entity: the ICAO-standard cruising-level scheme,
// partitioned into columns by direction series (§3).
type StandardLevelTableSlice struct {
	Ident   string
	Columns []StandardLevelColumn
}

func (StandardLevelTableSlice) Kind() Kind       { return KindStandardLevelTable }
func (*StandardLevelTableSlice) BBox() *geo.Rect { return nil }

func (s *StandardLevelTableSlice) Hibernate(a *archive.Archive) error {
	if err := a.String(&s.Ident); err != nil {
		return err
	}
	return archive.Slice(a, &s.Columns, func(a *archive.Archive, c *StandardLevelColumn) error {
		return c.Hibernate(a)
	})
}

// LevelsFor returns the flight levels available at the given direction
// series within altFt, if any column of the table covers it.
func (s *StandardLevelTableSlice) LevelsFor(series LevelSeries, altFt int32) []int32 {
	for _, c := range s.Columns {
		if c.Series != series {
			continue
		}
		if altFt < c.Band.Lower.Feet || altFt > c.Band.Upper.Feet {
			continue
		}
		return c.Levels
	}
	return nil
}

// AirportCollocationSlice links a host airport to a served/collocated
// departure airport (§3 AirportCollocation).
type AirportCollocationSlice struct {
	Host Ref
	Dep  Ref
}

func (AirportCollocationSlice) Kind() Kind       { return KindAirportCollocation }
func (*AirportCollocationSlice) BBox() *geo.Rect { return nil }

func (s *AirportCollocationSlice) Hibernate(a *archive.Archive) error {
	if err := archive.HibernateLink(a, &s.Host); err != nil {
		return err
	}
	return archive.HibernateLink(a, &s.Dep)
}
