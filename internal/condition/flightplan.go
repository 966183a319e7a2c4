package condition

import (
	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

// Waypoint is one filed point along a flight plan, with the altitude and
// time the plan is expected to cross it.
type Waypoint struct {
	ID    uuid.UUID
	Coord geo.Point
	AltFt int32
	At    model.Time
}

// Plan is the filed route a Condition is evaluated against, plus the
// aircraft/flight classification fields the Aircraft/Flight leaves test.
type Plan struct {
	Waypoints       []Waypoint
	BBox            geo.Rect
	DepartureAirport uuid.UUID
	ArrivalAirport   uuid.UUID
	DepartureProc    uuid.UUID // filed SID, if any
	ArrivalProc      uuid.UUID // filed STAR, if any
	AircraftClass    string
	EngineClass      string
	PBN              []string
	FlightType       string
}

func (p Plan) hasPBN(want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, have := range p.PBN {
			if have == w {
				return true
			}
		}
	}
	return false
}

func containsString(ss []string, v string) bool {
	if len(ss) == 0 {
		return true
	}
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
