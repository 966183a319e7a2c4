package model

import (
	"github.com/vfrnav/adr/internal/archive"
	"github.com/vfrnav/adr/pkg/geo"
)

// AirspaceGeometryKind distinguishes how an AirspaceSlice's lateral
// extent is described.
type AirspaceGeometryKind uint8

const (
	AirspaceGeometryPolygon AirspaceGeometryKind = iota
	AirspaceGeometryCircle
)

// AirspaceSlice is the time-sliced state of an Airspace entity (§3: "payload
// held by an external collaborator" in the source system — here it is
// fully modeled since the restriction evaluator's CrossingAirspace*
// conditions need real containment tests to operate on).
type AirspaceSlice struct {
	Ident      string
	Geometry   AirspaceGeometryKind
	Vertices   []geo.Point // polygon outer ring
	Holes      [][]geo.Point
	Center     geo.Point // circle center
	RadiusNM   float32   // circle radius
	FloorFt    int32
	CeilingFt  int32
	TimeTable  TimeTable
}

func (AirspaceSlice) Kind() Kind { return KindAirspace }

func (s *AirspaceSlice) BBox() *geo.Rect {
	switch s.Geometry {
	case AirspaceGeometryCircle:
		r := geo.RectFromPoints(
			geo.Offset(s.Center, 0, float64(s.RadiusNM)),
			geo.Offset(s.Center, 90, float64(s.RadiusNM)),
			geo.Offset(s.Center, 180, float64(s.RadiusNM)),
			geo.Offset(s.Center, 270, float64(s.RadiusNM)),
		)
		return &r
	default:
		if len(s.Vertices) == 0 {
			return nil
		}
		r := geo.RectFromPoints(s.Vertices...)
		return &r
	}
}

// Inside reports whether p at altFt lies within the airspace volume.
func (s *AirspaceSlice) Inside(p geo.Point, altFt int32) bool {
	if altFt <= s.FloorFt || altFt > s.CeilingFt {
		return false
	}
	switch s.Geometry {
	case AirspaceGeometryCircle:
		return geo.NMDistance(p, s.Center) < float64(s.RadiusNM)
	default:
		if !pointInPolygon(p, s.Vertices) {
			return false
		}
		for _, hole := range s.Holes {
			if pointInPolygon(p, hole) {
				return false
			}
		}
		return true
	}
}

// pointInPolygon implements the standard ray-casting test, grounded on
// the teacher's math.PointInPolygon2LL (same algorithm, float64 instead
// of float32 since airspace polygons here are not a hot per-frame path).
func pointInPolygon(p geo.Point, poly []geo.Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		pi, pj := poly[i], poly[j]
		if (pi.Lat > p.Lat) != (pj.Lat > p.Lat) {
			x := pj.Lon + (p.Lat-pj.Lat)/(pi.Lat-pj.Lat)*(pi.Lon-pj.Lon)
			if p.Lon < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

func (s *AirspaceSlice) Hibernate(a *archive.Archive) error {
	if err := a.String(&s.Ident); err != nil {
		return err
	}
	g := uint8(s.Geometry)
	if err := a.Uint8(&g); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		s.Geometry = AirspaceGeometryKind(g)
	}
	if err := hibernatePoints(a, &s.Vertices); err != nil {
		return err
	}
	if err := archive.Slice(a, &s.Holes, func(a *archive.Archive, h *[]geo.Point) error {
		return hibernatePoints(a, h)
	}); err != nil {
		return err
	}
	if err := hibernatePoint(a, &s.Center); err != nil {
		return err
	}
	if err := a.Float32(&s.RadiusNM); err != nil {
		return err
	}
	if err := a.Int32(&s.FloorFt); err != nil {
		return err
	}
	if err := a.Int32(&s.CeilingFt); err != nil {
		return err
	}
	return s.TimeTable.Hibernate(a)
}

func hibernatePoints(a *archive.Archive, pts *[]geo.Point) error {
	return archive.Slice(a, pts, func(a *archive.Archive, p *geo.Point) error {
		return hibernatePoint(a, p)
	})
}
