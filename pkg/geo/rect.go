package geo

import "math"

// Rect is an axis-aligned bounding box in the wire-format integer
// coordinate system used throughout the store: latitude and longitude are
// each scaled to the full range of a signed 32-bit integer (a "binary
// angular measure" of 2^31 units per 180 degrees), so that longitude wraps
// naturally at the antimeridian the same way a two's-complement integer
// wraps at overflow.
type Rect struct {
	SWLat, SWLon int32
	NELat, NELon int32
}

const scale = float64(1<<31) / 180.0

// ToFixed converts a floating-point degree value to the wire integer
// representation.
func ToFixed(deg float64) int32 {
	v := deg * scale
	if v > math.MaxInt32 {
		v = math.MaxInt32
	}
	if v < math.MinInt32 {
		v = math.MinInt32
	}
	return int32(v)
}

// FromFixed converts a wire integer coordinate back to floating-point
// degrees.
func FromFixed(v int32) float64 {
	return float64(v) / scale
}

// RectFromPoints returns the smallest Rect containing all of pts. Since a
// single point has no extent, it is SW == NE.
func RectFromPoints(pts ...Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{
		SWLat: ToFixed(pts[0].Lat), SWLon: ToFixed(pts[0].Lon),
		NELat: ToFixed(pts[0].Lat), NELon: ToFixed(pts[0].Lon),
	}
	for _, p := range pts[1:] {
		r = r.Union(RectFromPoints(p))
	}
	return r
}

// Union returns the smallest Rect containing both a and b. Longitude union
// is taken naively (SW/NE widened); callers that must handle wraparound
// unions explicitly construct the wrapped Rect themselves, mirroring the
// store's three-predicate wraparound query strategy rather than trying to
// infer intent from two arbitrary boxes.
func (a Rect) Union(b Rect) Rect {
	return Rect{
		SWLat: min32(a.SWLat, b.SWLat),
		SWLon: min32(a.SWLon, b.SWLon),
		NELat: max32(a.NELat, b.NELat),
		NELon: max32(a.NELon, b.NELon),
	}
}

// Wraps reports whether the Rect's longitude span crosses the antimeridian
// (i.e., SWLon > NELon in the wire representation).
func (r Rect) Wraps() bool {
	return r.SWLon > r.NELon
}

// Intersects reports whether r and o overlap, accounting for antimeridian
// wraparound on either rectangle per the three-predicate strategy of
// §4.1.2: a wrapping rectangle is tested as the union of its [-2^32,·] and
// [·,+2^32] shifted halves so a non-wrapping candidate matches at least one
// of the disjuncts.
func (r Rect) Intersects(o Rect) bool {
	if r.SWLat > o.NELat || o.SWLat > r.NELat {
		return false
	}
	for _, rs := range r.lonSpans() {
		for _, os := range o.lonSpans() {
			if rs.lo <= os.hi && os.lo <= rs.hi {
				return true
			}
		}
	}
	return false
}

type lonSpan struct{ lo, hi int64 }

// lonSpans decomposes the rectangle's longitude extent into one or three
// spans (shifted by ±2^32) so that wraparound intersection becomes plain
// interval overlap against another rectangle's equivalently-shifted spans.
func (r Rect) lonSpans() []lonSpan {
	const shift = int64(1) << 32
	lo, hi := int64(r.SWLon), int64(r.NELon)
	if !r.Wraps() {
		return []lonSpan{{lo, hi}}
	}
	// Wrapping: the true extent is [lo, hi+shift] modulo the circle;
	// represent it (and its -shift and +shift images) so any
	// non-wrapping candidate aligns with one copy.
	return []lonSpan{
		{lo - shift, hi},
		{lo, hi + shift},
		{lo + shift, hi + 2*shift},
	}
}

// Inside reports whether p lies within r, accounting for wraparound.
func (r Rect) Inside(p Point) bool {
	lat := ToFixed(p.Lat)
	if lat < r.SWLat || lat > r.NELat {
		return false
	}
	lon := int64(ToFixed(p.Lon))
	const shift = int64(1) << 32
	for _, s := range r.lonSpans() {
		if lon >= s.lo && lon <= s.hi {
			return true
		}
		if lon+shift >= s.lo && lon+shift <= s.hi {
			return true
		}
	}
	return false
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
