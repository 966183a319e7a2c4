package geo

import "testing"

func TestFixedRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 1, -1, 46.2381, -179.999, 179.999, 90, -90} {
		got := FromFixed(ToFixed(deg))
		if d := got - deg; d > 1e-5 || d < -1e-5 {
			t.Errorf("ToFixed/FromFixed(%v) = %v, too far off", deg, got)
		}
	}
}

func TestRectAntimeridianWrap(t *testing.T) {
	// A rectangle that wraps the antimeridian: SW at 178E, NE at -178E (182E).
	wrap := Rect{
		SWLat: ToFixed(-1), NELat: ToFixed(1),
		SWLon: ToFixed(178), NELon: ToFixed(-178),
	}
	if !wrap.Wraps() {
		t.Fatalf("expected wrap.Wraps() true")
	}

	p := Point{Lat: 0, Lon: 179}
	if !wrap.Inside(p) {
		t.Errorf("expected point at 179E to be inside wrapping rect")
	}

	query := Rect{
		SWLat: ToFixed(-1), NELat: ToFixed(1),
		SWLon: ToFixed(178), NELon: ToFixed(-178),
	}
	if !wrap.Intersects(query) {
		t.Errorf("expected wrapping rect to intersect itself")
	}

	nonOverlap := Rect{
		SWLat: ToFixed(-1), NELat: ToFixed(1),
		SWLon: ToFixed(10), NELon: ToFixed(20),
	}
	if wrap.Intersects(nonOverlap) {
		t.Errorf("did not expect wrap to intersect a disjoint box far from the antimeridian")
	}
}

func TestNMDistanceSanity(t *testing.T) {
	geneva := Point{Lat: 46.2381, Lon: 6.1089}
	if d := NMDistance(geneva, geneva); d != 0 {
		t.Errorf("distance to self should be 0, got %v", d)
	}
	zurich := Point{Lat: 47.4647, Lon: 8.5492}
	d := NMDistance(geneva, zurich)
	if d < 100 || d > 140 {
		t.Errorf("LSGG-LSZH distance = %v NM, expected ~110-120", d)
	}
}
