package model

import "github.com/vfrnav/adr/internal/archive"

// AltMode distinguishes the reference an altitude in an AltRange is
// measured against (§3 AltRange).
type AltMode uint8

const (
	AltModeInvalid AltMode = iota
	AltModeQNH
	AltModeSTD
	AltModeHeight
	AltModeFloor
	AltModeCeiling
)

// Alt is a signed altitude in feet paired with the mode it's measured in.
type Alt struct {
	Feet int32
	Mode AltMode
}

func (a *Alt) Hibernate(ar *archive.Archive) error {
	if err := ar.Int32(&a.Feet); err != nil {
		return err
	}
	m := uint8(a.Mode)
	if err := ar.Uint8(&m); err != nil {
		return err
	}
	if ar.Mode == archive.ModeLoad {
		a.Mode = AltMode(m)
	}
	return nil
}

// AltRange is a pair (Lower, Upper) of altitudes (§3 AltRange). QNH/STD are
// absolute; Height is above ground; Floor/Ceiling constrain relative to an
// airspace's vertical limits, additionally bounded by the given altitude.
type AltRange struct {
	Lower, Upper Alt
}

// Valid reports whether both bounds carry a real mode (not AltModeInvalid).
func (r AltRange) Valid() bool {
	return r.Lower.Mode != AltModeInvalid && r.Upper.Mode != AltModeInvalid
}

// Overlaps reports whether r and o, both interpreted as absolute
// feet ranges (QNH/STD comparison; Floor/Ceiling/Height resolution against
// a specific airspace is the caller's job via ResolveAgainst), intersect.
func (r AltRange) Overlaps(o AltRange) bool {
	return r.Lower.Feet <= o.Upper.Feet && o.Lower.Feet <= r.Upper.Feet
}

// ResolveAgainst returns an absolute AltRange with Floor/Ceiling/Height
// bounds resolved against the given airspace vertical limits (floorFt,
// ceilingFt) and ground elevation (groundFt).
func (r AltRange) ResolveAgainst(floorFt, ceilingFt, groundFt int32) AltRange {
	resolve := func(a Alt) int32 {
		switch a.Mode {
		case AltModeFloor:
			return max32(floorFt, a.Feet)
		case AltModeCeiling:
			return min32(ceilingFt, a.Feet)
		case AltModeHeight:
			return groundFt + a.Feet
		default:
			return a.Feet
		}
	}
	return AltRange{
		Lower: Alt{Feet: resolve(r.Lower), Mode: AltModeQNH},
		Upper: Alt{Feet: resolve(r.Upper), Mode: AltModeQNH},
	}
}

func (r *AltRange) Hibernate(a *archive.Archive) error {
	if err := r.Lower.Hibernate(a); err != nil {
		return err
	}
	return r.Upper.Hibernate(a)
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// Direction distinguishes the two directions a bidirectional altitude
// range can apply to.
type Direction int

const (
	Forward Direction = iota
	Backward
	NumDirections
)

// AltIntervalSet is a set of disjoint, ascending altitude intervals, each
// [LowerFt, UpperFt] inclusive, in feet.
type AltIntervalSet struct {
	Intervals []AltInterval
}

type AltInterval struct {
	LowerFt, UpperFt int32
}

// Full returns the interval set spanning the entire usable altitude range.
func Full() AltIntervalSet {
	return AltIntervalSet{Intervals: []AltInterval{{LowerFt: -1000, UpperFt: 600000}}}
}

// Empty returns the empty interval set.
func Empty() AltIntervalSet {
	return AltIntervalSet{}
}

// IsEmpty reports whether the set contains no altitudes.
func (s AltIntervalSet) IsEmpty() bool {
	return len(s.Intervals) == 0
}

func normalize(in []AltInterval) []AltInterval {
	if len(in) == 0 {
		return nil
	}
	sorted := append([]AltInterval(nil), in...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].LowerFt < sorted[j-1].LowerFt; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	out := sorted[:1]
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.LowerFt <= last.UpperFt+1 {
			if iv.UpperFt > last.UpperFt {
				last.UpperFt = iv.UpperFt
			}
		} else {
			out = append(out, iv)
		}
	}
	return out
}

// Union returns the altitudes present in either s or o.
func (s AltIntervalSet) Union(o AltIntervalSet) AltIntervalSet {
	return AltIntervalSet{Intervals: normalize(append(append([]AltInterval(nil), s.Intervals...), o.Intervals...))}
}

// Intersect returns the altitudes present in both s and o.
func (s AltIntervalSet) Intersect(o AltIntervalSet) AltIntervalSet {
	var out []AltInterval
	for _, a := range s.Intervals {
		for _, b := range o.Intervals {
			lo, hi := a.LowerFt, a.UpperFt
			if b.LowerFt > lo {
				lo = b.LowerFt
			}
			if b.UpperFt < hi {
				hi = b.UpperFt
			}
			if lo <= hi {
				out = append(out, AltInterval{LowerFt: lo, UpperFt: hi})
			}
		}
	}
	return AltIntervalSet{Intervals: normalize(out)}
}

// Subtract returns the altitudes present in s but not in o.
func (s AltIntervalSet) Subtract(o AltIntervalSet) AltIntervalSet {
	out := append([]AltInterval(nil), s.Intervals...)
	for _, b := range o.Intervals {
		var next []AltInterval
		for _, a := range out {
			if b.UpperFt < a.LowerFt || b.LowerFt > a.UpperFt {
				next = append(next, a)
				continue
			}
			if b.LowerFt > a.LowerFt {
				next = append(next, AltInterval{LowerFt: a.LowerFt, UpperFt: b.LowerFt - 1})
			}
			if b.UpperFt < a.UpperFt {
				next = append(next, AltInterval{LowerFt: b.UpperFt + 1, UpperFt: a.UpperFt})
			}
		}
		out = next
	}
	return AltIntervalSet{Intervals: normalize(out)}
}

// Complement returns the altitudes not present in s, within Full().
func (s AltIntervalSet) Complement() AltIntervalSet {
	return Full().Subtract(s)
}

// Equal reports whether s and o denote the same set of altitudes.
func (s AltIntervalSet) Equal(o AltIntervalSet) bool {
	ns, no := normalize(s.Intervals), normalize(o.Intervals)
	if len(ns) != len(no) {
		return false
	}
	for i := range ns {
		if ns[i] != no[i] {
			return false
		}
	}
	return true
}

// ContainsAlt reports whether altFt lies within the set.
func (s AltIntervalSet) ContainsAlt(altFt int32) bool {
	for _, iv := range s.Intervals {
		if altFt >= iv.LowerFt && altFt <= iv.UpperFt {
			return true
		}
	}
	return false
}

func (s *AltIntervalSet) Hibernate(a *archive.Archive) error {
	return archive.Slice(a, &s.Intervals, func(a *archive.Archive, iv *AltInterval) error {
		if err := a.Int32(&iv.LowerFt); err != nil {
			return err
		}
		return a.Int32(&iv.UpperFt)
	})
}

// BidirAltRange is a pair of altitude interval sets indexed by direction
// (§3 BidirAltRange). It supports the boolean algebra the DCT pipeline and
// the restriction evaluator need: AND/OR/XOR/subtraction/complement/
// equality and (via Less) a total order suitable for use as a map key
// surrogate in tests.
type BidirAltRange [NumDirections]AltIntervalSet

func (b BidirAltRange) And(o BidirAltRange) BidirAltRange {
	return BidirAltRange{b[Forward].Intersect(o[Forward]), b[Backward].Intersect(o[Backward])}
}

func (b BidirAltRange) Or(o BidirAltRange) BidirAltRange {
	return BidirAltRange{b[Forward].Union(o[Forward]), b[Backward].Union(o[Backward])}
}

func (b BidirAltRange) Xor(o BidirAltRange) BidirAltRange {
	return BidirAltRange{
		b[Forward].Union(o[Forward]).Subtract(b[Forward].Intersect(o[Forward])),
		b[Backward].Union(o[Backward]).Subtract(b[Backward].Intersect(o[Backward])),
	}
}

func (b BidirAltRange) Sub(o BidirAltRange) BidirAltRange {
	return BidirAltRange{b[Forward].Subtract(o[Forward]), b[Backward].Subtract(o[Backward])}
}

func (b BidirAltRange) Complement() BidirAltRange {
	return BidirAltRange{b[Forward].Complement(), b[Backward].Complement()}
}

func (b BidirAltRange) Equal(o BidirAltRange) bool {
	return b[Forward].Equal(o[Forward]) && b[Backward].Equal(o[Backward])
}

// Empty reports whether both directions are empty.
func (b BidirAltRange) Empty() bool {
	return b[Forward].IsEmpty() && b[Backward].IsEmpty()
}

// FullBidir returns full availability in both directions.
func FullBidir() BidirAltRange {
	return BidirAltRange{Full(), Full()}
}

// EmptyBidir returns no availability in either direction.
func EmptyBidir() BidirAltRange {
	return BidirAltRange{Empty(), Empty()}
}

func (b *BidirAltRange) Hibernate(a *archive.Archive) error {
	if err := b[Forward].Hibernate(a); err != nil {
		return err
	}
	return b[Backward].Hibernate(a)
}
