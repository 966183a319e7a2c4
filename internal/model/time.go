// Package model implements the ADR object model (§3): the tagged
// enumeration of ATS entity kinds, each carrying an ordered sequence of
// time slices, plus the shared value types (Time, TimeInterval, AltRange,
// BidirAltRange) those slices are built from.
package model

import (
	"math"

	"github.com/vfrnav/adr/internal/archive"
)

// Time is a monotonic epoch-seconds value. The distinguished values
// TimeUnboundedPast and TimeUnboundedFuture mean "unbounded in the
// past/future" respectively.
type Time uint64

const (
	TimeUnboundedPast   Time = 0
	TimeUnboundedFuture Time = math.MaxUint64
)

// Hibernate encodes/decodes t as a fixed-width 64-bit little-endian value.
func (t *Time) Hibernate(a *archive.Archive) error {
	u := uint64(*t)
	if err := a.Uint64(&u); err != nil {
		return err
	}
	if a.Mode == archive.ModeLoad {
		*t = Time(u)
	}
	return nil
}

// Before reports whether t is strictly earlier than o, treating the
// unbounded sentinels correctly (unbounded past is before everything but
// itself; unbounded future is after everything but itself).
func (t Time) Before(o Time) bool { return t < o }

// TimeInterval is a half-open [Start, End) pair. An interval is empty iff
// Start >= End.
type TimeInterval struct {
	Start, End Time
}

// Empty reports whether the interval contains no instants.
func (iv TimeInterval) Empty() bool {
	return iv.Start >= iv.End
}

// Contains reports whether t falls within [Start, End).
func (iv TimeInterval) Contains(t Time) bool {
	return iv.Start <= t && t < iv.End
}

// Intersects reports whether iv and o share any instant.
func (iv TimeInterval) Intersects(o TimeInterval) bool {
	if iv.Empty() || o.Empty() {
		return false
	}
	return iv.Start < o.End && o.Start < iv.End
}

// Intersect returns the overlap of iv and o; the result may be empty.
func (iv TimeInterval) Intersect(o TimeInterval) TimeInterval {
	start := iv.Start
	if o.Start > start {
		start = o.Start
	}
	end := iv.End
	if o.End < end {
		end = o.End
	}
	return TimeInterval{Start: start, End: end}
}

func (iv *TimeInterval) Hibernate(a *archive.Archive) error {
	if err := iv.Start.Hibernate(a); err != nil {
		return err
	}
	return iv.End.Hibernate(a)
}

// TimeTable is an ordered set of effective intervals at which some
// property (a rule, a procedure, an airspace) is active. An empty
// TimeTable means "always active" in the contexts that use it as an
// optional override (matching the teacher's "absent means default"
// convention for optional fields).
type TimeTable struct {
	Intervals []TimeInterval
}

// Active reports whether t falls within any interval of the table. A
// TimeTable with no intervals is considered always active.
func (tt TimeTable) Active(t Time) bool {
	if len(tt.Intervals) == 0 {
		return true
	}
	for _, iv := range tt.Intervals {
		if iv.Contains(t) {
			return true
		}
	}
	return false
}

// CoversFully reports whether the table's intervals, as a union, cover the
// whole of span without gaps.
func (tt TimeTable) CoversFully(span TimeInterval) bool {
	if len(tt.Intervals) == 0 {
		return true
	}
	cursor := span.Start
	for _, iv := range sortedIntervals(tt.Intervals) {
		ov := iv.Intersect(span)
		if ov.Empty() {
			continue
		}
		if ov.Start > cursor {
			return false
		}
		if ov.End > cursor {
			cursor = ov.End
		}
	}
	return cursor >= span.End
}

// Discontinuities returns the sorted, de-duplicated set of interval
// start/end times that fall strictly inside span — the "time discontinuity
// points" used by the DCT pipeline (§4.3.2) to subdivide a candidate
// pair's evaluation window.
func (tt TimeTable) Discontinuities(span TimeInterval) []Time {
	seen := map[Time]struct{}{}
	var out []Time
	add := func(t Time) {
		if t > span.Start && t < span.End {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	for _, iv := range tt.Intervals {
		add(iv.Start)
		add(iv.End)
	}
	sortTimes(out)
	return out
}

// Split partitions span at every discontinuity in the table, returning
// the resulting sub-intervals in order (§4.3.2 step 2b: "split the
// interval further via TimeTable::split").
func (tt TimeTable) Split(span TimeInterval) []TimeInterval {
	pts := tt.Discontinuities(span)
	out := make([]TimeInterval, 0, len(pts)+1)
	cursor := span.Start
	for _, p := range pts {
		out = append(out, TimeInterval{Start: cursor, End: p})
		cursor = p
	}
	out = append(out, TimeInterval{Start: cursor, End: span.End})
	return out
}

func sortedIntervals(in []TimeInterval) []TimeInterval {
	out := append([]TimeInterval(nil), in...)
	sortIntervals(out)
	return out
}

func sortIntervals(s []TimeInterval) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].Start < s[j-1].Start; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func sortTimes(s []Time) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func (tt *TimeTable) Hibernate(a *archive.Archive) error {
	return archive.Slice(a, &tt.Intervals, func(a *archive.Archive, iv *TimeInterval) error {
		return iv.Hibernate(a)
	})
}
