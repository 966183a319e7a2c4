package dct

import (
	"sort"

	"github.com/vfrnav/adr/internal/condition"
	"github.com/vfrnav/adr/internal/evaluator"
	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/internal/routegraph"
	"github.com/vfrnav/adr/internal/terrain"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

// ApplicableRule is one DCT-applicable rule slice plus its prepared
// simplification, as handed to ComputePair for every candidate the rule's
// time slice and bounding box might cover.
type ApplicableRule struct {
	Rule     evaluator.Rule
	BBox     geo.Rect
	TimeSpan model.TimeInterval
	Table    model.TimeTable
}

// SubResult is one sub-interval's computed availability for a candidate
// pair (§4.3.2 step 2-4).
type SubResult struct {
	Span  model.TimeInterval
	Alt   model.BidirAltRange
}

// PairResult is the complete §4.3.2 output for one candidate pair: a list
// of (time sub-interval, bidirectional altset) records.
type PairResult struct {
	A, B Candidate
	Subs []SubResult
}

// timeDiscontinuities implements §4.3.2 step 1: union the slice
// boundaries of both points (not modeled here — points are eternal in
// this simplified object model snapshot — so only rule/AUP/airport-limit
// discontinuities are folded in) with every rule's time-table
// discontinuities, restricted to [cutoff, futureCutoff).
func timeDiscontinuities(rules []ApplicableRule, cutoff, futureCutoff model.Time) []model.Time {
	span := model.TimeInterval{Start: cutoff, End: futureCutoff}
	set := map[model.Time]struct{}{cutoff: {}, futureCutoff: {}}
	for _, r := range rules {
		for _, t := range r.Table.Discontinuities(span) {
			set[t] = struct{}{}
		}
	}
	out := make([]model.Time, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ComputePair runs §4.3.2 in full for one candidate pair: discontinuity
// folding, per-sub-interval availability, an optional terrain floor, and
// optional airway-preferred elision against g (nil skips elision).
func ComputePair(a, b Candidate, rules []ApplicableRule, avail condition.AvailabilitySource,
	cutoff, futureCutoff model.Time, oracle terrain.Oracle, g *routegraph.Graph) PairResult {

	times := timeDiscontinuities(rules, cutoff, futureCutoff)
	res := PairResult{A: a, B: b}

	for i := 0; i+1 < len(times); i++ {
		span := model.TimeInterval{Start: times[i], End: times[i+1]}
		alt := subIntervalAvailability(a, b, rules, avail, span)

		if oracle != nil {
			if elev, err := oracle.ElevationFt(a.Coord, b.Coord); err == nil {
				floorFt := terrain.Floor(elev)
				clamp := model.AltIntervalSet{Intervals: []model.AltInterval{{LowerFt: floorFt, UpperFt: 1 << 30}}}
				alt[model.Forward] = alt[model.Forward].Intersect(clamp)
				alt[model.Backward] = alt[model.Backward].Intersect(clamp)
			}
		}

		if g != nil {
			alt = applyAirwayElision(a, b, alt, g)
		}

		res.Subs = append(res.Subs, SubResult{Span: span, Alt: alt})
	}
	return res
}

// subIntervalAvailability computes the per-direction allowed set for one
// sub-interval (§4.3.2 steps 2a-2b): full for enroute pairs, empty
// otherwise; the band of every covering Forbidden or Closed rule is then
// subtracted, and the band of every covering Mandatory rule intersected.
func subIntervalAvailability(a, b Candidate, rules []ApplicableRule, avail condition.AvailabilitySource, span model.TimeInterval) model.BidirAltRange {
	var cur model.BidirAltRange
	if !a.IsAirport && !b.IsAirport {
		cur = model.FullBidir()
	} else {
		cur = model.EmptyBidir()
	}

	plan := condition.Plan{Waypoints: []condition.Waypoint{
		{ID: a.ID, Coord: a.Coord, At: span.Start},
		{ID: b.ID, Coord: b.Coord, At: span.Start},
	}}

	for _, r := range rules {
		if !r.TimeSpan.Intersects(span) {
			continue
		}
		forbidden := evaluateDct(r.Rule.Simplified, plan, avail)
		switch r.Rule.Slice.Type {
		case model.RestrictionTypeForbidden, model.RestrictionTypeClosed:
			cur = cur.Sub(forbidden)
		case model.RestrictionTypeMandatory:
			cur = model.BidirAltRange{cur[model.Forward].Intersect(forbidden[model.Forward]), cur[model.Backward].Intersect(forbidden[model.Backward])}
		}
	}
	return cur
}

// evaluateDct computes the BidirAltRange a condition forbids for the given
// plan (the condition.evaluate_dct of §4.3.2.2b). Conditions this package
// can resolve to a concrete altitude band contribute it directly;
// everything else is conservatively treated as "forbids nothing" since a
// full route-aware evaluate_dct needs the same machinery as Evaluate plus
// per-kind altitude projection, which for point-pair candidates collapses
// to the leaf's own AltRange when the leaf names one of the two points.
func evaluateDct(c *model.Condition, plan condition.Plan, avail condition.AvailabilitySource) model.BidirAltRange {
	if c == nil {
		return model.EmptyBidir()
	}
	switch c.Kind {
	case model.ConditionAnd:
		acc := model.FullBidir()
		for i := range c.Children {
			acc = acc.And(evaluateDct(&c.Children[i], plan, avail))
		}
		return acc
	case model.ConditionCrossingDct, model.ConditionCrossingPoint, model.ConditionDctLimit:
		r := condition.Evaluate(c, plan, avail)
		if r.Value != condition.True {
			return model.EmptyBidir()
		}
		set := model.AltIntervalSet{Intervals: []model.AltInterval{{LowerFt: c.AltRange.Lower.Feet, UpperFt: c.AltRange.Upper.Feet}}}
		return model.BidirAltRange{set, set}
	default:
		return model.EmptyBidir()
	}
}

// applyAirwayElision implements §4.3.2 step 4: if the geodesic distance
// between a and b is within 1.02x of the shortest airway path between
// them, trim alt by the altitudes actually available along that path.
func applyAirwayElision(a, b Candidate, alt model.BidirAltRange, g *routegraph.Graph) model.BidirAltRange {
	direct := geo.NMDistance(a.Coord, b.Coord)
	f := routegraph.AltrangeTimeEdgeFilter{Graph: g, AltBand: model.AltRange{Upper: model.Alt{Feet: 1 << 30, Mode: model.AltModeSTD}}}
	path, pathDist, ok := routegraph.ShortestPath(f, a.ID, b.ID)
	if !ok || pathDist > direct*1.02 {
		return alt
	}
	available := airwayPathAvailability(g, path)
	return model.BidirAltRange{alt[model.Forward].Intersect(available[model.Forward]), alt[model.Backward].Intersect(available[model.Backward])}
}

// airwayPathAvailability folds the Availability of every leg of path (as
// returned by ShortestPath, start to end inclusive) into a single
// BidirAltRange: a vertex pair is only as available as the most restricted
// leg between them, in each direction independently.
func airwayPathAvailability(g *routegraph.Graph, path []uuid.UUID) model.BidirAltRange {
	avail := model.FullBidir()
	for i := 0; i+1 < len(path); i++ {
		from, to := path[i], path[i+1]
		leg, ok := findEdge(g, from, to)
		if !ok {
			return model.EmptyBidir()
		}
		avail = avail.And(leg.Availability)
	}
	return avail
}

func findEdge(g *routegraph.Graph, from, to uuid.UUID) (routegraph.Edge, bool) {
	for _, e := range g.Edges(from) {
		if e.End == to {
			return e, true
		}
	}
	return routegraph.Edge{}, false
}
