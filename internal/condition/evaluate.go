package condition

import (
	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

// AvailabilitySource answers CrossingAirspaceActive/CrossingAirwayAvailable
// queries against an external conditional-availability collaborator (an
// AUP). A nil source makes both kinds evaluate to Indeterminate, matching
// §7's contract that evaluation routines fall back rather than fail hard
// when an external answer isn't available.
type AvailabilitySource interface {
	AirspaceActive(airspaceID uuid.UUID, at model.Time) (bool, bool) // (active, known)
}

// Evaluate computes the CondResult of c against plan at the instant
// implied by plan's waypoint times (§4.2.2/§4.2.3). avail may be nil.
func Evaluate(c *model.Condition, plan Plan, avail AvailabilitySource) CondResult {
	if c == nil || c.Kind == model.ConditionInvalid {
		return Unknown()
	}
	r := evaluateKind(c, plan, avail)
	if c.Inv {
		return Not(r)
	}
	return r
}

func evaluateKind(c *model.Condition, plan Plan, avail AvailabilitySource) CondResult {
	switch c.Kind {
	case model.ConditionAnd:
		return evaluateAnd(c, plan, avail)
	case model.ConditionSeq:
		return evaluateSeq(c, plan, avail)
	case model.ConditionConstant:
		return Const(c.ConstantValue)
	case model.ConditionCrossingAirspace1:
		return evaluateCrossingAirspace1(c, plan)
	case model.ConditionCrossingAirspace2:
		return evaluateCrossingAirspace2(c, plan)
	case model.ConditionCrossingDct:
		return evaluateCrossingDct(c, plan)
	case model.ConditionCrossingAirway:
		return evaluateCrossingAirway(c, plan)
	case model.ConditionCrossingPoint:
		return evaluateCrossingPoint(c, plan)
	case model.ConditionDepArr:
		return evaluateDepArr(c, plan)
	case model.ConditionDepArrAirspace:
		return evaluateDepArrAirspace(c, plan)
	case model.ConditionSidStar:
		return evaluateSidStar(c, plan)
	case model.ConditionCrossingAirspaceActive:
		return evaluateCrossingAirspaceActive(c, plan, avail)
	case model.ConditionCrossingAirwayAvailable:
		return Unknown() // requires the DCT-pipeline's availability fold, not a flight-plan walk
	case model.ConditionDctLimit:
		return evaluateDctLimit(c, plan)
	case model.ConditionAircraft:
		return evaluateAircraft(c, plan)
	case model.ConditionFlight:
		return evaluateFlight(c, plan)
	default:
		return Unknown()
	}
}

// And implements §4.2.2's And node: conjunction of children, each with its
// own invert flag; when the outer node's Inv is set the combination
// behaves as an OR of (still individually inverted) children — handled by
// the caller's final Not(), so here we always conjoin.
func evaluateAnd(c *model.Condition, plan Plan, avail AvailabilitySource) CondResult {
	if len(c.Children) == 0 {
		return Const(true)
	}
	acc := Evaluate(&c.Children[0], plan, avail)
	for i := 1; i < len(c.Children); i++ {
		acc = And(acc, Evaluate(&c.Children[i], plan, avail))
	}
	return acc
}

// Seq requires children to match at strictly increasing waypoint
// positions (§4.2.2). Each child's witness vertex set must contain an
// index greater than the previous child's matched index; failing that the
// whole sequence is false.
func evaluateSeq(c *model.Condition, plan Plan, avail AvailabilitySource) CondResult {
	if len(c.Children) == 0 {
		return Const(true)
	}
	cursor := -1
	union := CondResult{Value: True}
	for i := range c.Children {
		res := Evaluate(&c.Children[i], plan, avail)
		if res.Value != True {
			return CondResult{Value: res.Value}
		}
		idx := minIndexAbove(res.Vertices, cursor)
		if idx < 0 {
			return Const(false)
		}
		cursor = idx
		union.Vertices = union.Vertices.union(res.Vertices)
		union.Edges = union.Edges.union(res.Edges)
	}
	return union
}

func minIndexAbove(s indexSet, min int) int {
	best := -1
	for _, i := range s.slice() {
		if i > min && (best < 0 || i < best) {
			best = i
		}
	}
	return best
}

func evaluateCrossingAirspace1(c *model.Condition, plan Plan) CondResult {
	aspc := resolveAirspace(c.Airspace)
	if aspc == nil {
		return Unknown()
	}
	var vertices []int
	// wptnr >= 2 exclusion, ported verbatim from the original's "exclude SID
	// and STAR leg" comment: the first and last waypoint of the plan are
	// never tested, since a filed SID/STAR leg there would otherwise false-
	// trigger a crossing that isn't really flown (adrrestriction1.cc
	// ConditionCrossingAirspace1::evaluate, the `wptnr = 2U ... wptnr+1U < n`
	// loop bounds).
	for i := 1; i < len(plan.Waypoints)-1; i++ {
		wp := plan.Waypoints[i]
		alt := c.AltRange.ResolveAgainst(aspc.FloorFt, aspc.CeilingFt, 0)
		if wp.AltFt < alt.Lower.Feet || wp.AltFt > alt.Upper.Feet {
			continue
		}
		if aspc.Inside(wp.Coord, wp.AltFt) {
			vertices = append(vertices, i)
		}
	}
	if len(vertices) == 0 {
		return Const(false)
	}
	r := Const(true)
	r.Vertices = newIndexSet(vertices...)
	if c.ReferenceLocation {
		r.RefLoc = &RefLocation{Index: vertices[0], ID: plan.Waypoints[vertices[0]].ID}
	}
	return r
}

func evaluateCrossingAirspace2(c *model.Condition, plan Plan) CondResult {
	a0 := resolveAirspace(c.Airspace)
	a1 := resolveAirspace(c.Airspace2)
	if a0 == nil || a1 == nil {
		return Unknown()
	}
	for i := 0; i+1 < len(plan.Waypoints); i++ {
		start, end := plan.Waypoints[i], plan.Waypoints[i+1]
		if a0.Inside(start.Coord, start.AltFt) && a1.Inside(end.Coord, end.AltFt) {
			r := Const(true)
			r.Vertices = newIndexSet(i, i+1)
			r.Edges = newIndexSet(i)
			return r
		}
	}
	return Const(false)
}

func evaluateCrossingDct(c *model.Condition, plan Plan) CondResult {
	for i := 0; i+1 < len(plan.Waypoints); i++ {
		start, end := plan.Waypoints[i], plan.Waypoints[i+1]
		if start.ID == c.Point.ID && end.ID == c.Point2.ID {
			if !altInRange(start.AltFt, c.AltRange) && !altInRange(end.AltFt, c.AltRange) {
				continue
			}
			r := Const(true)
			r.Vertices = newIndexSet(i, i+1)
			r.Edges = newIndexSet(i)
			r.XngEdges = newIndexSet(i)
			return r
		}
	}
	return Const(false)
}

// CrossingAirway threads the plan's waypoint sequence looking for a
// contiguous path matching c.Segments in order (§4.2.2: "possibly
// multi-segment; the evaluator threads the graph looking for a matching
// contiguous path"). Each entry of c.Segments must resolve to a
// RouteSegmentSlice whose own Start/End actually match the corresponding
// consecutive pair of plan waypoints (in either direction the segment's
// BidirAltRange permits) — matching by waypoint adjacency alone, ignoring
// the segment's real endpoints, would accept any route-shaped pair of
// legs whether or not they lie on the named airway.
func evaluateCrossingAirway(c *model.Condition, plan Plan) CondResult {
	if len(c.Segments) == 0 {
		return Const(false)
	}
	for start := 0; start+len(c.Segments) < len(plan.Waypoints); start++ {
		matched := true
		for j, segRef := range c.Segments {
			wpStart := plan.Waypoints[start+j]
			wpEnd := plan.Waypoints[start+j+1]
			seg := resolveRouteSegment(segRef)
			if seg == nil {
				matched = false
				break
			}
			avail, ok := legAvailability(seg, wpStart.ID, wpEnd.ID)
			if !ok {
				matched = false
				break
			}
			if wpStart.AltFt < c.AltRange.Lower.Feet || wpStart.AltFt > c.AltRange.Upper.Feet {
				matched = false
				break
			}
			if avail.Intersect(model.AltIntervalSet{Intervals: []model.AltInterval{{LowerFt: c.AltRange.Lower.Feet, UpperFt: c.AltRange.Upper.Feet}}}).IsEmpty() {
				matched = false
				break
			}
		}
		if matched {
			r := Const(true)
			idxs := make([]int, len(c.Segments)+1)
			for k := range idxs {
				idxs[k] = start + k
			}
			r.Vertices = newIndexSet(idxs...)
			edges := make([]int, len(c.Segments))
			for k := range edges {
				edges[k] = start + k
			}
			r.Edges = newIndexSet(edges...)
			return r
		}
	}
	return Const(false)
}

// legAvailability reports whether seg actually runs between wpStartID and
// wpEndID (in either direction) and, if so, the altitude band available in
// the direction flown.
func legAvailability(seg *model.RouteSegmentSlice, wpStartID, wpEndID uuid.UUID) (model.AltIntervalSet, bool) {
	if seg.Start.ID == wpStartID && seg.End.ID == wpEndID {
		return seg.Availability[model.Forward], true
	}
	if seg.Start.ID == wpEndID && seg.End.ID == wpStartID {
		return seg.Availability[model.Backward], true
	}
	return model.AltIntervalSet{}, false
}

func resolveRouteSegment(ref model.Ref) *model.RouteSegmentSlice {
	if !ref.Resolved() {
		return nil
	}
	for i := range ref.Object.Slices {
		if s, ok := ref.Object.Slices[i].Payload.(*model.RouteSegmentSlice); ok {
			return s
		}
	}
	return nil
}

func evaluateCrossingPoint(c *model.Condition, plan Plan) CondResult {
	for i, wp := range plan.Waypoints {
		if wp.ID == c.Point.ID && altInRange(wp.AltFt, c.AltRange) {
			r := Const(true)
			r.Vertices = newIndexSet(i)
			return r
		}
	}
	return Const(false)
}

func evaluateDepArr(c *model.Condition, plan Plan) CondResult {
	if len(plan.Waypoints) == 0 {
		return Unknown()
	}
	airport := plan.ArrivalAirport
	idx := len(plan.Waypoints) - 1
	if c.IsDeparture {
		airport = plan.DepartureAirport
		idx = 0
	}
	if airport == c.Airport.ID {
		r := Const(true)
		r.Vertices = newIndexSet(idx)
		return r
	}
	return Const(false)
}

func evaluateDepArrAirspace(c *model.Condition, plan Plan) CondResult {
	aspc := resolveAirspace(c.Airspace)
	if aspc == nil || len(plan.Waypoints) == 0 {
		return Unknown()
	}
	wp := plan.Waypoints[len(plan.Waypoints)-1]
	idx := len(plan.Waypoints) - 1
	if c.IsDeparture {
		wp = plan.Waypoints[0]
		idx = 0
	}
	if aspc.Inside(wp.Coord, wp.AltFt) {
		r := Const(true)
		r.Vertices = newIndexSet(idx)
		return r
	}
	return Const(false)
}

func evaluateSidStar(c *model.Condition, plan Plan) CondResult {
	proc := plan.ArrivalProc
	if c.IsStar {
		// proc already defaults to ArrivalProc, matching IsStar's meaning
	} else {
		proc = plan.DepartureProc
	}
	if proc == c.Proc.ID {
		return Const(true)
	}
	return Const(false)
}

func evaluateCrossingAirspaceActive(c *model.Condition, plan Plan, avail AvailabilitySource) CondResult {
	if avail == nil || len(plan.Waypoints) == 0 {
		return Unknown()
	}
	active, known := avail.AirspaceActive(c.Airspace.ID, plan.Waypoints[0].At)
	if !known {
		return Unknown()
	}
	return Const(active)
}

func evaluateDctLimit(c *model.Condition, plan Plan) CondResult {
	for i := 0; i+1 < len(plan.Waypoints); i++ {
		start, end := plan.Waypoints[i], plan.Waypoints[i+1]
		if start.ID.IsNil() || end.ID.IsNil() {
			continue
		}
		d := geo.NMDistance(start.Coord, end.Coord)
		if d > c.DctLimitNM {
			r := Const(true)
			r.Vertices = newIndexSet(i, i+1)
			r.XngEdges = newIndexSet(i)
			return r
		}
	}
	return Const(false)
}

func evaluateAircraft(c *model.Condition, plan Plan) CondResult {
	if containsString(c.AircraftClasses, plan.AircraftClass) &&
		containsString(c.EngineClasses, plan.EngineClass) &&
		plan.hasPBN(c.PBN) {
		return Const(true)
	}
	return Const(false)
}

func evaluateFlight(c *model.Condition, plan Plan) CondResult {
	return Const(containsString(c.FlightTypes, plan.FlightType))
}

func altInRange(altFt int32, r model.AltRange) bool {
	return altFt >= r.Lower.Feet && altFt <= r.Upper.Feet
}

// resolveAirspace returns the AirspaceSlice behind ref's resolved Object,
// or nil if unresolved or the object carries no current airspace slice.
func resolveAirspace(ref model.Ref) *model.AirspaceSlice {
	if !ref.Resolved() {
		return nil
	}
	for i := range ref.Object.Slices {
		if a, ok := ref.Object.Slices[i].Payload.(*model.AirspaceSlice); ok {
			return a
		}
	}
	return nil
}
