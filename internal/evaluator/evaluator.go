// Package evaluator executes FlightRestriction rule sets against a filed
// plan (§4.2.5-§4.2.7): per-rule execution order, verdict accumulation, and
// the simplification pipeline that runs before evaluation.
package evaluator

import (
	"fmt"

	"github.com/vfrnav/adr/internal/condition"
	"github.com/vfrnav/adr/internal/model"
)

// RestrictionResult is one rule's verdict (§6.4): the responsible rule's
// ident, its type char, the witness vertex/edge sets, and the rendered
// rule text.
type RestrictionResult struct {
	Ident      string
	TypeChar   byte
	Vertices   []int
	Edges      []int
	RuleText   string
	Rejected   bool
}

// Rule pairs a FlightRestriction with a precomputed simplification,
// built once per evaluation session and reused across many plans.
type Rule struct {
	Slice      *model.FlightRestrictionSlice
	Simplified *model.Condition
	Static     condition.RouteStatic
}

// PrepareRule runs the §4.2.7 simplification cascade plus §4.2.6 route-
// static propagation over a rule's condition, once, ahead of any plan
// evaluation.
func PrepareRule(fr *model.FlightRestrictionSlice, ctx condition.SimplifyContext) Rule {
	simplified := condition.Simplify(&fr.Condition, ctx)
	return Rule{
		Slice:      fr,
		Simplified: simplified,
		Static:     condition.PropagateRouteStatic(simplified),
	}
}

// Evaluate runs every rule against plan in order (§4.2.5: "no short-circuit
// across rules") and returns one RestrictionResult per rule whose type/
// condition/restriction combination rejects the plan.
func Evaluate(rules []Rule, plan condition.Plan, avail condition.AvailabilitySource) []RestrictionResult {
	var out []RestrictionResult
	for _, rule := range rules {
		if res, fail := evaluateRule(rule, plan, avail); fail {
			out = append(out, res)
		}
	}
	return out
}

func evaluateRule(rule Rule, plan condition.Plan, avail condition.AvailabilitySource) (RestrictionResult, bool) {
	fr := rule.Slice
	cond := condition.Evaluate(rule.Simplified, plan, avail)

	base := RestrictionResult{
		Ident:    fr.Ident,
		TypeChar: fr.Type.TypeChar(),
		RuleText: renderRule(fr),
	}

	switch fr.Type {
	case model.RestrictionTypeClosed:
		if cond.Value == condition.True {
			base.Rejected = true
			base.Vertices = cond.VertexList()
			base.Edges = cond.EdgeList()
			return base, true
		}
	case model.RestrictionTypeForbidden:
		if cond.Value != condition.True {
			return base, false
		}
		if anyRestrictionMatches(fr.Restrictions, plan) {
			base.Rejected = true
			base.Vertices = cond.VertexList()
			base.Edges = cond.EdgeList()
			return base, true
		}
	case model.RestrictionTypeMandatory:
		if cond.Value != condition.True {
			return base, false
		}
		if !anyRestrictionMatches(fr.Restrictions, plan) {
			base.Rejected = true
			base.Vertices = cond.VertexList()
			base.Edges = cond.EdgeList()
			return base, true
		}
	case model.RestrictionTypeAllowed:
		// non-restrictive; used only by DCT analysis, never rejects a plan
	}
	return base, false
}

func anyRestrictionMatches(rs model.Restrictions, plan condition.Plan) bool {
	for _, seq := range rs {
		if sequenceMatches(seq, plan) {
			return true
		}
	}
	return false
}

// sequenceMatches reports whether every element of seq (interpreted as a
// conjunction, §4.2.4) finds a match in plan's waypoint sequence.
func sequenceMatches(seq model.RestrictionSequence, plan condition.Plan) bool {
	for _, el := range seq {
		if !elementMatches(el, plan) {
			return false
		}
	}
	return true
}

func elementMatches(el model.RestrictionElement, plan condition.Plan) bool {
	switch el.Kind {
	case model.RestrictionElementPoint:
		for _, wp := range plan.Waypoints {
			if wp.ID == el.Wpt0.ID && inAltRange(wp.AltFt, el.AltRange) {
				return true
			}
		}
	case model.RestrictionElementRoute:
		for i := 0; i+1 < len(plan.Waypoints); i++ {
			s, e := plan.Waypoints[i], plan.Waypoints[i+1]
			if s.ID == el.Wpt0.ID && e.ID == el.Wpt1.ID &&
				(inAltRange(s.AltFt, el.AltRange) || inAltRange(e.AltFt, el.AltRange)) {
				return true
			}
		}
	case model.RestrictionElementSidStar:
		proc := plan.ArrivalProc
		if !el.IsStar {
			proc = plan.DepartureProc
		}
		return proc == el.Proc.ID
	case model.RestrictionElementAirspace:
		aspc := resolveAirspace(el.Airspace)
		if aspc == nil {
			return false
		}
		for _, wp := range plan.Waypoints {
			if aspc.Inside(wp.Coord, wp.AltFt) && inAltRange(wp.AltFt, el.AltRange) {
				return true
			}
		}
	}
	return false
}

func inAltRange(altFt int32, r model.AltRange) bool {
	if !r.Valid() {
		return true
	}
	return altFt >= r.Lower.Feet && altFt <= r.Upper.Feet
}

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

// renderRule produces the §6.4 human-readable rule text.
func renderRule(fr *model.FlightRestrictionSlice) string {
	return fmt.Sprintf("%s %c %s", fr.Ident, fr.Type.TypeChar(), fr.Instruction)
}
