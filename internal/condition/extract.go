package condition

import (
	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/uuid"
)

// ExtractCrossingPoints walks c and returns every Point/Point2 Ref named by
// a CrossingPoint or CrossingDct leaf anywhere in the tree, deduplicated by
// ID. Used by the dep/dest and complexity passes to know which waypoints a
// condition cares about without re-walking the tree themselves.
func ExtractCrossingPoints(c *model.Condition) []model.Ref {
	var out []model.Ref
	seen := map[uuid.UUID]struct{}{}
	add := func(r model.Ref) {
		if r.ID.IsNil() {
			return
		}
		if _, ok := seen[r.ID]; ok {
			return
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	walk(c, func(n *model.Condition) {
		switch n.Kind {
		case model.ConditionCrossingPoint:
			add(n.Point)
		case model.ConditionCrossingDct:
			add(n.Point)
			add(n.Point2)
		}
	})
	return out
}

// ExtractCrossingSegments returns every Segments Ref named by a
// CrossingAirway leaf anywhere in the tree, deduplicated by ID.
func ExtractCrossingSegments(c *model.Condition) []model.Ref {
	var out []model.Ref
	seen := map[uuid.UUID]struct{}{}
	walk(c, func(n *model.Condition) {
		if n.Kind != model.ConditionCrossingAirway {
			return
		}
		for _, s := range n.Segments {
			if s.ID.IsNil() {
				continue
			}
			if _, ok := seen[s.ID]; ok {
				continue
			}
			seen[s.ID] = struct{}{}
			out = append(out, s)
		}
	})
	return out
}

// ExtractCrossingAirspaces returns every Airspace/Airspace2 Ref named by a
// CrossingAirspace1/2 or DepArrAirspace leaf, deduplicated by ID.
func ExtractCrossingAirspaces(c *model.Condition) []model.Ref {
	var out []model.Ref
	seen := map[uuid.UUID]struct{}{}
	add := func(r model.Ref) {
		if r.ID.IsNil() {
			return
		}
		if _, ok := seen[r.ID]; ok {
			return
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	walk(c, func(n *model.Condition) {
		switch n.Kind {
		case model.ConditionCrossingAirspace1, model.ConditionDepArrAirspace, model.ConditionCrossingAirspaceActive:
			add(n.Airspace)
		case model.ConditionCrossingAirspace2:
			add(n.Airspace)
			add(n.Airspace2)
		}
	})
	return out
}

func walk(c *model.Condition, f func(*model.Condition)) {
	if c == nil {
		return
	}
	f(c)
	for i := range c.Children {
		walk(&c.Children[i], f)
	}
}

// AirwayExclusion is the shape of §4.2.4's restriction-rewrite example:
// `forbidden If AirwayCrossing(A) And Not (CrossingPoint(X) Or
// CrossingPoint(Y))` rewritten to `forbidden Crossings(X, Y) over airway A`.
// Route-segment threading between the excluded points needs the route
// graph, so this only recognizes the pattern and extracts its operands;
// the evaluator package performs the actual segment enumeration.
type AirwayExclusion struct {
	Airway   model.Ref
	Excluded []model.Ref
}

// MatchAirwayExclusion reports whether c is exactly an And of one
// CrossingAirway leaf and one inverted Or-of-CrossingPoint leaf (in either
// child order), returning the decomposed operands when it is.
func MatchAirwayExclusion(c *model.Condition) (AirwayExclusion, bool) {
	if c == nil || c.Kind != model.ConditionAnd || len(c.Children) != 2 {
		return AirwayExclusion{}, false
	}
	var airway *model.Condition
	var excl *model.Condition
	for i := range c.Children {
		ch := &c.Children[i]
		switch {
		case ch.Kind == model.ConditionCrossingAirway && airway == nil:
			airway = ch
		case ch.Kind == model.ConditionAnd && len(ch.Children) == 0 && ch.Inv:
			// a trivially-inverted empty And also counts as "not anything"
			excl = ch
		case isInvertedPointOr(ch):
			excl = ch
		}
	}
	if airway == nil || excl == nil {
		return AirwayExclusion{}, false
	}
	var points []model.Ref
	for i := range excl.Children {
		if excl.Children[i].Kind == model.ConditionCrossingPoint {
			points = append(points, excl.Children[i].Point)
		}
	}
	return AirwayExclusion{Airway: airway.Route, Excluded: points}, true
}

func isInvertedPointOr(c *model.Condition) bool {
	if c == nil || !c.Inv {
		return false
	}
	// An Or node is represented as an inverted And of inverted children
	// (De Morgan) in this tree shape, or directly as children meant to be
	// ORed by the caller's combination step; either way every child here
	// must be a CrossingPoint leaf for the pattern to apply.
	if len(c.Children) == 0 {
		return false
	}
	for i := range c.Children {
		if c.Children[i].Kind != model.ConditionCrossingPoint {
			return false
		}
	}
	return true
}
