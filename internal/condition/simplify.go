package condition

import (
	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

// RouteStatic is the §4.2.6 compile-time truth lattice: a condition is
// route-static iff its value depends only on the filed path, never on time
// or traffic.
type RouteStatic int

const (
	NonStatic RouteStatic = iota
	StaticTrue
	StaticFalse
	StaticUnknown
)

// routeStaticLeaf reports which ConditionKinds are inherently route-static
// leaves versus ones that depend on time/traffic/external collaborators.
func routeStaticLeaf(k model.ConditionKind) RouteStatic {
	switch k {
	case model.ConditionCrossingAirspace1, model.ConditionCrossingAirspace2,
		model.ConditionCrossingDct, model.ConditionCrossingAirway,
		model.ConditionCrossingPoint, model.ConditionDepArr,
		model.ConditionDepArrAirspace, model.ConditionSidStar,
		model.ConditionDctLimit, model.ConditionAircraft, model.ConditionFlight:
		return StaticUnknown // depends on the filed path/aircraft, resolved per-plan below
	case model.ConditionCrossingAirspaceActive, model.ConditionCrossingAirwayAvailable:
		return NonStatic // depends on a conditional-availability switch point
	default:
		return NonStatic
	}
}

// PropagateRouteStatic implements §4.2.6's recursive propagation: And/Seq
// combine children per the obvious truth-table, Constant resolves
// immediately, and every other leaf is route-static exactly when its
// defining Refs don't involve a time-varying collaborator.
func PropagateRouteStatic(c *model.Condition) RouteStatic {
	if c == nil {
		return NonStatic
	}
	var r RouteStatic
	switch c.Kind {
	case model.ConditionConstant:
		if c.ConstantValue {
			r = StaticTrue
		} else {
			r = StaticFalse
		}
	case model.ConditionAnd, model.ConditionSeq:
		r = StaticTrue
		for i := range c.Children {
			cr := PropagateRouteStatic(&c.Children[i])
			r = andRouteStatic(r, cr)
		}
	default:
		r = routeStaticLeaf(c.Kind)
	}
	if c.Inv {
		r = notRouteStatic(r)
	}
	return r
}

func andRouteStatic(a, b RouteStatic) RouteStatic {
	if a == StaticFalse || b == StaticFalse {
		return StaticFalse
	}
	if a == NonStatic || b == NonStatic {
		return NonStatic
	}
	if a == StaticUnknown || b == StaticUnknown {
		return StaticUnknown
	}
	return StaticTrue
}

func notRouteStatic(a RouteStatic) RouteStatic {
	switch a {
	case StaticTrue:
		return StaticFalse
	case StaticFalse:
		return StaticTrue
	default:
		return a
	}
}

// Simplify applies the §4.2.7 cascade — constant folding, bbox pruning,
// aircraft/equipment/PBN specialisation, and dep/dest specialisation — and
// returns a possibly-shallower tree with the same evaluate() result for
// every plan admitted by the given filters. Any filter left at its zero
// value is treated as "don't specialise on this axis".
type SimplifyContext struct {
	Bbox          geo.Rect
	HasBbox       bool
	AircraftClass string
	EngineClass   string
	PBN           []string
	DepartureID   uuid.UUID
	ArrivalID     uuid.UUID
	HasAirports   bool
}

// Simplify folds constants, prunes by bbox, and specialises aircraft/
// equipment/PBN and dep/dest leaves against ctx, returning a new tree.
func Simplify(c *model.Condition, ctx SimplifyContext) *model.Condition {
	if c == nil {
		return nil
	}
	out := *c
	// fold replaces c by a constant, keeping c's own invert flag applied.
	fold := func(v bool) *model.Condition { return constNode(v != c.Inv) }
	switch c.Kind {
	case model.ConditionAnd, model.ConditionSeq:
		children := make([]model.Condition, 0, len(c.Children))
		for i := range c.Children {
			sc := Simplify(&c.Children[i], ctx)
			if sc.Kind == model.ConditionConstant {
				v := sc.ConstantValue
				if sc.Inv {
					v = !v
				}
				if !v && c.Kind == model.ConditionAnd {
					return fold(false)
				}
				if v {
					continue // true children drop out of an And/Seq conjunction
				}
			}
			children = append(children, *sc)
		}
		if len(children) == 0 {
			return fold(true)
		}
		out.Children = children
		return &out
	case model.ConditionCrossingAirspace1, model.ConditionCrossingAirspace2,
		model.ConditionCrossingPoint, model.ConditionCrossingDct,
		model.ConditionDepArrAirspace:
		if ctx.HasBbox && !refBboxIntersects(c, ctx.Bbox) {
			return fold(false)
		}
	case model.ConditionAircraft:
		if ctx.AircraftClass != "" && !containsString(c.AircraftClasses, ctx.AircraftClass) {
			return fold(false)
		}
		if ctx.EngineClass != "" && !containsString(c.EngineClasses, ctx.EngineClass) {
			return fold(false)
		}
		if len(ctx.PBN) > 0 && len(c.PBN) > 0 && !pbnOverlap(c.PBN, ctx.PBN) {
			return fold(false)
		}
	case model.ConditionDepArr:
		if ctx.HasAirports {
			want := ctx.ArrivalID
			if c.IsDeparture {
				want = ctx.DepartureID
			}
			if !want.IsNil() && c.Airport.ID != want {
				return fold(false)
			}
		}
	}
	return &out
}

func constNode(v bool) *model.Condition {
	return &model.Condition{Kind: model.ConditionConstant, ConstantValue: v}
}

func pbnOverlap(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// refBboxIntersects reports whether any geo-carrying Ref a leaf condition
// names has a resolved bounding box overlapping box. Unresolved refs are
// conservatively kept (never pruned), matching §4.2.7's "drop children
// whose geographical extent does not intersect" — a safe rule is only
// ever applied once refs are resolved.
func refBboxIntersects(c *model.Condition, box geo.Rect) bool {
	refs := []model.Ref{c.Airspace, c.Airspace2, c.Point, c.Point2, c.Airport}
	any := false
	for _, r := range refs {
		if !r.Resolved() {
			continue
		}
		any = true
		if r.Object.BBox() != nil && r.Object.BBox().Intersects(box) {
			return true
		}
	}
	return !any
}
