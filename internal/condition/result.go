// Package condition implements the evaluation and simplification algebra
// over model.Condition trees (§4.2.2-§4.2.4, §4.2.7).
package condition

import "github.com/vfrnav/adr/pkg/uuid"

// TriState is the {true, false, indeterminate} value a Condition evaluates
// to (§4.2.3).
type TriState int

const (
	False TriState = iota
	True
	Indeterminate
)

func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "indeterminate"
	}
}

// indexSet is a small sorted-set-of-int helper used for vertex/edge/xngedge
// witness sets; a plain map is used since these sets stay small (bounded by
// flight plan length) and never need ordered iteration guarantees beyond
// what the rendering layer re-sorts itself.
type indexSet map[int]struct{}

func newIndexSet(vs ...int) indexSet {
	s := make(indexSet, len(vs))
	for _, v := range vs {
		s[v] = struct{}{}
	}
	return s
}

func (s indexSet) union(o indexSet) indexSet {
	out := make(indexSet, len(s)+len(o))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range o {
		out[k] = struct{}{}
	}
	return out
}

func (s indexSet) intersect(o indexSet) indexSet {
	out := make(indexSet, len(s))
	for k := range s {
		if _, ok := o[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func (s indexSet) len() int { return len(s) }

func (s indexSet) slice() []int {
	out := make([]int, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

// RefLocation names the waypoint (by index and ID) whose time and
// coordinate an outer rule's time table is evaluated against (§4.2.3).
type RefLocation struct {
	Index int
	ID    uuid.UUID
}

// CondResult is the result of evaluating a Condition against a flight plan
// (§4.2.3): a tri-state value, vertex/edge witness sets, an xng-edge set
// used for DctLimit combination, an invert flag, and an optional reference
// location.
type CondResult struct {
	Value    TriState
	Vertices indexSet
	Edges    indexSet
	XngEdges indexSet
	Invert   bool
	RefLoc   *RefLocation
}

// Unknown returns the neutral "don't know" result.
func Unknown() CondResult { return CondResult{Value: Indeterminate} }

// Const returns a constant-valued result with no witnesses.
func Const(v bool) CondResult {
	if v {
		return CondResult{Value: True}
	}
	return CondResult{Value: False}
}

func triAnd(a, b TriState) TriState {
	if a == False || b == False {
		return False
	}
	if a == Indeterminate || b == Indeterminate {
		return Indeterminate
	}
	return True
}

func triOr(a, b TriState) TriState {
	if a == True || b == True {
		return True
	}
	if a == Indeterminate || b == Indeterminate {
		return Indeterminate
	}
	return False
}

func triNot(a TriState) TriState {
	switch a {
	case True:
		return False
	case False:
		return True
	default:
		return Indeterminate
	}
}

// And combines a and b per §4.2.3: tri-state AND; witnesses union when
// true, clear when false; refloc prefers the earlier of the two; xngedge
// set intersects, honoring the invert flag pairwise.
func And(a, b CondResult) CondResult {
	v := triAnd(a.Value, b.Value)
	r := CondResult{Value: v, Invert: a.Invert && b.Invert}
	if v == True {
		r.Vertices = a.Vertices.union(b.Vertices)
		r.Edges = a.Edges.union(b.Edges)
	}
	r.XngEdges = xngIntersect(a, b)
	r.RefLoc = earlierRefLoc(a.RefLoc, b.RefLoc)
	return r
}

// Or combines a and b per §4.2.3: tri-state OR; the smaller witness set
// wins; xngedge set unions.
func Or(a, b CondResult) CondResult {
	v := triOr(a.Value, b.Value)
	r := CondResult{Value: v}
	if v == True {
		if a.Vertices.len()+a.Edges.len() <= b.Vertices.len()+b.Edges.len() {
			r.Vertices, r.Edges = a.Vertices, a.Edges
		} else {
			r.Vertices, r.Edges = b.Vertices, b.Edges
		}
	}
	r.XngEdges = a.XngEdges.union(b.XngEdges)
	r.RefLoc = earlierRefLoc(a.RefLoc, b.RefLoc)
	return r
}

// VertexList returns r's witness vertex indices, for callers outside this
// package (e.g. the evaluator rendering a RestrictionResult).
func (r CondResult) VertexList() []int { return r.Vertices.slice() }

// EdgeList returns r's witness edge indices.
func (r CondResult) EdgeList() []int { return r.Edges.slice() }

// Not inverts a's tri-state value and swaps its xngedge invert flag.
func Not(a CondResult) CondResult {
	r := a
	r.Value = triNot(a.Value)
	r.Invert = !a.Invert
	return r
}

func xngIntersect(a, b CondResult) indexSet {
	if a.Invert != b.Invert {
		return a.XngEdges.union(b.XngEdges)
	}
	return a.XngEdges.intersect(b.XngEdges)
}

func earlierRefLoc(a, b *RefLocation) *RefLocation {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Index <= b.Index:
		return a
	default:
		return b
	}
}
