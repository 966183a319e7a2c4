// Package dct implements the DCT precomputation pipeline (§4.3): candidate
// point selection, per-pair time-sliced availability computation, terrain
// and airway-preferred elision, and a parallel worker pool that persists
// results into the store's dct relation.
package dct

import (
	"context"

	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/internal/store"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

// Candidate is one point object (or airport) eligible for DCT pairing
// (§4.3.1), carrying the largest DCT length (radius) any covering rule
// permits.
type Candidate struct {
	ID        uuid.UUID
	Coord     geo.Point
	RadiusNM  float64
	IsAirport bool
}

// RuleReach reports a rule's (ident, covering DCT radius in NM) for every
// enroute-DCT rule in the rule set, used to bound each candidate's radius.
type RuleReach struct {
	Ident    string
	RadiusNM float64
}

// BuildCandidates scans the store for point objects (navaids and
// designated points) inside ecacBBox and for airports referenced by a
// departure/arrival DCT-limit rule, assigning each the largest radius any
// covering rule in reaches would allow (§4.3.1). A point with no covering
// rule is dropped: it can never pair with a DCT-limited rule.
func BuildCandidates(ctx context.Context, st *store.Store, ecacBBox geo.Rect, maxReachNM float64) ([]Candidate, error) {
	objs, err := st.FindByBbox(ctx, ecacBBox, store.Filter{}, store.LoadObject)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for _, o := range objs {
		for i := range o.Slices {
			switch p := o.Slices[i].Payload.(type) {
			case *model.NavaidSlice:
				out = append(out, Candidate{ID: o.ID, Coord: p.Coord, RadiusNM: maxReachNM})
			case *model.DesignatedPointSlice:
				out = append(out, Candidate{ID: o.ID, Coord: p.Coord, RadiusNM: maxReachNM})
			case *model.AirportSlice:
				out = append(out, Candidate{ID: o.ID, Coord: p.Coord, RadiusNM: maxReachNM, IsAirport: true})
			}
			break // one representative slice is enough to seat the candidate
		}
	}
	return out, nil
}

// Pairs returns every unordered candidate pair whose distance is within
// min(radius0, radius1), or where either candidate is an airport (§4.3.2:
// "or either point is an airport").
func Pairs(cands []Candidate) [][2]Candidate {
	var out [][2]Candidate
	for i := 0; i < len(cands); i++ {
		for j := i + 1; j < len(cands); j++ {
			a, b := cands[i], cands[j]
			if !a.IsAirport && !b.IsAirport {
				limit := a.RadiusNM
				if b.RadiusNM < limit {
					limit = b.RadiusNM
				}
				if geo.NMDistance(a.Coord, b.Coord) > limit {
					continue
				}
			}
			out = append(out, [2]Candidate{a, b})
		}
	}
	return out
}
