package store

import (
	"context"
	"fmt"

	"github.com/dhconnelly/rtreego"

	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

// spatialEntry adapts a stored object's bbox to rtreego.Spatial so the
// secondary in-memory index can be queried without a SQL round trip; used
// by high-frequency callers (the DCT pipeline's candidate-set scan, §4.3.1)
// that repeatedly probe overlapping bboxes against a mostly-static object
// set within one pipeline run.
type spatialEntry struct {
	id     uuid.UUID
	bounds rtreego.Rect
}

func (e *spatialEntry) Bounds() rtreego.Rect { return e.bounds }

// SpatialIndex is a read-only rtreego R-tree snapshot of the obj table's
// bounding boxes, rebuilt on demand rather than kept continuously in sync
// with writes (§4.1.2 treats the SQL bbox index as authoritative; this is
// a derived accelerator for batch workloads).
type SpatialIndex struct {
	tree *rtreego.Rtree
}

// BuildSpatialIndex scans every row of obj and inserts its bbox into a
// fresh R-tree. Objects with a degenerate (zero-area) bbox get a minimal
// epsilon extent, since rtreego requires strictly positive side lengths.
func (s *Store) BuildSpatialIndex(ctx context.Context) (*SpatialIndex, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT uuid0,uuid1,uuid2,uuid3,swlat,swlon,nelat,nelon FROM obj`)
	if err != nil {
		return nil, fmt.Errorf("store: spatial index scan: %w", err)
	}
	defer rows.Close()

	tree := rtreego.NewTree(2, 25, 50)
	for rows.Next() {
		var u0, u1, u2, u3 uint32
		var swlat, swlon, nelat, nelon int32
		if err := rows.Scan(&u0, &u1, &u2, &u3, &swlat, &swlon, &nelat, &nelon); err != nil {
			return nil, fmt.Errorf("store: spatial index row: %w", err)
		}
		if nelat <= swlat {
			nelat = swlat + 1
		}
		if nelon <= swlon {
			nelon = swlon + 1
		}
		rect, err := rtreego.NewRect(
			rtreego.Point{float64(swlat), float64(swlon)},
			[]float64{float64(nelat - swlat), float64(nelon - swlon)},
		)
		if err != nil {
			continue // degenerate rect after clamping; skip rather than fail the whole build
		}
		tree.Insert(&spatialEntry{id: uuid.UUID{u0, u1, u2, u3}, bounds: rect})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &SpatialIndex{tree: tree}, nil
}

// Query returns the UUIDs of every indexed object whose bbox intersects r.
// Like FindByBbox, a wrapping query rect is split into its two
// non-wrapping halves.
func (idx *SpatialIndex) Query(r geo.Rect) []uuid.UUID {
	var results []uuid.UUID
	seen := map[uuid.UUID]struct{}{}
	query := func(swlat, swlon, nelat, nelon int32) {
		if nelat <= swlat || nelon <= swlon {
			return
		}
		rect, err := rtreego.NewRect(
			rtreego.Point{float64(swlat), float64(swlon)},
			[]float64{float64(nelat - swlat), float64(nelon - swlon)},
		)
		if err != nil {
			return
		}
		for _, sp := range idx.tree.SearchIntersect(rect) {
			id := sp.(*spatialEntry).id
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				results = append(results, id)
			}
		}
	}
	if r.Wraps() {
		query(r.SWLat, r.SWLon, r.NELat, 1<<31-1)
		query(r.SWLat, -(1 << 31), r.NELat, r.NELon)
	} else {
		query(r.SWLat, r.SWLon, r.NELat, r.NELon)
	}
	return results
}

// Len returns the number of entries indexed.
func (idx *SpatialIndex) Len() int { return idx.tree.Size() }
