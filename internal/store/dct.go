package store

import (
	"context"
	"fmt"

	"github.com/vfrnav/adr/internal/archive"
	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

// DctSub is one time sub-interval's precomputed bidirectional altitude
// availability for a candidate pair (§4.3.2).
type DctSub struct {
	Span model.TimeInterval
	Alt  model.BidirAltRange
}

func (s *DctSub) hibernate(a *archive.Archive) error {
	if err := s.Span.Hibernate(a); err != nil {
		return err
	}
	return s.Alt.Hibernate(a)
}

// DctRow is one candidate pair's full precomputed DCT record (§4.3.2,
// §4.3.3), ready to persist into the store's dct relation.
type DctRow struct {
	A, B         uuid.UUID
	ACoord, BCoord geo.Point
	Subs         []DctSub
}

func (r *DctRow) bbox() geo.Rect {
	sw := geo.Rect{SWLat: geo.ToFixed(r.ACoord.Lat), SWLon: geo.ToFixed(r.ACoord.Lon), NELat: geo.ToFixed(r.ACoord.Lat), NELon: geo.ToFixed(r.ACoord.Lon)}
	be := geo.Rect{SWLat: geo.ToFixed(r.BCoord.Lat), SWLon: geo.ToFixed(r.BCoord.Lon), NELat: geo.ToFixed(r.BCoord.Lat), NELon: geo.ToFixed(r.BCoord.Lon)}
	return sw.Union(be)
}

// SaveDctPairs upserts rows into the dct relation within a single
// transaction (§4.3.3's "committed every 1024 insertions" batching is the
// caller's concern; this is one commit). Per §4.3.2 step 5, a pair whose
// Subs is empty (nothing forbidden/allowed to record) is written only if a
// prior row for that pair already exists, so that stale data is
// overwritten; otherwise it is skipped.
func (s *Store) SaveDctPairs(ctx context.Context, rows []DctRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin dct tx: %w", err)
	}
	defer tx.Rollback()

	for i := range rows {
		r := &rows[i]
		if len(r.Subs) == 0 {
			a0, a1, a2, a3 := uuidWords(r.A)
			b0, b1, b2, b3 := uuidWords(r.B)
			var n int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM dct WHERE uuida0=? AND uuida1=? AND uuida2=? AND uuida3=? AND uuidb0=? AND uuidb1=? AND uuidb2=? AND uuidb3=?`,
				a0, a1, a2, a3, b0, b1, b2, b3).Scan(&n); err != nil {
				return fmt.Errorf("store: check dct %s-%s: %w", r.A, r.B, err)
			}
			if n == 0 {
				continue
			}
		}

		sa := archive.NewSaveArchive()
		if err := archive.Slice(sa, &r.Subs, func(a *archive.Archive, s *DctSub) error { return s.hibernate(a) }); err != nil {
			return fmt.Errorf("store: encode dct %s-%s: %w", r.A, r.B, err)
		}
		blob := compress(sa.Bytes())

		box := r.bbox()
		a0, a1, a2, a3 := uuidWords(r.A)
		b0, b1, b2, b3 := uuidWords(r.B)

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dct (uuida0,uuida1,uuida2,uuida3,uuidb0,uuidb1,uuidb2,uuidb3,swlat,swlon,nelat,nelon,data)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT(uuida0,uuida1,uuida2,uuida3,uuidb0,uuidb1,uuidb2,uuidb3) DO UPDATE SET
				swlat=excluded.swlat, swlon=excluded.swlon, nelat=excluded.nelat, nelon=excluded.nelon, data=excluded.data
		`, a0, a1, a2, a3, b0, b1, b2, b3, box.SWLat, box.SWLon, box.NELat, box.NELon, blob); err != nil {
			return fmt.Errorf("store: upsert dct %s-%s: %w", r.A, r.B, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit dct batch: %w", err)
	}
	return nil
}

// LoadDctSubs reads back a previously saved pair's sub-interval records, in
// (a, b) key order as stored (the caller is responsible for trying both
// orderings if the pair's canonical order is unknown).
func (s *Store) LoadDctSubs(ctx context.Context, a, b uuid.UUID) ([]DctSub, error) {
	a0, a1, a2, a3 := uuidWords(a)
	b0, b1, b2, b3 := uuidWords(b)
	row := s.db.QueryRowContext(ctx, `SELECT data FROM dct WHERE uuida0=? AND uuida1=? AND uuida2=? AND uuida3=? AND uuidb0=? AND uuidb1=? AND uuidb2=? AND uuidb3=?`,
		a0, a1, a2, a3, b0, b1, b2, b3)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		return nil, fmt.Errorf("store: load dct %s-%s: %w", a, b, err)
	}
	raw, err := decompress(blob)
	if err != nil {
		return nil, fmt.Errorf("store: decompress dct %s-%s: %w", a, b, err)
	}
	la := archive.NewLoadArchive(raw)
	var subs []DctSub
	if err := archive.Slice(la, &subs, func(a *archive.Archive, s *DctSub) error { return s.hibernate(a) }); err != nil {
		return nil, fmt.Errorf("store: decode dct %s-%s: %w", a, b, err)
	}
	return subs, nil
}
