package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/vfrnav/adr/internal/archive"
	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/uuid"
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

func compress(p []byte) []byte {
	return zstdEncoder.EncodeAll(p, nil)
}

func decompress(p []byte) ([]byte, error) {
	return zstdDecoder.DecodeAll(p, nil)
}

// Save persists o: serializes it via the archive codec, compresses the
// blob, and upserts obj/dep/ident within a single transaction in the order
// obj-then-dep-then-ident, matching §4.1.2's ordering requirement (readers
// must see either the whole previous state or the whole new one).
func (s *Store) Save(ctx context.Context, o *model.Object) error {
	sa := archive.NewSaveArchive()
	if err := o.Hibernate(sa); err != nil {
		return fmt.Errorf("store: encode %s: %w", o.ID, err)
	}
	blob := compress(sa.Bytes())

	sd := archive.NewScanDepsArchive()
	if err := o.Hibernate(sd); err != nil {
		return fmt.Errorf("store: scan deps %s: %w", o.ID, err)
	}

	mintime, maxtime := sliceTimeBounds(o)
	bbox := o.BBox()
	var sw, se, nw, ne int32
	if bbox != nil {
		sw, se, nw, ne = boxToInt(*bbox)
	}

	idents := objectIdents(o)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	u0, u1, u2, u3 := uuidWords(o.ID)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO obj (uuid0,uuid1,uuid2,uuid3,type,swlat,swlon,nelat,nelon,mintime,maxtime,modified,data)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(uuid0,uuid1,uuid2,uuid3) DO UPDATE SET
			type=excluded.type, swlat=excluded.swlat, swlon=excluded.swlon,
			nelat=excluded.nelat, nelon=excluded.nelon, mintime=excluded.mintime,
			maxtime=excluded.maxtime, modified=excluded.modified, data=excluded.data
	`, u0, u1, u2, u3, uint8(o.Kind), sw, se, nw, ne, uint64(mintime), uint64(maxtime), uint64(o.Modified), blob); err != nil {
		return fmt.Errorf("store: upsert obj %s: %w", o.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM dep WHERE uuid0=? AND uuid1=? AND uuid2=? AND uuid3=?`, u0, u1, u2, u3); err != nil {
		return fmt.Errorf("store: clear dep %s: %w", o.ID, err)
	}
	for dep := range sd.Deps {
		d0, d1, d2, d3 := uuidWords(dep)
		if _, err := tx.ExecContext(ctx, `INSERT INTO dep (uuid0,uuid1,uuid2,uuid3,uuidd0,uuidd1,uuidd2,uuidd3) VALUES (?,?,?,?,?,?,?,?)`,
			u0, u1, u2, u3, d0, d1, d2, d3); err != nil {
			return fmt.Errorf("store: insert dep %s->%s: %w", o.ID, dep, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM ident WHERE uuid0=? AND uuid1=? AND uuid2=? AND uuid3=?`, u0, u1, u2, u3); err != nil {
		return fmt.Errorf("store: clear ident %s: %w", o.ID, err)
	}
	for _, ident := range idents {
		if _, err := tx.ExecContext(ctx, `INSERT INTO ident (uuid0,uuid1,uuid2,uuid3,ident) VALUES (?,?,?,?,?)`,
			u0, u1, u2, u3, ident); err != nil {
			return fmt.Errorf("store: insert ident %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit %s: %w", o.ID, err)
	}

	s.mu.Lock()
	s.cache.Add(o.ID, &cacheEntry{obj: o, accessed: time.Now()})
	s.mu.Unlock()
	s.logf("store: saved %s (%s)", o.ID, o.Kind)
	return nil
}

// Load materialises the object identified by id according to mode
// (§4.1.2 query contract). LoadUUIDOnly returns a bare Object with only ID
// set (no round trip to the blob). LoadObject resolves no links.
// LoadObjectLinked resolves every contained Link to the configured depth.
func (s *Store) Load(ctx context.Context, id uuid.UUID, mode LoadMode) (*model.Object, error) {
	if mode == LoadUUIDOnly {
		return &model.Object{ID: id}, nil
	}

	s.mu.RLock()
	entry, hit := s.cache.Get(id)
	s.mu.RUnlock()
	if hit {
		entry.accessed = time.Now()
		if mode == LoadObject {
			return entry.obj, nil
		}
		if err := s.resolveLinks(entry.obj); err != nil {
			return nil, err
		}
		return entry.obj, nil
	}

	v, err, _ := s.group.Do(id.String(), func() (any, error) {
		return s.loadFromDB(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	o := v.(*model.Object)

	s.mu.Lock()
	s.cache.Add(id, &cacheEntry{obj: o, accessed: time.Now()})
	s.mu.Unlock()

	if mode == LoadObjectLinked {
		if err := s.resolveLinks(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (s *Store) loadFromDB(ctx context.Context, id uuid.UUID) (*model.Object, error) {
	u0, u1, u2, u3 := uuidWords(id)
	row := s.db.QueryRowContext(ctx, `SELECT data FROM obj WHERE uuid0=? AND uuid1=? AND uuid2=? AND uuid3=?`, u0, u1, u2, u3)
	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, resolveError(id)
		}
		return nil, fmt.Errorf("store: query obj %s: %w", id, err)
	}
	raw, err := decompress(blob)
	if err != nil {
		return nil, fmt.Errorf("store: decompress %s: %w", id, err)
	}
	la := archive.NewLoadArchive(raw)
	o := &model.Object{ID: id}
	if err := o.Hibernate(la); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", id, err)
	}
	return o, nil
}

// resolveLinks walks o's own link graph to s.maxRes depth, resolving every
// Link it contains via the Store itself. This is the recursive,
// depth-bounded resolution the archive package cannot implement directly
// (it must not import internal/model), per §4.1.2's ObjectLinked contract.
func (s *Store) resolveLinks(o *model.Object) error {
	ctx := context.Background()
	visited := map[uuid.UUID]struct{}{o.ID: {}}
	return s.resolveLinksDepth(ctx, o, 0, visited)
}

func (s *Store) resolveLinksDepth(ctx context.Context, o *model.Object, depth int, visited map[uuid.UUID]struct{}) error {
	if s.maxRes > 0 && depth >= s.maxRes {
		return nil
	}

	var resolveErr error
	resolve := func(id uuid.UUID) (any, error) {
		child, err := s.Load(ctx, id, LoadObject)
		if err != nil {
			return nil, err
		}
		if _, ok := visited[id]; !ok {
			visited[id] = struct{}{}
			if err := s.resolveLinksDepth(ctx, child, depth+1, visited); err != nil {
				resolveErr = err
			}
		}
		return child, nil
	}

	remaining := s.maxRes - depth
	if s.maxRes <= 0 {
		remaining = 1<<31 - 1 // unbounded (§4.1.2 "resolves all contained Links to depth ∞")
	}
	rl := archive.NewResolveLinksArchive(resolve, remaining)
	if err := o.Hibernate(rl); err != nil {
		return err
	}
	if resolveErr != nil {
		return resolveErr
	}
	if len(rl.Unresolved) > 0 {
		s.logf("store: %d unresolved links under %s at depth %d", len(rl.Unresolved), o.ID, depth)
	}
	return nil
}

func sliceTimeBounds(o *model.Object) (model.Time, model.Time) {
	if len(o.Slices) == 0 {
		return model.TimeUnboundedPast, model.TimeUnboundedFuture
	}
	min, max := o.Slices[0].Interval.Start, o.Slices[0].Interval.End
	for _, sl := range o.Slices[1:] {
		if sl.Interval.Start < min {
			min = sl.Interval.Start
		}
		if sl.Interval.End > max {
			max = sl.Interval.End
		}
	}
	return min, max
}

// objectIdents extracts the searchable identifier strings carried by o's
// payloads (the ident relation, §4.1.2). Only kinds with a natural
// identifier contribute a row.
func objectIdents(o *model.Object) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, sl := range o.Slices {
		switch p := sl.Payload.(type) {
		case *model.AirportSlice:
			add(p.Ident)
			add(p.IATA)
		case *model.NavaidSlice:
			add(p.Ident)
		case *model.DesignatedPointSlice:
			add(p.Ident)
		case *model.RouteSlice:
			add(p.Ident)
		case *model.ProcedureSlice:
			add(p.Ident)
		case *model.StandardLevelTableSlice:
			add(p.Ident)
		case *model.FlightRestrictionSlice:
			add(p.Ident)
		}
	}
	return out
}

func uuidWords(id uuid.UUID) (uint32, uint32, uint32, uint32) {
	return id[0], id[1], id[2], id[3]
}
