package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/iancoleman/orderedmap"

	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/uuid"
)

// Filter bounds a query by time range, discriminant range, and result
// count, per §4.1.2's "(tmin, tmax, type_min, type_max, limit)" contract.
type Filter struct {
	TMin, TMax         model.Time
	TypeMin, TypeMax   model.Kind
	Limit              int
}

func (f Filter) orDefaults() Filter {
	if f.TMax == 0 {
		f.TMax = model.TimeUnboundedFuture
	}
	if f.TypeMax == 0 {
		f.TypeMax = model.Kind(255)
	}
	if f.Limit <= 0 {
		f.Limit = 1 << 30
	}
	return f
}

// IdentMode selects how an ident search pattern is compared (§4.1.2).
type IdentMode int

const (
	IdentStartsWith IdentMode = iota
	IdentExact
	IdentExactCaseSensitive
	IdentContains
	IdentLike
)

// FindAll returns every object passing f, loaded per mode.
func (s *Store) FindAll(ctx context.Context, f Filter, mode LoadMode) ([]*model.Object, error) {
	f = f.orDefaults()
	rows, err := s.db.QueryContext(ctx, `
		SELECT uuid0,uuid1,uuid2,uuid3 FROM obj
		WHERE mintime < ? AND maxtime > ? AND type BETWEEN ? AND ?
		LIMIT ?`,
		uint64(f.TMax), uint64(f.TMin), uint8(f.TypeMin), uint8(f.TypeMax), f.Limit)
	if err != nil {
		return nil, fmt.Errorf("store: find_all: %w", err)
	}
	return s.loadRows(ctx, rows, mode)
}

// FindByIdent performs a reverse-name lookup per the given comparison mode
// (§4.1.2: starts_with | exact | exact_cs | contains | like).
func (s *Store) FindByIdent(ctx context.Context, pattern string, mode IdentMode, loadMode LoadMode) ([]*model.Object, error) {
	var where string
	var args []any
	switch mode {
	case IdentStartsWith:
		where = "ident >= ? AND ident < upperbound(?) COLLATE NOCASE"
		args = []any{pattern, pattern}
	case IdentExact:
		where = "ident = ? COLLATE NOCASE"
		args = []any{pattern}
	case IdentExactCaseSensitive:
		where = "ident = ? COLLATE BINARY"
		args = []any{pattern}
	case IdentContains:
		where = "ident LIKE ? ESCAPE '\\' COLLATE NOCASE"
		args = []any{"%" + escapeLike(pattern) + "%"}
	case IdentLike:
		where = "ident LIKE ? ESCAPE '\\' COLLATE NOCASE"
		args = []any{pattern}
	default:
		return nil, fmt.Errorf("store: unknown ident mode %d", mode)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT uuid0,uuid1,uuid2,uuid3 FROM ident WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("store: find_by_ident: %w", err)
	}
	return s.loadRows(ctx, rows, loadMode)
}

// escapeLike escapes %, _ and the escape character itself for use inside a
// LIKE pattern whose wildcards are added by the caller (§4.1.2).
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}

// FindByBbox returns objects whose stored bbox intersects r (§4.1.2). When
// r itself wraps the antimeridian (SWLon > NELon) the longitude predicate
// is split into the two disjoint ranges either side of the wrap, per the
// "three disjunctive predicates" wraparound strategy — only two are needed
// here since stored object rects are never themselves wrapping (every
// entity's BBox is a small local extent).
func (s *Store) FindByBbox(ctx context.Context, r geo.Rect, f Filter, mode LoadMode) ([]*model.Object, error) {
	f = f.orDefaults()
	var lonPred string
	var lonArgs []any
	if r.Wraps() {
		lonPred = "(nelon >= ? OR swlon <= ?)"
		lonArgs = []any{r.SWLon, r.NELon}
	} else {
		lonPred = "(swlon <= ? AND nelon >= ?)"
		lonArgs = []any{r.NELon, r.SWLon}
	}
	args := []any{r.NELat, r.SWLat}
	args = append(args, lonArgs...)
	args = append(args, uint64(f.TMax), uint64(f.TMin), uint8(f.TypeMin), uint8(f.TypeMax), f.Limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT uuid0,uuid1,uuid2,uuid3 FROM obj
		WHERE swlat <= ? AND nelat >= ? AND `+lonPred+`
		  AND mintime < ? AND maxtime > ? AND type BETWEEN ? AND ?
		LIMIT ?`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("store: find_by_bbox: %w", err)
	}
	return s.loadRows(ctx, rows, mode)
}

// FindDependsOn returns objects that id depends on (id -> uuidd rows).
func (s *Store) FindDependsOn(ctx context.Context, id uuid.UUID, mode LoadMode) ([]*model.Object, error) {
	u0, u1, u2, u3 := uuidWords(id)
	rows, err := s.db.QueryContext(ctx, `SELECT uuidd0,uuidd1,uuidd2,uuidd3 FROM dep WHERE uuid0=? AND uuid1=? AND uuid2=? AND uuid3=?`, u0, u1, u2, u3)
	if err != nil {
		return nil, fmt.Errorf("store: find_dependson: %w", err)
	}
	return s.loadRows(ctx, rows, mode)
}

// FindDependencies returns objects that depend on id (uuidd = id rows).
func (s *Store) FindDependencies(ctx context.Context, id uuid.UUID, mode LoadMode) ([]*model.Object, error) {
	u0, u1, u2, u3 := uuidWords(id)
	rows, err := s.db.QueryContext(ctx, `SELECT uuid0,uuid1,uuid2,uuid3 FROM dep WHERE uuidd0=? AND uuidd1=? AND uuidd2=? AND uuidd3=?`, u0, u1, u2, u3)
	if err != nil {
		return nil, fmt.Errorf("store: find_dependencies: %w", err)
	}
	return s.loadRows(ctx, rows, mode)
}

func (s *Store) loadRows(ctx context.Context, rows queryRows, mode LoadMode) ([]*model.Object, error) {
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var u0, u1, u2, u3 uint32
		if err := rows.Scan(&u0, &u1, &u2, &u3); err != nil {
			return nil, fmt.Errorf("store: scan uuid: %w", err)
		}
		ids = append(ids, uuid.UUID{u0, u1, u2, u3})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]*model.Object, 0, len(ids))
	for _, id := range ids {
		o, err := s.Load(ctx, id, mode)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// IdentIndex maps every ident string to the UUIDs of the objects carrying
// it, preserving the order idents were first seen — used by rendering code (§6.4 rule output,
// and inspection tooling) where stable iteration order matters, unlike a
// plain Go map.
func (s *Store) IdentIndex(ctx context.Context) (*orderedmap.OrderedMap, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT uuid0,uuid1,uuid2,uuid3,ident FROM ident ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("store: ident_index: %w", err)
	}
	defer rows.Close()

	idx := orderedmap.New()
	for rows.Next() {
		var u0, u1, u2, u3 uint32
		var ident string
		if err := rows.Scan(&u0, &u1, &u2, &u3, &ident); err != nil {
			return nil, fmt.Errorf("store: ident_index scan: %w", err)
		}
		id := uuid.UUID{u0, u1, u2, u3}.String()
		existing, ok := idx.Get(ident)
		if !ok {
			idx.Set(ident, []string{id})
			continue
		}
		idx.Set(ident, append(existing.([]string), id))
	}
	return idx, rows.Err()
}

// queryRows is the subset of *sql.Rows this package needs, kept as an
// interface only so loadRows can be exercised by tests against a fake.
type queryRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}
