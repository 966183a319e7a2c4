// Package store implements the indexed temporal object store (§4.1): a
// SQLite-backed primary relation plus an LRU object cache, with depth-bounded
// Link resolution closing the loop between internal/archive and
// internal/model without an import cycle between the two.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/vfrnav/adr/internal/archive"
	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/geo"
	"github.com/vfrnav/adr/pkg/log"
	"github.com/vfrnav/adr/pkg/uuid"
)

// LoadMode selects how deep a query resolves an object's Links (§4.1.2
// query contract).
type LoadMode int

const (
	LoadUUIDOnly LoadMode = iota
	LoadObject
	LoadObjectLinked
)

// Store is the primary object repository: a SQLite database plus an LRU
// cache layered on top, per §4.1.2/§4.1.4.
type Store struct {
	db  *sql.DB
	log *log.Logger

	mu     sync.RWMutex
	cache  *lru.Cache[uuid.UUID, *cacheEntry]
	group  singleflight.Group
	ttl    time.Duration
	maxRes int // maximum link resolution depth for LoadObjectLinked
}

type cacheEntry struct {
	obj      *model.Object
	accessed time.Time
}

// Config bundles the knobs a caller can set when opening a Store.
type Config struct {
	Path         string        // sqlite DSN/file path
	CacheSize    int           // LRU entry cap
	CacheTTL     time.Duration // kept on the Store; Flush does not read it and takes its cutoff from olderThan
	ResolveDepth int           // depth for LoadObjectLinked; <=0 means unbounded
	Logger       *log.Logger
}

// Open creates/opens the SQLite database at cfg.Path, ensures schema, and
// returns a ready Store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite3_adr", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Path, err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 4096
	}
	cache, err := lru.New[uuid.UUID, *cacheEntry](size)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: new cache: %w", err)
	}
	s := &Store{
		db:     db,
		log:    cfg.Logger,
		cache:  cache,
		ttl:    cfg.CacheTTL,
		maxRes: cfg.ResolveDepth,
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Infof(format, args...)
	}
}

// Flush evicts cache entries last accessed before olderThan (§4.1.4).
func (s *Store) Flush(olderThan time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.cache.Keys() {
		v, ok := s.cache.Peek(key)
		if ok && v.accessed.Before(olderThan) {
			s.cache.Remove(key)
		}
	}
}

// Clear empties the cache entirely (§4.1.4).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
}

func boxToInt(r geo.Rect) (sw, se, nw, ne int32) {
	return r.SWLat, r.SWLon, r.NELat, r.NELon
}

func resolveError(id uuid.UUID) error {
	return fmt.Errorf("store: object %s not found", id)
}
