// Package aup is the conditional-availability (AUP — Airspace Use Plan)
// collaborator boundary (§1 Non-goals names the AUP ingester as an
// external collaborator) plus a local msgpack-backed cache of the answers
// it gives, so CrossingAirspaceActive/CrossingAirwayAvailable evaluation
// and the DCT pipeline don't round-trip to the AUP feed on every call.
package aup

import (
	"os"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/log"
	"github.com/vfrnav/adr/pkg/uuid"
)

// Client is the AUP collaborator contract: given an airspace and an
// instant, report whether it's active, or that the feed doesn't know.
type Client interface {
	AirspaceActive(airspaceID uuid.UUID, at model.Time) (active bool, known bool, err error)
	// SwitchPoints returns the activation-state switch times for airspaceID
	// within [from, to), used by the DCT pipeline's time-discontinuity fold.
	SwitchPoints(airspaceID uuid.UUID, from, to model.Time) ([]model.Time, error)
}

type cacheEntry struct {
	Active    bool
	Known     bool
	FetchedAt int64 // unix seconds
}

// Cache wraps a Client with an in-memory, TTL-expiring, disk-persisted
// cache of AirspaceActive answers, serialized with msgpack (§2 domain
// stack: "on-disk cache of AUP snapshots").
type Cache struct {
	mu      sync.Mutex
	client  Client
	ttl     time.Duration
	path    string
	log     *log.Logger
	entries map[cacheKey]cacheEntry
}

type cacheKey struct {
	Airspace uuid.UUID
	At       int64 // model.Time truncated to a cache bucket
}

// NewCache builds a Cache in front of client. path, if non-empty, is where
// the cache is persisted between process runs.
func NewCache(client Client, ttl time.Duration, path string, logger *log.Logger) *Cache {
	c := &Cache{client: client, ttl: ttl, path: path, log: logger, entries: map[cacheKey]cacheEntry{}}
	c.load()
	return c
}

// AirspaceActive implements condition.AvailabilitySource, consulting the
// cache before falling through to the underlying Client.
func (c *Cache) AirspaceActive(airspaceID uuid.UUID, at model.Time) (bool, bool) {
	key := cacheKey{Airspace: airspaceID, At: bucket(at)}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && time.Since(time.Unix(e.FetchedAt, 0)) < c.ttl {
		c.mu.Unlock()
		return e.Active, e.Known
	}
	c.mu.Unlock()

	if c.client == nil {
		return false, false
	}
	active, known, err := c.client.AirspaceActive(airspaceID, at)
	if err != nil {
		c.log.Warnf("aup: AirspaceActive(%s): %v", airspaceID, err)
		return false, false
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{Active: active, Known: known, FetchedAt: time.Now().Unix()}
	c.mu.Unlock()
	return active, known
}

// Flush persists the current cache contents to disk, if a path was given.
func (c *Cache) Flush() error {
	if c.path == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := msgpack.Marshal(c.entries)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, b, 0o644)
}

func (c *Cache) load() {
	if c.path == "" {
		return
	}
	b, err := os.ReadFile(c.path)
	if err != nil {
		return
	}
	var entries map[cacheKey]cacheEntry
	if err := msgpack.Unmarshal(b, &entries); err != nil {
		if c.log != nil {
			c.log.Warnf("aup: discarding unreadable cache file %s: %v", c.path, err)
		}
		return
	}
	c.entries = entries
}

// bucket rounds an instant down to a 15-minute cache bucket so lookups a
// few seconds apart share a cache entry without needing exact-time keys.
func bucket(t model.Time) int64 {
	const bucketSeconds = 15 * 60
	return (int64(t) / bucketSeconds) * bucketSeconds
}
