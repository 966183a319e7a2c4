package aup

import (
	"testing"
	"time"

	"github.com/vfrnav/adr/internal/model"
	"github.com/vfrnav/adr/pkg/uuid"
)

type fakeClient struct {
	calls int
	active bool
	known  bool
}

func (f *fakeClient) AirspaceActive(id uuid.UUID, at model.Time) (bool, bool, error) {
	f.calls++
	return f.active, f.known, nil
}

func (f *fakeClient) SwitchPoints(id uuid.UUID, from, to model.Time) ([]model.Time, error) {
	return nil, nil
}

func TestCacheDedupesCalls(t *testing.T) {
	fc := &fakeClient{active: true, known: true}
	c := NewCache(fc, time.Minute, "", nil)

	id := uuid.UUID{1}
	a1, k1 := c.AirspaceActive(id, model.Time(1000))
	a2, k2 := c.AirspaceActive(id, model.Time(1001))
	if !a1 || !k1 || !a2 || !k2 {
		t.Fatalf("expected both lookups to report active+known")
	}
	if fc.calls != 1 {
		t.Fatalf("expected the second lookup to hit the cache, got %d client calls", fc.calls)
	}
}

func TestCacheNilClientReturnsUnknown(t *testing.T) {
	c := NewCache(nil, time.Minute, "", nil)
	active, known := c.AirspaceActive(uuid.UUID{1}, model.Time(0))
	if active || known {
		t.Fatalf("expected nil client to report unknown")
	}
}
