package collections

import (
	"testing"
	"time"
)

func TestSetUnionIntersect(t *testing.T) {
	a := NewSet(1, 2, 3)
	b := NewSet(2, 3, 4)
	u := a.Union(b)
	if u.Len() != 4 {
		t.Errorf("Union len = %d, want 4", u.Len())
	}
	i := a.Intersect(b)
	if i.Len() != 2 || !i.Has(2) || !i.Has(3) {
		t.Errorf("Intersect = %v, want {2,3}", i)
	}
}

func TestTransientCacheExpiry(t *testing.T) {
	c := NewTransientCache[string, int]()
	c.Add("a", 1, time.Millisecond)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected immediate hit")
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Errorf("expected entry to have expired")
	}
}
