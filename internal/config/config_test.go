package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Workers != 4 {
		t.Fatalf("expected default worker count 4, got %d", c.Workers)
	}
	if c.CacheTTL != 30*time.Minute {
		t.Fatalf("expected default cache TTL 30m, got %v", c.CacheTTL)
	}
	if c.ECACBBox.SWLat == 0 && c.ECACBBox.NELat == 0 {
		t.Fatalf("expected a non-zero default ECAC bbox")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ADR_WORKERS", "16")
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Workers != 16 {
		t.Fatalf("expected ADR_WORKERS to override default, got %d", c.Workers)
	}
}
