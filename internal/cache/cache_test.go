package cache

import (
	"testing"
	"time"
)

func TestSetGetRoundTrip(t *testing.T) {
	t.Parallel()
	c := New()

	c.Set("pokedex", []string{"pikachu"}, time.Minute)
	v, ok := c.Get("pokedex")
	if !ok {
		t.Fatalf("Get() reported absent for fresh entry")
	}
	if got := v.([]string); len(got) != 1 || got[0] != "pikachu" {
		t.Fatalf("Get() = %v, want [pikachu]", got)
	}
}

func TestExpiredEntryIsAbsentAndEvicted(t *testing.T) {
	t.Parallel()
	c := New()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("raids", "data", time.Minute)

	now = now.Add(61 * time.Second)
	if _, ok := c.Get("raids"); ok {
		t.Fatalf("Get() returned value past expiry")
	}

	// The expired entry must be gone, not just hidden.
	c.mu.RLock()
	_, still := c.entries["raids"]
	c.mu.RUnlock()
	if still {
		t.Fatalf("expired entry was not evicted")
	}

	// Repopulating works.
	c.Set("raids", "fresh", time.Minute)
	if v, ok := c.Get("raids"); !ok || v.(string) != "fresh" {
		t.Fatalf("Get() after repopulate = %v, %v", v, ok)
	}
}

func TestZeroTTLUsesDefault(t *testing.T) {
	t.Parallel()
	c := New()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("eggs", 7, 0)

	now = now.Add(DefaultTTL - time.Second)
	if _, ok := c.Get("eggs"); !ok {
		t.Fatalf("entry expired before default TTL")
	}
	now = now.Add(2 * time.Second)
	if _, ok := c.Get("eggs"); ok {
		t.Fatalf("entry survived past default TTL")
	}
}

func TestClear(t *testing.T) {
	t.Parallel()
	c := New()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Fatalf("Get(a) found entry after Clear")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("Get(b) found entry after Clear")
	}
}
