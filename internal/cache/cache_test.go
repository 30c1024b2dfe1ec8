package cache

import (
	"sync"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New()

	c.Set("resolve_entity_league_NFL", "v1")

	v, ok := c.Get("resolve_entity_league_NFL")
	if !ok || v != "v1" {
		t.Fatalf("got (%v, %v), want (v1, true)", v, ok)
	}

	if _, ok := c.Get("resolve_entity_league_nfl"); ok {
		t.Error("keys are case-sensitive; lowercase variant should miss")
	}
}

func TestCache_LastWriteWins(t *testing.T) {
	c := New()

	c.Set("k", "first")
	c.Set("k", "second")

	v, _ := c.Get("k")
	if v != "second" {
		t.Errorf("got %v, want second", v)
	}
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New()
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry still present")
	}
	if c.Len() != 1 {
		t.Errorf("got len %d, want 1", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("got len %d after clear, want 0", c.Len())
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New()

	c.SetWithTTL("short", "v", 10*time.Millisecond)
	c.Set("pinned", "v")

	if _, ok := c.Get("short"); !ok {
		t.Fatal("entry should be live before TTL elapses")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("entry should have expired")
	}
	if _, ok := c.Get("pinned"); !ok {
		t.Error("pinned entry must survive; session entries never auto-expire")
	}
}

func TestCache_Evict(t *testing.T) {
	c := New()
	c.SetWithTTL("short", "v", time.Nanosecond)
	c.Set("pinned", "v")

	time.Sleep(time.Millisecond)
	c.evict()

	if c.Len() != 1 {
		t.Errorf("got len %d after evict, want 1", c.Len())
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.Set("shared", n)
		}(i)
		go func() {
			defer wg.Done()
			c.Get("shared")
		}()
	}
	wg.Wait()

	if _, ok := c.Get("shared"); !ok {
		t.Error("expected a complete entry after concurrent writes")
	}
}

func TestCache_StoredAt(t *testing.T) {
	c := New()

	before := time.Now()
	c.Set("k", "v")

	at, ok := c.StoredAt("k")
	if !ok {
		t.Fatal("expected stored entry")
	}
	if at.Before(before) || at.After(time.Now()) {
		t.Errorf("storedAt %v outside write window", at)
	}

	if _, ok := c.StoredAt("missing"); ok {
		t.Error("missing key should report no timestamp")
	}
}
