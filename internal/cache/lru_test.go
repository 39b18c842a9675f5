package cache

import (
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache should miss")
	}

	c.Set("a", "alpha")
	got, ok := c.Get("a")
	if !ok {
		t.Fatal("Get() should hit after Set()")
	}
	if got != "alpha" {
		t.Errorf("Get() = %q, want %q", got, "alpha")
	}

	c.Set("a", "beta")
	got, _ = c.Get("a")
	if got != "beta" {
		t.Errorf("Get() after overwrite = %q, want %q", got, "beta")
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("k", 42)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("fresh entry should hit")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should miss")
	}
	if c.Size() != 0 {
		t.Errorf("Size() after expiry eviction = %d, want 0", c.Size())
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // touch a so b is the eviction candidate
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry should be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry should survive eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("newest entry should be present")
	}
}

func TestLRUCache_DeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("user1:2025-01", 1)
	c.Set("user1:2025-02", 2)
	c.Set("user2:2025-01", 3)

	removed := c.DeletePrefix("user1:")
	if removed != 2 {
		t.Errorf("DeletePrefix() removed %d, want 2", removed)
	}
	if _, ok := c.Get("user1:2025-01"); ok {
		t.Error("prefixed key should be removed")
	}
	if _, ok := c.Get("user2:2025-01"); !ok {
		t.Error("other user's key should survive")
	}
}

func TestLRUCache_CleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("fresh", 3)

	cleaned := c.CleanExpired()
	if cleaned != 2 {
		t.Errorf("CleanExpired() = %d, want 2", cleaned)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry should survive cleanup")
	}
}

func TestManager_Cleanup(t *testing.T) {
	m := NewManager()
	c := NewLRUCache[int](10, time.Millisecond)
	m.Register(c)

	c.Set("a", 1)
	m.StartCleanup(5 * time.Millisecond)

	time.Sleep(30 * time.Millisecond)
	m.Stop()

	if c.Size() != 0 {
		t.Errorf("Size() after cleanup = %d, want 0", c.Size())
	}
}
