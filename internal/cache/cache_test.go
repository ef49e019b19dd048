package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestCache(t *testing.T) {
	t.Run("Set then Get", func(t *testing.T) {
		c := New[string]()
		c.Set("k", "v", time.Minute)

		got, ok := c.Get("k")
		if !ok || got != "v" {
			t.Errorf("expected v, got %q (ok=%v)", got, ok)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		c := New[int]()
		if _, ok := c.Get("nope"); ok {
			t.Error("expected miss for unknown key")
		}
		if c.Has("nope") {
			t.Error("Has should be false for unknown key")
		}
	})

	t.Run("expires at the deadline", func(t *testing.T) {
		clock := newFakeClock()
		c := New[string](WithClock(clock.Now))
		c.Set("k", "v", time.Hour)

		clock.Advance(time.Hour - time.Nanosecond)
		if !c.Has("k") {
			t.Fatal("entry should be live just before its deadline")
		}

		clock.Advance(time.Nanosecond)
		if _, ok := c.Get("k"); ok {
			t.Error("entry should be absent at its deadline")
		}
		if c.Len() != 0 {
			t.Errorf("expired entry should be removed, size=%d", c.Len())
		}
	})

	t.Run("default expiration uses default TTL", func(t *testing.T) {
		clock := newFakeClock()
		c := New[string](WithClock(clock.Now))
		c.Set("k", "v", DefaultExpiration)

		clock.Advance(DefaultTTL - time.Second)
		if !c.Has("k") {
			t.Fatal("entry should survive until the default TTL")
		}
		clock.Advance(time.Second)
		if c.Has("k") {
			t.Error("entry should expire after the default TTL")
		}
	})

	t.Run("WithDefaultTTL", func(t *testing.T) {
		clock := newFakeClock()
		c := New[string](WithClock(clock.Now), WithDefaultTTL(10*time.Hour))
		if c.DefaultTTL() != 10*time.Hour {
			t.Errorf("expected 10h, got %v", c.DefaultTTL())
		}
		c.Set("k", "v", DefaultExpiration)
		clock.Advance(DefaultTTL * 2)
		if !c.Has("k") {
			t.Error("entry should use the configured default TTL")
		}
	})

	t.Run("no expiration", func(t *testing.T) {
		clock := newFakeClock()
		c := New[string](WithClock(clock.Now))
		c.Set("k", "v", NoExpiration)

		clock.Advance(24 * 365 * time.Hour)
		if !c.Has("k") {
			t.Error("entry without expiration should never expire")
		}
	})

	t.Run("overwrite replaces value and deadline", func(t *testing.T) {
		clock := newFakeClock()
		c := New[string](WithClock(clock.Now))
		c.Set("k", "old", time.Minute)
		clock.Advance(30 * time.Second)
		c.Set("k", "new", time.Hour)
		clock.Advance(time.Minute)

		got, ok := c.Get("k")
		if !ok || got != "new" {
			t.Errorf("expected new value with new deadline, got %q (ok=%v)", got, ok)
		}
	})

	t.Run("stale timer does not remove newer entry", func(t *testing.T) {
		c := New[string]()
		c.Set("k", "old", 20*time.Millisecond)
		c.Set("k", "new", time.Hour)

		time.Sleep(60 * time.Millisecond)
		if got, ok := c.Get("k"); !ok || got != "new" {
			t.Errorf("newer entry was swept by an old timer: %q (ok=%v)", got, ok)
		}
	})

	t.Run("timer sweep removes expired entry", func(t *testing.T) {
		c := New[string]()
		c.Set("k", "v", 10*time.Millisecond)

		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			c.mu.Lock()
			_, present := c.items["k"]
			c.mu.Unlock()
			if !present {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		t.Error("entry was not swept by its timer")
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		c := New[string]()
		c.Set("k", "v", time.Minute)
		c.Delete("k")
		c.Delete("k")
		c.Delete("never-set")

		if c.Has("k") {
			t.Error("deleted key should be absent")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		c := New[int]()
		for i := range 5 {
			c.Set(fmt.Sprintf("k%d", i), i, time.Minute)
		}
		c.Clear()

		if c.Len() != 0 {
			t.Errorf("expected empty cache, size=%d", c.Len())
		}
	})

	t.Run("Stats", func(t *testing.T) {
		clock := newFakeClock()
		c := New[string](WithClock(clock.Now))
		c.Set("b", "2", time.Hour)
		c.Set("a", "1", NoExpiration)
		c.Set("gone", "x", time.Second)

		c.Get("a")
		c.Get("missing")
		clock.Advance(2 * time.Second)

		stats := c.Stats()
		if stats.Size != 2 {
			t.Errorf("expected 2 live entries, got %d", stats.Size)
		}
		if len(stats.Keys) != 2 || stats.Keys[0] != "a" || stats.Keys[1] != "b" {
			t.Errorf("expected sorted keys [a b], got %v", stats.Keys)
		}
		if stats.Hits != 1 || stats.Misses != 1 {
			t.Errorf("expected 1 hit and 1 miss, got %d/%d", stats.Hits, stats.Misses)
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		c := New[int]()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := fmt.Sprintf("k%d", i%5)
				c.Set(key, i, time.Minute)
				c.Get(key)
				if i%7 == 0 {
					c.Delete(key)
				}
				c.Stats()
			}(i)
		}
		wg.Wait()

		if c.Len() > 5 {
			t.Errorf("expected at most 5 keys, got %d", c.Len())
		}
	})
}
