package cache

import (
	"sort"
	"sync"
	"time"
)

const (
	// DefaultExpiration selects the cache's default TTL when passed to [Cache.Set].
	DefaultExpiration time.Duration = 0
	// NoExpiration stores an entry that never expires.
	NoExpiration time.Duration = -1
	// DefaultTTL is the default TTL of a cache built without [WithDefaultTTL].
	DefaultTTL = 5 * time.Minute
)

// Stats is a snapshot of the live entries and the hit/miss counters.
type Stats struct {
	Size   int      `json:"size"`
	Keys   []string `json:"keys"`
	Hits   int64    `json:"hits"`
	Misses int64    `json:"misses"`
}

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means never
	timer     *time.Timer
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func (e *entry[V]) stop() {
	if e.timer != nil {
		e.timer.Stop()
	}
}

// Cache is a TTL cache safe for concurrent use. The zero value is not usable; call [New].
type Cache[V any] struct {
	mu         sync.Mutex
	items      map[string]*entry[V]
	defaultTTL time.Duration
	now        func() time.Time
	hits       int64
	misses     int64
}

// Option configures a [Cache].
type Option func(*options)

type options struct {
	defaultTTL time.Duration
	now        func() time.Time
}

// WithDefaultTTL sets the TTL used for [DefaultExpiration]. Non-positive values are ignored.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.defaultTTL = ttl
		}
	}
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an empty cache.
func New[V any](opts ...Option) *Cache[V] {
	o := options{defaultTTL: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache[V]{
		items:      make(map[string]*entry[V]),
		defaultTTL: o.defaultTTL,
		now:        o.now,
	}
}

// DefaultTTL returns the TTL applied by [DefaultExpiration].
func (c *Cache[V]) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// Set stores value under key, replacing any previous entry and its deadline.
//
// A positive ttl expires the entry after ttl, [DefaultExpiration] uses the default TTL
// and a negative ttl ([NoExpiration]) keeps it until deleted.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl == DefaultExpiration {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.items[key]; ok {
		old.stop()
	}

	e := &entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
		e.timer = time.AfterFunc(ttl, func() { c.sweep(key, e) })
	}
	c.items[key] = e
}

// sweep removes key only if it still maps to e.
func (c *Cache[V]) sweep(key string, e *entry[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.items[key]; ok && cur == e {
		delete(c.items, key)
	}
}

// Get returns the value for key. Expired entries are reported absent and removed.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}

	if e.expired(c.now()) {
		e.stop()
		delete(c.items, key)
		c.misses++
		var zero V
		return zero, false
	}

	c.hits++
	return e.value, true
}

// Has reports whether a live entry exists for key.
func (c *Cache[V]) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes key. Deleting a missing key is a no-op.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.stop()
		delete(c.items, key)
	}
}

// Clear removes every entry. Counters are kept.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.items {
		e.stop()
	}
	c.items = make(map[string]*entry[V])
}

// Len returns the number of live entries.
func (c *Cache[V]) Len() int {
	return c.Stats().Size
}

// Stats prunes expired entries and returns a snapshot with keys in sorted order.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	keys := make([]string, 0, len(c.items))
	for k, e := range c.items {
		if e.expired(now) {
			e.stop()
			delete(c.items, k)
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Stats{
		Size:   len(keys),
		Keys:   keys,
		Hits:   c.hits,
		Misses: c.misses,
	}
}
