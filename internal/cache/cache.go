package cache

import (
	"context"
	"sync"
	"time"

	"avaloniamcp/internal/logging"

	"golang.org/x/sync/singleflight"
)

// Loader produces the content for a key on a cache miss.
type Loader func(ctx context.Context) (string, error)

// Cache is a size-bounded TTL cache of string content. It is safe for
// concurrent use; the zero value is not usable, construct with New.
type Cache struct {
	maxEntries     int
	defaultTTL     time.Duration
	preloadWorkers int
	singleFlight   bool
	now            func() time.Time
	logger         *logging.AppLogger

	sf singleflight.Group

	mu        sync.Mutex // protects the following fields
	entries   map[string]*entry
	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache with DefaultMaxEntries and DefaultTTL unless
// overridden by opts.
func New(opts ...Option) *Cache {
	c := &Cache{
		maxEntries:     DefaultMaxEntries,
		defaultTTL:     DefaultTTL,
		preloadWorkers: defaultPreloadWorkers,
		now:            time.Now,
		logger:         logging.NewDiscardLogger(),
		entries:        make(map[string]*entry),
	}

	for _, o := range opts {
		o.apply(c)
	}

	return c
}

// MaxEntries returns the configured entry limit
func (c *Cache) MaxEntries() int { return c.maxEntries }

// DefaultTTL returns the TTL applied when none is passed
func (c *Cache) DefaultTTL() time.Duration { return c.defaultTTL }

// GetOrLoad returns the cached content for key, invoking loader on a miss
// and caching its result for the default TTL.
func (c *Cache) GetOrLoad(ctx context.Context, key string, loader Loader) (string, error) {
	return c.GetOrLoadTTL(ctx, key, c.defaultTTL, loader)
}

// GetOrLoadTTL is GetOrLoad with an explicit TTL for a freshly loaded value.
// A loader error is returned as is and nothing is cached.
func (c *Cache) GetOrLoadTTL(ctx context.Context, key string, ttl time.Duration, loader Loader) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	if loader == nil {
		return "", ErrNilLoader
	}

	if content, ok := c.lookup(key); ok {
		return content, nil
	}

	if !c.singleFlight {
		content, err := loader(ctx)
		if err != nil {
			return "", err
		}
		c.insert(key, content, ttl)
		return content, nil
	}

	// The shared load must outlive whichever caller started it; each caller
	// only stops waiting on its own cancellation.
	ch := c.sf.DoChan(key, func() (any, error) {
		content, err := loader(context.WithoutCancel(ctx))
		if err != nil {
			return "", err
		}
		c.insert(key, content, ttl)
		return content, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.logger.LogCacheEvent("shared-load", key)
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// CacheProcessed stores already computed content under key for the default TTL.
func (c *Cache) CacheProcessed(key, content string) error {
	return c.CacheProcessedTTL(key, content, c.defaultTTL)
}

// CacheProcessedTTL stores content under key with an explicit TTL, subject
// to the same eviction policy as a loaded value.
func (c *Cache) CacheProcessedTTL(key, content string, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	c.insert(key, content, ttl)
	return nil
}

// Remove deletes key and reports whether it was present.
func (c *Cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Clear drops every entry. Loads already in flight still insert their
// result when they finish.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.logger.Debug("Cache cleared")
}

// CleanupExpired removes all expired entries and returns how many went.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleanupExpiredLocked(c.now())
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Contains reports whether key holds a fresh entry without touching it.
func (c *Cache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return ok && !e.expired(c.now())
}

// StartJanitor runs CleanupExpired every interval until the returned stop
// function is called. A non-positive interval starts nothing.
func (c *Cache) StartJanitor(interval time.Duration) (stop func()) {
	if interval <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if n := c.CleanupExpired(); n > 0 {
					c.logger.Debug("Janitor removed expired entries", "count", n)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// lookup returns a fresh entry's content and touches it. An expired entry
// is removed on the way.
func (c *Cache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.entries[key]
	if ok && e.expired(now) {
		delete(c.entries, key)
		c.logger.LogCacheEvent("expire", key)
		ok = false
	}
	if !ok {
		c.misses++
		c.logger.LogCacheEvent("miss", key)
		return "", false
	}

	e.lastAccessed = now
	c.hits++
	c.logger.LogCacheEvent("hit", key)
	return e.content, true
}

// insert stores content under key. A new key arriving at capacity first
// reaps expired entries and then, only if still full, evicts the least
// recently accessed entry.
func (c *Cache) insert(key, content string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.cleanupExpiredLocked(now)
		if len(c.entries) >= c.maxEntries {
			c.evictOldestLocked()
		}
	}

	c.entries[key] = newEntry(content, now, ttl)
}

func (c *Cache) cleanupExpiredLocked(now time.Time) int {
	removed := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			c.logger.LogCacheEvent("expire", k)
			removed++
		}
	}
	return removed
}

func (c *Cache) evictOldestLocked() {
	var (
		victim string
		oldest time.Time
		found  bool
	)
	for k, e := range c.entries {
		if !found || e.lastAccessed.Before(oldest) {
			victim, oldest, found = k, e.lastAccessed, true
		}
	}
	if !found {
		return
	}

	delete(c.entries, victim)
	c.evictions++
	c.logger.LogCacheEvent("evict", victim)
}
