package cache

import (
	"time"

	"avaloniamcp/internal/logging"
)

const (
	// DefaultMaxEntries is the entry limit used when WithMaxEntries is not given
	DefaultMaxEntries = 50

	// DefaultTTL is the time-to-live applied by GetOrLoad and CacheProcessed
	DefaultTTL = 30 * time.Minute

	// DefaultPreloadTTL is the time-to-live callers use for startup warm-up
	DefaultPreloadTTL = time.Hour

	// defaultPreloadWorkers bounds the number of files loaded at once by Preload
	defaultPreloadWorkers = 4
)

// Option configures a Cache at construction time.
type Option interface {
	apply(*Cache)
}

type optionFunc func(*Cache)

func (f optionFunc) apply(c *Cache) { f(c) }

// WithMaxEntries sets the maximum number of entries. Values below 1 are ignored.
func WithMaxEntries(n int) Option {
	return optionFunc(func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	})
}

// WithDefaultTTL sets the TTL used when a call does not pass one. Values
// below or equal to zero are ignored.
func WithDefaultTTL(d time.Duration) Option {
	return optionFunc(func(c *Cache) {
		if d > 0 {
			c.defaultTTL = d
		}
	})
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(c *Cache) {
		if now != nil {
			c.now = now
		}
	})
}

// WithLogger attaches a logger for preload failures and cache events.
func WithLogger(l *logging.AppLogger) Option {
	return optionFunc(func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	})
}

// WithSingleFlight makes concurrent misses on one key share a single load.
func WithSingleFlight(enabled bool) Option {
	return optionFunc(func(c *Cache) {
		c.singleFlight = enabled
	})
}

// WithPreloadWorkers bounds how many files Preload loads concurrently.
func WithPreloadWorkers(n int) Option {
	return optionFunc(func(c *Cache) {
		if n > 0 {
			c.preloadWorkers = n
		}
	})
}
