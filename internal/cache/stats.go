package cache

import (
	"sort"
	"time"
)

// Stats is a point-in-time snapshot of the cache.
type Stats struct {
	TotalEntries   int
	ValidEntries   int
	ExpiredEntries int

	// OldestAccess is the age of the least recently accessed entry.
	OldestAccess time.Duration
	// NewestAccess is the age of the most recently accessed entry.
	NewestAccess time.Duration

	// Keys lists every key currently held, sorted.
	Keys []string

	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// FreshnessRatio is the share of held entries that are not expired. It is a
// structural measure of the map, not a lookup statistic.
func (s Stats) FreshnessRatio() float64 {
	if s.TotalEntries == 0 {
		return 0
	}
	return float64(s.ValidEntries) / float64(s.TotalEntries)
}

// HitRatio is hits over all lookups since the cache was created.
func (s Stats) HitRatio() float64 {
	lookups := s.Hits + s.Misses
	if lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(lookups)
}

// Stats returns a snapshot of entry counts, access ages, keys and counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	s := Stats{
		TotalEntries: len(c.entries),
		Keys:         make([]string, 0, len(c.entries)),
		Hits:         c.hits,
		Misses:       c.misses,
		Evictions:    c.evictions,
	}

	var oldest, newest time.Time
	for k, e := range c.entries {
		s.Keys = append(s.Keys, k)
		if e.expired(now) {
			s.ExpiredEntries++
		} else {
			s.ValidEntries++
		}
		if oldest.IsZero() || e.lastAccessed.Before(oldest) {
			oldest = e.lastAccessed
		}
		if newest.IsZero() || e.lastAccessed.After(newest) {
			newest = e.lastAccessed
		}
	}
	sort.Strings(s.Keys)

	if len(c.entries) > 0 {
		s.OldestAccess = now.Sub(oldest)
		s.NewestAccess = now.Sub(newest)
	}

	return s
}
