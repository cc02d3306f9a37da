package cache

import "time"

// entry is one cached value. content and expiresAt are fixed at creation;
// lastAccessed is only written with the cache lock held.
type entry struct {
	content      string
	expiresAt    time.Time
	lastAccessed time.Time
}

func newEntry(content string, now time.Time, ttl time.Duration) *entry {
	return &entry{
		content:      content,
		expiresAt:    now.Add(ttl),
		lastAccessed: now,
	}
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}
