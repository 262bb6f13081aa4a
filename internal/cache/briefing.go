// Package cache holds the in-memory briefing cache. Entries live for a fixed
// TTL and are dropped eagerly when fresh weather data arrives for a location.
package cache

import (
	"sync"
	"time"

	models "flightguard/internal"
)

// DefaultTTL is how long a generated briefing stays servable.
const DefaultTTL = time.Hour

// Key identifies a briefing exactly: location name, ISO datetime, training
// level. No radius matching.
type Key struct {
	Location string
	At       string
	Level    models.TrainingLevel
}

func NewKey(loc string, at time.Time, level models.TrainingLevel) Key {
	return Key{Location: loc, At: at.UTC().Format(time.RFC3339), Level: level}
}

type entry struct {
	briefing  string
	expiresAt time.Time
}

// BriefingCache is unbounded between invalidations; the location set is
// bounded in practice, so TTL-on-read plus explicit invalidation suffices.
type BriefingCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[Key]entry
	nowFn   func() time.Time
}

func New(ttl time.Duration) *BriefingCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &BriefingCache{
		ttl:     ttl,
		entries: make(map[Key]entry),
		nowFn:   time.Now,
	}
}

// Get returns the cached briefing if present and not expired. Expired
// entries are removed on read.
func (c *BriefingCache) Get(key Key) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.expiresAt.After(c.nowFn()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return e.briefing, true
}

func (c *BriefingCache) Put(key Key, briefing string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{briefing: briefing, expiresAt: c.nowFn().Add(c.ttl)}
}

// Invalidate removes every entry for the location name and returns how many
// were dropped. Called whenever fresh weather data is recorded for it.
func (c *BriefingCache) Invalidate(location string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for key := range c.entries {
		if key.Location == location {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

func (c *BriefingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
