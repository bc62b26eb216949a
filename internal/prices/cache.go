package prices

import (
	"sync"
	"time"

	"precio-luz/internal/model"
)

// dayCache is a small in-memory TTL cache of shaped day results, keyed by
// date. It only ever holds a handful of entries (the dates a session
// browses), so eviction is lazy: expired entries are dropped on read and
// by an occasional sweep.
type dayCache struct {
	mu    sync.RWMutex
	store map[string]dayCacheEntry
}

type dayCacheEntry struct {
	result    *DayResult
	expiresAt time.Time
}

func newDayCache() *dayCache {
	c := &dayCache{store: make(map[string]dayCacheEntry)}
	go c.sweep()
	return c
}

func (c *dayCache) get(date string) (*DayResult, bool) {
	c.mu.RLock()
	entry, ok := c.store[date]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.result, true
}

func (c *dayCache) set(date string, r *DayResult, ttl time.Duration) {
	c.mu.Lock()
	c.store[date] = dayCacheEntry{result: r, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *dayCache) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for date, entry := range c.store {
			if now.After(entry.expiresAt) {
				delete(c.store, date)
			}
		}
		c.mu.Unlock()
	}
}

// cacheTTL maps a cache policy to an in-process TTL. Tomorrow is never
// cached: while its data is being published every fetch must see fresh
// counts.
func cacheTTL(policy model.CachePolicy) time.Duration {
	switch policy {
	case model.CacheToday:
		return 5 * time.Minute
	case model.CachePast:
		return 24 * time.Hour
	}
	return 0
}
