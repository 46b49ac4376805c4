package main

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	cacheTTL      = 10 * time.Second
	cacheCapacity = 10_000
)

// CacheEntry is an immutable snapshot of one upstream response. Body must
// not be mutated after insertion.
type CacheEntry struct {
	Status      int
	ContentType string
	Body        []byte

	expiresAt  time.Time
	lastAccess atomic.Int64 // unix nanos, refreshed on every Get
}

// Cache maps request fingerprints to response snapshots. Entries expire
// after ttl and the entry count never exceeds capacity. Safe for concurrent
// use; readers only take the read lock.
type Cache struct {
	mu       sync.RWMutex
	ttl      time.Duration
	capacity int
	now      func() time.Time
	entries  map[string]*CacheEntry
}

func NewCache(ttl time.Duration, capacity int) *Cache {
	return &Cache{
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		entries:  make(map[string]*CacheEntry),
	}
}

// Get returns the entry for key iff one exists and has not expired.
func (c *Cache) Get(key string) (*CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	now := c.now()
	if now.After(entry.expiresAt) {
		// Expired entries are invisible here; Set reclaims them.
		return nil, false
	}
	entry.lastAccess.Store(now.UnixNano())
	return entry, true
}

// Set stores or replaces the entry for key, resetting its age. When the
// cache is full it first sweeps expired entries, then evicts the least
// recently accessed one. Insertion counts as an access, so a fresh entry
// is never the next victim.
func (c *Cache) Set(key string, entry *CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	entry.expiresAt = now.Add(c.ttl)
	entry.lastAccess.Store(now.UnixNano())
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evict(now)
	}
	c.entries[key] = entry
}

// evict runs under the write lock.
func (c *Cache) evict(now time.Time) {
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.capacity {
		return
	}
	victim := ""
	var oldest int64
	for key, entry := range c.entries {
		if last := entry.lastAccess.Load(); victim == "" || last < oldest {
			victim, oldest = key, last
		}
	}
	delete(c.entries, victim)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the currently live (non-expired) fingerprints.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.now()
	keys := make([]string, 0, len(c.entries))
	for key, entry := range c.entries {
		if !now.After(entry.expiresAt) {
			keys = append(keys, key)
		}
	}
	return keys
}
