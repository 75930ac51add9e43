package repository

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultMemoryCacheSize bounds the in-process cache when no size is given.
const DefaultMemoryCacheSize = 10_000

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is a process-local CacheRepository used when Redis is not
// configured. It holds at most size entries, evicting the least recently
// used, and Sweep drops expired ones.
type MemoryCache struct {
	entries *lru.Cache
	now     func() time.Time
}

// NewMemoryCache returns a cache holding at most size entries. A
// non-positive size means DefaultMemoryCacheSize.
func NewMemoryCache(size int) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryCacheSize
	}
	// lru.New only fails for a non-positive size.
	entries, _ := lru.New(size)
	return &MemoryCache{entries: entries, now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	raw, ok := m.entries.Get(key)
	if !ok {
		return "", false
	}
	entry := raw.(memoryEntry)
	if m.expired(entry) {
		m.entries.Remove(key)
		return "", false
	}
	return entry.value, true
}

// Set stores value; ttl <= 0 means no expiry.
func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries.Add(key, entry)
	return nil
}

// Sweep removes expired entries and returns how many it removed.
func (m *MemoryCache) Sweep() int {
	removed := 0
	for _, key := range m.entries.Keys() {
		raw, ok := m.entries.Peek(key)
		if ok && m.expired(raw.(memoryEntry)) {
			m.entries.Remove(key)
			removed++
		}
	}
	return removed
}

func (m *MemoryCache) Len() int {
	return m.entries.Len()
}

func (m *MemoryCache) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && m.now().After(e.expiresAt)
}
