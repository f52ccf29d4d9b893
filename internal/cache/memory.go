package cache

import (
	"context"
	"sync"
	"time"

	"github.com/MLEngineer1/smc-cash-cow/internal/types"
)

type memoryEntry struct {
	candles types.CandleSequence
	expires time.Time
}

// MemoryCache keeps entries in process memory for ttl.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[Key]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an in-memory cache. A ttl of 0 keeps entries forever.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		mu:      sync.RWMutex{},
		entries: make(map[Key]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key Key) (types.CandleSequence, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}

	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		return nil, false, nil
	}

	return entry.candles.Clone(), true, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key Key, candles types.CandleSequence) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}

	c.entries[key] = memoryEntry{candles: candles.Clone(), expires: expires}

	return nil
}

// Reset implements Cache.
func (c *MemoryCache) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]memoryEntry)

	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
