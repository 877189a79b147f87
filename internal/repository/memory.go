package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryProjectionCache is the in-process cache used when Redis is absent or down.
// Values are stored as JSON so readers get a private copy.
type MemoryProjectionCache struct {
	mu      sync.RWMutex
	gen     int64
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryProjectionCache() *MemoryProjectionCache {
	return &MemoryProjectionCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryProjectionCache) Get(_ context.Context, key string, dest any) (bool, int64, error) {
	c.mu.RLock()
	gen := c.gen
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, gen, nil
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.mu.Lock()
		if c.gen == gen {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return false, gen, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, gen, fmt.Errorf("failed to unmarshal projection: %w", err)
	}
	return true, gen, nil
}

// Set drops the value when an Invalidate happened after the Get that returned gen.
func (c *MemoryProjectionCache) Set(_ context.Context, key string, gen int64, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal projection: %w", err)
	}
	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return nil
	}
	c.entries[key] = entry
	return nil
}

func (c *MemoryProjectionCache) Invalidate(context.Context) error {
	c.mu.Lock()
	c.gen++
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryProjectionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
