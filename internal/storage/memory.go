package storage

import (
	"context"
	"sync"
	"time"
)

var _ SessionCache = (*MemorySessionCache)(nil)

type memoryEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

// MemorySessionCache is the single-process fallback backend. Snapshots
// expire lazily on read.
type MemorySessionCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{entries: make(map[string]memoryEntry)}
}

func (c *MemorySessionCache) Load(_ context.Context, sessionID string) (Snapshot, error) {
	c.mu.RLock()
	entry, ok := c.entries[sessionID]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return Snapshot{}, ErrNotFound
	}
	return entry.snap, nil
}

func (c *MemorySessionCache) Store(_ context.Context, sessionID string, snap Snapshot, ttl time.Duration) error {
	c.mu.Lock()
	c.entries[sessionID] = memoryEntry{
		snap:      snap,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
	return nil
}

func (c *MemorySessionCache) Clear(_ context.Context, sessionID string) error {
	c.mu.Lock()
	delete(c.entries, sessionID)
	c.mu.Unlock()
	return nil
}
