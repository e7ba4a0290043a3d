package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/ledger/pkg/cache"
)

// MemoryCache implements cache.Store using in-memory storage.
type MemoryCache struct {
	entries map[string]cacheEntry
	mu      sync.RWMutex
	stop    chan struct{}
	once    sync.Once
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache that sweeps expired entries every interval.
func NewMemoryCache(interval time.Duration) *MemoryCache {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	c := &MemoryCache{
		entries: make(map[string]cacheEntry),
		stop:    make(chan struct{}),
	}
	go c.cleanup(interval)
	return c
}

// Get retrieves a value from cache.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores a value with TTL.
func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// SetNX stores a value with TTL unless a live entry already holds key.
func (c *MemoryCache) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if entry, exists := c.entries[key]; exists && now.Before(entry.expiresAt) {
		return false, nil
	}
	c.entries[key] = cacheEntry{value: value, expiresAt: now.Add(ttl)}
	return true, nil
}

// Delete removes a value from cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Close stops the cleanup goroutine.
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiresAt) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

var _ cache.Store = (*MemoryCache)(nil)
