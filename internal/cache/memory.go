package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryClient implements an in-process cache for single-node deployments and tests.
type MemoryClient struct {
	mu      sync.RWMutex
	data    map[string]cacheEntry
	maxSize int
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryClient creates a new in-memory cache client.
func NewMemoryClient(maxSize int) *MemoryClient {
	if maxSize <= 0 {
		maxSize = 1000
	}

	c := &MemoryClient{
		data:    make(map[string]cacheEntry),
		maxSize: maxSize,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go c.cleanup(time.Minute)
	return c
}

// Get retrieves a value from cache.
func (c *MemoryClient) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok || c.expired(entry) {
		return nil, ErrCacheMiss
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a value in cache. A ttl <= 0 keeps the entry until it is deleted.
func (c *MemoryClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; !exists && len(c.data) >= c.maxSize {
		c.evictOldest()
	}

	entry := cacheEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.data[key] = entry
	return nil
}

// Delete removes a value from cache.
func (c *MemoryClient) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// DeleteByPrefix removes all keys with the given prefix.
func (c *MemoryClient) DeleteByPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryClient) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Close stops the cleanup loop.
func (c *MemoryClient) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryClient) expired(e cacheEntry) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

// evictOldest removes the entry expiring first; entries without expiry go last.
func (c *MemoryClient) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.data {
		exp := entry.expiresAt
		if exp.IsZero() {
			exp = time.Unix(1<<62, 0)
		}
		if oldestKey == "" || exp.Before(oldest) {
			oldestKey = key
			oldest = exp
		}
	}
	if oldestKey != "" {
		delete(c.data, oldestKey)
	}
}

func (c *MemoryClient) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.data {
				if c.expired(entry) {
					delete(c.data, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
