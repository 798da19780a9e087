package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache serves reads from a fast layer and falls back to a
// persistent one, promoting hits.
type LayeredCache struct {
	memory     Cache
	persistent Cache
}

// NewLayeredCache creates a new layered cache
func NewLayeredCache(memory, persistent Cache) *LayeredCache {
	return &LayeredCache{
		memory:     memory,
		persistent: persistent,
	}
}

// Get retrieves a value from the cache (checks memory first, then the
// persistent layer)
func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if val, found := c.memory.Get(ctx, key); found {
		return val, true
	}

	if val, found := c.persistent.Get(ctx, key); found {
		// Promote with the memory layer's default TTL.
		_ = c.memory.Set(ctx, key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores a value in both caches. The memory layer always uses its own
// default TTL.
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(ctx, key, value, 0); err != nil {
		return err
	}
	return c.persistent.Set(ctx, key, value, ttl)
}

// Delete removes a value from both caches
func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	return errors.Join(c.memory.Delete(ctx, key), c.persistent.Delete(ctx, key))
}

// Clear removes all values from both caches
func (c *LayeredCache) Clear(ctx context.Context) error {
	return errors.Join(c.memory.Clear(ctx), c.persistent.Clear(ctx))
}
