// Package cache stores raw remote responses by request path.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// NoExpiration keeps an entry until it is deleted.
const NoExpiration time.Duration = -1

// Cache defines the interface for caching
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value. A zero ttl uses the cache default; NoExpiration
	// keeps the entry forever.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Key generates a cache key from a request URL.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "famgraph:v1:" + hex.EncodeToString(hash[:])
}
