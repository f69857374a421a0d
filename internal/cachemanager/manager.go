// Package cachemanager provides typed caches over go-cache. The analyzer keeps
// its per-document entries in one; the MCP server loads exclusion tiers
// through a Loader.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a typed key/value store with per-entry expiration.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	// GetWithRefresh extends the ttl of a found entry.
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
	// Keys lists live keys in sorted order.
	Keys(ctx context.Context) []K
	Count() int
}
