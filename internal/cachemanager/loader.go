package cachemanager

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zjrosen/texdup/internal/log"
)

// LoadFunc produces the value for a key from its input.
type LoadFunc[V, I any] func(ctx context.Context, input I) (V, error)

// Loader is a read-through cache: Get returns the cached value for a key or
// calls load, caching successful results for ttl. Concurrent misses on the
// same Loader are serialized so load runs once per miss.
type Loader[K ~string, V, I any] struct {
	cache CacheManager[K, V]
	load  LoadFunc[V, I]
	ttl   time.Duration
	mu    sync.Mutex
	loads atomic.Uint64
}

// NewLoader wraps cache. A ttl of NoExpiration keeps values until Forget or
// Invalidate.
func NewLoader[K ~string, V, I any](cache CacheManager[K, V], load LoadFunc[V, I], ttl time.Duration) *Loader[K, V, I] {
	return &Loader[K, V, I]{cache: cache, load: load, ttl: ttl}
}

// Get returns the value for key, loading it from input on a miss. Errors are
// returned and not cached.
func (l *Loader[K, V, I]) Get(ctx context.Context, key K, input I) (V, error) {
	if v, ok := l.cache.Get(ctx, key); ok {
		return v, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.cache.Get(ctx, key); ok {
		return v, nil
	}

	l.loads.Add(1)
	v, err := l.load(ctx, input)
	if err != nil {
		log.ErrorErr(log.CatCache, "load failed", err, "key", key)
		return v, err
	}
	l.cache.Set(ctx, key, v, l.ttl)
	return v, nil
}

// Forget drops key so its next Get loads again.
func (l *Loader[K, V, I]) Forget(ctx context.Context, key K) error {
	return l.cache.Delete(ctx, key)
}

// Invalidate drops every key.
func (l *Loader[K, V, I]) Invalidate(ctx context.Context) error {
	return l.cache.Flush(ctx)
}

// Loads counts how many times load ran.
func (l *Loader[K, V, I]) Loads() uint64 {
	return l.loads.Load()
}
