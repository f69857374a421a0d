package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type entry struct {
	Fingerprints []uint64
	Results      []string
}

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	})
}

func TestInMemoryCacheManager_GetExistingPointer(t *testing.T) {
	cache := NewInMemoryCacheManager[string, *entry]("analysis", NoExpiration, 0)
	want := &entry{Fingerprints: []uint64{1, 2}, Results: []string{"results"}}
	cache.Set(context.Background(), "doc.tex", want, NoExpiration)

	got, ok := cache.Get(context.Background(), "doc.tex")
	require.True(t, ok)
	require.Same(t, want, got)
}

func TestInMemoryCacheManager_GetMissing(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("analysis", NoExpiration, 0)

	got, ok := cache.Get(context.Background(), "doc.tex")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWrongType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("analysis", NoExpiration, 0)
	cache.cache.Set("doc.tex", 123, NoExpiration)

	got, ok := cache.Get(context.Background(), "doc.tex")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expires(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("analysis", NoExpiration, 0)
	cache.Set(context.Background(), "doc.tex", "v", time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), "doc.tex")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_GetWithRefresh(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("analysis", NoExpiration, 0)

	_, ok := cache.GetWithRefresh(context.Background(), "doc.tex", time.Hour)
	require.False(t, ok)

	cache.Set(context.Background(), "doc.tex", "v", time.Hour)
	got, ok := cache.GetWithRefresh(context.Background(), "doc.tex", time.Hour)
	require.True(t, ok)
	require.Equal(t, "v", got)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, string]("analysis", NoExpiration, 0)
	cache.Set(ctx, "a.tex", "a", NoExpiration)
	cache.Set(ctx, "b.tex", "b", NoExpiration)
	cache.Set(ctx, "c.tex", "c", NoExpiration)

	require.NoError(t, cache.Delete(ctx))
	require.Equal(t, 3, cache.Count())

	require.NoError(t, cache.Delete(ctx, "b.tex", "missing.tex"))
	require.Equal(t, []string{"a.tex", "c.tex"}, cache.Keys(ctx))

	require.NoError(t, cache.Flush(ctx))
	require.Zero(t, cache.Count())
	require.Empty(t, cache.Keys(ctx))
}
