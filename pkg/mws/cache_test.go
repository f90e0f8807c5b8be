package mws_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	t.Parallel()

	cache := mws.NewMemoryCache(10)
	ctx := context.Background()

	entry := &mws.CacheEntry{
		Data:        []byte("sku\tprice\n"),
		ContentType: "text/plain",
		ExpiresAt:   time.Now().Add(time.Hour),
	}

	require.NoError(t, cache.Set(ctx, "key1", entry))

	retrieved, err := cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.Equal(t, "text/plain", retrieved.ContentType)
	assert.True(t, cache.Has(ctx, "key1"))
}

func TestMemoryCache_Misses(t *testing.T) {
	t.Parallel()

	cache := mws.NewMemoryCache(10)
	ctx := context.Background()

	_, err := cache.Get(ctx, "nonexistent")
	require.ErrorIs(t, err, mws.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "stale", &mws.CacheEntry{
		Data:      []byte("old"),
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	_, err = cache.Get(ctx, "stale")
	require.ErrorIs(t, err, mws.ErrCacheEntryExpired)
	assert.False(t, cache.Has(ctx, "stale"))

	cache.Cleanup()
	_, err = cache.Get(ctx, "stale")
	require.ErrorIs(t, err, mws.ErrCacheMiss)
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	t.Parallel()

	cache := mws.NewMemoryCache(10)
	ctx := context.Background()

	for i := range 3 {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("key%d", i), &mws.CacheEntry{Data: []byte("x")}))
	}

	require.NoError(t, cache.Delete(ctx, "key0"))
	assert.False(t, cache.Has(ctx, "key0"))
	assert.True(t, cache.Has(ctx, "key1"))

	require.NoError(t, cache.Clear(ctx))
	assert.False(t, cache.Has(ctx, "key1"))
	assert.False(t, cache.Has(ctx, "key2"))
}

func TestMemoryCache_EvictsClosestToExpiry(t *testing.T) {
	t.Parallel()

	cache := mws.NewMemoryCache(2)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, cache.Set(ctx, "soon", &mws.CacheEntry{ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, cache.Set(ctx, "later", &mws.CacheEntry{ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, cache.Set(ctx, "soon", &mws.CacheEntry{ExpiresAt: now.Add(2 * time.Minute)}))
	assert.True(t, cache.Has(ctx, "soon"))

	require.NoError(t, cache.Set(ctx, "new", &mws.CacheEntry{ExpiresAt: now.Add(2 * time.Hour)}))

	assert.False(t, cache.Has(ctx, "soon"))
	assert.True(t, cache.Has(ctx, "later"))
	assert.True(t, cache.Has(ctx, "new"))
}

func TestCacheEntry_Expired(t *testing.T) {
	t.Parallel()

	now := time.Now()

	assert.False(t, (&mws.CacheEntry{}).Expired(now))
	assert.False(t, (&mws.CacheEntry{ExpiresAt: now.Add(time.Second)}).Expired(now))
	assert.True(t, (&mws.CacheEntry{ExpiresAt: now.Add(-time.Second)}).Expired(now))
}

func TestCacheManager(t *testing.T) {
	t.Parallel()

	manager := mws.NewCacheManager(mws.NewMemoryCache(10), nil)
	ctx := context.Background()

	key := manager.GetCacheKey("GetReport", map[string]string{"ReportId": "555", "Format": "tsv"})
	assert.Equal(t, "GetReport.Format=tsv.ReportId=555", key)
	assert.Equal(t, "GetReport", manager.GetCacheKey("GetReport", nil))

	_, err := manager.Get(ctx, key)
	require.ErrorIs(t, err, mws.ErrCacheMiss)

	require.NoError(t, manager.Set(ctx, key, []byte("body"), "text/plain", time.Hour))

	entry, err := manager.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("body"), entry.Data)
	assert.WithinDuration(t, time.Now().Add(time.Hour), entry.ExpiresAt, time.Minute)

	stats := manager.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.InDelta(t, 0.5, stats.GetHitRate(), 0.001)
	assert.Zero(t, (&mws.CacheStats{}).GetHitRate())
}

func TestCacheManager_NilCacheDisablesCaching(t *testing.T) {
	t.Parallel()

	manager := mws.NewCacheManager(nil, nil)
	ctx := context.Background()

	require.NoError(t, manager.Set(ctx, "k", []byte("v"), "", time.Hour))

	_, err := manager.Get(ctx, "k")
	require.ErrorIs(t, err, mws.ErrCacheDisabled)
}
