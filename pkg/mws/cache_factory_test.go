package mws_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

func TestNewCacheFromConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   *mws.CacheConfig
		wantType interface{}
		wantErr  error
	}{
		{name: "nil config", config: nil, wantType: &mws.MemoryCache{}},
		{name: "memory", config: &mws.CacheConfig{Type: mws.CacheTypeMemory, MaxSize: 5}, wantType: &mws.MemoryCache{}},
		{name: "empty type", config: &mws.CacheConfig{}, wantType: &mws.MemoryCache{}},
		{name: "none", config: &mws.CacheConfig{Type: mws.CacheTypeNone}, wantType: &mws.NoOpCache{}},
		{name: "nats without settings", config: &mws.CacheConfig{Type: mws.CacheTypeNATS}, wantErr: mws.ErrNATSConfigRequired},
		{name: "tiered without settings", config: &mws.CacheConfig{Type: mws.CacheTypeTiered}, wantErr: mws.ErrNATSConfigRequired},
		{name: "unknown", config: &mws.CacheConfig{Type: "redis"}, wantErr: mws.ErrUnsupportedCacheType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cache, err := mws.NewCacheFromConfig(tt.config)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cache)

				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.wantType, cache)
		})
	}
}

func TestNoOpCache(t *testing.T) {
	t.Parallel()

	cache := mws.NewNoOpCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", &mws.CacheEntry{Data: []byte("v")}))

	_, err := cache.Get(ctx, "k")
	require.ErrorIs(t, err, mws.ErrCacheDisabled)
	assert.False(t, cache.Has(ctx, "k"))
	require.NoError(t, cache.Delete(ctx, "k"))
	require.NoError(t, cache.Clear(ctx))
}

func TestCacheBuilder(t *testing.T) {
	t.Parallel()

	cache, err := mws.NewCacheBuilder().
		WithType(mws.CacheTypeMemory).
		WithMaxSize(1).
		Build()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "a", &mws.CacheEntry{ExpiresAt: time.Now().Add(time.Minute)}))
	require.NoError(t, cache.Set(ctx, "b", &mws.CacheEntry{ExpiresAt: time.Now().Add(time.Hour)}))
	assert.False(t, cache.Has(ctx, "a"))
	assert.True(t, cache.Has(ctx, "b"))

	_, err = mws.NewCacheBuilder().WithType(mws.CacheTypeNATS).WithNATSConfig(nil).Build()
	require.ErrorIs(t, err, mws.ErrNATSConfigRequired)
}

func TestCacheChain(t *testing.T) {
	t.Parallel()

	l1 := mws.NewMemoryCache(10)
	l2 := mws.NewMemoryCache(10)
	chain := mws.NewCacheChain(l1, l2)
	ctx := context.Background()

	entry := &mws.CacheEntry{Data: []byte("report"), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, l2.Set(ctx, "r", entry))
	assert.False(t, l1.Has(ctx, "r"))

	got, err := chain.Get(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, got.Data)
	assert.True(t, l1.Has(ctx, "r"), "hit in L2 is promoted to L1")

	require.NoError(t, chain.Set(ctx, "s", entry))
	assert.True(t, l1.Has(ctx, "s"))
	assert.True(t, l2.Has(ctx, "s"))

	require.NoError(t, chain.Delete(ctx, "s"))
	assert.False(t, chain.Has(ctx, "s"))

	require.NoError(t, chain.Clear(ctx))
	assert.False(t, chain.Has(ctx, "r"))

	_, err = chain.Get(ctx, "r")
	require.ErrorIs(t, err, mws.ErrKeyNotFoundInAnyCache)
}

type failingCache struct {
	*mws.NoOpCache
}

var errBucketDown = errors.New("bucket down")

func (failingCache) Set(ctx context.Context, key string, entry *mws.CacheEntry) error {
	return errBucketDown
}

func TestCacheChain_JoinsWriteErrors(t *testing.T) {
	t.Parallel()

	l1 := mws.NewMemoryCache(10)
	chain := mws.NewCacheChain(l1, failingCache{mws.NewNoOpCache()})
	ctx := context.Background()

	err := chain.Set(ctx, "r", &mws.CacheEntry{Data: []byte("report"), ExpiresAt: time.Now().Add(time.Hour)})
	require.ErrorIs(t, err, errBucketDown)
	assert.True(t, l1.Has(ctx, "r"), "healthy layers are still written")
}

func TestDefaultCacheConfig(t *testing.T) {
	t.Parallel()

	config := mws.DefaultCacheConfig()

	assert.Equal(t, mws.CacheTypeMemory, config.Type)
	assert.Equal(t, mws.DefaultMemoryCacheSize, config.MaxSize)
	assert.Nil(t, config.NATS)
}
