package mws

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CacheType selects where downloaded reports are kept.
type CacheType string

const (
	// CacheTypeMemory keeps reports for the life of the process.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS keeps reports in a JetStream key-value bucket shared by
	// every process pointed at it.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeTiered puts a memory cache in front of the NATS bucket.
	CacheTypeTiered CacheType = "tiered"

	// CacheTypeNone disables report caching.
	CacheTypeNone CacheType = "none"
)

// DefaultMemoryCacheSize bounds the memory cache when no size is configured.
const DefaultMemoryCacheSize = 100

var (
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
)

// CacheConfig configures the report cache.
type CacheConfig struct {
	Type CacheType `json:"type" yaml:"type" mapstructure:"type"`

	// MaxSize bounds the memory backend.
	MaxSize int `json:"max_size,omitempty" yaml:"max_size,omitempty" mapstructure:"max_size"`

	// NATS configures the NATS KV backend, used by the nats and tiered types.
	NATS *NATSKVConfig `json:"nats,omitempty" yaml:"nats,omitempty" mapstructure:"nats"`
}

// DefaultCacheConfig returns a bounded memory cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:    CacheTypeMemory,
		MaxSize: DefaultMemoryCacheSize,
	}
}

// NewCacheFromConfig creates the report cache described by config. A nil
// config yields the default memory cache.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory, "":
		return config.memoryCache(), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVCache(config.NATS)

	case CacheTypeTiered:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		shared, err := NewNATSKVCache(config.NATS)
		if err != nil {
			return nil, err
		}

		return NewCacheChain(config.memoryCache(), shared), nil

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

func (c *CacheConfig) memoryCache() *MemoryCache {
	size := c.MaxSize
	if size <= 0 {
		size = DefaultMemoryCacheSize
	}

	return NewMemoryCache(size)
}

// NoOpCache is a cache that does nothing.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns ErrCacheDisabled.
func (c *NoOpCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}

// CacheBuilder helps build cache configurations.
type CacheBuilder struct {
	config *CacheConfig
}

// NewCacheBuilder creates a new cache builder.
func NewCacheBuilder() *CacheBuilder {
	return &CacheBuilder{config: DefaultCacheConfig()}
}

// WithType sets the cache type.
func (b *CacheBuilder) WithType(cacheType CacheType) *CacheBuilder {
	b.config.Type = cacheType

	return b
}

// WithMaxSize bounds the memory backend.
func (b *CacheBuilder) WithMaxSize(maxSize int) *CacheBuilder {
	b.config.MaxSize = maxSize

	return b
}

// WithNATSConfig sets NATS cache configuration.
func (b *CacheBuilder) WithNATSConfig(config *NATSKVConfig) *CacheBuilder {
	b.config.NATS = config

	return b
}

// Build creates the cache from the configuration.
func (b *CacheBuilder) Build() (Cache, error) {
	return NewCacheFromConfig(b.config)
}

// CacheChain layers caches, fastest first. A hit in a later layer is copied
// into the earlier ones. Writes go to every layer and their errors are joined.
type CacheChain struct {
	caches []Cache
}

// NewCacheChain creates a new cache chain.
func NewCacheChain(caches ...Cache) *CacheChain {
	return &CacheChain{caches: caches}
}

// Get retrieves an item from the first layer that has it.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, cache := range c.caches {
		entry, err := cache.Get(ctx, key)
		if err != nil {
			continue
		}

		for j := range i {
			_ = c.caches[j].Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, ErrKeyNotFoundInAnyCache
}

// Set stores an item in all layers.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	errs := make([]error, 0, len(c.caches))
	for _, cache := range c.caches {
		errs = append(errs, cache.Set(ctx, key, entry))
	}

	return errors.Join(errs...)
}

// Delete removes an item from all layers.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	errs := make([]error, 0, len(c.caches))
	for _, cache := range c.caches {
		errs = append(errs, cache.Delete(ctx, key))
	}

	return errors.Join(errs...)
}

// Clear empties all layers.
func (c *CacheChain) Clear(ctx context.Context) error {
	errs := make([]error, 0, len(c.caches))
	for _, cache := range c.caches {
		errs = append(errs, cache.Clear(ctx))
	}

	return errors.Join(errs...)
}

// Has checks if a key exists in any layer.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, cache := range c.caches {
		if cache.Has(ctx, key) {
			return true
		}
	}

	return false
}

// DefaultReportCacheTTL is how long downloaded reports are kept.
const DefaultReportCacheTTL = 24 * time.Hour
