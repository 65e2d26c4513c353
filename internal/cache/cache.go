package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Keys of the cached catalog listings
const (
	StationsKey = "catalog:stations"
	TrainsKey   = "catalog:trains"

	// GenerationKey counts catalog writes. Listings are stored under
	// "<key>:<generation>", so an entry filled by a reader that started
	// before a write is never served after it.
	GenerationKey = "catalog:generation"
)

// CatalogCache stores catalog listings as JSON in Redis.
// A CatalogCache built on a nil client never hits and never fails.
type CatalogCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCatalogCache creates a catalog cache. rdb may be nil.
func NewCatalogCache(rdb *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{rdb: rdb, ttl: ttl}
}

// Load decodes the cached value at key into dst and reports whether it was
// present. The returned generation must be passed to Store on a miss.
func (c *CatalogCache) Load(ctx context.Context, key string, dst interface{}) (bool, int64, error) {
	if c.rdb == nil {
		return false, 0, nil
	}

	gen, err := c.rdb.Get(ctx, GenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, 0, fmt.Errorf("cache generation: %w", err)
	}

	versioned := versionedKey(key, gen)
	data, err := c.rdb.Get(ctx, versioned).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, gen, nil
		}
		return false, gen, fmt.Errorf("cache get %s: %w", versioned, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, gen, fmt.Errorf("cache decode %s: %w", versioned, err)
	}
	return true, gen, nil
}

// Store caches v at key for the generation read by Load
func (c *CatalogCache) Store(ctx context.Context, key string, gen int64, v interface{}) error {
	if c.rdb == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	versioned := versionedKey(key, gen)
	if err := c.rdb.Set(ctx, versioned, string(data), c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", versioned, err)
	}
	return nil
}

// Invalidate moves the catalog to a new generation. Older entries are no
// longer read and lapse with their TTL.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}

	if err := c.rdb.Incr(ctx, GenerationKey).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func versionedKey(key string, gen int64) string {
	return fmt.Sprintf("%s:%d", key, gen)
}
