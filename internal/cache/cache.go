package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is an optional JSON cache on top of redis. A nil Cache or a
// cache without a client is a no-op: every read misses and every write
// is dropped, so callers never branch on whether caching is configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a cache with the given TTL. client may be nil.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Read unmarshals the cached value for key into out. Returns false on
// miss or any cache error.
func (c *Cache) Read(ctx context.Context, key string, out any) bool {
	if !c.enabled() {
		return false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

// Write stores val under key with the configured TTL. Cache errors are
// swallowed.
func (c *Cache) Write(ctx context.Context, key string, val any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate drops keys matching the given exact keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.enabled() || len(keys) == 0 {
		return
	}
	_ = c.client.Del(ctx, keys...).Err()
}
