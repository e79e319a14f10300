package prompt

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL mirrors cache_service.py's default ttl=3600 (one hour).
const DefaultTTL = time.Hour

// RedisCache is a Cache implementation backed by Redis, used as the
// shared second tier when more than one orchestrator process reads the
// same prompt library, generalizing cache_service.py's single-process
// cachetools.TTLCache to a cache shared across processes.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache wraps an existing client. keyPrefix namespaces keys
// (e.g. "agentcore:prompts:"); ttl <= 0 uses DefaultTTL.
func NewRedisCache(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, prefix: keyPrefix, ttl: ttl}
}

var _ Cache = (*RedisCache)(nil)

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// A reachability failure degrades to a cache miss; the
			// Loader falls back to reading the file from disk.
		}
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) {
	if value == nil {
		c.client.Del(ctx, c.prefix+key)
		return
	}
	c.client.Set(ctx, c.prefix+key, value, c.ttl)
}
