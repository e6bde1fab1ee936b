package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache is a byte-oriented key/value cache with expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache implements Cache over a go-redis client.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache wraps client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns false when the key is absent.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, true, nil
}

// Set stores value for ttl.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// CachedResolver memoizes another resolver. Cache failures are logged and
// fall through to the wrapped resolver.
type CachedResolver struct {
	next   Resolver
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedResolver wraps next with cache.
func NewCachedResolver(next Resolver, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedResolver {
	return &CachedResolver{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "tenant_cache").Logger(),
	}
}

func cacheKey(tc Context, wallet string) string {
	return fmt.Sprintf("tenant:cfg:%s:%s:%s", wallet, tc.BrandKey, tc.HostBrand())
}

// Resolve serves from cache when possible.
func (r *CachedResolver) Resolve(ctx context.Context, tc Context, wallet string) (*EffectiveConfig, error) {
	key := cacheKey(tc, wallet)

	b, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("tenant cache read failed")
	}
	if ok {
		var cfg EffectiveConfig
		if err := json.Unmarshal(b, &cfg); err == nil {
			return &cfg, nil
		}
		r.logger.Warn().Str("key", key).Msg("discarding undecodable tenant cache entry")
	}

	cfg, err := r.next.Resolve(ctx, tc, wallet)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(cfg); err == nil {
		if err := r.cache.Set(ctx, key, b, r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("tenant cache write failed")
		}
	}
	return cfg, nil
}
