package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/kantoor/internal/service"
	"github.com/redis/go-redis/v9"
)

// redisNamespace prefixes every key so the cache can share a Redis database.
const redisNamespace = "kantoor:cache:"

// Redis shares cached responses between several clients.
type Redis struct {
	client *redis.Client
}

// NewRedis connects lazily to the Redis server at addr.
func NewRedis(addr string, db int) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
	}
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func redisKey(key string) string {
	return redisNamespace + key
}

// Get returns the cached value if present.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return value, true, nil
}

// Set stores value under key for ttl; Redis expires it.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := r.client.Set(ctx, redisKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// InvalidatePrefix scans and deletes all keys starting with prefix.
func (r *Redis) InvalidatePrefix(ctx context.Context, prefix string) error {
	return r.deleteMatching(ctx, redisKey(prefix)+"*")
}

// Clear removes every cache key in the namespace.
func (r *Redis) Clear(ctx context.Context) error {
	return r.deleteMatching(ctx, redisNamespace+"*")
}

func (r *Redis) deleteMatching(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Stats counts keys in the namespace. Redis drops expired keys itself.
func (r *Redis) Stats(ctx context.Context) (service.CacheStats, error) {
	stats := service.CacheStats{Backend: BackendRedis}
	iter := r.client.Scan(ctx, 0, redisNamespace+"*", 100).Iterator()
	for iter.Next(ctx) {
		stats.Entries++
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("redis scan: %w", err)
	}
	return stats, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
