package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/cache"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements cache.Store using Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisCache parses a redis:// URL and creates a RedisCache.
func NewRedisCache(url, prefix string, logger *slog.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisCacheWithOptions(opt, prefix, logger), nil
}

// NewRedisCacheWithOptions creates a RedisCache from redis.Options.
func NewRedisCacheWithOptions(opt *redis.Options, prefix string, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: redis.NewClient(opt), prefix: prefix, logger: logger}
}

func (r *RedisCache) key(key string) string {
	return r.prefix + key
}

// Ping checks connectivity.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "key", key)
		return "", false, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "key", key, "error", err)
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis cache set", "key", key, "ttl", ttl)
	return nil
}

func (r *RedisCache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(key), value, ttl).Result()
	if err != nil {
		r.logger.Error("Redis cache setnx error", "key", key, "error", err)
		return false, err
	}
	return ok, nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.logger.Error("Redis cache delete error", "key", key, "error", err)
		return err
	}
	return nil
}

// Close closes the underlying client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

var _ cache.Store = (*RedisCache)(nil)
