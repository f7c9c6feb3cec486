package external

import (
	"context"
	"sort"
	"strings"
	"time"

	"forecastcache.app/internal/config"
	"forecastcache.app/pkg/errors"
	"github.com/go-redis/redis/v8"
)

const redisScanBatch = 200

// RedisCacheProviderAdapter implements CacheProvider port using Redis.
// Every key is stored under prefix so Keys and Clear never touch foreign data.
type RedisCacheProviderAdapter struct {
	client *redis.Client
	prefix string
}

// NewRedisCacheProviderAdapter creates a new Redis cache provider adapter
func NewRedisCacheProviderAdapter(config *config.RedisConfig, prefix string) (*RedisCacheProviderAdapter, error) {
	if config == nil {
		return nil, errors.NewConfigurationError("redis config cannot be nil", nil)
	}
	// Clear and Keys match on the prefix; an empty one would cover the whole DB.
	if prefix == "" {
		return nil, errors.NewConfigurationError("redis key prefix cannot be empty", nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  time.Duration(config.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewExternalAPIError("failed to connect to Redis", err)
	}

	return &RedisCacheProviderAdapter{
		client: client,
		prefix: prefix,
	}, nil
}

// Get retrieves a value from Redis cache
func (r *RedisCacheProviderAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewCacheIOError("cache key cannot be empty", nil)
	}

	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NewNotFoundError("cache miss")
		}
		return nil, errors.NewExternalAPIError("redis get operation failed", err)
	}

	return val, nil
}

// Set stores a value in Redis cache with TTL
func (r *RedisCacheProviderAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.NewCacheIOError("cache key cannot be empty", nil)
	}
	if value == nil {
		return errors.NewCacheIOError("cache value cannot be nil", nil)
	}
	if ttl <= 0 {
		return errors.NewCacheIOError("cache TTL must be positive", nil)
	}

	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return errors.NewExternalAPIError("redis set operation failed", err)
	}

	return nil
}

// Delete removes a value from Redis cache
func (r *RedisCacheProviderAdapter) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewCacheIOError("cache key cannot be empty", nil)
	}

	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return errors.NewExternalAPIError("redis delete operation failed", err)
	}

	return nil
}

// Keys scans for keys under the namespace with the given prefix and returns them without the namespace.
func (r *RedisCacheProviderAdapter) Keys(ctx context.Context, prefix string) ([]string, error) {
	raw, err := r.scan(ctx, r.prefix+escapeGlob(prefix)+"*")
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, r.prefix))
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear removes every key under the namespace
func (r *RedisCacheProviderAdapter) Clear(ctx context.Context) error {
	keys, err := r.scan(ctx, escapeGlob(r.prefix)+"*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return errors.NewExternalAPIError("redis clear operation failed", err)
	}
	return nil
}

func (r *RedisCacheProviderAdapter) scan(ctx context.Context, match string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, match, redisScanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.NewExternalAPIError("redis scan operation failed", err)
	}
	return keys, nil
}

// Close closes the Redis client connection
func (r *RedisCacheProviderAdapter) Close() error {
	if err := r.client.Close(); err != nil {
		return errors.NewExternalAPIError("failed to close Redis connection", err)
	}
	return nil
}

// Ping checks if Redis connection is alive
func (r *RedisCacheProviderAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.NewExternalAPIError("Redis ping failed", err)
	}
	return nil
}

var globReplacer = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globReplacer.Replace(s)
}
