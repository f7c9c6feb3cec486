package external

import (
	"context"
	"time"

	"forecastcache.app/internal/ports"
	"forecastcache.app/metrics"
	"forecastcache.app/pkg/errors"
)

// InstrumentedCacheProvider records hit/miss counts and operation latency for a cache medium.
type InstrumentedCacheProvider struct {
	cache   ports.CacheProvider
	metrics *metrics.CacheMetrics
}

func NewInstrumentedCacheProvider(cache ports.CacheProvider, cacheType string) *InstrumentedCacheProvider {
	return &InstrumentedCacheProvider{
		cache:   cache,
		metrics: metrics.NewCacheMetrics(cacheType),
	}
}

func (c *InstrumentedCacheProvider) measure(operation string, fn func()) {
	start := time.Now()
	fn()
	c.metrics.RecordOperation(operation, time.Since(start))
}

func (c *InstrumentedCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	c.measure("get", func() {
		data, err = c.cache.Get(ctx, key)
	})

	switch {
	case err == nil:
		c.metrics.RecordHit()
	case errors.IsNotFoundError(err):
		c.metrics.RecordMiss()
	}

	return data, err
}

func (c *InstrumentedCacheProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var err error
	c.measure("set", func() {
		err = c.cache.Set(ctx, key, value, ttl)
	})
	return err
}

func (c *InstrumentedCacheProvider) Delete(ctx context.Context, key string) error {
	var err error
	c.measure("delete", func() {
		err = c.cache.Delete(ctx, key)
	})
	return err
}

func (c *InstrumentedCacheProvider) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys []string
		err  error
	)
	c.measure("keys", func() {
		keys, err = c.cache.Keys(ctx, prefix)
	})
	return keys, err
}

func (c *InstrumentedCacheProvider) Clear(ctx context.Context) error {
	var err error
	c.measure("clear", func() {
		err = c.cache.Clear(ctx)
	})
	return err
}

// Ping forwards to the wrapped medium when it supports health checks.
func (c *InstrumentedCacheProvider) Ping(ctx context.Context) error {
	if p, ok := c.cache.(ports.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// PurgeExpired forwards to the wrapped medium when it keeps expired rows around.
func (c *InstrumentedCacheProvider) PurgeExpired(ctx context.Context) (int64, error) {
	if p, ok := c.cache.(interface {
		PurgeExpired(ctx context.Context) (int64, error)
	}); ok {
		return p.PurgeExpired(ctx)
	}
	return 0, nil
}

func (c *InstrumentedCacheProvider) Unwrap() ports.CacheProvider {
	return c.cache
}

func (c *InstrumentedCacheProvider) GetMetrics() *metrics.CacheMetrics {
	return c.metrics
}
