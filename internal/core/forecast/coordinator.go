package forecast

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"forecastcache.app/internal/ports"
	"forecastcache.app/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Fetcher retrieves raw forecast data for a validated configuration.
type Fetcher interface {
	Fetch(ctx context.Context, cfg ForecastConfig) (ForecastResult, error)
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc func(ctx context.Context, cfg ForecastConfig) (ForecastResult, error)

func (f FetchFunc) Fetch(ctx context.Context, cfg ForecastConfig) (ForecastResult, error) {
	return f(ctx, cfg)
}

// Resolution describes where a resolved entry came from.
type Resolution struct {
	Entry CacheEntry
	// Cached is true when no fetch was made for this call.
	Cached bool
	// Shared is true when the fetch was shared with other callers.
	Shared bool
}

// Coordinator serves fresh entries from the store and runs at most one fetch per key at a time.
type Coordinator struct {
	store   *CacheStore
	policy  FreshnessPolicy
	clock   ports.Clock
	logger  ports.Logger
	metrics ports.FetchMetrics

	flights singleflight.Group

	mu      sync.Mutex
	waiters map[CacheKey]int
}

type CoordinatorDependencies struct {
	Store   *CacheStore
	Policy  FreshnessPolicy
	Clock   ports.Clock
	Logger  ports.Logger
	Metrics ports.FetchMetrics // optional
}

func NewCoordinator(deps CoordinatorDependencies) (*Coordinator, error) {
	if deps.Store == nil {
		return nil, errors.NewConfigurationError("cache store is required", nil)
	}
	if deps.Clock == nil {
		return nil, errors.NewConfigurationError("clock is required", nil)
	}
	if deps.Logger == nil {
		return nil, errors.NewConfigurationError("logger is required", nil)
	}

	return &Coordinator{
		store:   deps.Store,
		policy:  deps.Policy,
		clock:   deps.Clock,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		waiters: make(map[CacheKey]int),
	}, nil
}

// Resolve returns the forecast for key, fetching it through fetch only when no fresh entry exists.
func (c *Coordinator) Resolve(ctx context.Context, key CacheKey, cfg ForecastConfig, fetch Fetcher) (ForecastResult, error) {
	res, err := c.ResolveEntry(ctx, key, cfg, fetch)
	if err != nil {
		return nil, err
	}
	return res.Entry.Value, nil
}

// ResolveEntry is Resolve with provenance.
func (c *Coordinator) ResolveEntry(ctx context.Context, key CacheKey, cfg ForecastConfig, fetch Fetcher) (Resolution, error) {
	return c.resolve(ctx, key, cfg, fetch, false)
}

// Refresh skips the fresh-entry fast path. It still joins a fetch already in flight for key.
func (c *Coordinator) Refresh(ctx context.Context, key CacheKey, cfg ForecastConfig, fetch Fetcher) (Resolution, error) {
	return c.resolve(ctx, key, cfg, fetch, true)
}

// Waiters returns the number of callers currently waiting on the fetch for key.
func (c *Coordinator) Waiters(key CacheKey) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waiters[key]
}

// Policy returns the freshness policy in use.
func (c *Coordinator) Policy() FreshnessPolicy {
	return c.policy
}

// Store returns the underlying cache store.
func (c *Coordinator) Store() *CacheStore {
	return c.store
}

func (c *Coordinator) resolve(ctx context.Context, key CacheKey, cfg ForecastConfig, fetch Fetcher, force bool) (Resolution, error) {
	if fetch == nil {
		return Resolution{}, errors.NewConfigurationError("fetcher is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}

	if !force {
		if entry, ok := c.freshEntry(ctx, key, cfg); ok {
			c.logger.Debug("Forecast served from cache", ports.F("key", key))
			return Resolution{Entry: entry, Cached: true}, nil
		}
	}

	c.join(key)
	defer c.leave(key)

	// The flight outlives any single waiter.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(string(key), func() (interface{}, error) {
		return c.fetchAndStore(flightCtx, key, cfg, fetch, force)
	})

	select {
	case <-ctx.Done():
		c.logger.Debug("Waiter dropped before fetch settled",
			ports.F("key", key),
			ports.F("error", ctx.Err()))
		return Resolution{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Resolution{}, r.Err
		}
		res := r.Val.(Resolution)
		res.Shared = r.Shared
		if r.Shared && c.metrics != nil {
			c.metrics.RecordSharedWaiter()
		}
		return res, nil
	}
}

// fetchAndStore runs once per flight. The store is written before any waiter is released.
func (c *Coordinator) fetchAndStore(ctx context.Context, key CacheKey, cfg ForecastConfig, fetch Fetcher, force bool) (interface{}, error) {
	// a flight that settled just before this one started may already have stored the entry
	if !force {
		if entry, ok := c.freshEntry(ctx, key, cfg); ok {
			return Resolution{Entry: entry, Cached: true}, nil
		}
	}

	c.logger.Debug("Fetching forecast", ports.F("key", key))

	start := time.Now()
	result, err := fetch.Fetch(ctx, cfg)
	duration := time.Since(start)

	if err == nil && (len(result) == 0 || !json.Valid(result)) {
		err = errors.NewExternalAPIError("fetch returned an invalid payload", nil)
	}
	if c.metrics != nil {
		c.metrics.RecordFetch(err == nil, duration)
	}
	if err != nil {
		c.logger.Warn("Forecast fetch failed",
			ports.F("key", key),
			ports.F("duration", duration),
			ports.F("error", err))
		if errors.IsFetchError(err) {
			return nil, err
		}
		return nil, errors.NewFetchError("fetch forecast "+string(key), err)
	}

	entry, err := c.store.Put(ctx, key, result)
	if err != nil {
		c.logger.Warn("Failed to cache forecast",
			ports.F("key", key),
			ports.F("error", err))
	}

	c.logger.Info("Forecast fetched",
		ports.F("key", key),
		ports.F("duration", duration),
		ports.F("bytes", len(result)))

	return Resolution{Entry: entry}, nil
}

func (c *Coordinator) freshEntry(ctx context.Context, key CacheKey, cfg ForecastConfig) (CacheEntry, bool) {
	entry, ok := c.store.Get(ctx, key)
	if !ok {
		return CacheEntry{}, false
	}
	if !c.policy.IsFresh(entry, cfg, c.clock.Now()) {
		c.logger.Debug("Cached forecast is stale",
			ports.F("key", key),
			ports.F("stored_at", entry.StoredAt))
		return CacheEntry{}, false
	}
	return entry, true
}

func (c *Coordinator) join(key CacheKey) {
	c.mu.Lock()
	c.waiters[key]++
	c.mu.Unlock()
}

func (c *Coordinator) leave(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.waiters[key] <= 1 {
		delete(c.waiters, key)
		return
	}
	c.waiters[key]--
}
