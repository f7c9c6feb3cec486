package forecast

import (
	"context"
	"fmt"
	"time"

	"forecastcache.app/internal/ports"
	"forecastcache.app/pkg/errors"
)

// Forecast is the request/response view of a resolved lookup.
type Forecast struct {
	Key      CacheKey       `json:"key"`
	Cached   bool           `json:"cached"`
	StoredAt time.Time      `json:"storedAt"`
	Data     ForecastResult `json:"data"`
}

type UseCase struct {
	coordinator *Coordinator
	fetcher     Fetcher
	logger      ports.Logger
}

type UseCaseDependencies struct {
	Coordinator *Coordinator
	Fetcher     Fetcher
	Logger      ports.Logger
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Coordinator == nil {
		return nil, errors.NewConfigurationError("coordinator is required", nil)
	}
	if deps.Fetcher == nil {
		return nil, errors.NewConfigurationError("fetcher is required", nil)
	}
	if deps.Logger == nil {
		return nil, errors.NewConfigurationError("logger is required", nil)
	}

	return &UseCase{
		coordinator: deps.Coordinator,
		fetcher:     deps.Fetcher,
		logger:      deps.Logger,
	}, nil
}

func (uc *UseCase) GetForecast(ctx context.Context, cfg ForecastConfig) (*Forecast, error) {
	key, err := Normalize(cfg)
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("Resolving forecast", ports.F("key", key))

	resolve := uc.coordinator.ResolveEntry
	if cfg.Refresh {
		resolve = uc.coordinator.Refresh
	}

	res, err := resolve(ctx, key, cfg, uc.fetcher)
	if err != nil {
		return nil, fmt.Errorf("resolve forecast %s: %w", key, err)
	}

	return &Forecast{
		Key:      key,
		Cached:   res.Cached,
		StoredAt: res.Entry.StoredAt,
		Data:     res.Entry.Value,
	}, nil
}

// Invalidate drops the cached entry for cfg and returns its key.
func (uc *UseCase) Invalidate(ctx context.Context, cfg ForecastConfig) (CacheKey, error) {
	key, err := Normalize(cfg)
	if err != nil {
		return "", err
	}

	if err := uc.coordinator.Store().Delete(ctx, key); err != nil {
		return "", err
	}

	uc.logger.Info("Forecast invalidated", ports.F("key", key))
	return key, nil
}

func (uc *UseCase) Keys(ctx context.Context) ([]CacheKey, error) {
	return uc.coordinator.Store().Keys(ctx)
}

func (uc *UseCase) ClearAll(ctx context.Context) error {
	if err := uc.coordinator.Store().Clear(ctx); err != nil {
		return err
	}
	uc.logger.Info("Forecast cache cleared")
	return nil
}

// Sweep evicts entries past the retention window.
func (uc *UseCase) Sweep(ctx context.Context) (int, error) {
	removed, err := uc.coordinator.Store().Sweep(ctx)
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		uc.logger.Info("Cache sweep finished", ports.F("removed", removed))
	}
	return removed, nil
}

// Warm refetches each configuration so later requests hit the cache.
// Entries are replaced even when still fresh, so a warm-up interval equal to the
// freshness threshold never leaves a stale entry behind. It returns the number of
// configurations that failed.
func (uc *UseCase) Warm(ctx context.Context, cfgs []ForecastConfig) int {
	failed := 0
	for _, cfg := range cfgs {
		cfg.Refresh = true
		if _, err := uc.GetForecast(ctx, cfg); err != nil {
			failed++
			uc.logger.Warn("Cache warm-up failed",
				ports.F("latitude", cfg.Latitude),
				ports.F("longitude", cfg.Longitude),
				ports.F("error", err))
		}
	}
	return failed
}

// NewQuery returns an observable query sharing this use case's coordinator and fetcher.
func (uc *UseCase) NewQuery() *Query {
	return NewQuery(uc.coordinator, uc.fetcher)
}
