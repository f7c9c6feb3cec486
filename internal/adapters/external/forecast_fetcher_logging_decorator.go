package external

import (
	"context"
	"time"

	"forecastcache.app/internal/core/forecast"
	"forecastcache.app/internal/ports"
)

// NamedFetcher is a forecast fetcher that can identify itself in logs.
type NamedFetcher interface {
	forecast.Fetcher
	GetProviderName() string
}

// ForecastFetcherLoggingDecorator decorates forecast fetchers with structured logging
type ForecastFetcherLoggingDecorator struct {
	fetcher NamedFetcher
	logger  ports.Logger
}

// NewForecastFetcherLoggingDecorator creates a new logging decorator for forecast fetchers
func NewForecastFetcherLoggingDecorator(fetcher NamedFetcher, logger ports.Logger) *ForecastFetcherLoggingDecorator {
	return &ForecastFetcherLoggingDecorator{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Fetch wraps the provider call with structured logging
func (d *ForecastFetcherLoggingDecorator) Fetch(ctx context.Context, cfg forecast.ForecastConfig) (forecast.ForecastResult, error) {
	providerName := d.fetcher.GetProviderName()

	d.logger.Info("Forecast API request started",
		ports.F("provider", providerName),
		ports.F("latitude", cfg.Latitude),
		ports.F("longitude", cfg.Longitude),
		ports.F("event", "request"))

	startTime := time.Now()
	result, err := d.fetcher.Fetch(ctx, cfg)
	duration := time.Since(startTime)

	if err != nil {
		d.logger.Error("Forecast API request failed",
			ports.F("provider", providerName),
			ports.F("latitude", cfg.Latitude),
			ports.F("longitude", cfg.Longitude),
			ports.F("event", "error"),
			ports.F("duration_ms", duration.Milliseconds()),
			ports.F("error", err.Error()))
		return nil, err
	}

	d.logger.Info("Forecast API request completed",
		ports.F("provider", providerName),
		ports.F("latitude", cfg.Latitude),
		ports.F("longitude", cfg.Longitude),
		ports.F("event", "response"),
		ports.F("duration_ms", duration.Milliseconds()),
		ports.F("bytes", len(result)))

	return result, nil
}

// GetProviderName returns the name of the wrapped provider with logging indication
func (d *ForecastFetcherLoggingDecorator) GetProviderName() string {
	return "logged(" + d.fetcher.GetProviderName() + ")"
}
