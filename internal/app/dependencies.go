package app

import (
	"fmt"
	"io"
	"log/slog"

	"forecastcache.app/internal/adapters/external"
	"forecastcache.app/internal/adapters/infrastructure"
	"forecastcache.app/internal/config"
	"forecastcache.app/internal/core/forecast"
	"forecastcache.app/internal/ports"
	"forecastcache.app/metrics"
	"forecastcache.app/pkg/logger"
)

type DependencyContainer struct {
	config *config.Config

	medium       ports.CacheProvider
	cache        *external.InstrumentedCacheProvider
	provider     *external.OpenMeteoProviderAdapter
	fetcher      forecast.Fetcher
	fetchMetrics *metrics.FetchMetrics
	fileLogger   *infrastructure.FileLoggerAdapter

	ports *ports.ApplicationPorts
}

// DependencyOverrides replaces infrastructure pieces, mainly for tests.
type DependencyOverrides struct {
	Logger     *logger.Logger
	Clock      ports.Clock
	HTTPClient external.HTTPClient
}

func NewDependencyContainer(cfg *config.Config, overrides DependencyOverrides) (*DependencyContainer, error) {
	container := &DependencyContainer{config: cfg}

	if err := container.initializePorts(overrides); err != nil {
		_ = container.Cleanup()
		return nil, fmt.Errorf("initialize ports: %w", err)
	}

	return container, nil
}

func (c *DependencyContainer) initializePorts(overrides DependencyOverrides) error {
	slog.Info("Initializing ports...")

	base := overrides.Logger
	if base == nil {
		base = logger.NewWithLevel(logger.ParseLevel(c.config.LogLevel))
	}
	appLogger := infrastructure.NewSlogLoggerAdapter(base, "forecastcache")

	var clock ports.Clock = infrastructure.SystemClock{}
	if overrides.Clock != nil {
		clock = overrides.Clock
	}

	cacheFactory := external.NewCacheProviderFactory()
	medium, err := cacheFactory.CreateCacheProvider(&c.config.Cache)
	if err != nil {
		slog.Error("Failed to create cache provider", "error", err)
		return fmt.Errorf("create cache provider: %w", err)
	}
	c.medium = medium
	c.cache = external.NewInstrumentedCacheProvider(medium, c.config.Cache.Type.String())

	slog.Info("Cache provider initialized",
		"type", c.config.Cache.Type.String(),
		"durable", c.config.Cache.Type.IsDurable(),
		"retention", c.config.Cache.Retention().String())

	// provider traffic goes to the application log and, when enabled, to its own file
	var providerLogger ports.Logger = appLogger
	if c.config.Provider.EnableLogging && c.config.Provider.LogFilePath != "" {
		fileLogger, err := infrastructure.NewFileLoggerAdapter(c.config.Provider.LogFilePath)
		if err != nil {
			slog.Warn("Failed to create file logger, falling back to slog", "error", err)
		} else {
			c.fileLogger = fileLogger
			providerLogger = infrastructure.MultiLogger{appLogger, fileLogger}
			slog.Info("File logging enabled", "path", c.config.Provider.LogFilePath)
		}
	}

	c.provider = external.NewOpenMeteoProviderAdapter(external.OpenMeteoProviderParams{
		BaseURL:            c.config.Provider.BaseURL,
		Timeout:            c.config.Provider.Timeout(),
		BreakerMaxFailures: c.config.Provider.BreakerMaxFailures,
		BreakerOpenTimeout: c.config.Provider.BreakerOpenTimeout(),
		Client:             overrides.HTTPClient,
		Logger:             providerLogger,
	})

	c.fetcher = c.provider
	if c.config.Provider.EnableLogging {
		c.fetcher = external.NewForecastFetcherLoggingDecorator(c.provider, providerLogger)
		slog.Info("Forecast provider logging enabled")
	}

	c.fetchMetrics = metrics.NewFetchMetrics(c.provider.GetProviderName())

	c.ports = &ports.ApplicationPorts{
		CacheProvider: c.cache,
		CacheMetrics:  c.cache.GetMetrics(),
		FetchMetrics:  c.fetchMetrics,
		Clock:         clock,
		Logger:        appLogger,
	}

	slog.Info("Ports initialized successfully")
	return nil
}

func (c *DependencyContainer) ApplicationPorts() *ports.ApplicationPorts {
	return c.ports
}

// Fetcher returns the forecast fetcher, decorated with logging when enabled.
func (c *DependencyContainer) Fetcher() forecast.Fetcher {
	return c.fetcher
}

func (c *DependencyContainer) Provider() *external.OpenMeteoProviderAdapter {
	return c.provider
}

func (c *DependencyContainer) FetchMetrics() *metrics.FetchMetrics {
	return c.fetchMetrics
}

// Cache returns the instrumented cache medium.
func (c *DependencyContainer) Cache() *external.InstrumentedCacheProvider {
	return c.cache
}

// Cleanup closes the cache medium connection and the provider log file.
func (c *DependencyContainer) Cleanup() error {
	var firstErr error

	if closer, ok := c.medium.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			firstErr = err
		}
	}

	if c.fileLogger != nil {
		if err := c.fileLogger.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
