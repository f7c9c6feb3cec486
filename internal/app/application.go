package app

import (
	"context"
	"fmt"
	"log/slog"

	"forecastcache.app/internal/adapters/api"
	"forecastcache.app/internal/adapters/infrastructure"
	"forecastcache.app/internal/config"
	"forecastcache.app/internal/core/forecast"
	"forecastcache.app/internal/scheduler"
	"github.com/gin-gonic/gin"
)

type Application struct {
	config *config.Config
	deps   *DependencyContainer

	// Use Cases
	forecastUseCase *forecast.UseCase

	// Adapters
	httpServer *api.HTTPServerAdapter
	scheduler  *scheduler.Scheduler
}

func NewApplication() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	deps, err := NewDependencyContainer(cfg, DependencyOverrides{})
	if err != nil {
		return nil, fmt.Errorf("create dependency container: %w", err)
	}

	app, err := NewApplicationWithDependencies(cfg, deps)
	if err != nil {
		_ = deps.Cleanup()
		return nil, err
	}
	return app, nil
}

// NewApplicationWithDependencies builds the application on an existing container.
func NewApplicationWithDependencies(cfg *config.Config, deps *DependencyContainer) (*Application, error) {
	app := &Application{
		config: cfg,
		deps:   deps,
	}

	if err := app.initializeUseCases(); err != nil {
		return nil, fmt.Errorf("initialize use cases: %w", err)
	}

	if err := app.initializeAdapters(); err != nil {
		return nil, fmt.Errorf("initialize adapters: %w", err)
	}

	return app, nil
}

func (a *Application) initializeUseCases() error {
	slog.Info("Initializing use cases...")

	p := a.deps.ApplicationPorts()

	store, err := forecast.NewCacheStore(forecast.CacheStoreDependencies{
		Medium:    p.CacheProvider,
		Clock:     p.Clock,
		Logger:    p.Logger,
		Retention: a.config.Cache.Retention(),
	})
	if err != nil {
		return fmt.Errorf("create cache store: %w", err)
	}

	coordinator, err := forecast.NewCoordinator(forecast.CoordinatorDependencies{
		Store: store,
		Policy: forecast.FreshnessPolicy{
			CurrentMaxAge:  a.config.Freshness.CurrentMaxAge(),
			ForecastMaxAge: a.config.Freshness.ForecastMaxAge(),
			MaxAge:         a.config.Freshness.MaxAge(),
		},
		Clock:   p.Clock,
		Logger:  p.Logger,
		Metrics: p.FetchMetrics,
	})
	if err != nil {
		return fmt.Errorf("create fetch coordinator: %w", err)
	}

	a.forecastUseCase, err = forecast.NewUseCase(forecast.UseCaseDependencies{
		Coordinator: coordinator,
		Fetcher:     a.deps.Fetcher(),
		Logger:      p.Logger,
	})
	if err != nil {
		return fmt.Errorf("create forecast use case: %w", err)
	}

	slog.Info("Use cases initialized successfully")
	return nil
}

func (a *Application) initializeAdapters() error {
	slog.Info("Initializing adapters...")

	p := a.deps.ApplicationPorts()

	metricsCollector := infrastructure.NewMetricsCollectorAdapter(infrastructure.MetricsCollectorConfig{
		CacheMetrics: p.CacheMetrics,
		FetchMetrics: a.deps.FetchMetrics(),
		CacheType:    a.config.Cache.Type.String(),
	})

	systemHealthChecker := infrastructure.NewSystemHealthChecker(infrastructure.SystemHealthCheckerConfig{
		CacheChecker:    infrastructure.NewCacheHealthChecker(p.CacheProvider, a.config.Cache.Type.String()),
		ProviderChecker: infrastructure.NewProviderHealthChecker(a.deps.Provider()),
		Config:          a.config,
	})

	httpServer, err := api.NewHTTPServerAdapter(api.ServerOptions{
		Config: api.ServerConfig{
			Port: a.config.Server.Port,
		},
		ForecastUseCase:     a.forecastUseCase,
		MetricsCollector:    metricsCollector,
		SystemHealthChecker: systemHealthChecker,
	})
	if err != nil {
		return fmt.Errorf("create HTTP adapter: %w", err)
	}
	a.httpServer = httpServer

	if a.config.Scheduler.Enabled {
		locations, err := a.config.Scheduler.Locations()
		if err != nil {
			return err
		}

		warmup := make([]forecast.ForecastConfig, 0, len(locations))
		for _, loc := range locations {
			warmup = append(warmup, forecast.ForecastConfig{
				Latitude:       loc.Latitude,
				Longitude:      loc.Longitude,
				CurrentWeather: true,
			})
		}

		a.scheduler, err = scheduler.New(scheduler.Options{
			Forecasts:      a.forecastUseCase,
			Purger:         a.deps.Cache(),
			Logger:         p.Logger,
			SweepInterval:  a.config.Scheduler.SweepInterval(),
			WarmupInterval: a.config.Scheduler.WarmupInterval(),
			Warmup:         warmup,
		})
		if err != nil {
			return fmt.Errorf("create scheduler: %w", err)
		}
	}

	slog.Info("Adapters initialized successfully")
	return nil
}

// Start runs the scheduler in the background and serves HTTP until Shutdown.
func (a *Application) Start(ctx context.Context) error {
	slog.Info("Starting application...")

	if a.scheduler != nil {
		if err := a.scheduler.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	return a.httpServer.Start(ctx)
}

func (a *Application) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Error shutting down HTTP server", "error", err)
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	if err := a.deps.Cleanup(); err != nil {
		slog.Warn("Error releasing resources", "error", err)
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (a *Application) Config() *config.Config {
	return a.config
}

// GetRouter returns the Gin router for testing
func (a *Application) GetRouter() *gin.Engine {
	return a.httpServer.GetRouter()
}

// GetForecastUseCase returns the forecast use case for testing
func (a *Application) GetForecastUseCase() *forecast.UseCase {
	return a.forecastUseCase
}
