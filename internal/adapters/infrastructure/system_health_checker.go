package infrastructure

import (
	"context"

	"forecastcache.app/internal/config"
	"forecastcache.app/internal/ports"
)

// SystemHealthChecker aggregates all health checks
type SystemHealthChecker struct {
	cacheChecker    ports.HealthChecker
	providerChecker ports.HealthChecker
	config          *config.Config
}

// SystemHealthCheckerConfig holds the configuration for creating a system health checker
type SystemHealthCheckerConfig struct {
	CacheChecker    ports.HealthChecker
	ProviderChecker ports.HealthChecker
	Config          *config.Config
}

// NewSystemHealthChecker creates a new system health checker
func NewSystemHealthChecker(cfg SystemHealthCheckerConfig) *SystemHealthChecker {
	return &SystemHealthChecker{
		cacheChecker:    cfg.CacheChecker,
		providerChecker: cfg.ProviderChecker,
		config:          cfg.Config,
	}
}

// CheckAll performs health checks on all components
func (s *SystemHealthChecker) CheckAll(ctx context.Context) map[string]ports.HealthStatus {
	results := make(map[string]ports.HealthStatus)

	if s.cacheChecker != nil {
		results["cache"] = s.cacheChecker.Check(ctx)
	}

	if s.providerChecker != nil {
		results["forecastProvider"] = s.providerChecker.Check(ctx)
	}

	if s.config != nil {
		results["config"] = ports.HealthStatus{
			Component: "config",
			Status:    ports.HealthStatusHealthy,
			Details: map[string]interface{}{
				"cacheType":        s.config.Cache.Type.String(),
				"retention":        s.config.Cache.Retention().String(),
				"currentMaxAge":    s.config.Freshness.CurrentMaxAge().String(),
				"forecastMaxAge":   s.config.Freshness.ForecastMaxAge().String(),
				"schedulerEnabled": s.config.Scheduler.Enabled,
			},
		}
	}

	return results
}

