package infrastructure

import (
	"context"
	"time"

	"forecastcache.app/internal/ports"
)

const healthCheckTimeout = 2 * time.Second

// CacheHealthChecker pings the cache medium when it holds a connection.
type CacheHealthChecker struct {
	cache     ports.CacheProvider
	cacheType string
}

func NewCacheHealthChecker(cache ports.CacheProvider, cacheType string) *CacheHealthChecker {
	return &CacheHealthChecker{cache: cache, cacheType: cacheType}
}

// Check verifies cache connectivity
func (c *CacheHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "cache",
		Details: map[string]interface{}{
			"type": c.cacheType,
		},
	}

	if c.cache == nil {
		status.Status = ports.HealthStatusUnhealthy
		status.Error = "cache is not configured"
		return status
	}

	pinger, ok := c.cache.(ports.Pinger)
	if !ok {
		status.Status = ports.HealthStatusHealthy
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := pinger.Ping(ctx); err != nil {
		status.Status = ports.HealthStatusUnhealthy
		status.Error = err.Error()
		return status
	}

	status.Status = ports.HealthStatusHealthy
	status.Details["connected"] = true
	return status
}

// BreakerReporter is a provider guarded by a circuit breaker.
type BreakerReporter interface {
	GetProviderName() string
	BreakerState() string
}

// ProviderHealthChecker reports the forecast provider as unhealthy while its breaker is open.
// It never calls the upstream.
type ProviderHealthChecker struct {
	provider BreakerReporter
}

func NewProviderHealthChecker(provider BreakerReporter) *ProviderHealthChecker {
	return &ProviderHealthChecker{provider: provider}
}

func (p *ProviderHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "forecastProvider",
		Details:   make(map[string]interface{}),
	}

	if p.provider == nil {
		status.Status = ports.HealthStatusUnhealthy
		status.Error = "forecast provider is not available"
		return status
	}

	state := p.provider.BreakerState()
	status.Details["provider"] = p.provider.GetProviderName()
	status.Details["breaker"] = state

	if state == "open" {
		status.Status = ports.HealthStatusUnhealthy
		status.Error = "circuit breaker is open"
		return status
	}

	status.Status = ports.HealthStatusHealthy
	return status
}
