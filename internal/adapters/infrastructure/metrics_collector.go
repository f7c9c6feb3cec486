package infrastructure

import (
	"context"

	"forecastcache.app/internal/ports"
)

// FetchStatsSource exposes counters for calls to the forecast provider.
type FetchStatsSource interface {
	GetStats() map[string]interface{}
}

// MetricsCollectorAdapter assembles the JSON body served by /api/metrics.
type MetricsCollectorAdapter struct {
	cacheMetrics ports.CacheMetrics
	fetchMetrics FetchStatsSource
	cacheType    string
}

// MetricsCollectorConfig holds configuration for creating the metrics collector
type MetricsCollectorConfig struct {
	CacheMetrics ports.CacheMetrics
	FetchMetrics FetchStatsSource
	CacheType    string
}

// NewMetricsCollectorAdapter creates a new metrics collector adapter
func NewMetricsCollectorAdapter(config MetricsCollectorConfig) *MetricsCollectorAdapter {
	return &MetricsCollectorAdapter{
		cacheMetrics: config.CacheMetrics,
		fetchMetrics: config.FetchMetrics,
		cacheType:    config.CacheType,
	}
}

// GetMetrics returns cache and fetch counters
func (m *MetricsCollectorAdapter) GetMetrics(ctx context.Context) (map[string]interface{}, error) {
	result := make(map[string]interface{})

	if m.cacheMetrics != nil {
		stats := m.cacheMetrics.GetStats()
		result["cache"] = map[string]interface{}{
			"type":      m.cacheType,
			"hits":      stats.Hits,
			"misses":    stats.Misses,
			"total_ops": stats.TotalOps,
			"hit_ratio": stats.HitRatio,
			"updated":   stats.LastUpdated,
		}
	}

	if m.fetchMetrics != nil {
		result["fetch"] = m.fetchMetrics.GetStats()
	}

	return result, nil
}
