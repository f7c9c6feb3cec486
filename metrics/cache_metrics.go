package metrics

import (
	"sync"
	"time"

	"forecastcache.app/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Collector struct {
	Hits     *prometheus.CounterVec
	Misses   *prometheus.CounterVec
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	HitRatio *prometheus.GaugeVec

	Fetches       *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	SharedWaiters *prometheus.CounterVec
}

var (
	collectorOnce   sync.Once
	globalCollector *Collector
)

func getCollector() *Collector {
	collectorOnce.Do(func() {
		globalCollector = &Collector{
			Hits: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "forecast_cache_hits_total",
					Help: "The total number of cache hits",
				},
				[]string{"cache_type"},
			),
			Misses: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "forecast_cache_misses_total",
					Help: "The total number of cache misses",
				},
				[]string{"cache_type"},
			),
			Requests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "forecast_cache_requests_total",
					Help: "The total number of cache requests",
				},
				[]string{"cache_type"},
			),
			Latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "forecast_cache_duration_seconds",
					Help:    "Cache operation duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"cache_type", "operation"},
			),
			HitRatio: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "forecast_cache_hit_ratio",
					Help: "Cache hit ratio (hits/total requests)",
				},
				[]string{"cache_type"},
			),
			Fetches: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "forecast_fetches_total",
					Help: "Calls made to the forecast provider by outcome",
				},
				[]string{"provider", "outcome"},
			),
			FetchDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "forecast_fetch_duration_seconds",
					Help:    "Forecast provider call duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"provider"},
			),
			SharedWaiters: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "forecast_shared_waiters_total",
					Help: "Callers served by a fetch that was already in flight",
				},
				[]string{"provider"},
			),
		}
	})
	return globalCollector
}

// CacheMetrics tracks hit/miss counts for one cache medium and mirrors them to Prometheus.
type CacheMetrics struct {
	cacheType string
	hits      int64
	misses    int64
	total     int64
	collector *Collector
	mu        sync.RWMutex
}

func NewCacheMetrics(cacheType string) *CacheMetrics {
	return &CacheMetrics{
		cacheType: cacheType,
		collector: getCollector(),
	}
}

func (m *CacheMetrics) RecordHit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hits++
	m.total++
	m.collector.Hits.WithLabelValues(m.cacheType).Inc()
	m.collector.Requests.WithLabelValues(m.cacheType).Inc()
	m.updateHitRatio()
}

func (m *CacheMetrics) RecordMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.misses++
	m.total++
	m.collector.Misses.WithLabelValues(m.cacheType).Inc()
	m.collector.Requests.WithLabelValues(m.cacheType).Inc()
	m.updateHitRatio()
}

func (m *CacheMetrics) RecordOperation(operation string, duration time.Duration) {
	m.collector.Latency.WithLabelValues(m.cacheType, operation).Observe(duration.Seconds())
}

// updateHitRatio updates the Prometheus hit ratio gauge.
// Must be called while holding the mutex.
func (m *CacheMetrics) updateHitRatio() {
	if m.total > 0 {
		ratio := float64(m.hits) / float64(m.total)
		m.collector.HitRatio.WithLabelValues(m.cacheType).Set(ratio)
	}
}

func (m *CacheMetrics) GetStats() ports.CacheStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hitRatio float64
	if m.total > 0 {
		hitRatio = float64(m.hits) / float64(m.total)
	}

	return ports.CacheStats{
		Hits:        m.hits,
		Misses:      m.misses,
		TotalOps:    m.total,
		HitRatio:    hitRatio,
		LastUpdated: time.Now(),
	}
}

func (m *CacheMetrics) CacheType() string {
	return m.cacheType
}

// FetchMetrics counts provider calls and deduplicated waiters.
type FetchMetrics struct {
	provider  string
	collector *Collector

	mu        sync.RWMutex
	successes int64
	failures  int64
	shared    int64
}

func NewFetchMetrics(provider string) *FetchMetrics {
	return &FetchMetrics{
		provider:  provider,
		collector: getCollector(),
	}
}

func (m *FetchMetrics) RecordFetch(success bool, duration time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}

	m.mu.Lock()
	if success {
		m.successes++
	} else {
		m.failures++
	}
	m.mu.Unlock()

	m.collector.Fetches.WithLabelValues(m.provider, outcome).Inc()
	m.collector.FetchDuration.WithLabelValues(m.provider).Observe(duration.Seconds())
}

func (m *FetchMetrics) RecordSharedWaiter() {
	m.mu.Lock()
	m.shared++
	m.mu.Unlock()

	m.collector.SharedWaiters.WithLabelValues(m.provider).Inc()
}

func (m *FetchMetrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"provider":       m.provider,
		"successes":      m.successes,
		"failures":       m.failures,
		"shared_waiters": m.shared,
	}
}
