package ports

// ApplicationPorts aggregates all ports for dependency injection
type ApplicationPorts struct {
	// Cache
	CacheProvider CacheProvider
	CacheMetrics  CacheMetrics

	// Forecast
	FetchMetrics FetchMetrics

	// Infrastructure
	Clock  Clock
	Logger Logger
}
