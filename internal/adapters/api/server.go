// Package api provides HTTP adapters for the hexagonal architecture
// These adapters handle incoming HTTP requests and translate them to use cases
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"forecastcache.app/internal/core/forecast"
	"forecastcache.app/internal/ports"
	"forecastcache.app/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestIDHeader = "X-Request-ID"

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port int
}

// HTTPServerAdapter implements HTTP server using Gin framework
type HTTPServerAdapter struct {
	router           *gin.Engine
	server           *http.Server
	config           ServerConfig
	forecastUseCase  ForecastUseCase
	metricsCollector MetricsCollector
	healthChecker    ports.SystemHealthChecker
}

// ForecastUseCase is the part of the forecast use case the HTTP adapter depends on
type ForecastUseCase interface {
	GetForecast(ctx context.Context, cfg forecast.ForecastConfig) (*forecast.Forecast, error)
	Invalidate(ctx context.Context, cfg forecast.ForecastConfig) (forecast.CacheKey, error)
	Keys(ctx context.Context) ([]forecast.CacheKey, error)
	ClearAll(ctx context.Context) error
	NewQuery() *forecast.Query
}

type MetricsCollector interface {
	GetMetrics(ctx context.Context) (map[string]interface{}, error)
}

// ServerOptions represents options for creating the HTTP server
type ServerOptions struct {
	Config              ServerConfig
	ForecastUseCase     ForecastUseCase
	MetricsCollector    MetricsCollector
	SystemHealthChecker ports.SystemHealthChecker
}

// NewHTTPServerAdapter creates a new HTTP server adapter
func NewHTTPServerAdapter(opts ServerOptions) (*HTTPServerAdapter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger())

	s := &HTTPServerAdapter{
		router:           router,
		config:           opts.Config,
		forecastUseCase:  opts.ForecastUseCase,
		metricsCollector: opts.MetricsCollector,
		healthChecker:    opts.SystemHealthChecker,
	}
	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", opts.Config.Port),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// streams stay open until the lookup settles, so no WriteTimeout
		IdleTimeout: 60 * time.Second,
	}

	s.setupRoutes()
	return s, nil
}

// Validate checks if all required dependencies are provided
func (opts *ServerOptions) Validate() error {
	if opts.ForecastUseCase == nil {
		return errors.NewConfigurationError("forecast use case is required", nil)
	}
	if opts.MetricsCollector == nil {
		return errors.NewConfigurationError("metrics collector is required", nil)
	}
	if opts.SystemHealthChecker == nil {
		return errors.NewConfigurationError("system health checker is required", nil)
	}
	return nil
}

// setupRoutes configures all HTTP routes
func (s *HTTPServerAdapter) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/forecast", s.getForecast)
		api.GET("/forecast/stream", s.streamForecast)
		api.DELETE("/forecast", s.invalidateForecast)
		api.GET("/cache/keys", s.listCacheKeys)
		api.DELETE("/cache", s.clearCache)
		api.GET("/metrics", s.getMetrics)
	}

	s.router.GET("/health", s.getHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Start serves HTTP until Shutdown is called.
func (s *HTTPServerAdapter) Start(ctx context.Context) error {
	slog.Info("Starting HTTP server", "port", s.config.Port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *HTTPServerAdapter) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// GetRouter returns the router for testing purposes
func (s *HTTPServerAdapter) GetRouter() *gin.Engine {
	return s.router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Debug("HTTP request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}
