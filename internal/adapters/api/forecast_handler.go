package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"forecastcache.app/internal/core/forecast"
	"forecastcache.app/internal/ports"
	"forecastcache.app/pkg/errors"
	"github.com/gin-gonic/gin"
)

// StateEvent is the payload of each server-sent "state" event.
type StateEvent struct {
	Status    forecast.Status         `json:"status"`
	Key       forecast.CacheKey       `json:"key,omitempty"`
	Result    forecast.ForecastResult `json:"result,omitempty"`
	Error     string                  `json:"error,omitempty"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// bindForecastConfig reads the forecast configuration from the query string.
// latitude and longitude are required; max_age is an optional freshness override in seconds.
func bindForecastConfig(c *gin.Context) (forecast.ForecastConfig, error) {
	var cfg forecast.ForecastConfig

	if c.Query("latitude") == "" || c.Query("longitude") == "" {
		return cfg, errors.NewInvalidConfigError("latitude and longitude are required")
	}

	if err := c.ShouldBindQuery(&cfg); err != nil {
		return cfg, errors.NewInvalidConfigError("invalid query parameters: " + err.Error())
	}

	if raw := c.Query("max_age"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds < 0 {
			return cfg, errors.NewInvalidConfigError("max_age must be a non-negative number of seconds")
		}
		// max_age=0 asks for a fresh copy; a zero MaxAge alone would mean "use the policy"
		if seconds == 0 {
			cfg.Refresh = true
		}
		cfg.MaxAge = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

// getForecast handles GET /api/forecast requests
func (s *HTTPServerAdapter) getForecast(c *gin.Context) {
	cfg, err := bindForecastConfig(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	result, err := s.forecastUseCase.GetForecast(c.Request.Context(), cfg)
	if err != nil {
		slog.Warn("Forecast lookup failed",
			"request_id", c.GetString("request_id"),
			"latitude", cfg.Latitude,
			"longitude", cfg.Longitude,
			"error", err)
		s.handleError(c, err)
		return
	}

	cacheStatus := "MISS"
	if result.Cached {
		cacheStatus = "HIT"
	}
	c.Header("X-Cache", cacheStatus)
	c.JSON(http.StatusOK, result)
}

// streamForecast handles GET /api/forecast/stream, emitting one "state" event per
// transition until the lookup settles.
func (s *HTTPServerAdapter) streamForecast(c *gin.Context) {
	cfg, err := bindForecastConfig(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	ctx := c.Request.Context()
	query := s.forecastUseCase.NewQuery()
	defer query.Close()

	states := make(chan forecast.QueryState, 4)
	done := make(chan struct{})
	defer close(done)

	unsubscribe := query.Subscribe(func(state forecast.QueryState) {
		select {
		case states <- state:
		case <-done:
		case <-ctx.Done():
		}
	})
	defer unsubscribe()

	if err := query.Update(ctx, cfg); err != nil {
		s.handleError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case state := <-states:
			c.SSEvent("state", toStateEvent(state))
			return state.Status == forecast.StatusLoading
		case <-ctx.Done():
			return false
		}
	})
}

func toStateEvent(state forecast.QueryState) StateEvent {
	event := StateEvent{
		Status:    state.Status,
		Key:       state.Key,
		Result:    state.Result,
		UpdatedAt: state.UpdatedAt,
	}
	if state.Err != nil {
		_, event.Error = statusFor(state.Err)
	}
	return event
}

// invalidateForecast handles DELETE /api/forecast, dropping one cached entry
func (s *HTTPServerAdapter) invalidateForecast(c *gin.Context) {
	cfg, err := bindForecastConfig(c)
	if err != nil {
		s.handleError(c, err)
		return
	}

	key, err := s.forecastUseCase.Invalidate(c.Request.Context(), cfg)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key})
}

// listCacheKeys handles GET /api/cache/keys
func (s *HTTPServerAdapter) listCacheKeys(c *gin.Context) {
	keys, err := s.forecastUseCase.Keys(c.Request.Context())
	if err != nil {
		s.handleError(c, err)
		return
	}
	if keys == nil {
		keys = []forecast.CacheKey{}
	}

	c.JSON(http.StatusOK, gin.H{"keys": keys, "count": len(keys)})
}

// clearCache handles DELETE /api/cache
func (s *HTTPServerAdapter) clearCache(c *gin.Context) {
	if err := s.forecastUseCase.ClearAll(c.Request.Context()); err != nil {
		s.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getHealth handles GET /health
func (s *HTTPServerAdapter) getHealth(c *gin.Context) {
	results := s.healthChecker.CheckAll(c.Request.Context())

	status := ports.HealthStatusHealthy
	code := http.StatusOK
	for _, r := range results {
		if r.Status != ports.HealthStatusHealthy {
			status = ports.HealthStatusUnhealthy
			code = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(code, gin.H{"status": status, "components": results})
}
