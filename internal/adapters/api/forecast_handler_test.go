package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"forecastcache.app/internal/adapters/external"
	"forecastcache.app/internal/core/forecast"
	"forecastcache.app/internal/mocks"
	"forecastcache.app/internal/ports"
	"forecastcache.app/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const berlinKey = forecast.CacheKey("forecast:v1:latitude=52.52&longitude=13.405&current_weather=true")

type stubHealth map[string]ports.HealthStatus

func (s stubHealth) CheckAll(ctx context.Context) map[string]ports.HealthStatus { return s }

type stubMetrics map[string]interface{}

func (s stubMetrics) GetMetrics(ctx context.Context) (map[string]interface{}, error) { return s, nil }

func setupTestServer(t *testing.T, health stubHealth) (*gin.Engine, *mocks.ForecastUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	useCase := mocks.NewForecastUseCase(t)
	if health == nil {
		health = stubHealth{"cache": {Component: "cache", Status: ports.HealthStatusHealthy}}
	}

	server, err := NewHTTPServerAdapter(ServerOptions{
		Config:              ServerConfig{Port: 0},
		ForecastUseCase:     useCase,
		MetricsCollector:    stubMetrics{"fetch": map[string]interface{}{"successes": 1}},
		SystemHealthChecker: health,
	})
	require.NoError(t, err)

	return server.GetRouter(), useCase
}

func berlinCurrent() forecast.ForecastConfig {
	return forecast.ForecastConfig{Latitude: 52.52, Longitude: 13.405, CurrentWeather: true}
}

func TestNewHTTPServerAdapter_Validate(t *testing.T) {
	_, err := NewHTTPServerAdapter(ServerOptions{})
	assert.True(t, errors.IsConfigurationError(err))
}

func TestForecastHandler_GetForecast(t *testing.T) {
	storedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		query          string
		setup          func(uc *mocks.ForecastUseCase)
		expectedStatus int
		expectedCache  string
		check          func(t *testing.T, body []byte)
	}{
		{
			name:  "CacheHit",
			query: "latitude=52.52&longitude=13.405&current_weather=true",
			setup: func(uc *mocks.ForecastUseCase) {
				uc.On("GetForecast", mock.Anything, berlinCurrent()).Return(&forecast.Forecast{
					Key:      berlinKey,
					Cached:   true,
					StoredAt: storedAt,
					Data:     forecast.ForecastResult(`{"current_weather":{"temperature":21.3}}`),
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedCache:  "HIT",
			check: func(t *testing.T, body []byte) {
				var response struct {
					Key      string                 `json:"key"`
					Cached   bool                   `json:"cached"`
					StoredAt time.Time              `json:"storedAt"`
					Data     map[string]interface{} `json:"data"`
				}
				require.NoError(t, json.Unmarshal(body, &response))
				assert.Equal(t, string(berlinKey), response.Key)
				assert.True(t, response.Cached)
				assert.True(t, storedAt.Equal(response.StoredAt))
				assert.Contains(t, response.Data, "current_weather")
			},
		},
		{
			name:  "MaxAgeOverride",
			query: "latitude=52.52&longitude=13.405&current_weather=true&max_age=120",
			setup: func(uc *mocks.ForecastUseCase) {
				cfg := berlinCurrent()
				cfg.MaxAge = 2 * time.Minute
				uc.On("GetForecast", mock.Anything, cfg).Return(&forecast.Forecast{
					Key:  berlinKey,
					Data: forecast.ForecastResult(`{}`),
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedCache:  "MISS",
		},
		{
			name:  "MaxAgeZeroForcesRefresh",
			query: "latitude=52.52&longitude=13.405&current_weather=true&max_age=0",
			setup: func(uc *mocks.ForecastUseCase) {
				cfg := berlinCurrent()
				cfg.Refresh = true
				uc.EXPECT().GetForecast(mock.Anything, cfg).Return(&forecast.Forecast{
					Key:  berlinKey,
					Data: forecast.ForecastResult(`{}`),
				}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedCache:  "MISS",
		},
		{
			name:           "MissingCoordinates",
			query:          "current_weather=true",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "NonNumericLatitude",
			query:          "latitude=north&longitude=13.405&current_weather=true",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "NegativeMaxAge",
			query:          "latitude=52.52&longitude=13.405&current_weather=true&max_age=-5",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "InvalidConfig",
			query: "latitude=95&longitude=13.405&current_weather=true",
			setup: func(uc *mocks.ForecastUseCase) {
				uc.On("GetForecast", mock.Anything, mock.Anything).
					Return(nil, errors.NewInvalidConfigError("latitude is out of range")).Once()
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "FetchFailure",
			query: "latitude=52.52&longitude=13.405&current_weather=true",
			setup: func(uc *mocks.ForecastUseCase) {
				uc.On("GetForecast", mock.Anything, berlinCurrent()).
					Return(nil, errors.NewFetchError("forecast fetch failed", fmt.Errorf("timeout"))).Once()
			},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, useCase := setupTestServer(t, nil)
			if tt.setup != nil {
				tt.setup(useCase)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/forecast?"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get(requestIDHeader))
			if tt.expectedCache != "" {
				assert.Equal(t, tt.expectedCache, w.Header().Get("X-Cache"))
			}
			if tt.check != nil {
				tt.check(t, w.Body.Bytes())
			}
		})
	}
}

func TestForecastHandler_RequestIDIsEchoed(t *testing.T) {
	router, useCase := setupTestServer(t, nil)
	useCase.On("Keys", mock.Anything).Return(nil, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/cache/keys", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
	assert.JSONEq(t, `{"keys":[],"count":0}`, w.Body.String())
}

func TestForecastHandler_CacheAdministration(t *testing.T) {
	router, useCase := setupTestServer(t, nil)

	useCase.On("Keys", mock.Anything).Return([]forecast.CacheKey{berlinKey}, nil).Once()
	useCase.On("Invalidate", mock.Anything, berlinCurrent()).Return(berlinKey, nil).Once()
	useCase.On("ClearAll", mock.Anything).Return(nil).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cache/keys", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"keys":[%q],"count":1}`, berlinKey), w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/forecast?latitude=52.52&longitude=13.405&current_weather=true", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"key":%q}`, berlinKey), w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/cache", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestForecastHandler_ClearCacheFailure(t *testing.T) {
	router, useCase := setupTestServer(t, nil)
	useCase.On("ClearAll", mock.Anything).Return(errors.NewExternalAPIError("redis clear operation failed", nil)).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/cache", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	tests := []struct {
		name           string
		health         stubHealth
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Healthy",
			health:         stubHealth{"cache": {Component: "cache", Status: ports.HealthStatusHealthy}},
			expectedStatus: http.StatusOK,
			expectedBody:   ports.HealthStatusHealthy,
		},
		{
			name: "Degraded",
			health: stubHealth{
				"cache":            {Component: "cache", Status: ports.HealthStatusHealthy},
				"forecastProvider": {Component: "forecastProvider", Status: ports.HealthStatusUnhealthy, Error: "circuit breaker is open"},
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ports.HealthStatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupTestServer(t, tt.health)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedBody, body["status"])
		})
	}

	router, _ := setupTestServer(t, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"fetch":{"successes":1}}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

// streamRecorder satisfies the http.CloseNotifier that gin's Stream requires.
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
}

func (r *streamRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func newRealQuery(t *testing.T, fetch forecast.FetchFunc) *forecast.Query {
	t.Helper()

	clock := mocks.NewClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	logger := mocks.NewLogger()

	store, err := forecast.NewCacheStore(forecast.CacheStoreDependencies{
		Medium:    external.NewMemoryCacheProvider(),
		Clock:     clock,
		Logger:    logger,
		Retention: time.Hour,
	})
	require.NoError(t, err)

	coordinator, err := forecast.NewCoordinator(forecast.CoordinatorDependencies{
		Store:  store,
		Policy: forecast.DefaultFreshnessPolicy(),
		Clock:  clock,
		Logger: logger,
	})
	require.NoError(t, err)

	return forecast.NewQuery(coordinator, fetch)
}

func readEvents(t *testing.T, body string) []StateEvent {
	t.Helper()

	var events []StateEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		var event StateEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &event))
		events = append(events, event)
	}
	return events
}

func TestForecastHandler_Stream(t *testing.T) {
	tests := []struct {
		name          string
		fetch         forecast.FetchFunc
		expectedFinal forecast.Status
		expectedError string
	}{
		{
			name: "Ready",
			fetch: func(ctx context.Context, cfg forecast.ForecastConfig) (forecast.ForecastResult, error) {
				return forecast.ForecastResult(`{"current_weather":{"temperature":21.3}}`), nil
			},
			expectedFinal: forecast.StatusReady,
		},
		{
			name: "Failed",
			fetch: func(ctx context.Context, cfg forecast.ForecastConfig) (forecast.ForecastResult, error) {
				return nil, errors.NewExternalAPIError("Open-Meteo returned status 503", nil)
			},
			expectedFinal: forecast.StatusFailed,
			expectedError: "Open-Meteo returned status 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, useCase := setupTestServer(t, nil)

			var calls int32
			fetch := func(ctx context.Context, cfg forecast.ForecastConfig) (forecast.ForecastResult, error) {
				atomic.AddInt32(&calls, 1)
				return tt.fetch(ctx, cfg)
			}
			useCase.On("NewQuery").Return(newRealQuery(t, fetch)).Once()

			w := newStreamRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
				"/api/forecast/stream?latitude=52.52&longitude=13.405&current_weather=true", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")

			events := readEvents(t, w.Body.String())
			require.Len(t, events, 2)
			assert.Equal(t, forecast.StatusLoading, events[0].Status)
			assert.Equal(t, berlinKey, events[0].Key)

			final := events[1]
			assert.Equal(t, tt.expectedFinal, final.Status)
			assert.Equal(t, tt.expectedError, final.Error)
			if tt.expectedFinal == forecast.StatusReady {
				assert.JSONEq(t, `{"current_weather":{"temperature":21.3}}`, string(final.Result))
			}
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestForecastHandler_StreamRejectsInvalidConfig(t *testing.T) {
	router, useCase := setupTestServer(t, nil)
	useCase.On("NewQuery").Return(newRealQuery(t, func(ctx context.Context, cfg forecast.ForecastConfig) (forecast.ForecastResult, error) {
		t.Fatal("fetch must not run for an invalid configuration")
		return nil, nil
	})).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/forecast/stream?latitude=52.52&longitude=13.405", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
