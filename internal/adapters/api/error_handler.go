package api

import (
	"errors"
	"log/slog"
	"net/http"

	errorspkg "forecastcache.app/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error message structure for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error to the HTTP status and client-facing message.
func statusFor(err error) (int, string) {
	var appErr *errorspkg.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, "Internal server error"
	}

	switch appErr.Type {
	case errorspkg.ErrorTypeInvalidConfig:
		return http.StatusBadRequest, appErr.Message
	case errorspkg.ErrorTypeNotFound:
		return http.StatusNotFound, appErr.Message
	case errorspkg.ErrorTypeFetch:
		// the provider's own explanation, e.g. a rejected parameter
		var upstream *errorspkg.AppError
		if errors.As(appErr.Cause, &upstream) && upstream.Type == errorspkg.ErrorTypeExternalAPI {
			return http.StatusBadGateway, upstream.Message
		}
		return http.StatusBadGateway, "Forecast provider request failed"
	case errorspkg.ErrorTypeExternalAPI:
		return http.StatusServiceUnavailable, "External service unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// handleError handles different types of application errors
func (s *HTTPServerAdapter) handleError(c *gin.Context, err error) {
	statusCode, message := statusFor(err)
	if statusCode >= http.StatusInternalServerError {
		slog.Error("Request failed",
			"request_id", c.GetString("request_id"),
			"path", c.FullPath(),
			"error", err)
	}
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// getMetrics handles GET /api/metrics requests
func (s *HTTPServerAdapter) getMetrics(c *gin.Context) {
	slog.Debug("Metrics endpoint called")

	metrics, err := s.metricsCollector.GetMetrics(c.Request.Context())
	if err != nil {
		slog.Error("Error getting metrics", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}
