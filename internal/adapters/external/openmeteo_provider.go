package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"forecastcache.app/internal/core/forecast"
	"forecastcache.app/internal/ports"
	"forecastcache.app/pkg/errors"
	"github.com/sony/gobreaker"
)

const (
	openMeteoName        = "open-meteo"
	openMeteoDefaultURL  = "https://api.open-meteo.com/v1"
	maxForecastBodyBytes = 16 << 20
)

// HTTPClient interface for HTTP requests (for testing)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// OpenMeteoProviderAdapter fetches raw forecast JSON from the Open-Meteo /forecast endpoint.
// It makes a single attempt per call; the circuit breaker stops calls while the upstream is failing.
type OpenMeteoProviderAdapter struct {
	baseURL string
	client  HTTPClient
	breaker *gobreaker.CircuitBreaker
	logger  ports.Logger
}

// OpenMeteoProviderParams holds parameters for creating the Open-Meteo provider
type OpenMeteoProviderParams struct {
	BaseURL            string
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
	Client             HTTPClient
	Logger             ports.Logger
}

type upstreamResponse struct {
	status int
	body   []byte
}

// openMeteoError is the body Open-Meteo sends with 4xx responses.
type openMeteoError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

func NewOpenMeteoProviderAdapter(params OpenMeteoProviderParams) *OpenMeteoProviderAdapter {
	baseURL := strings.TrimRight(params.BaseURL, "/")
	if baseURL == "" {
		baseURL = openMeteoDefaultURL
	}

	client := params.Client
	if client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	maxFailures := params.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout := params.BreakerOpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        openMeteoName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			params.Logger.Warn("Circuit breaker state changed",
				ports.F("provider", name),
				ports.F("from", from.String()),
				ports.F("to", to.String()))
		},
	})

	return &OpenMeteoProviderAdapter{
		baseURL: baseURL,
		client:  client,
		breaker: breaker,
		logger:  params.Logger,
	}
}

// Fetch calls /forecast with the canonical parameters of cfg and returns the body unchanged.
func (p *OpenMeteoProviderAdapter) Fetch(ctx context.Context, cfg forecast.ForecastConfig) (forecast.ForecastResult, error) {
	endpoint := p.baseURL + "/forecast?" + cfg.QueryValues().Encode()

	result, err := p.breaker.Execute(func() (interface{}, error) {
		return p.call(ctx, endpoint)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, errors.NewExternalAPIError("Open-Meteo circuit breaker is open", err)
		}
		return nil, err
	}

	resp := result.(upstreamResponse)
	if resp.status != http.StatusOK {
		return nil, p.clientError(resp)
	}

	if !json.Valid(resp.body) {
		return nil, errors.NewExternalAPIError("Open-Meteo returned a malformed body", nil)
	}

	return forecast.ForecastResult(resp.body), nil
}

// call performs the HTTP round trip. Only transport failures, 429 and 5xx count against the breaker.
func (p *OpenMeteoProviderAdapter) call(ctx context.Context, endpoint string) (upstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return upstreamResponse{}, errors.NewExternalAPIError("failed to build Open-Meteo request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return upstreamResponse{}, errors.NewExternalAPIError("failed to call Open-Meteo", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			p.logger.Warn("Failed to close Open-Meteo response body", ports.F("error", closeErr))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxForecastBodyBytes))
	if err != nil {
		return upstreamResponse{}, errors.NewExternalAPIError("failed to read Open-Meteo response", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return upstreamResponse{}, errors.NewExternalAPIError(
			fmt.Sprintf("Open-Meteo returned status %d", resp.StatusCode), nil)
	}

	return upstreamResponse{status: resp.StatusCode, body: body}, nil
}

func (p *OpenMeteoProviderAdapter) clientError(resp upstreamResponse) error {
	var apiErr openMeteoError
	if err := json.Unmarshal(resp.body, &apiErr); err == nil && apiErr.Error && apiErr.Reason != "" {
		return errors.NewExternalAPIError(
			fmt.Sprintf("Open-Meteo rejected the request: %s", apiErr.Reason), nil)
	}
	return errors.NewExternalAPIError(fmt.Sprintf("Open-Meteo returned status %d", resp.status), nil)
}

// GetProviderName returns the name of this forecast provider
func (p *OpenMeteoProviderAdapter) GetProviderName() string {
	return openMeteoName
}

// BreakerState reports the circuit breaker state: closed, half-open or open.
func (p *OpenMeteoProviderAdapter) BreakerState() string {
	return p.breaker.State().String()
}
