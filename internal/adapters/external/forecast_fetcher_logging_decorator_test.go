package external

import (
	"context"
	"fmt"
	"testing"

	"forecastcache.app/internal/core/forecast"
	"forecastcache.app/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	result forecast.ForecastResult
	err    error
}

func (s *stubFetcher) Fetch(ctx context.Context, cfg forecast.ForecastConfig) (forecast.ForecastResult, error) {
	return s.result, s.err
}

func (s *stubFetcher) GetProviderName() string {
	return "stub"
}

func TestForecastFetcherLoggingDecorator_Fetch(t *testing.T) {
	tests := []struct {
		name          string
		fetcher       *stubFetcher
		expectError   bool
		expectLevels  []string
		expectMessage string
	}{
		{
			name:          "Success",
			fetcher:       &stubFetcher{result: forecast.ForecastResult(`{"ok":true}`)},
			expectLevels:  []string{"INFO", "INFO"},
			expectMessage: "Forecast API request completed",
		},
		{
			name:          "Failure",
			fetcher:       &stubFetcher{err: fmt.Errorf("upstream down")},
			expectError:   true,
			expectLevels:  []string{"INFO", "ERROR"},
			expectMessage: "Forecast API request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := mocks.NewLogger()
			decorator := NewForecastFetcherLoggingDecorator(tt.fetcher, logger)

			result, err := decorator.Fetch(context.Background(), berlinConfig())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.fetcher.result, result)
			}

			entries := logger.Entries()
			require.Len(t, entries, len(tt.expectLevels))
			for i, level := range tt.expectLevels {
				assert.Equal(t, level, entries[i].Level)
			}

			last := entries[len(entries)-1]
			assert.Equal(t, tt.expectMessage, last.Message)
			assert.Equal(t, "stub", last.Fields["provider"])
			assert.Equal(t, 52.52, last.Fields["latitude"])
			assert.Contains(t, last.Fields, "duration_ms")
		})
	}
}

func TestForecastFetcherLoggingDecorator_GetProviderName(t *testing.T) {
	decorator := NewForecastFetcherLoggingDecorator(&stubFetcher{}, mocks.NewLogger())
	assert.Equal(t, "logged(stub)", decorator.GetProviderName())
}
