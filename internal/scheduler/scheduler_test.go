package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"forecastcache.app/internal/core/forecast"
	"forecastcache.app/internal/mocks"
	"forecastcache.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMaintainer struct {
	mu       sync.Mutex
	sweeps   int
	sweepErr error
	warmed   [][]forecast.ForecastConfig
	failures int
}

func (f *fakeMaintainer) Sweep(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++
	return 2, f.sweepErr
}

func (f *fakeMaintainer) Warm(ctx context.Context, cfgs []forecast.ForecastConfig) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warmed = append(f.warmed, cfgs)
	return f.failures
}

func (f *fakeMaintainer) warmCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.warmed)
}

type fakePurger struct {
	purged int64
	err    error
	calls  int
}

func (f *fakePurger) PurgeExpired(ctx context.Context) (int64, error) {
	f.calls++
	return f.purged, f.err
}

func berlin() forecast.ForecastConfig {
	return forecast.ForecastConfig{Latitude: 52.52, Longitude: 13.405, CurrentWeather: true}
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Options{Logger: mocks.NewLogger()})
	assert.True(t, errors.IsConfigurationError(err))

	_, err = New(Options{Forecasts: &fakeMaintainer{}})
	assert.True(t, errors.IsConfigurationError(err))
}

func TestScheduler_Sweep(t *testing.T) {
	tests := []struct {
		name          string
		maintainer    *fakeMaintainer
		purger        *fakePurger
		expectedError int
	}{
		{
			name:       "SweepAndPurge",
			maintainer: &fakeMaintainer{},
			purger:     &fakePurger{purged: 3},
		},
		{
			name:          "SweepFailureStillPurges",
			maintainer:    &fakeMaintainer{sweepErr: fmt.Errorf("medium down")},
			purger:        &fakePurger{},
			expectedError: 1,
		},
		{
			name:          "PurgeFailure",
			maintainer:    &fakeMaintainer{},
			purger:        &fakePurger{err: fmt.Errorf("locked")},
			expectedError: 1,
		},
		{
			name:       "NoPurger",
			maintainer: &fakeMaintainer{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := mocks.NewLogger()
			opts := Options{Forecasts: tt.maintainer, Logger: logger}
			if tt.purger != nil {
				opts.Purger = tt.purger
			}
			s, err := New(opts)
			require.NoError(t, err)

			s.Sweep(context.Background())

			assert.Equal(t, 1, tt.maintainer.sweeps)
			if tt.purger != nil {
				assert.Equal(t, 1, tt.purger.calls)
			}
			assert.Len(t, logger.Entries("ERROR"), tt.expectedError)
		})
	}
}

func TestScheduler_Warm(t *testing.T) {
	maintainer := &fakeMaintainer{failures: 1}
	logger := mocks.NewLogger()

	s, err := New(Options{
		Forecasts: maintainer,
		Logger:    logger,
		Warmup:    []forecast.ForecastConfig{berlin()},
	})
	require.NoError(t, err)

	s.Warm(context.Background())

	require.Equal(t, 1, maintainer.warmCount())
	assert.Equal(t, []forecast.ForecastConfig{berlin()}, maintainer.warmed[0])

	entries := logger.Entries("INFO")
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Fields["failed"])
}

func TestScheduler_StartRunsWarmupImmediately(t *testing.T) {
	maintainer := &fakeMaintainer{}

	s, err := New(Options{
		Forecasts:      maintainer,
		Logger:         mocks.NewLogger(),
		SweepInterval:  time.Hour,
		WarmupInterval: time.Hour,
		Warmup:         []forecast.ForecastConfig{berlin()},
	})
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, 2, s.scheduler.Len())
	assert.Eventually(t, func() bool { return maintainer.warmCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	maintainer.mu.Lock()
	assert.Equal(t, 0, maintainer.sweeps, "the sweep waits for its first interval")
	maintainer.mu.Unlock()
}

func TestScheduler_StartWithoutWarmupLocations(t *testing.T) {
	logger := mocks.NewLogger()

	s, err := New(Options{Forecasts: &fakeMaintainer{}, Logger: logger})
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, 1, s.scheduler.Len())
	assert.NotEmpty(t, logger.Entries("INFO"))
}
