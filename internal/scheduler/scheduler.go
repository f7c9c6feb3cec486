// Package scheduler runs the periodic cache maintenance jobs: the retention
// sweep and the warm-up of configured locations.
package scheduler

import (
	"context"
	"time"

	"forecastcache.app/internal/core/forecast"
	"forecastcache.app/internal/ports"
	"forecastcache.app/pkg/errors"
	"github.com/go-co-op/gocron"
)

const jobTimeout = 2 * time.Minute

// ForecastMaintainer is the part of the forecast use case the jobs drive.
type ForecastMaintainer interface {
	Sweep(ctx context.Context) (int, error)
	Warm(ctx context.Context, cfgs []forecast.ForecastConfig) int
}

// ExpiryPurger is implemented by media that keep expired rows until told to delete them.
type ExpiryPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type Scheduler struct {
	scheduler *gocron.Scheduler
	forecasts ForecastMaintainer
	purger    ExpiryPurger
	logger    ports.Logger

	sweepInterval  time.Duration
	warmupInterval time.Duration
	warmup         []forecast.ForecastConfig
}

type Options struct {
	Forecasts      ForecastMaintainer
	Purger         ExpiryPurger // optional
	Logger         ports.Logger
	SweepInterval  time.Duration
	WarmupInterval time.Duration
	Warmup         []forecast.ForecastConfig
}

func New(opts Options) (*Scheduler, error) {
	if opts.Forecasts == nil {
		return nil, errors.NewConfigurationError("forecast maintainer is required", nil)
	}
	if opts.Logger == nil {
		return nil, errors.NewConfigurationError("logger is required", nil)
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	return &Scheduler{
		scheduler:      s,
		forecasts:      opts.Forecasts,
		purger:         opts.Purger,
		logger:         opts.Logger,
		sweepInterval:  opts.SweepInterval,
		warmupInterval: opts.WarmupInterval,
		warmup:         opts.Warmup,
	}, nil
}

// Start registers the jobs and starts the underlying scheduler.
// The sweep waits for its first interval; the warm-up runs immediately.
func (s *Scheduler) Start() error {
	sweepMinutes := minutes(s.sweepInterval, 60)
	if _, err := s.scheduler.Every(sweepMinutes).Minutes().WaitForSchedule().Do(s.runSweep); err != nil {
		return errors.NewConfigurationError("schedule cache sweep", err)
	}

	if len(s.warmup) > 0 {
		warmupMinutes := minutes(s.warmupInterval, 15)
		if _, err := s.scheduler.Every(warmupMinutes).Minutes().Do(s.runWarmup); err != nil {
			return errors.NewConfigurationError("schedule cache warm-up", err)
		}
	} else {
		s.logger.Info("No warm-up locations configured; skipping warm-up job")
	}

	s.scheduler.StartAsync()
	s.logger.Info("Scheduler started",
		ports.F("jobs", s.scheduler.Len()),
		ports.F("sweep_minutes", sweepMinutes))
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	s.Sweep(ctx)
}

func (s *Scheduler) runWarmup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	s.Warm(ctx)
}

// Sweep evicts entries past retention, then purges expired rows from the medium.
func (s *Scheduler) Sweep(ctx context.Context) {
	removed, err := s.forecasts.Sweep(ctx)
	if err != nil {
		s.logger.Error("Cache sweep failed", ports.F("error", err))
	}

	var purged int64
	if s.purger != nil {
		purged, err = s.purger.PurgeExpired(ctx)
		if err != nil {
			s.logger.Error("Expired entry purge failed", ports.F("error", err))
		}
	}

	s.logger.Debug("Cache maintenance finished",
		ports.F("swept", removed),
		ports.F("purged", purged))
}

// Warm resolves every warm-up location.
func (s *Scheduler) Warm(ctx context.Context) {
	failed := s.forecasts.Warm(ctx, s.warmup)
	s.logger.Info("Cache warm-up finished",
		ports.F("locations", len(s.warmup)),
		ports.F("failed", failed))
}

func minutes(d time.Duration, fallback int) int {
	m := int(d.Minutes())
	if m <= 0 {
		return fallback
	}
	return m
}
