package forecast

import "time"

const (
	DefaultCurrentMaxAge  = 15 * time.Minute
	DefaultForecastMaxAge = 60 * time.Minute
)

// FreshnessPolicy decides whether a cached entry can still be served.
// Zero durations fall back to the defaults.
type FreshnessPolicy struct {
	// CurrentMaxAge applies to requests for current conditions or 15-minutely data.
	CurrentMaxAge time.Duration
	// ForecastMaxAge applies to hourly/daily-only requests.
	ForecastMaxAge time.Duration
	// MaxAge, when set, overrides both.
	MaxAge time.Duration
}

func DefaultFreshnessPolicy() FreshnessPolicy {
	return FreshnessPolicy{
		CurrentMaxAge:  DefaultCurrentMaxAge,
		ForecastMaxAge: DefaultForecastMaxAge,
	}
}

// Threshold returns the maximum age an entry for cfg may have.
// A per-request MaxAge wins over the policy-wide one.
func (p FreshnessPolicy) Threshold(cfg ForecastConfig) time.Duration {
	if cfg.MaxAge > 0 {
		return cfg.MaxAge
	}
	if p.MaxAge > 0 {
		return p.MaxAge
	}

	if cfg.HasCurrentConditions() {
		if p.CurrentMaxAge > 0 {
			return p.CurrentMaxAge
		}
		return DefaultCurrentMaxAge
	}

	if p.ForecastMaxAge > 0 {
		return p.ForecastMaxAge
	}
	return DefaultForecastMaxAge
}

// IsFresh reports whether entry is within the threshold for cfg at now.
// Entries stored in the future are stale.
func (p FreshnessPolicy) IsFresh(entry CacheEntry, cfg ForecastConfig, now time.Time) bool {
	age := now.Sub(entry.StoredAt)
	if age < 0 {
		return false
	}
	return age <= p.Threshold(cfg)
}
