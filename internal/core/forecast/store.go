package forecast

import (
	"context"
	"encoding/json"
	"time"

	"forecastcache.app/internal/ports"
	"forecastcache.app/pkg/errors"
)

// DefaultRetention bounds how long the medium keeps an entry regardless of freshness.
const DefaultRetention = 24 * time.Hour

// CacheEntry is a stored forecast payload with the time it was written.
type CacheEntry struct {
	Key      CacheKey       `json:"key"`
	Value    ForecastResult `json:"value"`
	StoredAt time.Time      `json:"storedAt"`
}

// CacheStore is the logical key -> entry view over a byte-oriented cache medium.
// Medium failures are logged as CacheIOError and read as misses.
type CacheStore struct {
	medium    ports.CacheProvider
	clock     ports.Clock
	logger    ports.Logger
	retention time.Duration
}

type CacheStoreDependencies struct {
	Medium    ports.CacheProvider
	Clock     ports.Clock
	Logger    ports.Logger
	Retention time.Duration
}

func NewCacheStore(deps CacheStoreDependencies) (*CacheStore, error) {
	if deps.Medium == nil {
		return nil, errors.NewConfigurationError("cache medium is required", nil)
	}
	if deps.Clock == nil {
		return nil, errors.NewConfigurationError("clock is required", nil)
	}
	if deps.Logger == nil {
		return nil, errors.NewConfigurationError("logger is required", nil)
	}

	retention := deps.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}

	return &CacheStore{
		medium:    deps.Medium,
		clock:     deps.Clock,
		logger:    deps.Logger,
		retention: retention,
	}, nil
}

// Get returns the entry for key. Misses, medium errors and undecodable envelopes all report false.
func (s *CacheStore) Get(ctx context.Context, key CacheKey) (CacheEntry, bool) {
	data, err := s.medium.Get(ctx, string(key))
	if err != nil {
		if !errors.IsNotFoundError(err) {
			s.logIOError(errors.NewCacheIOError("cache read failed", err), key)
		}
		return CacheEntry{}, false
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logIOError(errors.NewCacheIOError("cache entry is corrupt", err), key)
		return CacheEntry{}, false
	}
	if entry.Key != key || len(entry.Value) == 0 {
		s.logIOError(errors.NewCacheIOError("cache entry does not match its key", nil), key)
		return CacheEntry{}, false
	}

	return entry, true
}

// Put stores value under key stamped with the current time and returns the written entry.
// The entry is returned even when the medium write fails.
func (s *CacheStore) Put(ctx context.Context, key CacheKey, value ForecastResult) (CacheEntry, error) {
	entry := CacheEntry{
		Key:      key,
		Value:    value,
		StoredAt: s.clock.Now(),
	}

	if !json.Valid(value) {
		return entry, errors.NewCacheIOError("forecast payload is not valid JSON", nil)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return entry, errors.NewCacheIOError("encode cache entry", err)
	}

	if err := s.medium.Set(ctx, string(key), data, s.retention); err != nil {
		return entry, errors.NewCacheIOError("cache write failed", err)
	}

	return entry, nil
}

func (s *CacheStore) Delete(ctx context.Context, key CacheKey) error {
	if err := s.medium.Delete(ctx, string(key)); err != nil {
		return errors.NewCacheIOError("cache delete failed", err)
	}
	return nil
}

// Keys enumerates the forecast keys currently held by the medium.
func (s *CacheStore) Keys(ctx context.Context) ([]CacheKey, error) {
	raw, err := s.medium.Keys(ctx, KeyNamespace)
	if err != nil {
		return nil, errors.NewCacheIOError("cache enumeration failed", err)
	}

	keys := make([]CacheKey, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, CacheKey(k))
	}
	return keys, nil
}

// Clear removes every entry held by the medium.
func (s *CacheStore) Clear(ctx context.Context) error {
	if err := s.medium.Clear(ctx); err != nil {
		return errors.NewCacheIOError("cache clear failed", err)
	}
	return nil
}

// Retention is the medium-level lifetime of an entry.
func (s *CacheStore) Retention() time.Duration {
	return s.retention
}

func (s *CacheStore) logIOError(err error, key CacheKey) {
	s.logger.Warn("Cache unavailable, treating as miss",
		ports.F("key", key),
		ports.F("error", err))
}

// Sweep deletes entries that are undecodable or older than the retention window.
// It returns the number of deleted entries.
func (s *CacheStore) Sweep(ctx context.Context) (int, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	removed := 0
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		data, err := s.medium.Get(ctx, string(key))
		if err != nil {
			if !errors.IsNotFoundError(err) {
				s.logIOError(errors.NewCacheIOError("cache read failed during sweep", err), key)
			}
			continue
		}

		var entry CacheEntry
		expired := json.Unmarshal(data, &entry) != nil || entry.Key != key ||
			now.Sub(entry.StoredAt) > s.retention
		if !expired {
			continue
		}

		if err := s.Delete(ctx, key); err != nil {
			s.logIOError(err, key)
			continue
		}
		removed++
	}

	return removed, nil
}
