package database

import (
	"context"
	"strings"
	"time"

	"forecastcache.app/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheEntryModel is one cached value row.
type CacheEntryModel struct {
	CacheKey  string    `gorm:"column:cache_key;primaryKey;size:1024"`
	Value     []byte    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	UpdatedAt time.Time
}

func (CacheEntryModel) TableName() string {
	return "forecast_cache_entries"
}

// CacheProviderAdapter implements the CacheProvider port on a SQL table.
type CacheProviderAdapter struct {
	db     *gorm.DB
	prefix string
	now    func() time.Time
}

func NewCacheProviderAdapter(db *gorm.DB, prefix string) *CacheProviderAdapter {
	return &CacheProviderAdapter{db: db, prefix: prefix, now: time.Now}
}

func (r *CacheProviderAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.NewCacheIOError("cache key cannot be empty", nil)
	}

	var model CacheEntryModel
	result := r.db.WithContext(ctx).
		Where("cache_key = ? AND expires_at > ?", r.prefix+key, r.now()).
		First(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("cache miss")
		}
		return nil, errors.NewCacheIOError("failed to read cache entry", result.Error)
	}

	return model.Value, nil
}

// Set upserts the row so a refresh replaces the previous value in one statement.
func (r *CacheProviderAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.NewCacheIOError("cache key cannot be empty", nil)
	}
	if value == nil {
		return errors.NewCacheIOError("cache value cannot be nil", nil)
	}
	if ttl <= 0 {
		return errors.NewCacheIOError("cache TTL must be positive", nil)
	}

	now := r.now()
	model := CacheEntryModel{
		CacheKey:  r.prefix + key,
		Value:     value,
		ExpiresAt: now.Add(ttl),
		UpdatedAt: now,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return errors.NewCacheIOError("failed to write cache entry", result.Error)
	}

	return nil
}

func (r *CacheProviderAdapter) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.NewCacheIOError("cache key cannot be empty", nil)
	}

	result := r.db.WithContext(ctx).Where("cache_key = ?", r.prefix+key).Delete(&CacheEntryModel{})
	if result.Error != nil {
		return errors.NewCacheIOError("failed to delete cache entry", result.Error)
	}
	return nil
}

// Keys lists unexpired keys under the namespace that start with prefix.
func (r *CacheProviderAdapter) Keys(ctx context.Context, prefix string) ([]string, error) {
	var raw []string
	result := r.db.WithContext(ctx).Model(&CacheEntryModel{}).
		Where("cache_key LIKE ? ESCAPE '\\' AND expires_at > ?", escapeLike(r.prefix+prefix)+"%", r.now()).
		Order("cache_key").
		Pluck("cache_key", &raw)
	if result.Error != nil {
		return nil, errors.NewCacheIOError("failed to list cache keys", result.Error)
	}

	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, r.prefix))
	}
	return keys, nil
}

// Clear removes every row under the namespace.
func (r *CacheProviderAdapter) Clear(ctx context.Context) error {
	result := r.db.WithContext(ctx).
		Where("cache_key LIKE ? ESCAPE '\\'", escapeLike(r.prefix)+"%").
		Delete(&CacheEntryModel{})
	if result.Error != nil {
		return errors.NewCacheIOError("failed to clear cache", result.Error)
	}
	return nil
}

// PurgeExpired deletes rows whose TTL has passed and returns how many were removed.
func (r *CacheProviderAdapter) PurgeExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("cache_key LIKE ? ESCAPE '\\' AND expires_at <= ?", escapeLike(r.prefix)+"%", r.now()).
		Delete(&CacheEntryModel{})
	if result.Error != nil {
		return 0, errors.NewCacheIOError("failed to purge expired cache entries", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *CacheProviderAdapter) Ping(ctx context.Context) error {
	if err := ping(ctx, r.db); err != nil {
		return errors.NewCacheIOError("database ping failed", err)
	}
	return nil
}

func (r *CacheProviderAdapter) Close() error {
	return Close(r.db)
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeReplacer.Replace(s)
}
