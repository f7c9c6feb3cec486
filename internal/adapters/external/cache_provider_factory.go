package external

import (
	"fmt"

	"forecastcache.app/internal/adapters/database"
	"forecastcache.app/internal/config"
	"forecastcache.app/internal/ports"
	"forecastcache.app/pkg/errors"
)

type CacheProviderFactory struct{}

func NewCacheProviderFactory() *CacheProviderFactory {
	return &CacheProviderFactory{}
}

// CreateCacheProvider builds the medium selected by CACHE_TYPE.
func (f *CacheProviderFactory) CreateCacheProvider(cfg *config.CacheConfig) (ports.CacheProvider, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("cache config cannot be nil", nil)
	}

	switch cfg.Type {
	case config.CacheTypeMemory:
		return NewMemoryCacheProvider(), nil
	case config.CacheTypeRedis:
		return NewRedisCacheProviderAdapter(&cfg.Redis, cfg.KeyPrefix)
	case config.CacheTypeDatabase:
		if cfg.KeyPrefix == "" {
			return nil, errors.NewConfigurationError("database cache key prefix cannot be empty", nil)
		}
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		return database.NewCacheProviderAdapter(db, cfg.KeyPrefix), nil
	default:
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("unsupported cache type: %s", cfg.Type.String()), nil)
	}
}
