package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"forecastcache.app/pkg/errors"
	"github.com/kelseyhightower/envconfig"
)

const (
	maxRedisDB          = 15
	maxRetentionMinutes = 43200
	maxIntervalMinutes  = 10080
	maxPortNumber       = 65535
)

// Config represents the application configuration structure
type Config struct {
	Server    ServerConfig    `split_words:"true"`
	Provider  ProviderConfig  `split_words:"true"`
	Cache     CacheConfig     `split_words:"true"`
	Freshness FreshnessConfig `split_words:"true"`
	Scheduler SchedulerConfig `split_words:"true"`
	LogLevel  string          `envconfig:"LOG_LEVEL" default:"info"`
}

type ServerConfig struct {
	Port                   int `envconfig:"SERVER_PORT" default:"8080"`
	ShutdownTimeoutSeconds int `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30"`
}

func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// ProviderConfig configures the Open-Meteo forecast fetcher.
type ProviderConfig struct {
	BaseURL            string `envconfig:"OPEN_METEO_BASE_URL" default:"https://api.open-meteo.com/v1"`
	TimeoutSeconds     int    `envconfig:"PROVIDER_TIMEOUT" default:"10"`
	EnableLogging      bool   `envconfig:"PROVIDER_ENABLE_LOGGING" default:"true"`
	LogFilePath        string `envconfig:"PROVIDER_LOG_FILE_PATH" default:"logs/forecast_provider.log"`
	BreakerMaxFailures uint32 `envconfig:"PROVIDER_BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenSeconds int    `envconfig:"PROVIDER_BREAKER_OPEN_SECONDS" default:"30"`
}

func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

func (p ProviderConfig) BreakerOpenTimeout() time.Duration {
	return time.Duration(p.BreakerOpenSeconds) * time.Second
}

// CacheType represents the type of cache to use
type CacheType int

const (
	CacheTypeUnknown CacheType = iota
	CacheTypeMemory
	CacheTypeRedis
	CacheTypeDatabase
)

// String returns the string representation of cache type
func (c CacheType) String() string {
	switch c {
	case CacheTypeMemory:
		return "memory"
	case CacheTypeRedis:
		return "redis"
	case CacheTypeDatabase:
		return "database"
	default:
		return "unknown"
	}
}

// IsValid checks if the cache type is valid
func (c CacheType) IsValid() bool {
	return c == CacheTypeMemory || c == CacheTypeRedis || c == CacheTypeDatabase
}

// IsDurable reports whether entries survive a process restart.
func (c CacheType) IsDurable() bool {
	return c == CacheTypeRedis || c == CacheTypeDatabase
}

// CacheTypeFromString converts string to CacheType enum
func CacheTypeFromString(s string) CacheType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "memory":
		return CacheTypeMemory
	case "redis":
		return CacheTypeRedis
	case "database", "db":
		return CacheTypeDatabase
	default:
		return CacheTypeUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (c *CacheType) UnmarshalText(text []byte) error {
	*c = CacheTypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (c CacheType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

type CacheConfig struct {
	Type             CacheType      `envconfig:"CACHE_TYPE" default:"database"`
	KeyPrefix        string         `envconfig:"CACHE_KEY_PREFIX" default:"forecastcache:"`
	RetentionMinutes int            `envconfig:"CACHE_RETENTION_MINUTES" default:"1440"`
	Redis            RedisConfig    `split_words:"true"`
	Database         DatabaseConfig `split_words:"true"`
}

func (c CacheConfig) Retention() time.Duration {
	return time.Duration(c.RetentionMinutes) * time.Minute
}

type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

// DatabaseConfig selects the SQL medium. DSN wins over the discrete postgres fields.
type DatabaseConfig struct {
	Driver   string `envconfig:"CACHE_DB_DRIVER" default:"sqlite"`
	DSN      string `envconfig:"CACHE_DB_DSN" default:"forecast_cache.db"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"forecastcache"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

func (d DatabaseConfig) GetDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// FreshnessConfig tunes how long cached forecasts are served without refetching.
type FreshnessConfig struct {
	CurrentMaxAgeMinutes  int `envconfig:"FRESHNESS_CURRENT_MAX_AGE_MINUTES" default:"15"`
	ForecastMaxAgeMinutes int `envconfig:"FRESHNESS_FORECAST_MAX_AGE_MINUTES" default:"60"`
	// MaxAgeMinutes overrides both when positive.
	MaxAgeMinutes int `envconfig:"FRESHNESS_MAX_AGE_MINUTES" default:"0"`
}

func (f FreshnessConfig) CurrentMaxAge() time.Duration {
	return time.Duration(f.CurrentMaxAgeMinutes) * time.Minute
}

func (f FreshnessConfig) ForecastMaxAge() time.Duration {
	return time.Duration(f.ForecastMaxAgeMinutes) * time.Minute
}

func (f FreshnessConfig) MaxAge() time.Duration {
	return time.Duration(f.MaxAgeMinutes) * time.Minute
}

func (f FreshnessConfig) longest() int {
	longest := f.CurrentMaxAgeMinutes
	if f.ForecastMaxAgeMinutes > longest {
		longest = f.ForecastMaxAgeMinutes
	}
	if f.MaxAgeMinutes > longest {
		longest = f.MaxAgeMinutes
	}
	return longest
}

type SchedulerConfig struct {
	Enabled               bool     `envconfig:"SCHEDULER_ENABLED" default:"true"`
	SweepIntervalMinutes  int      `envconfig:"SCHEDULER_SWEEP_INTERVAL_MINUTES" default:"60"`
	WarmupIntervalMinutes int      `envconfig:"SCHEDULER_WARMUP_INTERVAL_MINUTES" default:"15"`
	WarmupLocations       []string `envconfig:"SCHEDULER_WARMUP_LOCATIONS"`
}

func (s SchedulerConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepIntervalMinutes) * time.Minute
}

func (s SchedulerConfig) WarmupInterval() time.Duration {
	return time.Duration(s.WarmupIntervalMinutes) * time.Minute
}

// Location is a latitude/longitude pair parsed from "lat:lon".
type Location struct {
	Latitude  float64
	Longitude float64
}

// Locations parses WarmupLocations.
func (s SchedulerConfig) Locations() ([]Location, error) {
	locations := make([]Location, 0, len(s.WarmupLocations))
	for _, raw := range s.WarmupLocations {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		parts := strings.Split(raw, ":")
		if len(parts) != 2 {
			return nil, errors.NewConfigurationError(
				fmt.Sprintf("SCHEDULER_WARMUP_LOCATIONS entry %q must be formatted as lat:lon", raw), nil)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil || lat < -90 || lat > 90 {
			return nil, errors.NewConfigurationError(
				fmt.Sprintf("SCHEDULER_WARMUP_LOCATIONS entry %q has an invalid latitude", raw), err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || lon < -180 || lon > 180 {
			return nil, errors.NewConfigurationError(
				fmt.Sprintf("SCHEDULER_WARMUP_LOCATIONS entry %q has an invalid longitude", raw), err)
		}

		locations = append(locations, Location{Latitude: lat, Longitude: lon})
	}
	return locations, nil
}

func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Provider.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Freshness.Validate(); err != nil {
		return err
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if c.Cache.RetentionMinutes < c.Freshness.longest() {
		return errors.NewConfigurationError("CACHE_RETENTION_MINUTES must not be shorter than the longest freshness threshold", nil)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > maxPortNumber {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	if s.ShutdownTimeoutSeconds < 1 {
		return errors.NewConfigurationError("SERVER_SHUTDOWN_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func (p *ProviderConfig) Validate() error {
	if p.BaseURL == "" {
		return errors.NewConfigurationError("OPEN_METEO_BASE_URL cannot be empty", nil)
	}
	if !strings.HasPrefix(p.BaseURL, "http://") && !strings.HasPrefix(p.BaseURL, "https://") {
		return errors.NewConfigurationError("OPEN_METEO_BASE_URL must start with http:// or https://", nil)
	}
	if p.TimeoutSeconds < 1 {
		return errors.NewConfigurationError("PROVIDER_TIMEOUT must be at least 1 second", nil)
	}
	if p.EnableLogging && p.LogFilePath == "" {
		return errors.NewConfigurationError("PROVIDER_LOG_FILE_PATH cannot be empty when provider logging is enabled", nil)
	}
	if p.BreakerMaxFailures < 1 {
		return errors.NewConfigurationError("PROVIDER_BREAKER_MAX_FAILURES must be at least 1", nil)
	}
	if p.BreakerOpenSeconds < 1 {
		return errors.NewConfigurationError("PROVIDER_BREAKER_OPEN_SECONDS must be at least 1 second", nil)
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	if !c.Type.IsValid() {
		return errors.NewConfigurationError("CACHE_TYPE must be one of: memory, redis, database", nil)
	}
	if c.RetentionMinutes < 1 || c.RetentionMinutes > maxRetentionMinutes {
		return errors.NewConfigurationError("CACHE_RETENTION_MINUTES must be between 1 and 43200 minutes", nil)
	}

	switch c.Type {
	case CacheTypeRedis:
		if c.KeyPrefix == "" {
			return errors.NewConfigurationError("CACHE_KEY_PREFIX cannot be empty for a shared cache medium", nil)
		}
		return c.Redis.Validate()
	case CacheTypeDatabase:
		if c.KeyPrefix == "" {
			return errors.NewConfigurationError("CACHE_KEY_PREFIX cannot be empty for a shared cache medium", nil)
		}
		return c.Database.Validate()
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty when using Redis cache", nil)
	}
	if r.DB < 0 || r.DB > maxRedisDB {
		return errors.NewConfigurationError("REDIS_DB must be between 0 and 15", nil)
	}
	if r.DialTimeout < 1 {
		return errors.NewConfigurationError("REDIS_DIAL_TIMEOUT must be at least 1 second", nil)
	}
	if r.ReadTimeout < 1 {
		return errors.NewConfigurationError("REDIS_READ_TIMEOUT must be at least 1 second", nil)
	}
	if r.WriteTimeout < 1 {
		return errors.NewConfigurationError("REDIS_WRITE_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case "sqlite":
		if d.DSN == "" {
			return errors.NewConfigurationError("CACHE_DB_DSN cannot be empty for the sqlite driver", nil)
		}
		return nil
	case "postgres":
		if d.DSN != "" {
			return nil
		}
	default:
		return errors.NewConfigurationError("CACHE_DB_DRIVER must be one of: sqlite, postgres", nil)
	}

	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > maxPortNumber {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	return d.ValidateSSLMode()
}

func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

func (f *FreshnessConfig) Validate() error {
	if f.CurrentMaxAgeMinutes < 1 {
		return errors.NewConfigurationError("FRESHNESS_CURRENT_MAX_AGE_MINUTES must be at least 1 minute", nil)
	}
	if f.ForecastMaxAgeMinutes < 1 {
		return errors.NewConfigurationError("FRESHNESS_FORECAST_MAX_AGE_MINUTES must be at least 1 minute", nil)
	}
	if f.MaxAgeMinutes < 0 {
		return errors.NewConfigurationError("FRESHNESS_MAX_AGE_MINUTES cannot be negative", nil)
	}
	return nil
}

func (s *SchedulerConfig) Validate() error {
	if !s.Enabled {
		return nil
	}
	if s.SweepIntervalMinutes < 1 || s.SweepIntervalMinutes > maxIntervalMinutes {
		return errors.NewConfigurationError("SCHEDULER_SWEEP_INTERVAL_MINUTES must be between 1 and 10080 minutes", nil)
	}
	if s.WarmupIntervalMinutes < 1 || s.WarmupIntervalMinutes > maxIntervalMinutes {
		return errors.NewConfigurationError("SCHEDULER_WARMUP_INTERVAL_MINUTES must be between 1 and 10080 minutes", nil)
	}
	if _, err := s.Locations(); err != nil {
		return err
	}
	return nil
}
