package forecast

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"forecastcache.app/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// Documented provider defaults. A field holding its default is equivalent to an omitted field.
const (
	DefaultTemperatureUnit   = "celsius"
	DefaultWindSpeedUnit     = "kmh"
	DefaultPrecipitationUnit = "mm"
	DefaultTimeFormat        = "iso8601"
	DefaultTimezone          = "GMT"
	DefaultPastDays          = 0
	DefaultForecastDays      = 7
	DefaultModels            = "best_match"
)

// CacheKey is the canonical fingerprint of a ForecastConfig.
type CacheKey string

func (k CacheKey) String() string {
	return string(k)
}

// ForecastResult is the raw payload returned by the fetch capability.
type ForecastResult = json.RawMessage

// ForecastConfig identifies a single forecast query.
type ForecastConfig struct {
	Latitude  float64 `json:"latitude" form:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" form:"longitude" validate:"gte=-180,lte=180"`

	// Comma-delimited variable selections per granularity.
	Hourly         string `json:"hourly,omitempty" form:"hourly"`
	Daily          string `json:"daily,omitempty" form:"daily"`
	Minutely15     string `json:"minutely_15,omitempty" form:"minutely_15"`
	Current        string `json:"current,omitempty" form:"current"`
	CurrentWeather bool   `json:"current_weather,omitempty" form:"current_weather"`

	TemperatureUnit   string `json:"temperature_unit,omitempty" form:"temperature_unit" validate:"omitempty,oneof=celsius fahrenheit"`
	WindSpeedUnit     string `json:"windspeed_unit,omitempty" form:"windspeed_unit" validate:"omitempty,oneof=kmh ms mph kn"`
	PrecipitationUnit string `json:"precipitation_unit,omitempty" form:"precipitation_unit" validate:"omitempty,oneof=mm inch"`
	TimeFormat        string `json:"timeformat,omitempty" form:"timeformat" validate:"omitempty,oneof=iso8601 unixtime"`
	Timezone          string `json:"timezone,omitempty" form:"timezone" validate:"max=64"`

	PastDays     int    `json:"past_days,omitempty" form:"past_days" validate:"gte=0,lte=92"`
	ForecastDays int    `json:"forecast_days,omitempty" form:"forecast_days" validate:"gte=0,lte=16"`
	StartDate    string `json:"start_date,omitempty" form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `json:"end_date,omitempty" form:"end_date" validate:"omitempty,datetime=2006-01-02"`

	Models string `json:"models,omitempty" form:"models"`

	// MaxAge overrides the freshness threshold for this request. It does not take part in the cache key.
	MaxAge time.Duration `json:"-" form:"-"`
	// Refresh skips the freshness check so the provider is always asked. Not part of the cache key.
	Refresh bool `json:"-" form:"-"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks coordinate ranges, unit values, date bounds and that at least one granularity is selected.
func (c ForecastConfig) Validate() error {
	if err := configValidator().Struct(c); err != nil {
		return errors.NewInvalidConfigError(describeValidationError(err))
	}

	if !c.HasGranularity() {
		return errors.NewInvalidConfigError("at least one of hourly, daily, minutely_15, current or current_weather must be set")
	}

	start := strings.TrimSpace(c.StartDate)
	end := strings.TrimSpace(c.EndDate)
	if (start == "") != (end == "") {
		return errors.NewInvalidConfigError("start_date and end_date must be set together")
	}
	if start != "" && end < start {
		return errors.NewInvalidConfigError("end_date must not be before start_date")
	}

	return nil
}

// HasGranularity reports whether any data granularity is selected.
func (c ForecastConfig) HasGranularity() bool {
	return c.CurrentWeather ||
		len(splitVariables(c.Hourly)) > 0 ||
		len(splitVariables(c.Daily)) > 0 ||
		len(splitVariables(c.Minutely15)) > 0 ||
		len(splitVariables(c.Current)) > 0
}

// HasCurrentConditions reports whether the request asks for fast-changing data.
func (c ForecastConfig) HasCurrentConditions() bool {
	return c.CurrentWeather ||
		len(splitVariables(c.Current)) > 0 ||
		len(splitVariables(c.Minutely15)) > 0
}

func describeValidationError(err error) string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		return err.Error()
	}

	fe := validationErrs[0]
	switch fe.Tag() {
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range (%s %s)", fieldName(fe.Field()), fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fieldName(fe.Field()), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be formatted as YYYY-MM-DD", fieldName(fe.Field()))
	default:
		return fmt.Sprintf("%s is invalid", fieldName(fe.Field()))
	}
}

func fieldName(field string) string {
	switch field {
	case "Latitude":
		return "latitude"
	case "Longitude":
		return "longitude"
	case "TemperatureUnit":
		return "temperature_unit"
	case "WindSpeedUnit":
		return "windspeed_unit"
	case "PrecipitationUnit":
		return "precipitation_unit"
	case "TimeFormat":
		return "timeformat"
	case "PastDays":
		return "past_days"
	case "ForecastDays":
		return "forecast_days"
	case "StartDate":
		return "start_date"
	case "EndDate":
		return "end_date"
	default:
		return strings.ToLower(field)
	}
}
