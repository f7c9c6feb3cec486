package forecast

import (
	"math"
	"testing"

	"forecastcache.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_KeyFormat(t *testing.T) {
	key, err := Normalize(berlinCurrent())

	require.NoError(t, err)
	assert.Equal(t, CacheKey("forecast:v1:latitude=52.52&longitude=13.405&current_weather=true"), key)
}

func TestNormalize_OrderIndependent(t *testing.T) {
	a := ForecastConfig{
		Latitude:  52.52,
		Longitude: 13.405,
		Hourly:    "temperature_2m,relative_humidity_2m,wind_speed_10m",
		Daily:     "sunrise,sunset",
		Timezone:  "Europe/Berlin",
	}

	b := ForecastConfig{}
	b.Timezone = "Europe/Berlin"
	b.Daily = "sunset, sunrise"
	b.Hourly = " wind_speed_10m,temperature_2m,relative_humidity_2m,temperature_2m"
	b.Longitude = 13.405
	b.Latitude = 52.52

	keyA, err := Normalize(a)
	require.NoError(t, err)
	keyB, err := Normalize(b)
	require.NoError(t, err)

	assert.Equal(t, keyA, keyB)
}

func TestNormalize_DefaultEquivalence(t *testing.T) {
	base := ForecastConfig{Latitude: 48.85, Longitude: 2.35, Hourly: "temperature_2m"}
	baseKey := mustKey(base)

	tests := []struct {
		name   string
		modify func(c *ForecastConfig)
	}{
		{name: "TemperatureUnit", modify: func(c *ForecastConfig) { c.TemperatureUnit = DefaultTemperatureUnit }},
		{name: "WindSpeedUnit", modify: func(c *ForecastConfig) { c.WindSpeedUnit = DefaultWindSpeedUnit }},
		{name: "PrecipitationUnit", modify: func(c *ForecastConfig) { c.PrecipitationUnit = DefaultPrecipitationUnit }},
		{name: "TimeFormat", modify: func(c *ForecastConfig) { c.TimeFormat = DefaultTimeFormat }},
		{name: "Timezone", modify: func(c *ForecastConfig) { c.Timezone = DefaultTimezone }},
		{name: "PastDays", modify: func(c *ForecastConfig) { c.PastDays = DefaultPastDays }},
		{name: "ForecastDays", modify: func(c *ForecastConfig) { c.ForecastDays = DefaultForecastDays }},
		{name: "Models", modify: func(c *ForecastConfig) { c.Models = DefaultModels }},
		{name: "EmptyDailyList", modify: func(c *ForecastConfig) { c.Daily = " , " }},
		{name: "MaxAgeIsNotIdentity", modify: func(c *ForecastConfig) { c.MaxAge = 42 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.modify(&cfg)

			key, err := Normalize(cfg)
			require.NoError(t, err)
			assert.Equal(t, baseKey, key)
		})
	}
}

func TestNormalize_DistinctFields(t *testing.T) {
	base := ForecastConfig{Latitude: 52.52, Longitude: 13.405, CurrentWeather: true}
	baseKey := mustKey(base)

	tests := []struct {
		name   string
		modify func(c *ForecastConfig)
	}{
		{name: "Timezone", modify: func(c *ForecastConfig) { c.Timezone = "Europe/Berlin" }},
		{name: "Latitude", modify: func(c *ForecastConfig) { c.Latitude = 52.5201 }},
		{name: "Hourly", modify: func(c *ForecastConfig) { c.Hourly = "temperature_2m" }},
		{name: "TemperatureUnit", modify: func(c *ForecastConfig) { c.TemperatureUnit = "fahrenheit" }},
		{name: "ForecastDays", modify: func(c *ForecastConfig) { c.ForecastDays = 3 }},
		{name: "PastDays", modify: func(c *ForecastConfig) { c.PastDays = 1 }},
		{name: "Models", modify: func(c *ForecastConfig) { c.Models = "icon_seamless" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.modify(&cfg)

			key, err := Normalize(cfg)
			require.NoError(t, err)
			assert.NotEqual(t, baseKey, key)
		})
	}
}

func TestNormalize_TimezoneProducesDistinctKeys(t *testing.T) {
	berlin := ForecastConfig{Latitude: 52.52, Longitude: 13.405, Hourly: "temperature_2m", Timezone: "Europe/Berlin"}
	tokyo := berlin
	tokyo.Timezone = "Asia/Tokyo"

	assert.NotEqual(t, mustKey(berlin), mustKey(tokyo))
}

func TestNormalize_NegativeZero(t *testing.T) {
	pos := ForecastConfig{Latitude: 0, Longitude: 0, CurrentWeather: true}
	neg := ForecastConfig{Latitude: math.Copysign(0, -1), Longitude: math.Copysign(0, -1), CurrentWeather: true}

	assert.Equal(t, mustKey(pos), mustKey(neg))
}

func TestNormalize_EscapesValues(t *testing.T) {
	key := mustKey(ForecastConfig{Latitude: 1, Longitude: 2, Hourly: "b,a", Timezone: "America/New_York"})

	assert.Contains(t, string(key), "hourly=a%2Cb")
	assert.Contains(t, string(key), "timezone=America%2FNew_York")
}

func TestNormalize_InvalidConfig(t *testing.T) {
	key, err := Normalize(ForecastConfig{Latitude: 120, Longitude: 0, CurrentWeather: true})

	assert.Empty(t, key)
	assert.True(t, errors.IsInvalidConfigError(err))
}

func TestForecastConfig_QueryValues(t *testing.T) {
	cfg := ForecastConfig{
		Latitude:        52.52,
		Longitude:       13.405,
		Hourly:          "wind_speed_10m,temperature_2m",
		TemperatureUnit: "celsius",
		Timezone:        "auto",
		ForecastDays:    3,
	}

	values := cfg.QueryValues()

	assert.Equal(t, "52.52", values.Get("latitude"))
	assert.Equal(t, "13.405", values.Get("longitude"))
	assert.Equal(t, "temperature_2m,wind_speed_10m", values.Get("hourly"))
	assert.Equal(t, "auto", values.Get("timezone"))
	assert.Equal(t, "3", values.Get("forecast_days"))
	assert.False(t, values.Has("temperature_unit"))
	assert.False(t, values.Has("current_weather"))
}
