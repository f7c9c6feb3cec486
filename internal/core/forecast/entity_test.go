package forecast

import (
	"math"
	"testing"

	"forecastcache.app/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestForecastConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         ForecastConfig
		expectError bool
		errContains string
	}{
		{
			name: "CurrentWeatherOnly",
			cfg:  ForecastConfig{Latitude: 52.52, Longitude: 13.405, CurrentWeather: true},
		},
		{
			name: "HourlyWithUnits",
			cfg: ForecastConfig{
				Latitude:        -33.87,
				Longitude:       151.21,
				Hourly:          "temperature_2m,relative_humidity_2m",
				TemperatureUnit: "fahrenheit",
				WindSpeedUnit:   "mph",
				TimeFormat:      "unixtime",
				Timezone:        "Australia/Sydney",
			},
		},
		{
			name: "BoundaryCoordinates",
			cfg:  ForecastConfig{Latitude: -90, Longitude: 180, Daily: "temperature_2m_max"},
		},
		{
			name: "DateRange",
			cfg:  ForecastConfig{Latitude: 1, Longitude: 1, Daily: "sunrise", StartDate: "2024-06-01", EndDate: "2024-06-10"},
		},
		{
			name:        "LatitudeTooHigh",
			cfg:         ForecastConfig{Latitude: 90.01, Longitude: 0, CurrentWeather: true},
			expectError: true,
			errContains: "latitude",
		},
		{
			name:        "LongitudeTooLow",
			cfg:         ForecastConfig{Latitude: 0, Longitude: -180.5, CurrentWeather: true},
			expectError: true,
			errContains: "longitude",
		},
		{
			name:        "NaNLatitude",
			cfg:         ForecastConfig{Latitude: math.NaN(), Longitude: 0, CurrentWeather: true},
			expectError: true,
			errContains: "latitude",
		},
		{
			name:        "NoGranularity",
			cfg:         ForecastConfig{Latitude: 52.52, Longitude: 13.405},
			expectError: true,
			errContains: "at least one",
		},
		{
			name:        "BlankVariableListIsNoGranularity",
			cfg:         ForecastConfig{Latitude: 52.52, Longitude: 13.405, Hourly: " , ,"},
			expectError: true,
			errContains: "at least one",
		},
		{
			name:        "UnsupportedTemperatureUnit",
			cfg:         ForecastConfig{Latitude: 1, Longitude: 1, CurrentWeather: true, TemperatureUnit: "kelvin"},
			expectError: true,
			errContains: "temperature_unit",
		},
		{
			name:        "PastDaysOutOfRange",
			cfg:         ForecastConfig{Latitude: 1, Longitude: 1, CurrentWeather: true, PastDays: 93},
			expectError: true,
			errContains: "past_days",
		},
		{
			name:        "MalformedDate",
			cfg:         ForecastConfig{Latitude: 1, Longitude: 1, Daily: "sunrise", StartDate: "01/06/2024", EndDate: "2024-06-10"},
			expectError: true,
			errContains: "start_date",
		},
		{
			name:        "StartWithoutEnd",
			cfg:         ForecastConfig{Latitude: 1, Longitude: 1, Daily: "sunrise", StartDate: "2024-06-01"},
			expectError: true,
			errContains: "together",
		},
		{
			name:        "EndBeforeStart",
			cfg:         ForecastConfig{Latitude: 1, Longitude: 1, Daily: "sunrise", StartDate: "2024-06-10", EndDate: "2024-06-01"},
			expectError: true,
			errContains: "before",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()

			if tt.expectError {
				assert.Error(t, err)
				assert.True(t, errors.IsInvalidConfigError(err))
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestForecastConfig_HasCurrentConditions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      ForecastConfig
		expected bool
	}{
		{name: "CurrentWeatherFlag", cfg: ForecastConfig{CurrentWeather: true}, expected: true},
		{name: "CurrentVariables", cfg: ForecastConfig{Current: "temperature_2m"}, expected: true},
		{name: "Minutely15", cfg: ForecastConfig{Minutely15: "precipitation"}, expected: true},
		{name: "HourlyOnly", cfg: ForecastConfig{Hourly: "temperature_2m"}, expected: false},
		{name: "DailyOnly", cfg: ForecastConfig{Daily: "temperature_2m_max"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.HasCurrentConditions())
		})
	}
}
