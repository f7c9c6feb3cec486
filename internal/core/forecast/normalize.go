package forecast

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// KeyNamespace prefixes every cache key. Bump the version when the encoding changes.
const KeyNamespace = "forecast:v1:"

type param struct {
	name  string
	value string
}

// Normalize validates cfg and derives its canonical cache key.
func Normalize(cfg ForecastConfig) (CacheKey, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	params := canonicalParams(cfg)
	pairs := make([]string, 0, len(params))
	for _, p := range params {
		pairs = append(pairs, p.name+"="+url.QueryEscape(p.value))
	}

	return CacheKey(KeyNamespace + strings.Join(pairs, "&")), nil
}

// QueryValues returns the canonical, default-free request parameters of cfg.
func (c ForecastConfig) QueryValues() url.Values {
	values := url.Values{}
	for _, p := range canonicalParams(c) {
		values.Set(p.name, p.value)
	}
	return values
}

// canonicalParams lists the non-default fields of cfg in a fixed order.
func canonicalParams(cfg ForecastConfig) []param {
	params := []param{
		{name: "latitude", value: formatCoordinate(cfg.Latitude)},
		{name: "longitude", value: formatCoordinate(cfg.Longitude)},
	}

	add := func(name, value, def string) {
		if value == "" || value == def {
			return
		}
		params = append(params, param{name: name, value: value})
	}

	add("hourly", normalizeVariables(cfg.Hourly), "")
	add("daily", normalizeVariables(cfg.Daily), "")
	add("minutely_15", normalizeVariables(cfg.Minutely15), "")
	add("current", normalizeVariables(cfg.Current), "")
	if cfg.CurrentWeather {
		add("current_weather", "true", "")
	}

	add("temperature_unit", strings.TrimSpace(cfg.TemperatureUnit), DefaultTemperatureUnit)
	add("windspeed_unit", strings.TrimSpace(cfg.WindSpeedUnit), DefaultWindSpeedUnit)
	add("precipitation_unit", strings.TrimSpace(cfg.PrecipitationUnit), DefaultPrecipitationUnit)
	add("timeformat", strings.TrimSpace(cfg.TimeFormat), DefaultTimeFormat)
	add("timezone", strings.TrimSpace(cfg.Timezone), DefaultTimezone)

	add("past_days", strconv.Itoa(cfg.PastDays), strconv.Itoa(DefaultPastDays))
	// zero means "provider default"
	if cfg.ForecastDays != 0 {
		add("forecast_days", strconv.Itoa(cfg.ForecastDays), strconv.Itoa(DefaultForecastDays))
	}
	add("start_date", strings.TrimSpace(cfg.StartDate), "")
	add("end_date", strings.TrimSpace(cfg.EndDate), "")

	add("models", normalizeVariables(cfg.Models), DefaultModels)

	return params
}

func formatCoordinate(v float64) string {
	if v == 0 {
		// folds -0 into 0
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// normalizeVariables trims, de-duplicates and sorts a comma-delimited list.
func normalizeVariables(list string) string {
	vars := splitVariables(list)
	if len(vars) == 0 {
		return ""
	}
	sort.Strings(vars)
	return strings.Join(vars, ",")
}

func splitVariables(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var vars []string
	for _, v := range strings.Split(list, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		vars = append(vars, v)
	}
	return vars
}
