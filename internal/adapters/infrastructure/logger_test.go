package infrastructure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"forecastcache.app/internal/mocks"
	"forecastcache.app/internal/ports"
	"forecastcache.app/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLoggerAdapter_WritesFieldsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	base := &logger.Logger{Logger: slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	adapter := NewSlogLoggerAdapter(base, "coordinator")
	adapter.Warn("Cache unavailable, treating as miss",
		ports.F("key", "forecast:v1:latitude=1&longitude=2"),
		ports.F("error", fmt.Errorf("connection refused")))

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "Cache unavailable, treating as miss", record["msg"])
	assert.Equal(t, "coordinator", record["component"])
	assert.Equal(t, "connection refused", record["error"])
	assert.Equal(t, "forecast:v1:latitude=1&longitude=2", record["key"])
}

func TestSlogLoggerAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	base := &logger.Logger{Logger: slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))}

	adapter := NewSlogLoggerAdapter(base, "")
	adapter.Debug("hidden")
	assert.Zero(t, buf.Len())

	adapter.Error("shown")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestMultiLogger_FansOut(t *testing.T) {
	first, second := mocks.NewLogger(), mocks.NewLogger()
	multi := MultiLogger{first, second}

	multi.Info("Forecast API request started", ports.F("provider", "open-meteo"))
	multi.Error("Forecast API request failed")

	for _, l := range []*mocks.Logger{first, second} {
		entries := l.Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "open-meteo", entries[0].Fields["provider"])
		assert.Equal(t, "ERROR", entries[1].Level)
	}
}
