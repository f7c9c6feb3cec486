package ports

import (
	"time"
)

// Logger defines the contract for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a log field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Clock supplies the current time to freshness decisions.
type Clock interface {
	Now() time.Time
}

// FetchMetrics records outcomes of calls to the forecast fetch capability.
type FetchMetrics interface {
	RecordFetch(success bool, duration time.Duration)
	RecordSharedWaiter()
}
