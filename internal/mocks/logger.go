package mocks

import (
	"sync"

	"forecastcache.app/internal/ports"
)

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// Logger records every call for later inspection.
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewLogger() *Logger {
	return &Logger{}
}

func (l *Logger) record(level, msg string, fields []ports.Field) {
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Fields: m})
}

func (l *Logger) Debug(msg string, fields ...ports.Field) { l.record("DEBUG", msg, fields) }
func (l *Logger) Info(msg string, fields ...ports.Field)  { l.record("INFO", msg, fields) }
func (l *Logger) Warn(msg string, fields ...ports.Field)  { l.record("WARN", msg, fields) }
func (l *Logger) Error(msg string, fields ...ports.Field) { l.record("ERROR", msg, fields) }

// Entries returns a copy of the captured entries, optionally filtered by level.
func (l *Logger) Entries(levels ...string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []LogEntry
	for _, e := range l.entries {
		if len(levels) == 0 || contains(levels, e.Level) {
			out = append(out, e)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
