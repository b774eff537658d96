package mocks

import "fmt"

// LogEntry is one recorded log call.
type LogEntry struct {
	Level   string
	Message string
	Keyvals []any
}

// Logger is a mock implementation of ports.Logger that records every call.
type Logger struct {
	Entries []LogEntry
}

// NewLogger creates a new mock Logger.
func NewLogger() *Logger {
	return &Logger{}
}

func (m *Logger) record(level, msg string, keyvals ...any) {
	m.Entries = append(m.Entries, LogEntry{Level: level, Message: msg, Keyvals: keyvals})
}

// Debug records a debug message.
func (m *Logger) Debug(msg string, keyvals ...any) { m.record("debug", msg, keyvals...) }

// Info records an info message.
func (m *Logger) Info(msg string, keyvals ...any) { m.record("info", msg, keyvals...) }

// Warn records a warning message.
func (m *Logger) Warn(msg string, keyvals ...any) { m.record("warn", msg, keyvals...) }

// Error records an error message.
func (m *Logger) Error(msg string, keyvals ...any) { m.record("error", msg, keyvals...) }

// Warnings returns all recorded warning entries.
func (m *Logger) Warnings() []LogEntry {
	var result []LogEntry
	for _, entry := range m.Entries {
		if entry.Level == "warn" {
			result = append(result, entry)
		}
	}
	return result
}

// WarnedAbout reports whether a warning was recorded with the given
// key/value pair among its keyvals.
func (m *Logger) WarnedAbout(key string, value any) bool {
	for _, entry := range m.Warnings() {
		for i := 0; i+1 < len(entry.Keyvals); i += 2 {
			if fmt.Sprint(entry.Keyvals[i]) == key && entry.Keyvals[i+1] == value {
				return true
			}
		}
	}
	return false
}
