// Package console provides a Logger implementation writing styled output to
// stderr.
package console

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger implements ports.Logger using charmbracelet/log.
type Logger struct {
	logger *log.Logger
}

// New creates a console logger. Unknown level strings fall back to info.
func New(level string) *Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		Level:           parseLevel(level),
	})
	return &Logger{logger: logger}
}

func parseLevel(level string) log.Level {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}

// Debug logs a debug message with optional key-value pairs.
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.logger.Debug(msg, keyvals...)
}

// Info logs an informational message with optional key-value pairs.
func (l *Logger) Info(msg string, keyvals ...any) {
	l.logger.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func (l *Logger) Warn(msg string, keyvals ...any) {
	l.logger.Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func (l *Logger) Error(msg string, keyvals ...any) {
	l.logger.Error(msg, keyvals...)
}
