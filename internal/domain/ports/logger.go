package ports

// Logger is a structured, leveled logger. It doubles as the diagnostic sink
// for non-fatal data-integrity warnings raised during fact conversion.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}
