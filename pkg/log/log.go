package log

// Logger is the key/value logging interface of the library. *slog.Logger
// satisfies it directly.
type Logger interface {
	// Debug logs a debug message with optional keys and values.
	Debug(msg string, keysAndValues ...any)
	// Info logs an informational message with optional keys and values.
	Info(msg string, keysAndValues ...any)
	// Warn logs a warning message with optional keys and values.
	Warn(msg string, keysAndValues ...any)
	// Error logs an error message with optional keys and values.
	Error(msg string, keysAndValues ...any)
}
