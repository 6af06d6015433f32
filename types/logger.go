package types

// Logger defines methods for structured logging.
//
// Compatible with zap.SugaredLogger and slog-style adapters. All methods
// accept alternating key-value pairs for structured fields.
//
// The projector logs record-level problems (unparsable time specs, empty
// worker ids) at Warn and feed failures at Error; implementations should not
// treat Warn as actionable.
type Logger interface {
	// Debug logs a message at DebugLevel with optional key-value fields.
	Debug(msg string, keysAndValues ...any)

	// Info logs a message at InfoLevel with optional key-value fields.
	Info(msg string, keysAndValues ...any)

	// Warn logs a message at WarnLevel with optional key-value fields.
	Warn(msg string, keysAndValues ...any)

	// Error logs a message at ErrorLevel with optional key-value fields.
	Error(msg string, keysAndValues ...any)

	// Fatal logs a message at FatalLevel and then calls os.Exit(1), even if
	// logging at FatalLevel is disabled.
	Fatal(msg string, keysAndValues ...any)
}
