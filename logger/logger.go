package logger

import "context"

// Logger is the structured logger used across the framework. Fields are
// attached per call or bound once with WithField/WithFields.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, fields map[string]interface{})

	// WithField returns a logger that adds key=value to every entry.
	WithField(key string, value interface{}) Logger

	// WithFields returns a logger that adds all fields to every entry.
	WithFields(fields map[string]interface{}) Logger
}
