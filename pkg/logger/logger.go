// Package logger wraps log/slog with the component+fields convention used
// throughout the engine: every call site names the component it runs in and
// attaches structured fields instead of formatting them into the message.
package logger

import (
	"log/slog"
	"os"
)

var base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetLevel adjusts the package-level handler's minimum level.
func SetLevel(level slog.Level) {
	base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func attrs(component string, fields map[string]any) []any {
	out := make([]any, 0, 2+2*len(fields))
	out = append(out, "component", component)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}

// InfoCF logs an informational message for component with structured fields.
func InfoCF(component, msg string, fields map[string]any) {
	base.Info(msg, attrs(component, fields)...)
}

// WarnCF logs a warning for component with structured fields.
func WarnCF(component, msg string, fields map[string]any) {
	base.Warn(msg, attrs(component, fields)...)
}

// ErrorCF logs an error for component with structured fields.
func ErrorCF(component, msg string, fields map[string]any) {
	base.Error(msg, attrs(component, fields)...)
}

// DebugCF logs a debug message for component with structured fields.
func DebugCF(component, msg string, fields map[string]any) {
	base.Debug(msg, attrs(component, fields)...)
}
