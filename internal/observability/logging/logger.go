// Package logging configures structured JSON logging for the roll
// extraction service. The pipeline logs through the package-level slog
// functions (retry warnings, breaker transitions, export failures), so Setup
// installs the handler as the process default rather than only returning it.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Setup builds a JSON logger on w tagged with the service name, installs it
// as the slog default and returns it.
func Setup(w io.Writer, service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
