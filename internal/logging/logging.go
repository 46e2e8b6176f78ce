// Package logging provides structured logging setup for the comment panel.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup initializes the default slog logger writing to stderr, so command
// output on stdout stays clean. Dev mode uses human-readable text; prod uses JSON.
func Setup(devMode bool) *slog.Logger {
	return SetupWriter(os.Stderr, devMode)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(w io.Writer, devMode bool) *slog.Logger {
	var handler slog.Handler
	if devMode {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
