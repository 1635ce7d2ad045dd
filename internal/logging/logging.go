package logging

import (
	"io"
	"log"
	"log/slog"
	"strings"
)

// New builds the application logger and installs it as the slog default.
// Output of the standard log package is routed through the same handler.
func New(level string, format string, w io.Writer) *slog.Logger {
	options := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	log.SetFlags(0)

	return logger
}

func ParseLevel(level string) slog.Level {
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

// StdLogger adapts logger for libraries that expect a *log.Logger.
func StdLogger(logger *slog.Logger, level slog.Level) *log.Logger {
	return slog.NewLogLogger(logger.Handler(), level)
}
