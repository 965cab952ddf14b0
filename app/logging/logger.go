package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the service logger. JSON goes to stdout; dev environments log at
// debug unless level says otherwise.
func New(env, level string) *slog.Logger {
	return NewWithWriter(os.Stdout, env, level)
}

func NewWithWriter(w io.Writer, env, level string) *slog.Logger {
	lvl := slog.LevelInfo
	if env == "dev" {
		lvl = slog.LevelDebug
	}
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(h).With("service", "factory-inventory")
}
