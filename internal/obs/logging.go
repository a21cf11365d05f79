// Package obs contains observability utilities such as logging.
package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the global structured logger used by the service. It writes to
// stderr with default options until InitLogger is called.
var Logger = slog.Default()

// InitLogger initializes the global Logger with a JSON handler. An optional
// level name ("debug", "info", "warn", "error") overrides the info default.
func InitLogger(level ...string) {
	lvl := ""
	if len(level) > 0 {
		lvl = level[0]
	}
	InitLoggerTo(os.Stdout, lvl)
}

// InitLoggerTo is InitLogger writing to w. CLI commands log to stderr so
// their stdout stays machine readable.
func InitLoggerTo(w io.Writer, level string) {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	Logger = slog.New(h)
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
