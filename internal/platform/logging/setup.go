package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/vietddude/stylelog"
)

// ParseLevel maps a config level name to a slog.Level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Init installs the process-wide default logger and returns it. Both
// formats write to w; text uses stylelog's level split over tint.
func Init(level slog.Level, format string, w io.Writer) *slog.Logger {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = newTextHandler(level, w)
	}
	logger := slog.New(WrapHandler(handler))
	slog.SetDefault(logger)
	return logger
}

// newTextHandler mirrors stylelog.New but targets w instead of stderr.
// Errors carry their source location.
func newTextHandler(level slog.Level, w io.Writer) slog.Handler {
	opts := tint.Options{Level: level, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
	errOpts := opts
	errOpts.AddSource = true
	return &stylelog.LevelBasedHandler{
		LowLevelHandler: tint.NewHandler(w, &opts),
		ErrorHandler:    tint.NewHandler(w, &errOpts),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
