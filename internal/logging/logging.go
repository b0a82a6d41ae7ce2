// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a level name to a slog level. Unknown names fall back to
// warn.
func ParseLevel(name string) slog.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(name))]; ok {
		return l
	}
	return slog.LevelWarn
}

// New returns a text logger writing to w at the named level.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// Setup installs a New logger as the slog default and returns it.
func Setup(w io.Writer, level string) *slog.Logger {
	l := New(w, level)
	slog.SetDefault(l)
	l.Debug("logging initialized", "level", ParseLevel(level).String())
	return l
}
