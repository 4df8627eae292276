// Package logging builds the process logger: a text or JSON handler on the
// given writer, plus the systemd journal when it is reachable.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Identifier is the SYSLOG_IDENTIFIER used for journal records.
const Identifier = "fan-pwm-control"

// Config selects level, output format and journal use.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	// Journal adds the systemd journal handler. Callers normally set it from
	// JournalAvailable().
	Journal bool
}

// ParseLevel converts a level name to a slog.Level. Matching is
// case-insensitive and "warning" is accepted for warn.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}

// New returns a logger writing to w. An empty level means warn.
func New(cfg Config, w io.Writer) (*slog.Logger, error) {
	level := slog.LevelWarn
	if cfg.Level != "" {
		l, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		level = l
	}

	opts := &slog.HandlerOptions{Level: level}
	var out slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		out = slog.NewTextHandler(w, opts)
	case "json":
		out = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var journal slog.Handler
	if cfg.Journal {
		journal = NewJournalHandler(level)
	}
	return slog.New(Fanout(out, journal)), nil
}
