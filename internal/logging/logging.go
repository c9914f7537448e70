// Package logging configures the process-wide slog logger, optionally
// writing to a rotated log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration.
type Config struct {
	Level      string    // debug, info, warn, error
	FilePath   string    // log file; empty logs to Output
	MaxSizeMB  int       // size before rotation
	MaxBackups int       // rotated files kept
	MaxAgeDays int       // days rotated files are kept
	Compress   bool      // gzip rotated files
	Output     io.Writer // used when FilePath is empty; nil means stderr
}

// DefaultConfig logs at info level to stderr.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Compress:   true,
	}
}

// Setup installs a text handler as the default slog logger.
// The returned cleanup closes the log file, if any.
func Setup(cfg Config) (func() error, error) {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var w io.Writer
	cleanup := func() error { return nil }
	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, err
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}
		w = lj
		cleanup = lj.Close
	} else if cfg.Output != nil {
		w = cfg.Output
	} else {
		w = os.Stderr
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, opts)))
	return cleanup, nil
}

// ParseLevel maps a level name to a slog.Level; unknown names give info.
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
