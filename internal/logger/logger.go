// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/lumberjack.v2"
)

type Options struct {
	Level string
	// File enables a rotating log file next to stdout.
	File string
}

func Init(opts Options) *slog.Logger {
	var writers []io.Writer
	writers = append(writers, os.Stdout)
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     30,
			LocalTime:  true,
		})
	}

	l := New(io.MultiWriter(writers...), opts.Level)
	slog.SetDefault(l)
	return l
}

// New builds a JSON logger on w without touching the default logger.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
