package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFlags configure the program's logger.
type LogFlags struct {
	Format string `help:"Log format (text or json)" enum:"text,json" default:"${log_format}"`
	Level  string `help:"Log level (debug, info, warn, error)" default:"${log_level}"`
	File   string `help:"Write logs to a rotating file instead of stderr" type:"path" default:"${log_file}"`
}

// newLogger builds the logger described by f. Logs go to stderr unless a
// file is named. The returned closer must be closed on exit.
func newLogger(f LogFlags, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(f.Level))); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q", f.Level)
	}

	var w io.Writer = stderr
	var closer io.Closer = nopCloser{}
	if f.File != "" {
		lj := &lumberjack.Logger{
			Filename:   f.File,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		}
		w, closer = lj, lj
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch f.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
