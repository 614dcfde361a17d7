// Package logging installs the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the handler and destination.
type Options struct {
	Level string // debug, info, warn or error
	File  string // when set, JSON lines go to this size-rotated file
	JSON  bool   // JSON instead of text on the console writer
}

// ParseLevel maps a level name to slog.Level, defaulting to Info.
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

// New builds a logger writing to console, or to a rotated file when opts.File is set.
// The returned closer releases the file; it is a no-op for console logging.
func New(opts Options, console io.Writer) (*slog.Logger, io.Closer) {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	if opts.File != "" {
		writer := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		return slog.New(slog.NewJSONHandler(writer, handlerOpts)), writer
	}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(console, handlerOpts)
	} else {
		handler = slog.NewTextHandler(console, handlerOpts)
	}
	return slog.New(handler), nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds a logger with New and installs it as the slog default.
func Setup(opts Options, console io.Writer) io.Closer {
	logger, closer := New(opts, console)
	slog.SetDefault(logger)
	return closer
}
