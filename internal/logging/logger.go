package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Logger wraps slog with the verbose switch and timing helpers used across the importer.
type Logger struct {
	Verbose bool
	slog    *slog.Logger
}

type Options struct {
	Writer  io.Writer
	Format  string
	Verbose bool
}

func New(opts Options) (Logger, error) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console", "text":
		handler = slog.NewTextHandler(opts.Writer, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(opts.Writer, handlerOpts)
	default:
		return Logger{}, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
	return Logger{Verbose: opts.Verbose, slog: slog.New(handler)}, nil
}

// Discard returns a logger that drops everything. The zero Logger behaves the same way.
func Discard() Logger {
	return Logger{}
}

func (l Logger) enabled() bool {
	return l.slog != nil
}

func (l Logger) Info(msg string, args ...any) {
	if !l.enabled() {
		return
	}
	l.slog.Info(msg, args...)
}

func (l Logger) Warn(msg string, args ...any) {
	if !l.enabled() {
		return
	}
	l.slog.Warn(msg, args...)
}

func (l Logger) Error(msg string, args ...any) {
	if !l.enabled() {
		return
	}
	l.slog.Error(msg, args...)
}

func (l Logger) Verbosef(format string, args ...any) {
	if !l.Verbose || !l.enabled() {
		return
	}
	l.slog.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...))
}

// With returns a logger that adds args to every record.
func (l Logger) With(args ...any) Logger {
	if !l.enabled() {
		return l
	}
	return Logger{Verbose: l.Verbose, slog: l.slog.With(args...)}
}

// Measure returns a stop function that logs the elapsed time when called.
func (l Logger) Measure(label string) func() {
	if !l.Verbose {
		return func() {}
	}
	start := time.Now()
	return func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		l.Verbosef("%s took %s", label, elapsed)
	}
}
