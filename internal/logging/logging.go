// Package logging builds the structured logger shared by the daemon and the
// traffic core.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// stderr is the text sink; tests swap it.
var stderr io.Writer = os.Stderr

type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Dir enables a rotating JSON log file in Dir when non-empty.
	Dir string
	// Stderr mirrors records to stderr in text form.
	Stderr bool
	// MaxSizeMB bounds one log file before rotation.
	MaxSizeMB int
	// MaxBackups bounds the number of rotated files kept.
	MaxBackups int
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
}

// New returns a logger and a closer for the underlying log file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	hopts := &slog.HandlerOptions{Level: lvl}

	var handlers []slog.Handler
	var closer io.Closer = nopCloser{}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		w := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, "trafficalert.slog"),
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			Compress:   true,
		}
		if w.MaxSize <= 0 {
			w.MaxSize = 16 // MB
		}
		if w.MaxBackups <= 0 {
			w.MaxBackups = 3
		}
		handlers = append(handlers, slog.NewJSONHandler(w, hopts))
		closer = w
	}
	if opts.Stderr || len(handlers) == 0 {
		handlers = append(handlers, slog.NewTextHandler(stderr, hopts))
	}
	if len(handlers) == 1 {
		return slog.New(handlers[0]), closer, nil
	}
	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// OrDiscard returns l, or a logger that drops everything when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return discard
}

var discard = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
