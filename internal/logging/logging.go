// Package logging sets up the structured logger.
//
// The TUI owns the terminal, so logs go to a JSON file named
// {service}_{date}.log under the log directory. Stderr output is only used
// when Stderr is set (the non-interactive commands). When the log file
// cannot be opened, records go to Fallback instead.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ParseLevel maps debug, info, warn and error to slog levels
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Config controls where and what gets logged
type Config struct {
	Level   slog.Level
	Dir     string
	Service string
	Stderr  bool
	// Fallback receives records when no log file could be opened. Nil means
	// stderr; interactive programs pass io.Discard.
	Fallback io.Writer
}

// Logger is a slog.Logger that owns its log file
type Logger struct {
	*slog.Logger

	mu   sync.Mutex
	file *os.File
	path string
}

// New builds the logger. A log directory that cannot be created falls back
// to cfg.Fallback rather than failing startup.
func New(cfg Config) *Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	l := &Logger{}

	var handlers []slog.Handler
	if cfg.Stderr {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
	}

	if cfg.Dir != "" {
		service := cfg.Service
		if service == "" {
			service = "todo"
		}
		if err := os.MkdirAll(cfg.Dir, 0750); err == nil {
			path := filepath.Join(cfg.Dir, fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02")))
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640); err == nil {
				l.file = f
				l.path = path
				handlers = append(handlers, slog.NewJSONHandler(f, opts))
			}
		}
	}

	var h slog.Handler
	switch len(handlers) {
	case 0:
		w := cfg.Fallback
		if w == nil {
			w = os.Stderr
		}
		h = slog.NewTextHandler(w, opts)
	case 1:
		h = handlers[0]
	default:
		h = &fanout{handlers: handlers}
	}
	if cfg.Service != "" {
		h = h.WithAttrs([]slog.Attr{slog.String("service", cfg.Service)})
	}

	l.Logger = slog.New(h)
	return l
}

// Path returns the log file path, or "" when logging to stderr only
func (l *Logger) Path() string {
	return l.path
}

// Close syncs and closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync log file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

// fanout sends every record to each handler
type fanout struct {
	handlers []slog.Handler
}

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanout{handlers: next}
}

func (f *fanout) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanout{handlers: next}
}
