package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger appends structured lines to <dir>/logs/contentdesk.log so failures in the TUI
// or the web server can be inspected after the fact. A nil *Logger discards everything.
type Logger struct {
	file *os.File
	log  *slog.Logger
}

// New creates (or reuses) the log file under dir.
func New(dir string, level string) (*Logger, error) {
	logDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, "contentdesk.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	l := NewWriter(f, level)
	l.file = f
	return l, nil
}

// NewWriter logs to w without owning it.
func NewWriter(w io.Writer, level string) *Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &Logger{log: slog.New(h)}
}

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

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// With returns a logger that adds attrs to every line.
func (l *Logger) With(args ...any) *Logger {
	if l == nil || l.log == nil {
		return l
	}
	return &Logger{log: l.log.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) {
	if l == nil || l.log == nil {
		return
	}
	l.log.Debug(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	if l == nil || l.log == nil {
		return
	}
	l.log.Info(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	if l == nil || l.log == nil {
		return
	}
	l.log.Warn(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	if l == nil || l.log == nil {
		return
	}
	l.log.Error(msg, args...)
}

// Printf writes a single info line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.log == nil {
		return
	}
	l.log.Info(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// Writer adapts l to an io.Writer for libraries that log through one (HTTP access
// logs). Each write becomes one info line.
func (l *Logger) Writer() io.Writer {
	return lineWriter{l: l}
}

type lineWriter struct {
	l *Logger
}

func (w lineWriter) Write(p []byte) (int, error) {
	if msg := strings.TrimSpace(string(p)); msg != "" {
		w.l.Info(msg)
	}
	return len(p), nil
}
