// Package logger implements port.Logger on top of log/slog, with a
// colorized handler for terminal output and a JSON handler for file or
// non-TTY output.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/relaywarp/relaywarp/internal/domain/port"
)

// Format selects the slog.Handler backing a Logger.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Logger is an implementation of port.Logger backed by log/slog.
type Logger struct {
	slog   *slog.Logger
	level  *slog.LevelVar
	closer io.Closer
}

// New creates a Logger writing to w. FormatJSON selects
// slog.NewJSONHandler; anything else falls back to the colorized handler.
func New(w io.Writer, level string, format Format) *Logger {
	lv := new(slog.LevelVar)
	lv.Set(parseLevel(level))

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})
	} else {
		handler = &colorHandler{out: w, level: lv}
	}

	l := &Logger{slog: slog.New(handler), level: lv}
	if c, ok := w.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// NewFile opens path for appending and returns a Logger writing to it.
func NewFile(path string, level string, format Format) (*Logger, error) {
	if dir := dirOf(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logger: create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return New(f, level, format), nil
}

func dirOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return ""
	}
	return path[:idx]
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// SetLevel changes the logging level.
func (l *Logger) SetLevel(level string) {
	l.level.Set(parseLevel(level))
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(slog.LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(slog.LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(slog.LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(slog.LevelError, format, args...) }

func (l *Logger) log(level slog.Level, format string, args ...interface{}) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.slog.Log(context.Background(), level, msg)
}

// Close closes the writer if it implements io.Closer.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// colorHandler colorizes the level tag with fatih/color and writes one
// line per record.
type colorHandler struct {
	mu    sync.Mutex
	out   io.Writer
	level *slog.LevelVar
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05.000") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})
	buf.WriteString("\n")

	_, err := io.WriteString(h.out, buf.String())
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *colorHandler) WithGroup(name string) slog.Handler       { return h }

var _ port.Logger = (*Logger)(nil)
