package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(newLogger(os.Stderr, "info", "text"))
}

// Init replaces the global logger.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func Init(w io.Writer, level, format string) {
	l := newLogger(w, level, format)
	logger.Store(l)
	slog.SetDefault(l)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	} else {
		h = tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.TimeOnly,
			NoColor:    !isTerminal(w),
		})
	}
	return slog.New(h)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// L returns the global structured logger.
func L() *slog.Logger {
	return logger.Load()
}

func log(level slog.Level, msg string, args ...any) {
	L().Log(context.Background(), level, msg, args...)
}

// Info logs a message with key/value attributes
func Info(msg string, args ...any) { log(slog.LevelInfo, msg, args...) }

// Infof logs a formatted info message
func Infof(format string, v ...any) { log(slog.LevelInfo, fmt.Sprintf(format, v...)) }

func Warn(msg string, args ...any) { log(slog.LevelWarn, msg, args...) }

func Warnf(format string, v ...any) { log(slog.LevelWarn, fmt.Sprintf(format, v...)) }

func Error(msg string, args ...any) { log(slog.LevelError, msg, args...) }

func Errorf(format string, v ...any) { log(slog.LevelError, fmt.Sprintf(format, v...)) }

func Debug(msg string, args ...any) { log(slog.LevelDebug, msg, args...) }

func Debugf(format string, v ...any) { log(slog.LevelDebug, fmt.Sprintf(format, v...)) }

// Logger is a request-scoped logger that can be embedded in structs.
type Logger struct {
	attrs []any
}

// WithContext creates a Logger carrying the chi request id, if any.
func WithContext(ctx context.Context) Logger {
	if id := chimw.GetReqID(ctx); id != "" {
		return Logger{attrs: []any{"request_id", id}}
	}
	return Logger{}
}

// With returns a copy of l with extra attributes.
func (l Logger) With(args ...any) Logger {
	attrs := make([]any, 0, len(l.attrs)+len(args))
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, args...)
	return Logger{attrs: attrs}
}

func (l Logger) args(args []any) []any {
	if len(l.attrs) == 0 {
		return args
	}
	out := make([]any, 0, len(args)+len(l.attrs))
	return append(append(out, args...), l.attrs...)
}

func (l Logger) Debug(msg string, args ...any) {
	log(slog.LevelDebug, msg, l.args(args)...)
}

func (l Logger) Info(msg string, args ...any) {
	log(slog.LevelInfo, msg, l.args(args)...)
}

func (l Logger) Infof(format string, v ...any) {
	log(slog.LevelInfo, fmt.Sprintf(format, v...), l.attrs...)
}

func (l Logger) Warn(msg string, args ...any) {
	log(slog.LevelWarn, msg, l.args(args)...)
}

func (l Logger) Error(msg string, args ...any) {
	log(slog.LevelError, msg, l.args(args)...)
}

func (l Logger) Errorf(format string, v ...any) {
	log(slog.LevelError, fmt.Sprintf(format, v...), l.attrs...)
}
