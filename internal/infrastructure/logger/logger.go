package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
)

// SlogLogger adapts a slog.Logger to the printf style IAppLogger.
type SlogLogger struct {
	log *slog.Logger
}

var _ usecasecontract.IAppLogger = (*SlogLogger)(nil)

// NewSlogLogger builds a logger writing JSON in production and text elsewhere.
func NewSlogLogger(env, level string) *SlogLogger {
	return NewSlogLoggerTo(os.Stdout, env, level)
}

// NewSlogLoggerTo is NewSlogLogger with an explicit destination.
func NewSlogLoggerTo(w io.Writer, env, level string) *SlogLogger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(env, "production") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &SlogLogger{log: slog.New(handler).With(slog.String("service", "snapfeed"))}
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Slog exposes the underlying structured logger for HTTP middleware.
func (l *SlogLogger) Slog() *slog.Logger {
	return l.log
}

// Debugf logs a debug message.
func (l *SlogLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

// Infof logs an info message.
func (l *SlogLogger) Infof(format string, args ...interface{}) {
	l.log.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a warning message.
func (l *SlogLogger) Warnf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

// Warningf logs a warning message.
func (l *SlogLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs an error message.
func (l *SlogLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(format, args...))
}

// Fatalf logs a fatal message and exits.
func (l *SlogLogger) Fatalf(format string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(format, args...), slog.Bool("fatal", true))
	os.Exit(1)
}
