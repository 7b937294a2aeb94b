package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

var log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Init configures the package logger for the given environment.
// Development gets a human readable text handler with debug output,
// every other environment logs JSON at info level.
func Init(environment string) {
	env := strings.ToLower(strings.TrimSpace(environment))

	var handler slog.Handler
	switch env {
	case "development", "dev", "local", "test":
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	log = slog.New(handler).With("env", env)
	slog.SetDefault(log)
}

// Get returns the underlying slog logger.
func Get() *slog.Logger {
	return log
}

func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

// ErrorContext logs with the request context so handlers can attach trace data.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	log.ErrorContext(ctx, msg, args...)
}

// Fatal logs at error level and exits the process.
func Fatal(msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}
