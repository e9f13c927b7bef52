package monitoring

import (
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level string // Minimum log level: debug, info, warn, error
	JSON  bool   // Raw JSON output (Loki-compatible); console writer otherwise
}

// NewLogger creates the structured root logger. Components derive their
// own loggers from it via logger.With().Str("component", ...).
//
// Example:
//
//	logger := NewLogger(LoggerConfig{Level: "info"})
//	logger.Info().
//	    Str("component", "engine").
//	    Int("candidates", 3).
//	    Msg("Scan complete")
func NewLogger(config LoggerConfig) zerolog.Logger {
	var output io.Writer = os.Stdout

	var level zerolog.Level
	switch strings.ToLower(config.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !config.JSON {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Str("service", "alpha-radar").
		Logger()

	return logger
}

// RecoverPanic is a helper for goroutine panic recovery that logs but
// doesn't exit. Use in the defer block of every long-lived goroutine so a
// panic in one loop cannot take the whole process down.
//
// Example:
//
//	go func() {
//	    defer monitoring.RecoverPanic(logger, "trending_loop")
//	    // ... loop ...
//	}()
func RecoverPanic(logger zerolog.Logger, goroutineName string) {
	if r := recover(); r != nil {
		logger.Error().
			Str("goroutine", goroutineName).
			Interface("panic_value", r).
			Str("stack_trace", string(debug.Stack())).
			Msg("Goroutine panic recovered")
	}
}
