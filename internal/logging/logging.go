// Package logging provides structured logging functionality.
package logging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "reentry-engine", "logs", "engine.log"),
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					switch ll {
					case "debug":
						return "\033[36mDBG\033[0m"
					case "info":
						return "\033[32mINF\033[0m"
					case "warn":
						return "\033[33mWRN\033[0m"
					case "error":
						return "\033[31mERR\033[0m"
					default:
						return ll
					}
				}
				return "???"
			},
		}
		writers = append(writers, consoleWriter)
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	if len(writers) == 0 {
		writer = os.Stdout
	} else if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// ContextKey is the type for context keys.
type ContextKey string

const (
	// LoggerKey is the context key for the logger.
	LoggerKey ContextKey = "logger"
	// SymbolKey is the context key for symbol.
	SymbolKey ContextKey = "symbol"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// WithSymbol adds a symbol to the logger context.
func WithSymbol(logger zerolog.Logger, symbol string) zerolog.Logger {
	return logger.With().Str("symbol", symbol).Logger()
}

// WithChain adds a chain ID to the logger context.
func WithChain(logger zerolog.Logger, chainID string) zerolog.Logger {
	return logger.With().Str("chain_id", chainID).Logger()
}

// LogDecision logs an emitted reentry decision.
func LogDecision(logger zerolog.Logger, symbol, key, verdict, action string, latency time.Duration) {
	logger.Info().
		Str("event", "decision").
		Str("symbol", symbol).
		Str("combination_key", key).
		Str("verdict", verdict).
		Str("action", action).
		Dur("latency", latency).
		Msg("Decision emitted")
}

// LogRejection logs a validation rejection.
func LogRejection(logger zerolog.Logger, symbol, key, reason string) {
	logger.Warn().
		Str("event", "rejection").
		Str("symbol", symbol).
		Str("combination_key", key).
		Str("reason", reason).
		Msg("Decision rejected")
}

// LogOverflow logs a generation overflow attempt. Overflow is a contract
// breach in the caller's chain bookkeeping, so it logs at error level.
func LogOverflow(logger zerolog.Logger, chainID string, generation int) {
	logger.Error().
		Str("event", "generation_overflow").
		Str("chain_id", chainID).
		Int("generation", generation).
		Msg("Generation overflow attempt")
}

// LogMatrixReload logs an administrative matrix snapshot swap.
func LogMatrixReload(logger zerolog.Logger, symbols, cells int) {
	logger.Info().
		Str("event", "matrix_reload").
		Int("symbols", symbols).
		Int("cells", cells).
		Msg("Matrix snapshot published")
}

// LogLatencyBreach logs a resolution that exceeded the latency budget.
// Not an error; the decision is still returned.
func LogLatencyBreach(logger zerolog.Logger, symbol, key string, latency, budget time.Duration) {
	logger.Warn().
		Str("event", "latency_breach").
		Str("symbol", symbol).
		Str("combination_key", key).
		Dur("latency", latency).
		Dur("budget", budget).
		Msg("Resolution exceeded latency budget")
}
