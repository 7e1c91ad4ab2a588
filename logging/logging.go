// Package logging builds the zap loggers threadkit components accept through their WithLogger options.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NewNoopLogger returns a logger that discards everything.
func NewNoopLogger() *zap.Logger {
	return zap.NewNop()
}

// NewLogger builds a production logger.
// format is "json" or "text"; level is one of debug, info, warn, error, panic, fatal or none.
func NewLogger(format, level string) (*zap.Logger, error) {
	if level == "none" {
		return NewNoopLogger(), nil
	}

	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zap.DebugLevel
	case "info":
		lvl = zap.InfoLevel
	case "warn":
		lvl = zap.WarnLevel
	case "error":
		lvl = zap.ErrorLevel
	case "panic":
		lvl = zap.PanicLevel
	case "fatal":
		lvl = zap.FatalLevel
	default:
		return nil, fmt.Errorf("unknown log level: %s", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.CallerKey = ""
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	switch format {
	case "json":
	case "text":
		cfg.Encoding = "console"
		cfg.DisableCaller = true
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}

	return cfg.Build()
}

// MustNewLogger is like NewLogger but panics on invalid arguments.
func MustNewLogger(format, level string) *zap.Logger {
	l, err := NewLogger(format, level)
	if err != nil {
		panic(err)
	}
	return l
}

// NewObserverLogger returns a logger that records entries in memory, for assertions in tests.
// An unparsable level falls back to debug.
func NewObserverLogger(level string) (*zap.Logger, *observer.ObservedLogs) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	core, logs := observer.New(lvl)
	return zap.New(core), logs
}
