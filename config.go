package threadkit

import (
	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/threadkit/metrics"
)

// config holds the execution settings shared by Spawn, Collector and the fan-out helpers.
type config struct {
	// MaxWorkers caps the number of tasks executing at the same time.
	// Zero (default) selects a dynamic pool with no cap.
	MaxWorkers uint

	// Logger receives progress notifications and task failures.
	// Default: no-op logger.
	Logger *zap.Logger

	// Metrics constructs the task instruments.
	// Default: no-op provider.
	Metrics metrics.Provider

	// Progress is invoked by digit-sum tasks right before they return.
	// Default: nil (disabled).
	Progress func(Progress)
}

func defaultConfig() config {
	return config{
		MaxWorkers: 0, // dynamic pool
		Logger:     zap.NewNop(),
		Metrics:    metrics.NewNoopProvider(),
		Progress:   nil,
	}
}

// newConfig applies opts on top of the defaults. Nil options are skipped.
func newConfig(opts ...Option) (*config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Option configures task execution.
type Option func(*config) error

// WithFixedPool bounds the number of concurrently executing tasks to n (must be > 0).
// Spawn never blocks on the bound: a task waits for a free worker inside its own goroutine.
func WithFixedPool(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithFixedPool requires n > 0"))
		}
		cfg.MaxWorkers = n
		return nil
	}
}

// WithDynamicPool removes any cap on concurrently executing tasks (the default).
func WithDynamicPool() Option {
	return func(cfg *config) error { cfg.MaxWorkers = 0; return nil }
}

// WithLogger sets the logger used for progress notifications and failures.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil logger"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics sets the metrics provider for task instruments.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}

// WithProgress registers fn to observe per-chunk progress. fn may be called from many
// goroutines at once and must be safe for concurrent use.
func WithProgress(fn func(Progress)) Option {
	return func(cfg *config) error { cfg.Progress = fn; return nil }
}
