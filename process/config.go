package process

import (
	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/threadkit/metrics"
)

const (
	metricSpawned  = "process_spawned_total"
	metricFailed   = "process_failed_total"
	metricDuration = "process_duration_seconds"
)

type config struct {
	// Logger receives spawn, exit and failure events. Default: no-op logger.
	Logger *zap.Logger
	// Metrics constructs the process instruments. Default: no-op provider.
	Metrics metrics.Provider
}

func defaultConfig() config {
	return config{
		Logger:  zap.NewNop(),
		Metrics: metrics.NewNoopProvider(),
	}
}

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

// Option configures process execution.
type Option func(*config) error

// WithLogger sets the logger for process events.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil logger"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics sets the metrics provider for process instruments.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}
