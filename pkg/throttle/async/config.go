package async

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/vnykmshr/brakepedal/pkg/common/validation"
	"github.com/vnykmshr/brakepedal/pkg/metrics"
)

// Config holds configuration options for a Dispatcher.
type Config struct {
	// Name labels the dispatcher in logs and metrics.
	Name string

	// Workers is the number of goroutines running operations.
	// Defaults to runtime.NumCPU().
	Workers int

	// QueueSize bounds the number of operations waiting for a worker.
	// Zero means submitters hand operations directly to an idle worker.
	QueueSize int

	// TaskTimeout bounds each operation. Zero means only the caller's
	// context applies.
	TaskTimeout time.Duration

	// Logger receives recovered panics. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics configures queue and worker gauges. Disabled by default.
	Metrics metrics.Config
}

// DefaultConfig returns a default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Name:      "throttle",
		Workers:   runtime.NumCPU(),
		QueueSize: 64,
		Logger:    slog.Default(),
	}
}

func validateConfig(config Config) error {
	if config.Workers < 0 {
		return validation.ValidatePositive("async", "workers", int64(config.Workers))
	}
	if config.QueueSize < 0 {
		return validation.ValidateNonNegative("async", "queueSize", int64(config.QueueSize))
	}
	return validation.ValidateNonNegativeDuration("async", "taskTimeout", config.TaskTimeout)
}

func applyConfigDefaults(config Config) Config {
	if config.Name == "" {
		config.Name = "throttle"
	}
	if config.Workers == 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return config
}
