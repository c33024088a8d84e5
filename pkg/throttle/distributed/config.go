package distributed

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/brakepedal/pkg/common/validation"
	"github.com/vnykmshr/brakepedal/pkg/throttle"
)

// Config holds configuration for the Redis repository.
type Config struct {
	// Redis client shared by every process enforcing the same limits.
	// Required; a nil client, typed or not, is rejected by New.
	Redis redis.UniversalClient

	// Clock supplies the Unix second embedded in one-second window keys.
	// Defaults to throttle.SystemClock.
	Clock throttle.Clock

	// Timeout bounds each Redis round trip. Zero leaves timeouts to the client.
	Timeout time.Duration

	// IdentityValues are prefixed to every key this repository produces.
	IdentityValues []any
}

// DefaultConfig returns a default configuration. Redis must still be set.
func DefaultConfig() Config {
	return Config{
		Clock: throttle.SystemClock{},
	}
}

// validateConfig validates the repository configuration.
func validateConfig(config Config) error {
	if err := validation.ValidateNotNil("distributed", "redis", config.Redis); err != nil {
		return err
	}
	return validation.ValidateNonNegativeDuration("distributed", "timeout", config.Timeout)
}

// applyConfigDefaults sets default values for unspecified config fields.
func applyConfigDefaults(config Config) Config {
	if config.Clock == nil {
		config.Clock = throttle.SystemClock{}
	}
	return config
}
