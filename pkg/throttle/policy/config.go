package policy

import (
	"log/slog"

	"github.com/vnykmshr/brakepedal/pkg/throttle"
)

// Config holds configuration for a Policy.
type Config struct {
	// Name labels the policy in logs and metrics.
	Name string

	// Limiters are evaluated in order on every check. At least one is
	// required.
	Limiters []throttle.Limiter

	// IdentityValues, when non-empty, prefix every key of this policy. The
	// policy evaluates against its own view of the repository, so policies
	// sharing one repository never share counters.
	IdentityValues []any

	// Logger receives store failures and lock engagements. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a default policy configuration with no limiters.
func DefaultConfig() Config {
	return Config{
		Name:   "default",
		Logger: slog.Default(),
	}
}

func validateConfig(config Config) error {
	if len(config.Limiters) == 0 {
		return newEmptyLimitersError()
	}
	for _, l := range config.Limiters {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func applyConfigDefaults(config Config) Config {
	if config.Name == "" {
		config.Name = "default"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return config
}
