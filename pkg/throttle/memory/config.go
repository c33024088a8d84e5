package memory

import (
	"log/slog"
	"time"

	"github.com/vnykmshr/brakepedal/pkg/metrics"
	"github.com/vnykmshr/brakepedal/pkg/throttle"
)

// Config holds configuration for the in-process repository.
type Config struct {
	// Cache to store counters and locks in. If nil the repository creates
	// and owns one built from the fields below.
	Cache *Cache

	// Clock is the single time source for expirations and one-second keys.
	// It builds an owned cache. With a supplied Cache the cache's clock is
	// used, and a different Clock is rejected. Defaults to
	// throttle.SystemClock.
	Clock throttle.Clock

	// JanitorInterval is passed to an owned cache (see CacheConfig).
	JanitorInterval time.Duration

	// IdentityValues are prefixed to every key this repository produces.
	IdentityValues []any

	// Logger is passed to an owned cache.
	Logger *slog.Logger

	// Metrics is passed to an owned cache.
	Metrics metrics.Config
}

// DefaultConfig returns a default in-process repository configuration.
func DefaultConfig() Config {
	return Config{
		Clock:           throttle.SystemClock{},
		JanitorInterval: time.Minute,
	}
}
