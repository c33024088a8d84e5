package distributed

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	bperrors "github.com/vnykmshr/brakepedal/pkg/common/errors"
	"github.com/vnykmshr/brakepedal/pkg/throttle"
)

// Repository implements throttle.Repository on Redis. Counters are plain
// string integers maintained with INCR; locks are INCR+EXPIRE inside a
// MULTI/EXEC transaction.
type Repository struct {
	*throttle.Namespace

	rdb    redis.UniversalClient
	clock  throttle.Clock
	config Config
}

var _ throttle.Repository = (*Repository)(nil)

// New creates a Redis-backed repository.
func New(config Config) (*Repository, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config = applyConfigDefaults(config)

	return &Repository{
		Namespace: throttle.NewNamespace(config.IdentityValues...),
		rdb:       config.Redis,
		clock:     config.Clock,
		config:    config,
	}, nil
}

// WithPolicyIdentityValues returns a repository on the same client and clock
// whose keys are prefixed with values.
func (r *Repository) WithPolicyIdentityValues(values ...any) throttle.Repository {
	config := r.config
	config.IdentityValues = values
	return &Repository{
		Namespace: throttle.NewNamespace(values...),
		rdb:       r.rdb,
		clock:     r.clock,
		config:    config,
	}
}

// withTimeout applies the configured per-call timeout.
func (r *Repository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.config.Timeout > 0 {
		return context.WithTimeout(ctx, r.config.Timeout)
	}
	return ctx, func() {}
}

func opError(operation, key string, err error) error {
	return bperrors.NewOperationError("distributed", operation, err).WithContext(key)
}

// CreateThrottleKey implements throttle.Repository.
func (r *Repository) CreateThrottleKey(key throttle.Key, limiter throttle.Limiter) string {
	return r.ThrottleKey(key, limiter, r.clock)
}

// CreateLockKey implements throttle.Repository.
func (r *Repository) CreateLockKey(key throttle.Key, limiter throttle.Limiter) string {
	return r.LockKey(key, limiter)
}

// GetThrottleCount reads the counter. A missing key or a value that does not
// parse as an integer is reported as absent.
func (r *Repository) GetThrottleCount(ctx context.Context, key throttle.Key, limiter throttle.Limiter) (int64, bool, error) {
	id := r.CreateThrottleKey(key, limiter)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	value, err := r.rdb.Get(ctx, id).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, opError("GetThrottleCount", id, err)
	}

	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return count, true, nil
}

// AddOrIncrementWithExpiration increments the counter and, when the
// increment created it, sets its TTL to the limiter's period.
func (r *Repository) AddOrIncrementWithExpiration(ctx context.Context, key throttle.Key, limiter throttle.Limiter) error {
	id := r.CreateThrottleKey(key, limiter)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.rdb.Incr(ctx, id).Result()
	if err != nil {
		return opError("AddOrIncrementWithExpiration", id, err)
	}

	// 1 means a new key, or one that expired just before the INCR. Either
	// way a window starts now. Any other value is a live window whose TTL
	// must stay put.
	if n == 1 {
		if err := r.rdb.Expire(ctx, id, limiter.Period()).Err(); err != nil {
			return opError("AddOrIncrementWithExpiration", id, err)
		}
	}
	return nil
}

// SetLock installs the lock key with a TTL of the limiter's lock duration.
// The counter is left untouched.
func (r *Repository) SetLock(ctx context.Context, key throttle.Key, limiter throttle.Limiter) error {
	lock := limiter.MustLockDuration()
	id := r.CreateLockKey(key, limiter)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, id)
		pipe.Expire(ctx, id, lock)
		return nil
	})
	if err != nil {
		return opError("SetLock", id, err)
	}
	return nil
}

// LockExists reports whether the lock key is present.
func (r *Repository) LockExists(ctx context.Context, key throttle.Key, limiter throttle.Limiter) (bool, error) {
	id := r.CreateLockKey(key, limiter)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	n, err := r.rdb.Exists(ctx, id).Result()
	if err != nil {
		return false, opError("LockExists", id, err)
	}
	return n > 0, nil
}

// RemoveThrottle deletes the counter key.
func (r *Repository) RemoveThrottle(ctx context.Context, key throttle.Key, limiter throttle.Limiter) error {
	id := r.CreateThrottleKey(key, limiter)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.rdb.Del(ctx, id).Err(); err != nil {
		return opError("RemoveThrottle", id, err)
	}
	return nil
}

// Ping checks connectivity to Redis.
func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.rdb.Ping(ctx).Err(); err != nil {
		return bperrors.NewOperationError("distributed", "Ping", err)
	}
	return nil
}

// Backend names the backend in metric labels.
func (r *Repository) Backend() string {
	return "redis"
}
