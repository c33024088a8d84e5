package memory

import (
	"context"
	"fmt"
	"reflect"
	"time"

	bperrors "github.com/vnykmshr/brakepedal/pkg/common/errors"
	"github.com/vnykmshr/brakepedal/pkg/throttle"
)

// CounterRecord is the value stored under a counter key.
type CounterRecord struct {
	Count      int64
	Expiration time.Time
}

// Repository implements throttle.Repository on an in-process Cache. It
// honours ctx only to satisfy the interface; every call completes without
// blocking on I/O.
type Repository struct {
	*throttle.Namespace

	cache    *Cache
	ownCache bool
	clock    throttle.Clock
}

var _ throttle.Repository = (*Repository)(nil)

// New creates an in-process repository.
func New(config Config) (*Repository, error) {
	if config.Cache != nil && config.Clock != nil && !sameClock(config.Clock, config.Cache.clock) {
		return nil, bperrors.NewValidationError("memory", "clock", fmt.Sprintf("%T", config.Clock), "differs from the cache clock").
			WithHint("leave Clock unset when passing a Cache, or build the cache with the same clock")
	}

	cache := config.Cache
	owned := false
	if cache == nil {
		var err error
		cache, err = NewCache(CacheConfig{
			Clock:           config.Clock,
			JanitorInterval: config.JanitorInterval,
			Logger:          config.Logger,
			Metrics:         config.Metrics,
		})
		if err != nil {
			return nil, err
		}
		owned = true
	}

	// Record expirations and cache liveness read the same clock.
	return &Repository{
		Namespace: throttle.NewNamespace(config.IdentityValues...),
		cache:     cache,
		ownCache:  owned,
		clock:     cache.clock,
	}, nil
}

// WithPolicyIdentityValues returns a repository on the same cache and clock
// whose keys are prefixed with values. Closing the view leaves the cache
// running.
func (r *Repository) WithPolicyIdentityValues(values ...any) throttle.Repository {
	return &Repository{
		Namespace: throttle.NewNamespace(values...),
		cache:     r.cache,
		clock:     r.clock,
	}
}

// Cache returns the backing cache.
func (r *Repository) Cache() *Cache {
	return r.cache
}

// Close stops the janitor of a cache the repository created itself.
func (r *Repository) Close() {
	if r.ownCache {
		r.cache.Close()
	}
}

// CreateThrottleKey implements throttle.Repository.
func (r *Repository) CreateThrottleKey(key throttle.Key, limiter throttle.Limiter) string {
	return r.ThrottleKey(key, limiter, r.clock)
}

// CreateLockKey implements throttle.Repository.
func (r *Repository) CreateLockKey(key throttle.Key, limiter throttle.Limiter) string {
	return r.LockKey(key, limiter)
}

// GetThrottleCount returns the live counter's count.
func (r *Repository) GetThrottleCount(_ context.Context, key throttle.Key, limiter throttle.Limiter) (int64, bool, error) {
	v, ok := r.cache.Get(r.CreateThrottleKey(key, limiter))
	if !ok {
		return 0, false, nil
	}
	rec, ok := v.(CounterRecord)
	if !ok {
		return 0, false, nil
	}
	return rec.Count, true, nil
}

// AddOrIncrementWithExpiration creates the counter at 1 expiring one period
// from now, or increments the live counter keeping its expiration.
func (r *Repository) AddOrIncrementWithExpiration(_ context.Context, key throttle.Key, limiter throttle.Limiter) error {
	id := r.CreateThrottleKey(key, limiter)

	r.cache.Update(id, func(current any, found bool) (any, time.Time) {
		if rec, ok := current.(CounterRecord); found && ok {
			rec.Count++
			return rec, rec.Expiration
		}
		rec := CounterRecord{
			Count:      1,
			Expiration: r.clock.Now().Add(limiter.Period()),
		}
		return rec, rec.Expiration
	})
	return nil
}

// SetLock removes the counter and installs a lock expiring after the
// limiter's lock duration. The distributed repository keeps the counter;
// callers must not rely on either behaviour.
func (r *Repository) SetLock(_ context.Context, key throttle.Key, limiter throttle.Limiter) error {
	lock := limiter.MustLockDuration()

	r.cache.Remove(r.CreateThrottleKey(key, limiter))
	r.cache.Set(r.CreateLockKey(key, limiter), true, r.clock.Now().Add(lock))
	return nil
}

// LockExists reports whether a live lock is present.
func (r *Repository) LockExists(_ context.Context, key throttle.Key, limiter throttle.Limiter) (bool, error) {
	_, ok := r.cache.Get(r.CreateLockKey(key, limiter))
	return ok, nil
}

// RemoveThrottle deletes the counter.
func (r *Repository) RemoveThrottle(_ context.Context, key throttle.Key, limiter throttle.Limiter) error {
	r.cache.Remove(r.CreateThrottleKey(key, limiter))
	return nil
}

// Backend names the backend in metric labels.
func (r *Repository) Backend() string {
	return "memory"
}

// sameClock reports whether a and b are the same clock value. Clocks whose
// dynamic type cannot be compared, such as ClockFunc, are never the same.
func sameClock(a, b throttle.Clock) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
