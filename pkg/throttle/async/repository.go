package async

import (
	"context"

	"github.com/vnykmshr/brakepedal/pkg/throttle"
)

// Count is the result of GetThrottleCountAsync. OK is false when no live
// counter exists.
type Count struct {
	Value int64
	OK    bool
}

// Repository adds asynchronous forms to a throttle.Repository. The
// asynchronous forms call the blocking ones on a Dispatcher worker, so both
// observe the same store.
type Repository struct {
	throttle.Repository
	dispatcher *Dispatcher
}

// NewRepository wraps repo so its operations can run on d.
func NewRepository(repo throttle.Repository, d *Dispatcher) *Repository {
	return &Repository{Repository: repo, dispatcher: d}
}

// GetThrottleCountAsync is the asynchronous form of GetThrottleCount.
func (r *Repository) GetThrottleCountAsync(ctx context.Context, key throttle.Key, limiter throttle.Limiter) *Future[Count] {
	return Go(ctx, r.dispatcher, func(ctx context.Context) (Count, error) {
		n, ok, err := r.GetThrottleCount(ctx, key, limiter)
		return Count{Value: n, OK: ok}, err
	})
}

// AddOrIncrementWithExpirationAsync is the asynchronous form of
// AddOrIncrementWithExpiration.
func (r *Repository) AddOrIncrementWithExpirationAsync(ctx context.Context, key throttle.Key, limiter throttle.Limiter) *Future[struct{}] {
	return Go(ctx, r.dispatcher, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.AddOrIncrementWithExpiration(ctx, key, limiter)
	})
}

// SetLockAsync is the asynchronous form of SetLock. A limiter without a lock
// duration panics in the caller, as the blocking form does.
func (r *Repository) SetLockAsync(ctx context.Context, key throttle.Key, limiter throttle.Limiter) *Future[struct{}] {
	limiter.MustLockDuration()
	return Go(ctx, r.dispatcher, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.SetLock(ctx, key, limiter)
	})
}

// LockExistsAsync is the asynchronous form of LockExists. A limiter without
// a lock duration panics in the caller.
func (r *Repository) LockExistsAsync(ctx context.Context, key throttle.Key, limiter throttle.Limiter) *Future[bool] {
	limiter.MustLockDuration()
	return Go(ctx, r.dispatcher, func(ctx context.Context) (bool, error) {
		return r.LockExists(ctx, key, limiter)
	})
}

// RemoveThrottleAsync is the asynchronous form of RemoveThrottle.
func (r *Repository) RemoveThrottleAsync(ctx context.Context, key throttle.Key, limiter throttle.Limiter) *Future[struct{}] {
	return Go(ctx, r.dispatcher, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.RemoveThrottle(ctx, key, limiter)
	})
}

// CreateThrottleKeyAsync is the asynchronous form of CreateThrottleKey. The
// key is rendered on the worker, so one-second windows use the worker's
// "now".
func (r *Repository) CreateThrottleKeyAsync(ctx context.Context, key throttle.Key, limiter throttle.Limiter) *Future[string] {
	return Go(ctx, r.dispatcher, func(context.Context) (string, error) {
		return r.CreateThrottleKey(key, limiter), nil
	})
}

// CreateLockKeyAsync is the asynchronous form of CreateLockKey. A limiter
// without a lock duration panics in the caller.
func (r *Repository) CreateLockKeyAsync(ctx context.Context, key throttle.Key, limiter throttle.Limiter) *Future[string] {
	limiter.MustLockDuration()
	return Go(ctx, r.dispatcher, func(context.Context) (string, error) {
		return r.CreateLockKey(key, limiter), nil
	})
}
