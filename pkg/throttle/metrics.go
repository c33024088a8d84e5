package throttle

import (
	"context"
	"time"

	"github.com/vnykmshr/brakepedal/pkg/metrics"
)

// MetricsRepository wraps a Repository with Prometheus metrics collection.
type MetricsRepository struct {
	Repository
	backend  string
	registry *metrics.Registry
}

// NewRepositoryWithMetrics instruments repo. backend labels the series
// ("redis", "memory", ...). When metrics are disabled repo is returned as is.
func NewRepositoryWithMetrics(repo Repository, backend string, config metrics.Config) Repository {
	return InstrumentRepository(repo, backend, metrics.Resolve(config))
}

// InstrumentRepository wraps repo with an already resolved registry. A nil
// registry returns repo unchanged.
func InstrumentRepository(repo Repository, backend string, registry *metrics.Registry) Repository {
	if registry == nil {
		return repo
	}
	return &MetricsRepository{
		Repository: repo,
		backend:    backend,
		registry:   registry,
	}
}

// WithPolicyIdentityValues returns an instrumented view of the wrapped
// repository under values.
func (mr *MetricsRepository) WithPolicyIdentityValues(values ...any) Repository {
	return &MetricsRepository{
		Repository: mr.Repository.WithPolicyIdentityValues(values...),
		backend:    mr.backend,
		registry:   mr.registry,
	}
}

func (mr *MetricsRepository) observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	mr.registry.StoreOperations.WithLabelValues(mr.backend, operation, status).Inc()
	mr.registry.StoreDuration.WithLabelValues(mr.backend, operation).Observe(time.Since(start).Seconds())
}

// GetThrottleCount implements Repository.
func (mr *MetricsRepository) GetThrottleCount(ctx context.Context, key Key, limiter Limiter) (int64, bool, error) {
	start := time.Now()
	count, ok, err := mr.Repository.GetThrottleCount(ctx, key, limiter)
	mr.observe("GetThrottleCount", start, err)
	return count, ok, err
}

// AddOrIncrementWithExpiration implements Repository.
func (mr *MetricsRepository) AddOrIncrementWithExpiration(ctx context.Context, key Key, limiter Limiter) error {
	start := time.Now()
	err := mr.Repository.AddOrIncrementWithExpiration(ctx, key, limiter)
	mr.observe("AddOrIncrementWithExpiration", start, err)
	return err
}

// SetLock implements Repository.
func (mr *MetricsRepository) SetLock(ctx context.Context, key Key, limiter Limiter) error {
	start := time.Now()
	err := mr.Repository.SetLock(ctx, key, limiter)
	mr.observe("SetLock", start, err)
	return err
}

// LockExists implements Repository.
func (mr *MetricsRepository) LockExists(ctx context.Context, key Key, limiter Limiter) (bool, error) {
	start := time.Now()
	exists, err := mr.Repository.LockExists(ctx, key, limiter)
	mr.observe("LockExists", start, err)
	return exists, err
}

// RemoveThrottle implements Repository.
func (mr *MetricsRepository) RemoveThrottle(ctx context.Context, key Key, limiter Limiter) error {
	start := time.Now()
	err := mr.Repository.RemoveThrottle(ctx, key, limiter)
	mr.observe("RemoveThrottle", start, err)
	return err
}
