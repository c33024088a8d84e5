package policy

import (
	"context"
	"log/slog"
	"slices"
	"time"

	bperrors "github.com/vnykmshr/brakepedal/pkg/common/errors"
	"github.com/vnykmshr/brakepedal/pkg/metrics"
	"github.com/vnykmshr/brakepedal/pkg/throttle"
)

// Policy evaluates a fixed set of limiters for a key against a repository.
// It is safe for concurrent use; all state lives in the repository.
type Policy struct {
	name     string
	limiters []throttle.Limiter
	repo     throttle.Repository
	logger   *slog.Logger
	registry *metrics.Registry
}

// New creates a Policy over repo.
func New(repo throttle.Repository, config Config) (*Policy, error) {
	if repo == nil {
		return nil, bperrors.NewValidationError("policy", "repository", nil, "cannot be nil").
			WithHint("use distributed.New or memory.New")
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config = applyConfigDefaults(config)

	if len(config.IdentityValues) > 0 {
		repo = repo.WithPolicyIdentityValues(config.IdentityValues...)
	}

	return &Policy{
		name:     config.Name,
		limiters: slices.Clone(config.Limiters),
		repo:     repo,
		logger:   config.Logger.With("policy", config.Name),
	}, nil
}

// NewWithMetrics creates a Policy that records check outcomes in Prometheus.
// The repository is instrumented too unless it already is.
func NewWithMetrics(repo throttle.Repository, config Config, metricsConfig metrics.Config) (*Policy, error) {
	registry := metrics.Resolve(metricsConfig)
	if registry != nil {
		if _, ok := repo.(*throttle.MetricsRepository); !ok && repo != nil {
			repo = throttle.InstrumentRepository(repo, backendName(repo), registry)
		}
	}

	p, err := New(repo, config)
	if err != nil {
		return nil, err
	}
	p.registry = registry
	return p, nil
}

// Name returns the policy name.
func (p *Policy) Name() string {
	return p.name
}

// Limiters returns a copy of the configured limiters.
func (p *Policy) Limiters() []throttle.Limiter {
	return slices.Clone(p.limiters)
}

// Repository returns the repository the policy evaluates against: the one
// passed to New, or its view under Config.IdentityValues.
func (p *Policy) Repository() throttle.Repository {
	return p.repo
}

// Check counts a request for key and reports the resulting state.
func (p *Policy) Check(ctx context.Context, key throttle.Key) (CheckResult, error) {
	return p.Evaluate(ctx, key, true)
}

// Inspect reports the state of key without consuming quota. It never
// installs a lock either: a limiter whose count is over the limit reads as
// Throttled, and the lock is left to the next Check. This matters when a
// lock has expired while its counter window is still over the limit.
func (p *Policy) Inspect(ctx context.Context, key throttle.Key) (CheckResult, error) {
	return p.Evaluate(ctx, key, false)
}

// IsThrottled is Check reduced to a boolean.
func (p *Policy) IsThrottled(ctx context.Context, key throttle.Key) (bool, CheckResult, error) {
	result, err := p.Check(ctx, key)
	return result.Throttled(), result, err
}

// IsLocked reports whether any limiter of key is locked. It does not count a
// request.
func (p *Policy) IsLocked(ctx context.Context, key throttle.Key) (bool, error) {
	for _, l := range p.limiters {
		if !l.HasLock() {
			continue
		}
		locked, err := p.repo.LockExists(ctx, key, l)
		if err != nil {
			p.storeFailure("LockExists", l, err)
			return false, err
		}
		if locked {
			return true, nil
		}
	}
	return false, nil
}

// Evaluate runs every limiter in order. With increment false the counters
// are only read and no lock is installed. A store failure stops evaluation;
// the results gathered so far are returned with the error.
//
// The repository renders a limiter's counter key on each call. For a
// one-second limiter a second boundary falling between the increment and
// the read makes the read hit the next, empty window, so that limiter
// reports Open and LimiterResult.ThrottleKey names the newer key.
func (p *Policy) Evaluate(ctx context.Context, key throttle.Key, increment bool) (CheckResult, error) {
	start := time.Now()
	result := CheckResult{Results: make([]LimiterResult, 0, len(p.limiters))}

	for _, l := range p.limiters {
		lr, err := p.evaluateLimiter(ctx, key, l, increment)
		if err != nil {
			p.observe(result, start, err)
			return result, err
		}
		result.Results = append(result.Results, lr)
	}

	p.observe(result, start, nil)
	return result, nil
}

func (p *Policy) evaluateLimiter(ctx context.Context, key throttle.Key, l throttle.Limiter, increment bool) (LimiterResult, error) {
	lr := LimiterResult{
		Limiter:     l,
		State:       Open,
		ThrottleKey: p.repo.CreateThrottleKey(key, l),
	}

	if l.HasLock() {
		lr.LockKey = p.repo.CreateLockKey(key, l)

		locked, err := p.repo.LockExists(ctx, key, l)
		if err != nil {
			p.storeFailure("LockExists", l, err)
			return lr, err
		}
		if locked {
			lr.State = Locked
			return lr, nil
		}
	}

	if increment {
		if err := p.repo.AddOrIncrementWithExpiration(ctx, key, l); err != nil {
			p.storeFailure("AddOrIncrementWithExpiration", l, err)
			return lr, err
		}
	}

	count, ok, err := p.repo.GetThrottleCount(ctx, key, l)
	if err != nil {
		p.storeFailure("GetThrottleCount", l, err)
		return lr, err
	}
	lr.Count, lr.CountKnown = count, ok

	if !ok || count <= l.Count() {
		return lr, nil
	}

	lr.State = Throttled
	if l.HasLock() && increment {
		if err := p.repo.SetLock(ctx, key, l); err != nil {
			p.storeFailure("SetLock", l, err)
			return lr, err
		}
		p.logger.Debug("lock engaged", "limiter", l.String(), "key", lr.LockKey)
		if p.registry != nil {
			p.registry.LocksEngaged.WithLabelValues(p.name, l.String()).Inc()
		}
	}
	return lr, nil
}

func (p *Policy) storeFailure(operation string, l throttle.Limiter, err error) {
	p.logger.Error("throttle store failure",
		"operation", operation,
		"limiter", l.String(),
		"error", err)
}

func (p *Policy) observe(result CheckResult, start time.Time, err error) {
	if p.registry == nil {
		return
	}

	outcome := result.State().String()
	if err != nil {
		outcome = "error"
	}
	p.registry.ChecksTotal.WithLabelValues(p.name, outcome).Inc()
	p.registry.CheckDuration.WithLabelValues(p.name).Observe(time.Since(start).Seconds())

	for _, lr := range result.Results {
		p.registry.LimiterOutcomes.WithLabelValues(p.name, lr.Limiter.String(), lr.State.String()).Inc()
	}
}

func newEmptyLimitersError() error {
	return bperrors.NewValidationError("policy", "limiters", 0, "must not be empty").
		WithHint("add at least one throttle.Limiter")
}

// backendLabeler is implemented by repositories that name their backend for
// metric labels.
type backendLabeler interface {
	Backend() string
}

func backendName(repo throttle.Repository) string {
	if b, ok := repo.(backendLabeler); ok {
		return b.Backend()
	}
	return "custom"
}
