package throttle

import (
	"context"
	"slices"
	"sync"
)

// Repository stores the counters and locks of the fixed-window protocol.
// Implementations must be safe for concurrent use and must produce the same
// observable results for the same sequence of calls.
type Repository interface {
	// PolicyIdentityValues returns the values prefixed to every key.
	PolicyIdentityValues() []any

	// SetPolicyIdentityValues replaces the values prefixed to every key.
	SetPolicyIdentityValues(values ...any)

	// WithPolicyIdentityValues returns a view of the same store whose keys
	// are prefixed with values. The receiver keeps its own identity.
	WithPolicyIdentityValues(values ...any) Repository

	// GetThrottleCount returns the current window's count. ok is false when
	// no live counter exists or the stored value is unreadable.
	GetThrottleCount(ctx context.Context, key Key, limiter Limiter) (count int64, ok bool, err error)

	// AddOrIncrementWithExpiration creates the counter at 1 expiring one
	// period from now, or increments a live counter without touching its
	// expiration.
	AddOrIncrementWithExpiration(ctx context.Context, key Key, limiter Limiter) error

	// SetLock installs a lock living for the limiter's lock duration.
	// Panics if the limiter has none.
	SetLock(ctx context.Context, key Key, limiter Limiter) error

	// LockExists reports whether a live lock exists. Panics if the limiter
	// has no lock duration.
	LockExists(ctx context.Context, key Key, limiter Limiter) (bool, error)

	// RemoveThrottle deletes the counter. Locks are unaffected.
	RemoveThrottle(ctx context.Context, key Key, limiter Limiter) error

	// CreateThrottleKey returns the canonical counter key.
	CreateThrottleKey(key Key, limiter Limiter) string

	// CreateLockKey returns the canonical lock key.
	CreateLockKey(key Key, limiter Limiter) string
}

// Namespace holds the policy identity values of a repository. Backends embed
// it to share one implementation of the identity accessors.
type Namespace struct {
	mu     sync.RWMutex
	values []any
}

// NewNamespace returns a Namespace initialised with values.
func NewNamespace(values ...any) *Namespace {
	return &Namespace{values: slices.Clone(values)}
}

// PolicyIdentityValues returns a copy of the identity values.
func (n *Namespace) PolicyIdentityValues() []any {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.values)
}

// SetPolicyIdentityValues replaces the identity values.
func (n *Namespace) SetPolicyIdentityValues(values ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.values = slices.Clone(values)
}

// ThrottleKey renders the counter key for key and limiter at now.
func (n *Namespace) ThrottleKey(key Key, limiter Limiter, clock Clock) string {
	return ThrottleKeyString(key, limiter, n.PolicyIdentityValues(), clock.Now())
}

// LockKey renders the lock key for key and limiter.
func (n *Namespace) LockKey(key Key, limiter Limiter) string {
	return LockKeyString(key, limiter, n.PolicyIdentityValues())
}
