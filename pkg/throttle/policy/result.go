package policy

import (
	bperrors "github.com/vnykmshr/brakepedal/pkg/common/errors"
	"github.com/vnykmshr/brakepedal/pkg/throttle"
)

// LimiterResult is the outcome of one limiter within a check.
type LimiterResult struct {
	Limiter throttle.Limiter
	State   State

	// Count is the window's count after the increment. CountKnown is false
	// when the limiter was locked (the counter is not read) or no live
	// counter exists.
	Count      int64
	CountKnown bool

	ThrottleKey string
	// LockKey is empty for limiters without a lock.
	LockKey string
}

// CheckResult aggregates the per-limiter outcomes of a check in
// configuration order.
type CheckResult struct {
	Results []LimiterResult
}

// Throttled reports whether any limiter is Throttled or Locked.
func (r CheckResult) Throttled() bool {
	for _, lr := range r.Results {
		if lr.State.Blocking() {
			return true
		}
	}
	return false
}

// Locked reports whether any limiter is Locked.
func (r CheckResult) Locked() bool {
	for _, lr := range r.Results {
		if lr.State == Locked {
			return true
		}
	}
	return false
}

// State returns the most severe state: Locked, then Throttled, then Open.
func (r CheckResult) State() State {
	state := Open
	for _, lr := range r.Results {
		if lr.State > state {
			state = lr.State
		}
	}
	return state
}

// FirstBlocking returns the first Throttled or Locked limiter result.
func (r CheckResult) FirstBlocking() (LimiterResult, bool) {
	for _, lr := range r.Results {
		if lr.State.Blocking() {
			return lr, true
		}
	}
	return LimiterResult{}, false
}

// Err returns ErrLocked or ErrThrottled matching State, or nil when open.
func (r CheckResult) Err() error {
	switch r.State() {
	case Locked:
		return bperrors.ErrLocked
	case Throttled:
		return bperrors.ErrThrottled
	default:
		return nil
	}
}
