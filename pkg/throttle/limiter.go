package throttle

import (
	"fmt"
	"time"

	bperrors "github.com/vnykmshr/brakepedal/pkg/common/errors"
	"github.com/vnykmshr/brakepedal/pkg/common/validation"
)

// Limiter is one rate-limit rule: at most Count requests per Period, with an
// optional lock that keeps the key blocked for LockDuration once the count
// is exceeded.
//
// A Limiter is a value. Builder methods return a modified copy, so a limiter
// shared between policies can never change underneath them:
//
//	login := throttle.Limiter{}.Limit(5).PerMinute().LockFor(15 * time.Minute)
type Limiter struct {
	count        int64
	period       time.Duration
	lockDuration time.Duration
	hasLock      bool
}

// NewLimiter returns a limiter allowing count requests per period.
func NewLimiter(count int64, period time.Duration) Limiter {
	return Limiter{count: count, period: period}
}

// Limit sets the number of requests allowed per period.
func (l Limiter) Limit(count int64) Limiter {
	l.count = count
	return l
}

// Over sets the window length.
func (l Limiter) Over(period time.Duration) Limiter {
	l.period = period
	return l
}

// PerSecond is Over(time.Second). One-second windows are keyed by the
// current Unix second.
func (l Limiter) PerSecond() Limiter { return l.Over(time.Second) }

// PerMinute is Over(time.Minute).
func (l Limiter) PerMinute() Limiter { return l.Over(time.Minute) }

// PerHour is Over(time.Hour).
func (l Limiter) PerHour() Limiter { return l.Over(time.Hour) }

// PerDay is Over(24 * time.Hour).
func (l Limiter) PerDay() Limiter { return l.Over(24 * time.Hour) }

// LockFor makes the limiter install a lock of duration d when exceeded.
func (l Limiter) LockFor(d time.Duration) Limiter {
	l.lockDuration = d
	l.hasLock = true
	return l
}

// Count returns the number of requests allowed per period.
func (l Limiter) Count() int64 { return l.count }

// Period returns the window length.
func (l Limiter) Period() time.Duration { return l.period }

// LockDuration returns the lock duration and whether one is configured.
func (l Limiter) LockDuration() (time.Duration, bool) {
	return l.lockDuration, l.hasLock
}

// HasLock reports whether LockFor was applied.
func (l Limiter) HasLock() bool { return l.hasLock }

// String renders the limiter compactly, e.g. "5/1m" or "5/1m/lock15m".
func (l Limiter) String() string {
	s := fmt.Sprintf("%d/%s", l.count, FriendlyDuration(l.period))
	if l.hasLock {
		s += "/lock" + FriendlyDuration(l.lockDuration)
	}
	return s
}

// Validate checks the limiter for values the key format cannot represent.
func (l Limiter) Validate() error {
	if err := validation.ValidatePositive("throttle", "count", l.count); err != nil {
		return err
	}
	if err := validation.ValidateMinDuration("throttle", "period", l.period, time.Second); err != nil {
		return err
	}
	if l.hasLock {
		if err := validation.ValidateMinDuration("throttle", "lockDuration", l.lockDuration, time.Second); err != nil {
			return err
		}
	}
	return nil
}

// MustLockDuration returns the lock duration or panics with a
// ValidationError wrapping ErrNoLockDuration: locking a limiter built
// without LockFor is a programming error.
func (l Limiter) MustLockDuration() time.Duration {
	if !l.hasLock {
		panic(bperrors.NewValidationError("throttle", "lockDuration", l.String(), "limiter has no lock duration").
			WithSentinel(bperrors.ErrNoLockDuration).
			WithHint("build the limiter with LockFor before using lock operations"))
	}
	return l.lockDuration
}
