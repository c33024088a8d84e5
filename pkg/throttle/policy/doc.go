// Package policy evaluates a set of limiters for a key and decides whether
// the request is open, throttled or locked.
//
// A check walks the limiters in configuration order. A limiter with a live
// lock is Locked and its counter is left alone. Otherwise the counter is
// incremented and read; a count above the limit is Throttled and, for a
// limiter built with LockFor, installs a lock so the following checks see
// Locked until it expires.
//
//	p, err := policy.New(repo, policy.Config{
//		Name: "login",
//		Limiters: []throttle.Limiter{
//			throttle.Limiter{}.Limit(5).PerMinute().LockFor(15 * time.Minute),
//			throttle.Limiter{}.Limit(100).PerDay(),
//		},
//	})
//
//	result, err := p.Check(ctx, throttle.NewKey("user", userID))
//	if err != nil {
//		// store unavailable
//	}
//	if result.Throttled() {
//		// deny
//	}
//
// Every limiter is evaluated, so all counters advance even when an earlier
// limiter already blocks. Inspect performs the same walk without
// incrementing or locking.
package policy
