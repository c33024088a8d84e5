/*
Package brakepedal provides fixed-window request throttling with optional
lockouts, backed by Redis or an in-process cache.

Throttling (pkg/throttle):
  - throttle: limiters, keys, canonical key format, Repository contract
  - distributed: Redis repository shared by every application instance
  - memory: in-process repository with an injectable clock
  - policy: evaluates a set of limiters and reports Open, Throttled or Locked
  - async: dispatcher and futures for the asynchronous forms

Supporting packages:
  - metrics: Prometheus collectors for policies, repositories and dispatchers
  - common/errors: sentinel errors, ValidationError and OperationError
  - common/validation: configuration checks

Example usage:

	import (
		"github.com/vnykmshr/brakepedal/pkg/throttle"
		"github.com/vnykmshr/brakepedal/pkg/throttle/distributed"
		"github.com/vnykmshr/brakepedal/pkg/throttle/policy"
	)

	repo, _ := distributed.New(distributed.Config{Redis: rdb})
	login, _ := policy.New(repo, policy.Config{
		Name: "login",
		Limiters: []throttle.Limiter{
			throttle.Limiter{}.Limit(5).PerMinute().LockFor(15 * time.Minute),
		},
	})

	if throttled, _, err := login.IsThrottled(ctx, throttle.NewKey("user", id)); err == nil && throttled {
		// reject
	}
*/
package brakepedal
