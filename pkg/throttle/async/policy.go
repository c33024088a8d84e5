package async

import (
	"context"

	"github.com/vnykmshr/brakepedal/pkg/throttle"
	"github.com/vnykmshr/brakepedal/pkg/throttle/policy"
)

// CheckAsync runs p.Check on d. On a store failure the future carries the
// partial result together with the error.
func CheckAsync(ctx context.Context, d *Dispatcher, p *policy.Policy, key throttle.Key) *Future[policy.CheckResult] {
	return Go(ctx, d, func(ctx context.Context) (policy.CheckResult, error) {
		return p.Check(ctx, key)
	})
}

// InspectAsync runs p.Inspect on d.
func InspectAsync(ctx context.Context, d *Dispatcher, p *policy.Policy, key throttle.Key) *Future[policy.CheckResult] {
	return Go(ctx, d, func(ctx context.Context) (policy.CheckResult, error) {
		return p.Inspect(ctx, key)
	})
}
