package pkg

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"aimage-backend/fault"
)

// RateGate is the single token bucket shared by every outbound provider
// call. It throttles total provider load; there is no per-account
// partitioning, so one account's burst can delay another's request.
type RateGate struct {
	limiter *rate.Limiter
	timeout time.Duration
}

func NewRateGate(perSecond float64, burst int, timeout time.Duration) *RateGate {
	return &RateGate{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		timeout: timeout,
	}
}

// Acquire blocks until n tokens are available. The wait is bounded by
// the configured acquire timeout and by the caller's context; expiry of
// either surfaces as a rate limit timeout and the caller must abort
// before any coin movement.
func (g *RateGate) Acquire(ctx context.Context, n int) error {
	waitCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	if err := g.limiter.WaitN(waitCtx, n); err != nil {
		return fault.ErrRateLimitTimeout
	}
	return nil
}
