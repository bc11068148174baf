package provider

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles calls to a single provider. It replaces the old
// process-wide usage counters: one limiter per adapter, injected clock for
// tests.
type RateLimiter struct {
	lim   *rate.Limiter
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter allows rps requests per second with the given burst.
// A zero or negative rps disables throttling.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	var lim *rate.Limiter
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &RateLimiter{
		lim:   lim,
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// WithClock replaces the time source and sleep, for tests.
func (l *RateLimiter) WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *RateLimiter {
	l.now = now
	l.sleep = sleep
	return l
}

// Wait blocks until the limiter admits one call or the context ends.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if l == nil || l.lim == nil {
		return nil
	}
	res := l.lim.ReserveN(l.now(), 1)
	if !res.OK() {
		return context.DeadlineExceeded
	}
	delay := res.DelayFrom(l.now())
	if delay <= 0 {
		return nil
	}
	if err := l.sleep(ctx, delay); err != nil {
		res.CancelAt(l.now())
		return err
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
