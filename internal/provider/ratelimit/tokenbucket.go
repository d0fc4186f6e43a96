package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket admits up to burst requests at once and refills one request
// slot every refill interval. A provider quota of N requests per minute is
// NewTokenBucket(time.Minute/N, burst).
type TokenBucket struct {
	refill time.Duration
	burst  float64
	now    func() time.Time

	mu        sync.Mutex
	available float64
	updated   time.Time
}

// NewTokenBucket returns a full bucket. A non-positive refill never refills.
func NewTokenBucket(refill time.Duration, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	tb := &TokenBucket{refill: refill, burst: float64(burst), now: time.Now}
	tb.available = tb.burst
	tb.updated = tb.now()
	return tb
}

// take claims a slot, or reports how long until one frees up.
func (tb *TokenBucket) take() (time.Duration, bool) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	if tb.refill > 0 && now.After(tb.updated) {
		tb.available += float64(now.Sub(tb.updated)) / float64(tb.refill)
		if tb.available > tb.burst {
			tb.available = tb.burst
		}
	}
	tb.updated = now
	if tb.available >= 1 {
		tb.available--
		return 0, true
	}
	if tb.refill <= 0 {
		return time.Duration(1<<63 - 1), false
	}
	return time.Duration((1 - tb.available) * float64(tb.refill)), false
}

// Wait blocks until a slot is claimed or ctx is done. It gives up at once
// with context.DeadlineExceeded when the next slot frees after ctx's deadline.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		wait, ok := tb.take()
		if ok {
			return nil
		}
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		if dl, ok := ctx.Deadline(); ok && time.Until(dl) < wait {
			return context.DeadlineExceeded
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
