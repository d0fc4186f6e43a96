package ratelimit

import (
	"context"
	"sync"
	"time"

	"pharmadash/internal/company"
	"pharmadash/internal/provider"
)

// Limiter gates outbound calls.
type Limiter interface {
	Wait(ctx context.Context) error
}

// MinInterval enforces a minimum time between calls.
// Concurrent callers wait until the interval has elapsed since the last call,
// or return early if the context is canceled.
type MinInterval struct {
	Interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func (m *MinInterval) Wait(ctx context.Context) error {
	if m.Interval <= 0 {
		return nil
	}
	for {
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		if wait <= 0 {
			m.last = time.Now()
			m.mu.Unlock()
			return nil
		}
		m.mu.Unlock()

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// PriceSource wraps a provider.PriceSource and gates calls through a Limiter.
type PriceSource struct {
	provider.PriceSource
	Limiter Limiter
}

func (p *PriceSource) Price(ctx context.Context, c company.Company) (float64, error) {
	if p.Limiter != nil {
		if err := p.Limiter.Wait(ctx); err != nil {
			return 0, err
		}
	}
	return p.PriceSource.Price(ctx, c)
}

// Wrap picks a limiter the way the config describes it: a token bucket when a
// per-minute budget is set, otherwise a minimum interval, otherwise none.
func Wrap(src provider.PriceSource, maxPerMinute, burst int, minInterval time.Duration) provider.PriceSource {
	switch {
	case maxPerMinute > 0:
		if burst <= 0 {
			burst = 1
		}
		return &PriceSource{PriceSource: src, Limiter: NewTokenBucket(time.Minute/time.Duration(maxPerMinute), burst)}
	case minInterval > 0:
		return &PriceSource{PriceSource: src, Limiter: &MinInterval{Interval: minInterval}}
	default:
		return src
	}
}

// Configured forwards to the wrapped source so unconfigured tiers are skipped without waiting.
func (p *PriceSource) Configured() bool {
	if c, ok := p.PriceSource.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}
