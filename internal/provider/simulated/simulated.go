package simulated

import (
	"context"
	"math/rand/v2"
	"sync"

	"pharmadash/internal/company"
)

// DefaultJitter is the maximum relative deviation from the base price.
const DefaultJitter = 0.02

// Source synthesizes a price around the company's base price. It never fails.
type Source struct {
	jitter float64

	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Source drawing from rnd. A nil rnd uses a randomly seeded generator.
func New(rnd *rand.Rand, jitter float64) *Source {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if jitter < 0 {
		jitter = -jitter
	}
	return &Source{jitter: jitter, rnd: rnd}
}

// NewSeeded returns a deterministic Source.
func NewSeeded(seed uint64, jitter float64) *Source {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), jitter)
}

func (s *Source) Name() string { return "simulated" }

// Price returns base * (1 + U(-jitter, jitter)).
func (s *Source) Price(_ context.Context, c company.Company) (float64, error) {
	s.mu.Lock()
	u := s.rnd.Float64()
	s.mu.Unlock()
	return c.BasePriceOrDefault() * (1 + (2*u-1)*s.jitter), nil
}
