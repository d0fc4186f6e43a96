package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"pharmadash/internal/cache"
	"pharmadash/internal/company"
	"pharmadash/internal/provider"
)

// DefaultCapTTL is how long a resolved set of market caps stays valid.
const DefaultCapTTL = 900 * time.Second

// CapTier is one live market-cap source.
type CapTier struct {
	Source  provider.CapSource
	Timeout time.Duration
}

// MarketCapResolver resolves market caps for every configured company and
// memoizes the whole mapping for one window.
type MarketCapResolver struct {
	companies *company.Table
	tiers     []CapTier
	window    *cache.Window[map[string]float64]
	log       *slog.Logger
}

type CapOption func(*MarketCapResolver)

func WithCapLogger(l *slog.Logger) CapOption {
	return func(r *MarketCapResolver) {
		if l != nil {
			r.log = l
		}
	}
}

// WithCapClock drives window expiry from now instead of the wall clock.
func WithCapClock(now func() time.Time) CapOption {
	return func(r *MarketCapResolver) { r.window.Now = now }
}

func NewMarketCapResolver(companies *company.Table, tiers []CapTier, ttl time.Duration, opts ...CapOption) *MarketCapResolver {
	if ttl <= 0 {
		ttl = DefaultCapTTL
	}
	r := &MarketCapResolver{
		companies: companies,
		tiers:     tiers,
		window:    cache.NewWindow[map[string]float64](ttl),
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ResolveMarketCaps returns company name -> market cap in billions.
// Inside the window no source is queried and the same values are returned.
// Every configured company has an entry.
func (r *MarketCapResolver) ResolveMarketCaps(ctx context.Context) map[string]float64 {
	caps, err := r.window.Get(ctx, r.fill)
	if err != nil {
		// Only the caller's context can fail a fill; answer from the static table.
		r.log.Warn("market cap resolution interrupted", "error", err)
		return r.static()
	}
	return maps.Clone(caps)
}

// Invalidate forces the next call to resolve again.
func (r *MarketCapResolver) Invalidate() { r.window.Invalidate() }

// MarketCap resolves one company without touching the window.
func (r *MarketCapResolver) MarketCap(ctx context.Context, c company.Company) float64 {
	attempts := make([]provider.Attempt[float64], 0, len(r.tiers))
	for _, tier := range r.tiers {
		attempts = append(attempts, capAttempt(tier, c))
	}
	out := provider.FirstSuccess(ctx, attempts...)
	for _, f := range out.Failures {
		r.log.Debug("market cap tier failed", "symbol", c.Symbol, "tier", f.Tier, "error", f.Err)
	}
	if out.OK() {
		return out.Value
	}
	return c.MarketCapOrDefault()
}

func (r *MarketCapResolver) fill(ctx context.Context) (map[string]float64, error) {
	all := r.all()
	caps := make(map[string]float64, len(all))
	for _, c := range all {
		caps[c.Name] = r.MarketCap(ctx, c)
	}
	r.log.Info("market caps resolved", "companies", len(caps))
	return caps, nil
}

func (r *MarketCapResolver) static() map[string]float64 {
	all := r.all()
	caps := make(map[string]float64, len(all))
	for _, c := range all {
		caps[c.Name] = c.MarketCapOrDefault()
	}
	return caps
}

func (r *MarketCapResolver) all() []company.Company {
	if r.companies == nil {
		return nil
	}
	return r.companies.All()
}

func capAttempt(tier CapTier, c company.Company) provider.Attempt[float64] {
	a := provider.Attempt[float64]{Name: "unconfigured"}
	if tier.Source == nil || !configured(tier.Source) {
		return a
	}
	a.Name = tier.Source.Name()
	a.Run = func(ctx context.Context) (float64, error) {
		if tier.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, tier.Timeout)
			defer cancel()
		}
		v, err := tier.Source.MarketCap(ctx, c)
		if err != nil {
			return 0, err
		}
		if !provider.Usable(v) {
			return 0, fmt.Errorf("%w: %v from %s", provider.ErrNoMarketCap, v, tier.Source.Name())
		}
		return v, nil
	}
	return a
}
