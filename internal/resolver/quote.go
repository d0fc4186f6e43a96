package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pharmadash/internal/company"
	"pharmadash/internal/provider"
	"pharmadash/internal/provider/simulated"
)

// configurable is implemented by sources that can be switched off by leaving out a key.
type configurable interface {
	Configured() bool
}

func configured(v any) bool {
	if c, ok := v.(configurable); ok {
		return c.Configured()
	}
	return true
}

// PriceTier is one live price source and the label its prices carry.
// Timeout bounds a single call; zero leaves the source to its own limits.
type PriceTier struct {
	Source  provider.PriceSource
	Label   provider.Source
	Timeout time.Duration
}

// QuoteResolver resolves a price through an ordered list of tiers and ends with
// a simulated price, so it always produces a value.
type QuoteResolver struct {
	companies *company.Table
	tiers     []PriceTier
	terminal  provider.PriceSource
	log       *slog.Logger
	now       func() time.Time
}

type QuoteOption func(*QuoteResolver)

func WithQuoteLogger(l *slog.Logger) QuoteOption {
	return func(r *QuoteResolver) {
		if l != nil {
			r.log = l
		}
	}
}

func WithQuoteClock(now func() time.Time) QuoteOption {
	return func(r *QuoteResolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTerminal replaces the simulated fallback. A nil source keeps the default.
func WithTerminal(src provider.PriceSource) QuoteOption {
	return func(r *QuoteResolver) {
		if src != nil {
			r.terminal = src
		}
	}
}

func NewQuoteResolver(companies *company.Table, tiers []PriceTier, opts ...QuoteOption) *QuoteResolver {
	r := &QuoteResolver{
		companies: companies,
		tiers:     tiers,
		terminal:  simulated.New(nil, simulated.DefaultJitter),
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// ResolvePrice returns a price for symbol and the tier it came from.
// Symbols outside the table are still sent to the API tiers; the simulated
// tier prices them against the first configured company's base price.
func (r *QuoteResolver) ResolvePrice(ctx context.Context, symbol string) (float64, provider.Source) {
	c, ok := r.lookup(symbol)
	if !ok {
		c = company.Company{Name: symbol, Symbol: symbol}
		if first, found := r.first(); found {
			c.BasePrice = first.BasePrice
		}
	}
	return r.resolve(ctx, c)
}

// Resolve prices c and stamps the result with the current time.
func (r *QuoteResolver) Resolve(ctx context.Context, c company.Company) provider.Quote {
	price, src := r.resolve(ctx, c)
	return provider.Quote{Timestamp: r.now(), Price: price, Source: src}
}

func (r *QuoteResolver) lookup(symbol string) (company.Company, bool) {
	if r.companies == nil {
		return company.Company{}, false
	}
	return r.companies.BySymbol(symbol)
}

func (r *QuoteResolver) first() (company.Company, bool) {
	if r.companies == nil {
		return company.Company{}, false
	}
	all := r.companies.All()
	if len(all) == 0 {
		return company.Company{}, false
	}
	return all[0], true
}

func (r *QuoteResolver) resolve(ctx context.Context, c company.Company) (float64, provider.Source) {
	attempts := make([]provider.Attempt[float64], 0, len(r.tiers))
	for _, tier := range r.tiers {
		attempts = append(attempts, priceAttempt(tier, c))
	}

	out := provider.FirstSuccess(ctx, attempts...)
	for _, f := range out.Failures {
		r.log.Debug("price tier failed", "symbol", c.Symbol, "tier", f.Tier, "error", f.Err)
	}
	if out.OK() {
		return out.Value, r.tiers[out.Index].Label
	}

	price, err := r.terminal.Price(ctx, c)
	if err != nil || !provider.Usable(price) {
		// Last resort when a replacement terminal misbehaves.
		price = c.BasePriceOrDefault()
	}
	return price, provider.Simulated
}

func priceAttempt(tier PriceTier, c company.Company) provider.Attempt[float64] {
	a := provider.Attempt[float64]{Name: tier.Label.String()}
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
		p, err := tier.Source.Price(ctx, c)
		if err != nil {
			return 0, err
		}
		if !provider.Usable(p) {
			return 0, fmt.Errorf("%w: %v from %s", provider.ErrNoPrice, p, tier.Source.Name())
		}
		return p, nil
	}
	return a
}
