package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/shopspring/decimal"

	"pharmadash/internal/company"
	"pharmadash/internal/provider"
)

// tradingDays is how many of the most recent daily bars are considered.
const tradingDays = 2

var billion = decimal.New(1, 9)

// Fetcher is the slice of Yahoo Finance the provider needs.
//
//go:generate mockgen -package=yahoo_test -destination=mock_fetcher_test.go -source=yahoo.go Fetcher
type Fetcher interface {
	DailyCloses(symbol string, start, end time.Time) ([]decimal.Decimal, error)
	MarketCap(symbol string) (int64, error)
}

// financeFetcher talks to Yahoo through piquette/finance-go.
type financeFetcher struct{}

func (financeFetcher) DailyCloses(symbol string, start, end time.Time) ([]decimal.Decimal, error) {
	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})
	var closes []decimal.Decimal
	for iter.Next() {
		closes = append(closes, iter.Bar().Close)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return closes, nil
}

func (financeFetcher) MarketCap(symbol string) (int64, error) {
	e, err := equity.Get(symbol)
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, fmt.Errorf("no quote info for %s", symbol)
	}
	return e.MarketCap, nil
}

// Provider serves the secondary price tier and the quote-info market cap tier.
type Provider struct {
	fetcher  Fetcher
	lookback time.Duration
	now      func() time.Time
}

type Option func(*Provider)

// WithFetcher replaces the finance-go backend.
func WithFetcher(f Fetcher) Option {
	return func(p *Provider) { p.fetcher = f }
}

// WithLookback sets the calendar window searched for the last trading days.
func WithLookback(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.lookback = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func New(opts ...Option) *Provider {
	p := &Provider{
		fetcher:  financeFetcher{},
		lookback: 7 * 24 * time.Hour,
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Provider) Name() string { return "yahoo" }

// Price returns the most recent daily close among the last two trading days.
func (p *Provider) Price(ctx context.Context, c company.Company) (float64, error) {
	end := p.now()
	start := end.Add(-p.lookback)
	closes, err := call(ctx, func() ([]decimal.Decimal, error) {
		return p.fetcher.DailyCloses(c.Symbol, start, end)
	})
	if err != nil {
		return 0, fmt.Errorf("yahoo history %s: %w", c.Symbol, err)
	}
	if len(closes) > tradingDays {
		closes = closes[len(closes)-tradingDays:]
	}
	for i := len(closes) - 1; i >= 0; i-- {
		if closes[i].IsPositive() {
			return closes[i].InexactFloat64(), nil
		}
	}
	return 0, fmt.Errorf("%w: no recent close for %s", provider.ErrNoPrice, c.Symbol)
}

// MarketCap returns the quote-info capitalization in billions.
func (p *Provider) MarketCap(ctx context.Context, c company.Company) (float64, error) {
	raw, err := call(ctx, func() (int64, error) { return p.fetcher.MarketCap(c.Symbol) })
	if err != nil {
		return 0, fmt.Errorf("yahoo quote %s: %w", c.Symbol, err)
	}
	if raw <= 0 {
		return 0, fmt.Errorf("%w: marketCap=%d for %s", provider.ErrNoMarketCap, raw, c.Symbol)
	}
	return decimal.NewFromInt(raw).Div(billion).InexactFloat64(), nil
}

// call runs a context-unaware fetch so that ctx still bounds how long the caller waits.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- result{err: fmt.Errorf("panic: %v", rec)}
			}
		}()
		v, err := fn()
		ch <- result{v: v, err: err}
	}()
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		return r.v, r.err
	}
}
