package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"pharmadash/internal/company"
	"pharmadash/internal/metrics"
	"pharmadash/internal/news"
	"pharmadash/internal/provider"
	"pharmadash/internal/resolver"
	"pharmadash/internal/score"
	"pharmadash/internal/trend"
	"pharmadash/internal/trials"
)

// Prices is one poll round. Every quote in a round carries the same timestamp.
// Moves holds each company's step from its previous trend point.
type Prices struct {
	Timestamp time.Time                 `json:"timestamp"`
	Quotes    map[string]provider.Quote `json:"quotes"`
	Moves     map[string]trend.Move     `json:"moves"`
}

// PriceMap returns company name -> price.
func (p Prices) PriceMap() map[string]float64 {
	out := make(map[string]float64, len(p.Quotes))
	for name, q := range p.Quotes {
		out[name] = q.Price
	}
	return out
}

// Sources returns company name -> tier label.
func (p Prices) Sources() map[string]provider.Source {
	out := make(map[string]provider.Source, len(p.Quotes))
	for name, q := range p.Quotes {
		out[name] = q.Source
	}
	return out
}

// Overview is the market summary served to clients.
type Overview struct {
	metrics.Snapshot
	TotalCompanies int                        `json:"total_companies"`
	DataSources    map[string]provider.Source `json:"data_sources"`
	MarketCaps     map[string]float64         `json:"market_caps"`
	Timestamp      time.Time                  `json:"timestamp"`
}

// NewsSource yields the current news digest.
type NewsSource interface {
	Latest(ctx context.Context) (news.Digest, error)
	Invalidate()
}

// Service ties the resolvers, caches and side data together.
type Service struct {
	companies *company.Table
	quotes    *resolver.QuoteResolver
	caps      *resolver.MarketCapResolver
	trends    *trend.Cache
	news      NewsSource
	trials    *trials.Registry
	sources   []SourceStatus
	log       *slog.Logger
	now       func() time.Time

	mu   sync.RWMutex
	last *Prices
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithSourceStatus sets what Sources reports.
func WithSourceStatus(st []SourceStatus) Option {
	return func(s *Service) { s.sources = append([]SourceStatus(nil), st...) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(
	companies *company.Table,
	quotes *resolver.QuoteResolver,
	caps *resolver.MarketCapResolver,
	trends *trend.Cache,
	newsSrc NewsSource,
	registry *trials.Registry,
	opts ...Option,
) *Service {
	s := &Service{
		companies: companies,
		quotes:    quotes,
		caps:      caps,
		trends:    trends,
		news:      newsSrc,
		trials:    registry,
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Companies() []company.Company { return s.companies.All() }

// Poll resolves every company in table order, records each quote into the
// trend cache and remembers the round.
func (s *Service) Poll(ctx context.Context) Prices {
	round := Prices{
		Timestamp: s.now(),
		Quotes:    make(map[string]provider.Quote, s.companies.Len()),
		Moves:     make(map[string]trend.Move, s.companies.Len()),
	}
	for _, c := range s.companies.All() {
		price, src := s.quotes.ResolvePrice(ctx, c.Symbol)
		q := provider.Quote{Timestamp: round.Timestamp, Price: price, Source: src}
		s.trends.Record(c.Name, q)
		round.Quotes[c.Name] = q
		round.Moves[c.Name] = trend.LastMove(s.trends.Read(c.Name, 2))
	}

	s.mu.Lock()
	s.last = &round
	s.mu.Unlock()

	s.log.Debug("poll round complete", "companies", len(round.Quotes))
	return clonePrices(round)
}

// Latest returns the most recent round, polling once if there is none yet.
func (s *Service) Latest(ctx context.Context) Prices {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()
	if last == nil {
		return s.Poll(ctx)
	}
	return clonePrices(*last)
}

// MarketCaps returns the memoized market caps.
func (s *Service) MarketCaps(ctx context.Context) map[string]float64 {
	return s.caps.ResolveMarketCaps(ctx)
}

// News returns the current digest.
func (s *Service) News(ctx context.Context) (news.Digest, error) {
	d, err := s.news.Latest(ctx)
	if err != nil {
		return news.Digest{}, fmt.Errorf("news: %w", err)
	}
	return d, nil
}

func (s *Service) Trials() []trials.Trial { return s.trials.List() }

// MarketMetrics combines the latest round with caps, trial and news counts.
func (s *Service) MarketMetrics(ctx context.Context) (Overview, error) {
	round := s.Latest(ctx)
	caps := s.MarketCaps(ctx)
	digest, err := s.News(ctx)
	if err != nil {
		return Overview{}, err
	}

	snap := metrics.Compute(metrics.Input{
		Prices:     round.PriceMap(),
		Caps:       caps,
		TrialCount: s.trials.Len(),
		NewsCount:  digest.TotalArticles,
	})
	return Overview{
		Snapshot:       snap,
		TotalCompanies: s.companies.Len(),
		DataSources:    round.Sources(),
		MarketCaps:     caps,
		Timestamp:      round.Timestamp,
	}, nil
}

// Scores rates every company over its last pastPoints trend quotes, best first.
func (s *Service) Scores(ctx context.Context, pastPoints int) ([]score.Result, error) {
	pastPoints = score.ClampPoints(pastPoints)
	round := s.Latest(ctx)
	caps := s.MarketCaps(ctx)
	digest, err := s.News(ctx)
	if err != nil {
		return nil, err
	}
	sponsored := s.trials.CountBySponsor()

	all := s.companies.All()
	current := make([]float64, len(all))
	for i, c := range all {
		current[i] = round.Quotes[c.Name].Price
	}
	avg := metrics.Mean(current)

	inputs := make([]score.Input, len(all))
	for i, c := range all {
		inputs[i] = score.Input{
			Company:      c.Name,
			TrendPrices:  trend.Prices(s.trends.Read(c.Name, pastPoints)),
			Trials:       sponsored[c.Name],
			NewsCount:    digest.TotalArticles,
			MarketCap:    caps[c.Name],
			CurrentPrice: current[i],
			AvgPrice:     avg,
		}
	}
	return score.Rank(inputs), nil
}

// Trends returns the last n quotes of every configured company.
func (s *Service) Trends(n int) map[string][]provider.Quote {
	all := s.companies.All()
	out := make(map[string][]provider.Quote, len(all))
	for _, c := range all {
		out[c.Name] = s.trends.Read(c.Name, n)
	}
	return out
}

// SourceStatus tells whether an upstream source is set up.
type SourceStatus struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Configured bool   `json:"configured"`
}

// Sources reports the configured state of every upstream source.
func (s *Service) Sources() []SourceStatus {
	return append([]SourceStatus{}, s.sources...)
}

// ExportRow is one trend point with its move and the company's market cap.
type ExportRow struct {
	Company           string
	Timestamp         time.Time
	Price             float64
	Change            float64
	PercentChange     float64
	MarketCapBillions float64
	Source            provider.Source
}

// Export flattens the last points trend quotes of every company, in table
// order. The first exported point of a company has no move.
func (s *Service) Export(ctx context.Context, points int) []ExportRow {
	points = score.ClampPoints(points)
	caps := s.MarketCaps(ctx)

	var rows []ExportRow
	for _, c := range s.companies.All() {
		recent := s.trends.Read(c.Name, points)
		mc, ok := caps[c.Name]
		if !ok {
			mc = c.MarketCapOrDefault()
		}
		for i, q := range recent {
			var m trend.Move
			if i > 0 {
				m = trend.Delta(recent[i-1].Price, q.Price)
			}
			rows = append(rows, ExportRow{
				Company:           c.Name,
				Timestamp:         q.Timestamp,
				Price:             q.Price,
				Change:            m.Change,
				PercentChange:     m.ChangePct,
				MarketCapBillions: mc,
				Source:            q.Source,
			})
		}
	}
	return rows
}

// Refresh drops the memoized market caps and news so the next reads query
// their sources again. Trend history is kept.
func (s *Service) Refresh() {
	s.caps.Invalidate()
	s.news.Invalidate()
	s.log.Info("manual refresh: caches invalidated")
}

func clonePrices(p Prices) Prices {
	p.Quotes = maps.Clone(p.Quotes)
	p.Moves = maps.Clone(p.Moves)
	return p
}
