// Package app assembles the dashboard from configuration.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"pharmadash/internal/company"
	"pharmadash/internal/config"
	"pharmadash/internal/dashboard"
	"pharmadash/internal/httpx"
	"pharmadash/internal/news"
	"pharmadash/internal/provider"
	"pharmadash/internal/provider/alphavantage"
	"pharmadash/internal/provider/fmp"
	"pharmadash/internal/provider/ratelimit"
	"pharmadash/internal/provider/simulated"
	"pharmadash/internal/provider/yahoo"
	"pharmadash/internal/resolver"
	"pharmadash/internal/trend"
	"pharmadash/internal/trials"
)

// App holds the wired components. Everything lives as long as the process.
type App struct {
	Config    config.Config
	Log       *slog.Logger
	Companies *company.Table
	Quotes    *resolver.QuoteResolver
	Caps      *resolver.MarketCapResolver
	Trends    *trend.Cache
	News      *news.Aggregator
	Trials    *trials.Registry
	Service   *dashboard.Service
}

func New(cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	tbl, err := cfg.CompanyTable()
	if err != nil {
		return nil, fmt.Errorf("companies: %w", err)
	}

	httpClient := httpx.New(config.Seconds(cfg.Server.RequestTimeoutSec))

	if cfg.AlphaVantage.APIKey == "" {
		log.Info("ALPHA_VANTAGE_KEY not set; primary quotes disabled")
	}
	if cfg.FMP.APIKey == "" {
		log.Info("FMP_API_KEY not set; primary market caps disabled")
	}
	if cfg.News.APIKey == "" {
		log.Info("NEWS_API_KEY not set; headlines disabled, journal feeds only")
	}

	av := alphavantage.NewClient(cfg.AlphaVantage.APIKey,
		alphavantage.WithBaseURL(cfg.AlphaVantage.BaseURL),
		alphavantage.WithHTTPClient(httpClient),
	)
	var primary provider.PriceSource = ratelimit.Wrap(av,
		cfg.AlphaVantage.MaxRequestsPerMinute,
		cfg.AlphaVantage.Burst,
		config.Seconds(cfg.AlphaVantage.MinRequestIntervalSec),
	)

	priceTiers := []resolver.PriceTier{
		{Source: primary, Label: provider.PrimaryAPI, Timeout: config.Seconds(cfg.AlphaVantage.TimeoutSec)},
	}
	capTiers := []resolver.CapTier{
		{
			Source: fmp.NewClient(cfg.FMP.APIKey,
				fmp.WithBaseURL(cfg.FMP.BaseURL),
				fmp.WithHTTPClient(httpClient),
			),
			Timeout: config.Seconds(cfg.FMP.TimeoutSec),
		},
	}
	if cfg.Yahoo.Enabled {
		yh := yahoo.New(yahoo.WithLookback(time.Duration(cfg.Yahoo.LookbackDays) * 24 * time.Hour))
		priceTiers = append(priceTiers, resolver.PriceTier{Source: yh, Label: provider.SecondaryAPI, Timeout: config.Seconds(cfg.Yahoo.TimeoutSec)})
		capTiers = append(capTiers, resolver.CapTier{Source: yh, Timeout: config.Seconds(cfg.Yahoo.TimeoutSec)})
	}

	var sim *simulated.Source
	if cfg.Dashboard.Seed != 0 {
		sim = simulated.NewSeeded(cfg.Dashboard.Seed, cfg.Dashboard.Jitter)
	} else {
		sim = simulated.New(nil, cfg.Dashboard.Jitter)
	}

	a := &App{
		Config:    cfg,
		Log:       log,
		Companies: tbl,
		Quotes: resolver.NewQuoteResolver(tbl, priceTiers,
			resolver.WithTerminal(sim),
			resolver.WithQuoteLogger(log),
		),
		Caps: resolver.NewMarketCapResolver(tbl, capTiers, cfg.Dashboard.MarketCapTTL(),
			resolver.WithCapLogger(log),
		),
		Trends: trend.New(cfg.Dashboard.TrendCapacity),
		News: news.NewAggregator(
			news.NewGNewsClient(cfg.News.APIKey,
				news.WithGNewsBaseURL(cfg.News.BaseURL),
				news.WithGNewsHTTPClient(httpClient),
			),
			news.NewFeedReader(httpClient),
			news.WithFeeds(cfg.News.Feeds),
			news.WithQueries(cfg.News.Queries),
			news.WithRequestTimeout(config.Seconds(cfg.News.TimeoutSec)),
			news.WithTTL(config.Seconds(cfg.News.CacheTTLSec)),
			news.WithLogger(log),
		),
		Trials: trials.Default(),
	}
	a.Service = dashboard.NewService(a.Companies, a.Quotes, a.Caps, a.Trends, a.News, a.Trials,
		dashboard.WithLogger(log),
		dashboard.WithSourceStatus(sourceStatus(cfg)),
	)
	return a, nil
}

// sourceStatus lists the upstreams in the order they are tried.
func sourceStatus(cfg config.Config) []dashboard.SourceStatus {
	return []dashboard.SourceStatus{
		{Name: "Alpha Vantage", Role: "price", Configured: cfg.AlphaVantage.APIKey != ""},
		{Name: "Yahoo Finance", Role: "price, market cap", Configured: cfg.Yahoo.Enabled},
		{Name: "Simulated Data", Role: "price", Configured: true},
		{Name: "FinancialModelingPrep", Role: "market cap", Configured: cfg.FMP.APIKey != ""},
		{Name: "Fallback market caps", Role: "market cap", Configured: true},
		{Name: "GNews", Role: "news", Configured: cfg.News.APIKey != ""},
		{Name: "Journal feeds", Role: "news", Configured: len(cfg.News.Feeds) > 0},
	}
}

// Poller returns a poller on the configured refresh interval.
func (a *App) Poller() *dashboard.Poller {
	return dashboard.NewPoller(a.Service, a.Config.Dashboard.RefreshInterval(), a.Log)
}
