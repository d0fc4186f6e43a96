package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pharmadash/internal/company"
	"pharmadash/internal/news"
)

// Bounds for the poll interval, in seconds.
const (
	MinRefreshIntervalSec = 30
	MaxRefreshIntervalSec = 300
)

type Server struct {
	Port               string `json:"port" yaml:"port"`
	RequestTimeoutSec  int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
	ShutdownTimeoutSec int    `json:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`
	MaxBodyBytes       int64  `json:"max_body_bytes" yaml:"max_body_bytes"`
}

type Log struct {
	Level      string `json:"level" yaml:"level"`
	File       string `json:"file" yaml:"file"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
}

type AlphaVantage struct {
	APIKey                string `json:"api_key" yaml:"api_key"`
	BaseURL               string `json:"base_url" yaml:"base_url"`
	TimeoutSec            int    `json:"timeout_sec" yaml:"timeout_sec"`
	MaxRequestsPerMinute  int    `json:"max_requests_per_minute" yaml:"max_requests_per_minute"`
	MinRequestIntervalSec int    `json:"min_request_interval_sec" yaml:"min_request_interval_sec"`
	Burst                 int    `json:"burst" yaml:"burst"`
}

type Yahoo struct {
	Enabled      bool `json:"enabled" yaml:"enabled"`
	TimeoutSec   int  `json:"timeout_sec" yaml:"timeout_sec"`
	LookbackDays int  `json:"lookback_days" yaml:"lookback_days"`
}

type FMP struct {
	APIKey     string `json:"api_key" yaml:"api_key"`
	BaseURL    string `json:"base_url" yaml:"base_url"`
	TimeoutSec int    `json:"timeout_sec" yaml:"timeout_sec"`
}

type News struct {
	APIKey      string      `json:"api_key" yaml:"api_key"`
	BaseURL     string      `json:"base_url" yaml:"base_url"`
	TimeoutSec  int         `json:"timeout_sec" yaml:"timeout_sec"`
	CacheTTLSec int         `json:"cache_ttl_sec" yaml:"cache_ttl_sec"`
	Queries     []string    `json:"queries" yaml:"queries"`
	Feeds       []news.Feed `json:"feeds" yaml:"feeds"`
}

type Dashboard struct {
	RefreshIntervalSec int     `json:"refresh_interval_sec" yaml:"refresh_interval_sec"`
	TrendCapacity      int     `json:"trend_capacity" yaml:"trend_capacity"`
	MarketCapTTLSec    int     `json:"market_cap_ttl_sec" yaml:"market_cap_ttl_sec"`
	PastPoints         int     `json:"past_points" yaml:"past_points"`
	Jitter             float64 `json:"jitter" yaml:"jitter"`
	Seed               uint64  `json:"seed" yaml:"seed"` // 0 picks a random seed
}

type Config struct {
	Server       Server            `json:"server" yaml:"server"`
	Log          Log               `json:"log" yaml:"log"`
	AlphaVantage AlphaVantage      `json:"alpha_vantage" yaml:"alpha_vantage"`
	Yahoo        Yahoo             `json:"yahoo" yaml:"yahoo"`
	FMP          FMP               `json:"fmp" yaml:"fmp"`
	News         News              `json:"news" yaml:"news"`
	Dashboard    Dashboard         `json:"dashboard" yaml:"dashboard"`
	Companies    []company.Company `json:"companies" yaml:"companies"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10, ShutdownTimeoutSec: 5, MaxBodyBytes: 1 << 20},
		Log:    Log{Level: "info", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 14},
		AlphaVantage: AlphaVantage{
			BaseURL:              "https://www.alphavantage.co",
			TimeoutSec:           10,
			MaxRequestsPerMinute: 5,
			Burst:                1,
		},
		Yahoo: Yahoo{Enabled: true, TimeoutSec: 15, LookbackDays: 7},
		FMP:   FMP{BaseURL: "https://financialmodelingprep.com", TimeoutSec: 8},
		News: News{
			BaseURL:     "https://gnews.io",
			TimeoutSec:  10,
			CacheTTLSec: 900,
			Queries:     append([]string(nil), news.DefaultQueries...),
			Feeds:       news.DefaultFeeds(),
		},
		Dashboard: Dashboard{
			RefreshIntervalSec: 60,
			TrendCapacity:      100,
			MarketCapTTLSec:    900,
			PastPoints:         30,
			Jitter:             0.02,
		},
		Companies: company.Defaults(),
	}
}

// Load reads config from path (JSON, or YAML for .yaml/.yml). A path that does
// not exist is an error. If path is empty the first of config.json,
// config.yaml, config.yml that exists is used; with none the defaults apply. A .env file next to the working directory is loaded
// first, and environment variables then override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if path == "" {
		for _, candidate := range []string{"config.json", "config.yaml", "config.yml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := decode(path, b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

func applyEnv(cfg *Config) {
	envString("PORT", &cfg.Server.Port)
	envInt("REQUEST_TIMEOUT_SEC", 1, &cfg.Server.RequestTimeoutSec)
	envString("LOG_LEVEL", &cfg.Log.Level)
	envString("LOG_FILE", &cfg.Log.File)

	envString("ALPHA_VANTAGE_KEY", &cfg.AlphaVantage.APIKey)
	envInt("ALPHA_VANTAGE_MAX_RPM", 0, &cfg.AlphaVantage.MaxRequestsPerMinute)
	envInt("ALPHA_VANTAGE_MIN_INTERVAL_SEC", 0, &cfg.AlphaVantage.MinRequestIntervalSec)
	envBool("YAHOO_ENABLED", &cfg.Yahoo.Enabled)
	envString("FMP_API_KEY", &cfg.FMP.APIKey)
	envString("NEWS_API_KEY", &cfg.News.APIKey)
	envInt("NEWS_CACHE_TTL_SEC", 1, &cfg.News.CacheTTLSec)
	if v := os.Getenv("NEWS_FEEDS"); v != "" {
		cfg.News.Feeds = parseFeeds(v)
	}

	envInt("REFRESH_INTERVAL_SEC", 1, &cfg.Dashboard.RefreshIntervalSec)
	envInt("TREND_CAPACITY", 1, &cfg.Dashboard.TrendCapacity)
	envInt("MARKET_CAP_TTL_SEC", 1, &cfg.Dashboard.MarketCapTTLSec)
	envInt("PAST_POINTS", 1, &cfg.Dashboard.PastPoints)
	if v := os.Getenv("PRICE_JITTER"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Dashboard.Jitter = x
		}
	}
	if v := os.Getenv("SIMULATION_SEED"); v != "" {
		if x, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Dashboard.Seed = x
		}
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// envInt sets dst when key holds an integer >= floor; anything else is ignored.
func envInt(key string, floor int, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	x, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || x < floor {
		return
	}
	*dst = x
}

func envBool(key string, dst *bool) {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		*dst = true
	case "0", "false", "no", "n":
		*dst = false
	}
}

// parseFeeds reads "Name=URL" pairs separated by commas.
func parseFeeds(s string) []news.Feed {
	var out []news.Feed
	for _, part := range splitCSV(s) {
		name, u, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(u) == "" {
			continue
		}
		out = append(out, news.Feed{Name: strings.TrimSpace(name), URL: strings.TrimSpace(u)})
	}
	return out
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate clamps soft limits into range and rejects values nothing can run with.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level))
	}
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is empty"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 1 << 20
	}

	d := &c.Dashboard
	d.RefreshIntervalSec = min(max(d.RefreshIntervalSec, MinRefreshIntervalSec), MaxRefreshIntervalSec)
	if d.TrendCapacity <= 0 {
		errs = append(errs, fmt.Errorf("dashboard.trend_capacity must be positive, got %d", d.TrendCapacity))
	}
	if d.MarketCapTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("dashboard.market_cap_ttl_sec must be positive, got %d", d.MarketCapTTLSec))
	}
	if d.Jitter < 0 || d.Jitter >= 1 {
		errs = append(errs, fmt.Errorf("dashboard.jitter must be in [0, 1), got %v", d.Jitter))
	}
	if d.PastPoints <= 0 {
		d.PastPoints = 30
	}

	for _, f := range []struct {
		name string
		sec  int
	}{
		{"alpha_vantage.timeout_sec", c.AlphaVantage.TimeoutSec},
		{"yahoo.timeout_sec", c.Yahoo.TimeoutSec},
		{"fmp.timeout_sec", c.FMP.TimeoutSec},
		{"news.timeout_sec", c.News.TimeoutSec},
		{"news.cache_ttl_sec", c.News.CacheTTLSec},
	} {
		if f.sec <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", f.name, f.sec))
		}
	}

	if len(c.Companies) == 0 {
		errs = append(errs, errors.New("no companies configured"))
	} else if _, err := company.NewTable(c.Companies); err != nil {
		errs = append(errs, fmt.Errorf("companies: %w", err))
	}
	return errors.Join(errs...)
}

// CompanyTable builds the lookup table for the configured companies.
func (c Config) CompanyTable() (*company.Table, error) {
	return company.NewTable(c.Companies)
}

func Seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func (d Dashboard) RefreshInterval() time.Duration { return Seconds(d.RefreshIntervalSec) }
func (d Dashboard) MarketCapTTL() time.Duration    { return Seconds(d.MarketCapTTLSec) }
