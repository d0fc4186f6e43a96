package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"pharmadash/internal/app"
	"pharmadash/internal/config"
	"pharmadash/internal/dashboard"
	"pharmadash/internal/logging"
	"pharmadash/internal/news"
	"pharmadash/internal/score"
	"pharmadash/internal/trials"
)

type snapshot struct {
	Prices  dashboard.Prices   `json:"prices"`
	Metrics dashboard.Overview `json:"metrics"`
	Scores  []score.Result     `json:"scores"`
	News    *news.Digest       `json:"news,omitempty"`
	Trials  []trials.Trial     `json:"trials,omitempty"`
}

func main() {
	var configPath string
	var timeout int
	var points int
	var withNews bool
	var withTrials bool
	var logLevel string

	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json or config.yaml (optional)")
	flag.IntVar(&timeout, "timeout", 60, "overall timeout seconds")
	flag.IntVar(&points, "points", score.DefaultPastPoints, "trend points used for scoring")
	flag.BoolVar(&withNews, "news", false, "include the news digest")
	flag.BoolVar(&withTrials, "trials", false, "include clinical trials")
	flag.StringVar(&logLevel, "log-level", "", "override log level")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	// Keep stdout clean for the JSON snapshot.
	logger, closer := logging.NewWithWriter(os.Stderr, cfg.Log)
	defer closer.Close()

	a, err := app.New(cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	out := snapshot{Prices: a.Service.Poll(ctx)}
	if out.Metrics, err = a.Service.MarketMetrics(ctx); err != nil {
		log.Fatalf("metrics: %v", err)
	}
	if out.Scores, err = a.Service.Scores(ctx, points); err != nil {
		log.Fatalf("scores: %v", err)
	}
	if withNews {
		d, err := a.Service.News(ctx)
		if err != nil {
			log.Fatalf("news: %v", err)
		}
		out.News = &d
	}
	if withTrials {
		out.Trials = a.Service.Trials()
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
