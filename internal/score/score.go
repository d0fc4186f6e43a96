// Package score rates each company on five 0-100 dimensions.
package score

import (
	"math"
	"sort"

	"pharmadash/internal/metrics"
)

const (
	DefaultPastPoints = 30
	MaxPastPoints     = 100
)

// Band thresholds on the total score.
const (
	StrongAt   = 70.0
	ModerateAt = 40.0
)

type Band string

const (
	Strong   Band = "strong"
	Moderate Band = "moderate"
	Weak     Band = "weak"
)

func BandFor(total float64) Band {
	switch {
	case total >= StrongAt:
		return Strong
	case total >= ModerateAt:
		return Moderate
	default:
		return Weak
	}
}

// Input is the per-company data a score is computed from.
type Input struct {
	Company      string
	TrendPrices  []float64 // most recent trend window, oldest first
	Trials       int       // trials sponsored by this company
	NewsCount    int       // articles in the current digest
	MarketCap    float64   // billions
	CurrentPrice float64
	AvgPrice     float64 // mean current price across all companies
}

// Result holds the five dimension scores and their mean.
type Result struct {
	Company          string  `json:"company"`
	PriceStability   float64 `json:"price_stability"`
	RnDActivity      float64 `json:"rnd_activity"`
	MediaAttention   float64 `json:"media_attention"`
	MarketCapSize    float64 `json:"market_cap_size"`
	PricePerformance float64 `json:"price_performance"`
	Total            float64 `json:"total"`
	Band             Band    `json:"band"`
}

// ClampPoints bounds a requested trend window to 1..MaxPastPoints; zero or less means the default.
func ClampPoints(n int) int {
	switch {
	case n <= 0:
		return DefaultPastPoints
	case n > MaxPastPoints:
		return MaxPastPoints
	default:
		return n
	}
}

func Compute(in Input) Result {
	r := Result{
		Company:          in.Company,
		PriceStability:   math.Max(0, 100-metrics.PopStdDev(in.TrendPrices)*15),
		RnDActivity:      math.Min(100, float64(in.Trials)*25+20),
		MediaAttention:   math.Min(100, float64(in.NewsCount)*8+20),
		MarketCapSize:    math.Min(100, in.MarketCap*0.5),
		PricePerformance: 50,
	}
	if in.AvgPrice > 0 {
		r.PricePerformance = math.Min(100, math.Max(0, (in.CurrentPrice/in.AvgPrice-0.8)*500))
	}
	r.Total = (r.PriceStability + r.RnDActivity + r.MediaAttention + r.MarketCapSize + r.PricePerformance) / 5
	r.Band = BandFor(r.Total)
	return r
}

// Rank scores every input and sorts by total, highest first; ties go by company name.
func Rank(inputs []Input) []Result {
	out := make([]Result, len(inputs))
	for i, in := range inputs {
		out[i] = Compute(in)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Company < out[j].Company
	})
	return out
}
