package metrics

import (
	"math"
	"sort"
)

// Input is everything the aggregator looks at. Prices and Caps are keyed by company name.
type Input struct {
	Prices     map[string]float64
	Caps       map[string]float64 // billions; a missing key means no cap for that company
	TrialCount int
	NewsCount  int
}

// Snapshot is the derived market overview.
type Snapshot struct {
	AvgPrice         float64 `json:"avg_price"`
	PriceVolatility  float64 `json:"price_volatility"`
	CapWeightedIndex float64 `json:"cap_weighted_index"`
	RnDActivity      int     `json:"rnd_activity"`
	MediaAttention   int     `json:"media_attention"`
}

// Compute derives a Snapshot from in. It does not modify its input.
func Compute(in Input) Snapshot {
	names := make([]string, 0, len(in.Prices))
	for name := range in.Prices {
		names = append(names, name)
	}
	sort.Strings(names)

	prices := make([]float64, len(names))
	var weighted, capSum float64
	for i, name := range names {
		p := in.Prices[name]
		prices[i] = p
		if c, ok := in.Caps[name]; ok {
			weighted += p * c
			capSum += c
		}
	}

	avg := Mean(prices)
	index := avg
	if capSum != 0 {
		index = weighted / capSum
	}

	return Snapshot{
		AvgPrice:         avg,
		PriceVolatility:  PopStdDev(prices),
		CapWeightedIndex: index,
		RnDActivity:      in.TrialCount,
		MediaAttention:   in.NewsCount,
	}
}

// Mean is the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// PopStdDev is the population standard deviation, 0 for fewer than two values.
func PopStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
