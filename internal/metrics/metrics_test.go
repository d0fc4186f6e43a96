package metrics

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCompute_ZeroCapsFallBackToAverage(t *testing.T) {
	in := Input{
		Prices: map[string]float64{"A": 10, "B": 20},
		Caps:   map[string]float64{"A": 0, "B": 0},
	}
	got := Compute(in)
	if !near(got.AvgPrice, 15) || !near(got.CapWeightedIndex, 15) {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestCompute_CapWeighted(t *testing.T) {
	in := Input{
		Prices: map[string]float64{"A": 10, "B": 30},
		Caps:   map[string]float64{"A": 1, "B": 3},
	}
	got := Compute(in)
	if !near(got.CapWeightedIndex, 25) {
		t.Fatalf("want index 25, got %v", got.CapWeightedIndex)
	}
	if !near(got.AvgPrice, 20) {
		t.Fatalf("want avg 20, got %v", got.AvgPrice)
	}
}

func TestCompute_IndexIgnoresCompaniesWithoutCap(t *testing.T) {
	in := Input{
		Prices: map[string]float64{"A": 10, "B": 30, "C": 1000},
		Caps:   map[string]float64{"A": 1, "B": 3},
	}
	if got := Compute(in).CapWeightedIndex; !near(got, 25) {
		t.Fatalf("want 25, got %v", got)
	}
}

func TestCompute_Volatility(t *testing.T) {
	single := Compute(Input{Prices: map[string]float64{"A": 42}})
	if single.PriceVolatility != 0 {
		t.Fatalf("single company volatility should be exactly 0, got %v", single.PriceVolatility)
	}

	pair := Compute(Input{Prices: map[string]float64{"A": 10, "B": 20}})
	if !near(pair.PriceVolatility, 5) {
		t.Fatalf("want 5, got %v", pair.PriceVolatility)
	}
}

func TestCompute_EmptyAndPassThrough(t *testing.T) {
	got := Compute(Input{TrialCount: 3, NewsCount: 5})
	want := Snapshot{RnDActivity: 3, MediaAttention: 5}
	if got != want {
		t.Fatalf("want %+v, got %+v", want, got)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	in := Input{
		Prices: map[string]float64{"Roche": 45.1, "Bayer": 15.7, "Merck": 121.3, "AZN": 64.2},
		Caps:   map[string]float64{"Roche": 200, "Bayer": 50, "Merck": 150, "AZN": 140},
	}
	first := Compute(in)
	for i := 0; i < 50; i++ {
		if got := Compute(in); got != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}
