package score

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompute_Formulas(t *testing.T) {
	t.Parallel()

	// Arrange
	in := Input{
		Company:      "Roche",
		TrendPrices:  []float64{10, 20}, // population std 5
		Trials:       1,
		NewsCount:    5,
		MarketCap:    200,
		CurrentPrice: 45,
		AvgPrice:     50,
	}

	// Act
	got := Compute(in)

	// Assert
	require.InDelta(t, 25, got.PriceStability, 1e-9)
	require.InDelta(t, 45, got.RnDActivity, 1e-9)
	require.InDelta(t, 60, got.MediaAttention, 1e-9)
	require.InDelta(t, 100, got.MarketCapSize, 1e-9)
	require.InDelta(t, 50, got.PricePerformance, 1e-9)
	require.InDelta(t, 56, got.Total, 1e-9)
	require.Equal(t, Moderate, got.Band)
}

func TestCompute_Clamps(t *testing.T) {
	t.Parallel()

	got := Compute(Input{
		TrendPrices:  []float64{0, 100},
		Trials:       10,
		NewsCount:    50,
		MarketCap:    12,
		CurrentPrice: 10,
		AvgPrice:     100,
	})
	require.Zero(t, got.PriceStability)
	require.Equal(t, 100.0, got.RnDActivity)
	require.Equal(t, 100.0, got.MediaAttention)
	require.InDelta(t, 6, got.MarketCapSize, 1e-9)
	require.Zero(t, got.PricePerformance)
}

func TestCompute_NoAverageIsNeutral(t *testing.T) {
	t.Parallel()

	got := Compute(Input{CurrentPrice: 30})
	require.Equal(t, 50.0, got.PricePerformance)
	require.Equal(t, 100.0, got.PriceStability)
}

func TestBandFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, Strong, BandFor(70))
	require.Equal(t, Moderate, BandFor(69.99))
	require.Equal(t, Moderate, BandFor(40))
	require.Equal(t, Weak, BandFor(39.9))
}

func TestRank_OrderAndTies(t *testing.T) {
	t.Parallel()

	got := Rank([]Input{
		{Company: "B", MarketCap: 10},
		{Company: "A", MarketCap: 10},
		{Company: "C", MarketCap: 200},
	})
	require.Equal(t, "C", got[0].Company)
	require.Equal(t, "A", got[1].Company)
	require.Equal(t, "B", got[2].Company)
}

func TestClampPoints(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultPastPoints, ClampPoints(0))
	require.Equal(t, 1, ClampPoints(1))
	require.Equal(t, MaxPastPoints, ClampPoints(500))
}
