package company

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTable_Defaults(t *testing.T) {
	t.Parallel()

	tbl, err := NewTable(Defaults())
	require.NoError(t, err)
	require.Equal(t, 7, tbl.Len())

	c, ok := tbl.BySymbol("MRK")
	require.True(t, ok)
	require.Equal(t, "Merck", c.Name)
	require.InDelta(t, 120.0, c.BasePrice, 1e-9)

	_, ok = tbl.ByName("Pfizer")
	require.False(t, ok)

	require.Equal(t, "Roche", tbl.Names()[0])
}

func TestNewTable_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	_, err := NewTable([]Company{
		{Name: "A", Symbol: "AAA"},
		{Name: "A", Symbol: "BBB"},
	})
	require.Error(t, err)

	_, err = NewTable([]Company{
		{Name: "A", Symbol: "AAA"},
		{Name: "B", Symbol: "AAA"},
	})
	require.Error(t, err)

	_, err = NewTable([]Company{{Name: "", Symbol: "AAA"}})
	require.Error(t, err)
}

func TestAll_ReturnsCopy(t *testing.T) {
	t.Parallel()

	tbl, err := NewTable([]Company{{Name: "A", Symbol: "AAA", BasePrice: 1}})
	require.NoError(t, err)

	all := tbl.All()
	all[0].BasePrice = 99

	c, _ := tbl.ByName("A")
	require.InDelta(t, 1.0, c.BasePrice, 1e-9)
}

func TestOrDefault(t *testing.T) {
	t.Parallel()

	var c Company
	require.InDelta(t, DefaultBasePrice, c.BasePriceOrDefault(), 1e-9)
	require.InDelta(t, DefaultMarketCap, c.MarketCapOrDefault(), 1e-9)
}
