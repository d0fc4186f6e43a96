package company

import (
	"fmt"
	"strings"
)

// Fallbacks used when a symbol or company is not in the table.
const (
	DefaultBasePrice = 50.0
	DefaultMarketCap = 10.0
)

// Company is a monitored issuer. Name is the unique key.
type Company struct {
	Name              string  `json:"name" yaml:"name"`
	Symbol            string  `json:"symbol" yaml:"symbol"`
	BasePrice         float64 `json:"base_price" yaml:"base_price"`
	FallbackMarketCap float64 `json:"fallback_market_cap" yaml:"fallback_market_cap"` // billions
}

// Defaults is the built-in watch list.
func Defaults() []Company {
	return []Company{
		{Name: "Roche", Symbol: "RHHBY", BasePrice: 45, FallbackMarketCap: 200},
		{Name: "Bayer", Symbol: "BAYRY", BasePrice: 15.5, FallbackMarketCap: 50},
		{Name: "Hengrui Medicine", Symbol: "600276.SS", BasePrice: 35, FallbackMarketCap: 30},
		{Name: "BeiGene", Symbol: "BGNE", BasePrice: 180, FallbackMarketCap: 12},
		{Name: "Merck", Symbol: "MRK", BasePrice: 120, FallbackMarketCap: 150},
		{Name: "Novartis", Symbol: "NVS", BasePrice: 95, FallbackMarketCap: 180},
		{Name: "AstraZeneca", Symbol: "AZN", BasePrice: 65, FallbackMarketCap: 140},
	}
}

// Table is an immutable, ordered lookup over the configured companies.
type Table struct {
	list     []Company
	byName   map[string]int
	bySymbol map[string]int
}

func NewTable(companies []Company) (*Table, error) {
	t := &Table{
		list:     make([]Company, 0, len(companies)),
		byName:   make(map[string]int, len(companies)),
		bySymbol: make(map[string]int, len(companies)),
	}
	for _, c := range companies {
		c.Name = strings.TrimSpace(c.Name)
		c.Symbol = strings.TrimSpace(c.Symbol)
		if c.Name == "" {
			return nil, fmt.Errorf("company with symbol %q has no name", c.Symbol)
		}
		if c.Symbol == "" {
			return nil, fmt.Errorf("company %q has no symbol", c.Name)
		}
		if _, dup := t.byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate company name %q", c.Name)
		}
		if _, dup := t.bySymbol[c.Symbol]; dup {
			return nil, fmt.Errorf("duplicate symbol %q", c.Symbol)
		}
		t.byName[c.Name] = len(t.list)
		t.bySymbol[c.Symbol] = len(t.list)
		t.list = append(t.list, c)
	}
	return t, nil
}

// All returns the companies in configuration order.
func (t *Table) All() []Company {
	out := make([]Company, len(t.list))
	copy(out, t.list)
	return out
}

func (t *Table) Names() []string {
	out := make([]string, len(t.list))
	for i, c := range t.list {
		out[i] = c.Name
	}
	return out
}

func (t *Table) Len() int { return len(t.list) }

func (t *Table) ByName(name string) (Company, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Company{}, false
	}
	return t.list[i], true
}

func (t *Table) BySymbol(symbol string) (Company, bool) {
	i, ok := t.bySymbol[symbol]
	if !ok {
		return Company{}, false
	}
	return t.list[i], true
}

// BasePriceOrDefault returns the simulation anchor for c.
func (c Company) BasePriceOrDefault() float64 {
	if c.BasePrice > 0 {
		return c.BasePrice
	}
	return DefaultBasePrice
}

// MarketCapOrDefault returns the static capitalization for c, in billions.
func (c Company) MarketCapOrDefault() float64 {
	if c.FallbackMarketCap > 0 {
		return c.FallbackMarketCap
	}
	return DefaultMarketCap
}
