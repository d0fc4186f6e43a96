package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"pharmadash/internal/company"
	"pharmadash/internal/httpx"
	"pharmadash/internal/provider"
)

// capFields are the spellings the endpoint has used for the capitalization field.
var capFields = []string{"marketCap", "market_cap", "marketcap"}

var billion = decimal.New(1, 9)

// MarketCapitalization returns the raw capitalization for symbol in currency units.
func (c *Client) MarketCapitalization(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if !c.Configured() {
		return decimal.Zero, provider.ErrNotConfigured
	}

	u := fmt.Sprintf("%s/api/v3/market-capitalization/%s?%s", c.baseURL, url.PathEscape(symbol), c.query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return decimal.Zero, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("performing request: %w", httpx.RedactURL(err))
	}
	defer res.Body.Close()

	if err := httpx.CheckStatus(res); err != nil {
		return decimal.Zero, err
	}

	var rows []map[string]any
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return decimal.Zero, fmt.Errorf("decoding market capitalization: %w", err)
	}
	if len(rows) == 0 {
		return decimal.Zero, fmt.Errorf("%w: empty result for %s", provider.ErrNoMarketCap, symbol)
	}

	first := rows[0]
	for _, field := range capFields {
		v, ok := first[field]
		if !ok || v == nil {
			continue
		}
		num, ok := v.(json.Number)
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %s is %T, not a number", provider.ErrNoMarketCap, field, v)
		}
		d, err := decimal.NewFromString(num.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("parsing %s: %w", field, err)
		}
		if d.IsZero() {
			continue
		}
		if d.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: negative %s", provider.ErrNoMarketCap, field)
		}
		return d, nil
	}
	return decimal.Zero, fmt.Errorf("%w: no capitalization field for %s", provider.ErrNoMarketCap, symbol)
}

// Name implements provider.CapSource.
func (c *Client) Name() string { return "fmp" }

// MarketCap implements provider.CapSource, in billions.
func (c *Client) MarketCap(ctx context.Context, co company.Company) (float64, error) {
	d, err := c.MarketCapitalization(ctx, co.Symbol)
	if err != nil {
		return 0, err
	}
	return d.Div(billion).InexactFloat64(), nil
}
