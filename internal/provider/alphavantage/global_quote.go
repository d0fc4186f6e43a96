package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"pharmadash/internal/company"
	"pharmadash/internal/httpx"
	"pharmadash/internal/provider"
)

type globalQuoteResponse struct {
	GlobalQuote map[string]string `json:"Global Quote"`
	// Throttled or invalid requests come back as 200 with one of these set.
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// GlobalQuote returns the latest traded price for symbol.
func (c *Client) GlobalQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if !c.Configured() {
		return decimal.Zero, provider.ErrNotConfigured
	}

	query := maps.Clone(c.query)
	query.Set("function", "GLOBAL_QUOTE")
	query.Set("symbol", symbol)

	url := fmt.Sprintf("%s/query?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
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

	var body globalQuoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decoding global quote: %w", err)
	}
	switch {
	case body.ErrorMessage != "":
		return decimal.Zero, fmt.Errorf("alphavantage: %s", body.ErrorMessage)
	case body.Note != "":
		return decimal.Zero, fmt.Errorf("alphavantage throttled: %s", body.Note)
	case body.Information != "":
		return decimal.Zero, fmt.Errorf("alphavantage: %s", body.Information)
	}

	raw := strings.TrimSpace(body.GlobalQuote["05. price"])
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: missing price for %s", provider.ErrNoPrice, symbol)
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing price %q: %w", raw, err)
	}
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive price %s", provider.ErrNoPrice, raw)
	}
	return price, nil
}

// Name implements provider.PriceSource.
func (c *Client) Name() string { return "alphavantage" }

// Price implements provider.PriceSource.
func (c *Client) Price(ctx context.Context, co company.Company) (float64, error) {
	p, err := c.GlobalQuote(ctx, co.Symbol)
	if err != nil {
		return 0, err
	}
	return p.InexactFloat64(), nil
}
