package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"pharmadash/internal/company"
)

var (
	// ErrNotConfigured marks a tier skipped because its API key or endpoint is absent.
	ErrNotConfigured = errors.New("provider not configured")
	ErrNoPrice       = errors.New("no usable price")
	ErrNoMarketCap   = errors.New("no usable market cap")
)

// Source labels which tier produced a price.
type Source int

const (
	SourceUnknown Source = iota
	PrimaryAPI
	SecondaryAPI
	Simulated
)

func (s Source) String() string {
	switch s {
	case PrimaryAPI:
		return "Alpha Vantage"
	case SecondaryAPI:
		return "Yahoo Finance"
	case Simulated:
		return "Simulated Data"
	default:
		return "Unknown"
	}
}

func (s Source) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Source) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Alpha Vantage":
		*s = PrimaryAPI
	case "Yahoo Finance":
		*s = SecondaryAPI
	case "Simulated Data":
		*s = Simulated
	case "Unknown", "":
		*s = SourceUnknown
	default:
		return fmt.Errorf("unknown source %q", string(b))
	}
	return nil
}

// Quote is one polled price sample. It is never mutated after creation.
type Quote struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Source    Source    `json:"source"`
}

// PriceSource returns a current price for a company.
//
//go:generate mockgen -package=resolver_test -destination=../resolver/mock_sources_test.go -source=provider.go PriceSource,CapSource
type PriceSource interface {
	Name() string
	Price(ctx context.Context, c company.Company) (float64, error)
}

// CapSource returns a market capitalization in billions.
type CapSource interface {
	Name() string
	MarketCap(ctx context.Context, c company.Company) (float64, error)
}

// Usable reports whether v is a finite, strictly positive number.
func Usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
