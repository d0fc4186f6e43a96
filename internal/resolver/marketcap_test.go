package resolver_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pharmadash/internal/company"
	"pharmadash/internal/provider"
	"pharmadash/internal/provider/fmp"
	"pharmadash/internal/resolver"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestResolveMarketCaps_CachedWithinWindow(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	primary := NewMockCapSource(ctrl)
	primary.EXPECT().Name().Return("fmp").AnyTimes()
	primary.EXPECT().MarketCap(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, c company.Company) (float64, error) {
			if c.Symbol == "MRK" {
				return 251.3, nil
			}
			return 0, errors.New("not found")
		}).Times(2)
	secondary := NewMockCapSource(ctrl)
	secondary.EXPECT().Name().Return("yahoo").AnyTimes()
	secondary.EXPECT().MarketCap(gomock.Any(), gomock.Any()).Return(0.0, provider.ErrNoMarketCap).Times(1)

	clock := &stepClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := resolver.NewMarketCapResolver(testTable(t), []resolver.CapTier{
		{Source: primary, Timeout: 8 * time.Second},
		{Source: secondary},
	}, 900*time.Second, resolver.WithCapClock(clock.Now))

	// Act
	first := r.ResolveMarketCaps(t.Context())
	clock.Advance(10 * time.Minute)
	second := r.ResolveMarketCaps(t.Context())

	// Assert
	require.Equal(t, map[string]float64{"Merck": 251.3, "BeiGene": 12}, first)
	require.Equal(t, first, second)
}

func TestResolveMarketCaps_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	src := NewMockCapSource(ctrl)
	src.EXPECT().Name().Return("fmp").AnyTimes()
	gomock.InOrder(
		src.EXPECT().MarketCap(gomock.Any(), gomock.Any()).Return(100.0, nil).Times(2),
		src.EXPECT().MarketCap(gomock.Any(), gomock.Any()).Return(200.0, nil).Times(2),
	)

	clock := &stepClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := resolver.NewMarketCapResolver(testTable(t), []resolver.CapTier{{Source: src}}, 900*time.Second,
		resolver.WithCapClock(clock.Now))

	require.Equal(t, map[string]float64{"Merck": 100, "BeiGene": 100}, r.ResolveMarketCaps(t.Context()))
	clock.Advance(901 * time.Second)
	require.Equal(t, map[string]float64{"Merck": 200, "BeiGene": 200}, r.ResolveMarketCaps(t.Context()))
}

func TestResolveMarketCaps_Invalidate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	src := NewMockCapSource(ctrl)
	src.EXPECT().Name().Return("fmp").AnyTimes()
	src.EXPECT().MarketCap(gomock.Any(), gomock.Any()).Return(42.0, nil).Times(4)

	r := resolver.NewMarketCapResolver(testTable(t), []resolver.CapTier{{Source: src}}, time.Hour)
	r.ResolveMarketCaps(t.Context())
	r.Invalidate()
	r.ResolveMarketCaps(t.Context())
}

func TestResolveMarketCaps_ReturnsIndependentCopies(t *testing.T) {
	t.Parallel()

	r := resolver.NewMarketCapResolver(testTable(t), nil, time.Hour)
	first := r.ResolveMarketCaps(t.Context())
	first["Merck"] = -1

	require.Equal(t, 150.0, r.ResolveMarketCaps(t.Context())["Merck"])
}

func TestResolveMarketCaps_NoKeysUsesStatic(t *testing.T) {
	t.Parallel()

	r := resolver.NewMarketCapResolver(testTable(t), []resolver.CapTier{
		{Source: fmp.NewClient(""), Timeout: 8 * time.Second},
	}, 0)

	require.Equal(t, map[string]float64{"Merck": 150, "BeiGene": 12}, r.ResolveMarketCaps(t.Context()))
}

func TestResolveMarketCaps_ConcurrentCallersShareOneFill(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	src := NewMockCapSource(ctrl)
	src.EXPECT().Name().Return("fmp").AnyTimes()
	src.EXPECT().MarketCap(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, company.Company) (float64, error) {
		time.Sleep(10 * time.Millisecond)
		return 77.0, nil
	}).Times(2)

	r := resolver.NewMarketCapResolver(testTable(t), []resolver.CapTier{{Source: src}}, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			caps := r.ResolveMarketCaps(t.Context())
			assert.Equal(t, 77.0, caps["Merck"])
		}()
	}
	wg.Wait()
}

func TestMarketCap_UnknownCompanyDefault(t *testing.T) {
	t.Parallel()

	r := resolver.NewMarketCapResolver(testTable(t), nil, time.Hour)
	require.Equal(t, company.DefaultMarketCap, r.MarketCap(t.Context(), company.Company{Name: "Other", Symbol: "OTH"}))
}
