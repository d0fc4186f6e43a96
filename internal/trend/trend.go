package trend

import (
	"sort"
	"sync"

	"pharmadash/internal/provider"
)

// DefaultCapacity is how many quotes are kept per company.
const DefaultCapacity = 100

// series is one company's history, guarded by its own lock.
type series struct {
	mu     sync.Mutex
	quotes []provider.Quote
}

// Cache holds the most recent quotes per company, oldest first.
// Appends to different companies never contend with each other.
type Cache struct {
	capacity int

	mu     sync.RWMutex
	series map[string]*series
}

func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{capacity: capacity, series: make(map[string]*series)}
}

func (c *Cache) Capacity() int { return c.capacity }

func (c *Cache) get(name string, create bool) *series {
	c.mu.RLock()
	s, ok := c.series[name]
	c.mu.RUnlock()
	if ok || !create {
		return s
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok = c.series[name]; !ok {
		s = &series{}
		c.series[name] = s
	}
	return s
}

// Record appends q and drops the oldest entries beyond capacity.
// A timestamp earlier than the previous one is raised to it so reads stay chronological.
func (c *Cache) Record(name string, q provider.Quote) {
	s := c.get(name, true)
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.quotes); n > 0 && q.Timestamp.Before(s.quotes[n-1].Timestamp) {
		q.Timestamp = s.quotes[n-1].Timestamp
	}
	s.quotes = append(s.quotes, q)
	if over := len(s.quotes) - c.capacity; over > 0 {
		// Copy down so the backing array does not grow without bound.
		kept := make([]provider.Quote, c.capacity, c.capacity+1)
		copy(kept, s.quotes[over:])
		s.quotes = kept
	}
}

// Read returns up to n of the newest quotes in chronological order.
// The result is never nil and is safe for the caller to modify.
func (c *Cache) Read(name string, n int) []provider.Quote {
	s := c.get(name, false)
	if s == nil || n <= 0 {
		return []provider.Quote{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > len(s.quotes) {
		n = len(s.quotes)
	}
	out := make([]provider.Quote, n)
	copy(out, s.quotes[len(s.quotes)-n:])
	return out
}

// Len returns how many quotes are held for name.
func (c *Cache) Len(name string) int {
	s := c.get(name, false)
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.quotes)
}

// Companies lists every company with at least one recorded quote, sorted.
func (c *Cache) Companies() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Snapshot reads the last n quotes of every company.
func (c *Cache) Snapshot(n int) map[string][]provider.Quote {
	names := c.Companies()
	out := make(map[string][]provider.Quote, len(names))
	for _, name := range names {
		out[name] = c.Read(name, n)
	}
	return out
}

// Prices extracts the price column of quotes.
func Prices(quotes []provider.Quote) []float64 {
	out := make([]float64, len(quotes))
	for i, q := range quotes {
		out[i] = q.Price
	}
	return out
}

// Move is the step from one point to the next.
type Move struct {
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

// Delta is cur - prev, and that difference as a percentage of prev (0 when prev is 0).
func Delta(prev, cur float64) Move {
	m := Move{Change: cur - prev}
	if prev != 0 {
		m.ChangePct = m.Change / prev * 100
	}
	return m
}

// LastMove compares the last two quotes. Fewer than two means no move.
func LastMove(quotes []provider.Quote) Move {
	n := len(quotes)
	if n < 2 {
		return Move{}
	}
	return Delta(quotes[n-2].Price, quotes[n-1].Price)
}
