package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// subscriberBuffer is how many rounds a slow subscriber may lag before rounds are dropped for it.
const subscriberBuffer = 4

// Poller polls on a fixed interval and fans each round out to subscribers.
type Poller struct {
	svc      *Service
	interval time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	subs   map[chan Prices]struct{}
	closed bool
}

func NewPoller(svc *Service, interval time.Duration, log *slog.Logger) *Poller {
	if log == nil {
		log = slog.Default()
	}
	return &Poller{svc: svc, interval: interval, log: log, subs: make(map[chan Prices]struct{})}
}

// Subscribe returns a channel receiving every future round and a func that
// unsubscribes. The channel is closed on unsubscribe or when Run returns.
func (p *Poller) Subscribe() (<-chan Prices, func()) {
	ch := make(chan Prices, subscriberBuffer)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		close(ch)
		return ch, func() {}
	}
	p.subs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if _, ok := p.subs[ch]; ok {
				delete(p.subs, ch)
				close(ch)
			}
		})
	}
}

// Run polls immediately and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	defer p.closeAll()

	p.log.Info("poller started", "interval", p.interval.String())
	p.tick(ctx)

	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			p.log.Info("poller stopped")
			return
		case <-t.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	round := p.svc.Poll(ctx)
	p.publish(round)
}

func (p *Poller) publish(round Prices) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.subs {
		select {
		case ch <- clonePrices(round):
		default:
			p.log.Warn("subscriber lagging, round dropped")
		}
	}
}

func (p *Poller) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.subs {
		close(ch)
		delete(p.subs, ch)
	}
	p.closed = true
}
