package news

import (
	"context"
	"log/slog"
	"time"

	"pharmadash/internal/cache"
)

const (
	// DefaultTTL is how long a digest is served before sources are queried again.
	DefaultTTL = 900 * time.Second
	// MaxArticles caps the articles carried in a digest.
	MaxArticles = 5
	// descriptionRunes is where descriptions are cut before the ellipsis.
	descriptionRunes = 200
)

// DefaultQueries are the headline searches issued per refresh.
var DefaultQueries = []string{`"liver cancer" drug`, "hepatocellular carcinoma treatment"}

type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	Description string `json:"description"`
}

// Digest is a bounded selection of articles. TotalArticles counts everything gathered.
type Digest struct {
	TotalArticles int       `json:"total_articles"`
	Articles      []Article `json:"articles"`
}

// Truncate cuts s to descriptionRunes runes and appends "...". Empty stays empty.
func Truncate(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) > descriptionRunes {
		r = r[:descriptionRunes]
	}
	return string(r) + "..."
}

// Placeholder is served when no source produced anything.
func Placeholder(now time.Time) Article {
	return Article{
		Title:       "Novel Liver Cancer Immunotherapy Combination Reaches Primary Endpoint",
		URL:         "#",
		Source:      "Medical Intelligence",
		PublishedAt: now.Format(time.RFC3339),
		Description: "PD-1 inhibitor combined with anti-angiogenic drugs significantly prolongs survival...",
	}
}

// Aggregator gathers headlines, then journal feeds, then a placeholder.
type Aggregator struct {
	gnews   *GNewsClient
	reader  *FeedReader
	feeds   []Feed
	queries []string
	timeout time.Duration
	window  *cache.Window[Digest]
	log     *slog.Logger
	now     func() time.Time
}

type Option func(*Aggregator)

func WithFeeds(feeds []Feed) Option {
	return func(a *Aggregator) { a.feeds = feeds }
}

func WithQueries(q []string) Option {
	return func(a *Aggregator) { a.queries = q }
}

// WithRequestTimeout bounds each headline or feed request.
func WithRequestTimeout(d time.Duration) Option {
	return func(a *Aggregator) { a.timeout = d }
}

func WithTTL(ttl time.Duration) Option {
	return func(a *Aggregator) {
		if ttl > 0 {
			a.window.TTL = ttl
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
		a.window.Now = now
	}
}

func NewAggregator(gnews *GNewsClient, reader *FeedReader, opts ...Option) *Aggregator {
	a := &Aggregator{
		gnews:   gnews,
		reader:  reader,
		feeds:   DefaultFeeds(),
		queries: DefaultQueries,
		timeout: 10 * time.Second,
		window:  cache.NewWindow[Digest](DefaultTTL),
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Latest returns the cached digest, gathering a new one once the window expires.
func (a *Aggregator) Latest(ctx context.Context) (Digest, error) {
	d, err := a.window.Get(ctx, func(ctx context.Context) (Digest, error) {
		return a.gather(ctx), nil
	})
	if err != nil {
		return Digest{}, err
	}
	d.Articles = append([]Article(nil), d.Articles...)
	return d, nil
}

// Invalidate drops the cached digest.
func (a *Aggregator) Invalidate() { a.window.Invalidate() }

func (a *Aggregator) gather(ctx context.Context) Digest {
	articles := a.headlines(ctx)
	if len(articles) == 0 {
		articles = a.journals(ctx)
	}
	if len(articles) == 0 {
		articles = []Article{Placeholder(a.now())}
	}

	d := Digest{TotalArticles: len(articles), Articles: articles}
	if len(d.Articles) > MaxArticles {
		d.Articles = d.Articles[:MaxArticles]
	}
	a.log.Info("news gathered", "total", d.TotalArticles, "source", d.Articles[0].Source)
	return d
}

func (a *Aggregator) headlines(ctx context.Context) []Article {
	if a.gnews == nil || !a.gnews.Configured() {
		return nil
	}
	var out []Article
	seen := make(map[string]struct{})
	for _, q := range a.queries {
		got, err := withTimeout(ctx, a.timeout, func(ctx context.Context) ([]Article, error) {
			return a.gnews.TopHeadlines(ctx, q)
		})
		if err != nil {
			a.log.Debug("headline query failed", "query", q, "error", err)
			continue
		}
		for _, art := range got {
			if _, dup := seen[art.Title]; dup {
				continue
			}
			seen[art.Title] = struct{}{}
			out = append(out, art)
		}
	}
	return out
}

func (a *Aggregator) journals(ctx context.Context) []Article {
	if a.reader == nil {
		return nil
	}
	var out []Article
	for _, f := range a.feeds {
		got, err := withTimeout(ctx, a.timeout, func(ctx context.Context) ([]Article, error) {
			return a.reader.Read(ctx, f)
		})
		if err != nil {
			a.log.Debug("feed failed", "feed", f.Name, "error", err)
			continue
		}
		out = append(out, got...)
	}
	return out
}

func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return fn(ctx)
}
