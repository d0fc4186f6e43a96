package news

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/gofeed"

	"pharmadash/internal/httpx"
)

// Feed is a named RSS or Atom source.
type Feed struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// DefaultFeeds are the journals read when headlines are unavailable.
func DefaultFeeds() []Feed {
	return []Feed{
		{Name: "Nature", URL: "https://www.nature.com/nature.rss"},
		{Name: "Nature Medicine", URL: "https://www.nature.com/nm.rss"},
		{Name: "Cancer Cell", URL: "https://www.cell.com/cancer-cell/current.rss"},
		{Name: "Science", URL: "https://www.science.org/action/showFeed?type=etoc&feed=rss&jc=science"},
		{Name: "The Lancet", URL: "https://www.thelancet.com/rssfeed/lancet_current.xml"},
		{Name: "NEJM", URL: "https://www.nejm.org/action/showFeed?jc=nejm&type=etoc&feed=rss"},
	}
}

// entriesPerFeed is how many items are taken from the top of each feed.
const entriesPerFeed = 2

// FeedReader downloads a feed and parses it with gofeed.
type FeedReader struct {
	httpClient HTTPClient
	parser     *gofeed.Parser
}

func NewFeedReader(httpClient HTTPClient) *FeedReader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &FeedReader{httpClient: httpClient, parser: gofeed.NewParser()}
}

// Read returns up to entriesPerFeed articles from f, titles prefixed with the feed name.
func (r *FeedReader) Read(ctx context.Context, f Feed) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	res, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", f.Name, err)
	}
	defer res.Body.Close()

	if err := httpx.CheckStatus(res); err != nil {
		return nil, err
	}

	feed, err := r.parser.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.Name, err)
	}

	items := feed.Items
	if len(items) > entriesPerFeed {
		items = items[:entriesPerFeed]
	}
	out := make([]Article, 0, len(items))
	for _, it := range items {
		out = append(out, Article{
			Title:       "[" + f.Name + "] " + it.Title,
			URL:         it.Link,
			Source:      f.Name,
			PublishedAt: it.Published,
			Description: Truncate(it.Description),
		})
	}
	return out, nil
}
