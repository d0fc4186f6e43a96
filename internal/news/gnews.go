package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"pharmadash/internal/httpx"
)

const gnewsBaseURL = "https://gnews.io"

// HTTPClient describes an HTTP client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var errNoKey = errors.New("gnews: no api key")

// GNewsClient queries the GNews top-headlines endpoint.
type GNewsClient struct {
	baseURL    string
	httpClient HTTPClient
	query      url.Values
}

type GNewsOption func(*GNewsClient)

func WithGNewsBaseURL(baseURL string) GNewsOption {
	return func(c *GNewsClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithGNewsHTTPClient(httpClient HTTPClient) GNewsOption {
	return func(c *GNewsClient) { c.httpClient = httpClient }
}

func NewGNewsClient(key string, opts ...GNewsOption) *GNewsClient {
	c := &GNewsClient{
		baseURL:    gnewsBaseURL,
		httpClient: http.DefaultClient,
		query: url.Values{
			"category": []string{"science"},
			"lang":     []string{"en"},
			"max":      []string{"5"},
		},
	}
	if key != "" {
		c.query.Set("apikey", key)
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *GNewsClient) Configured() bool { return c.query.Get("apikey") != "" }

type gnewsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// TopHeadlines returns the science headlines matching q.
func (c *GNewsClient) TopHeadlines(ctx context.Context, q string) ([]Article, error) {
	if !c.Configured() {
		return nil, errNoKey
	}
	params := url.Values{}
	for k, v := range c.query {
		params[k] = v
	}
	if q != "" {
		params.Set("q", q)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v4/top-headlines?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", httpx.RedactURL(err))
	}
	defer res.Body.Close()

	if err := httpx.CheckStatus(res); err != nil {
		return nil, err
	}

	var body gnewsResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding headlines: %w", err)
	}

	out := make([]Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		src := a.Source.Name
		if src == "" {
			src = "Unknown"
		}
		out = append(out, Article{
			Title:       a.Title,
			URL:         a.URL,
			Source:      src,
			PublishedAt: a.PublishedAt,
			Description: Truncate(a.Description),
		})
	}
	return out, nil
}
