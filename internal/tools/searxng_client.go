package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"talktonic/internal/apperr"
)

// SearXNGClient queries a self-hosted SearXNG instance.
type SearXNGClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewSearXNGClient(baseURL string, timeout time.Duration) *SearXNGClient {
	return &SearXNGClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *SearXNGClient) Name() string { return "searxng" }

func (c *SearXNGClient) Query(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SearXNG returned status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, apperr.Parse("search", errors.New("SearXNG returned invalid JSON"))
	}

	var results []SearchResult
	gjson.GetBytes(body, "results").ForEach(func(_, r gjson.Result) bool {
		if maxResults > 0 && len(results) >= maxResults {
			return false
		}
		results = append(results, SearchResult{
			Title:   r.Get("title").String(),
			Link:    r.Get("url").String(),
			Snippet: r.Get("content").String(),
		})
		return true
	})
	return results, nil
}
