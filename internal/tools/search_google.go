package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"talktonic/internal/apperr"
)

const DefaultGoogleURL = "https://www.googleapis.com/customsearch/v1"

// GoogleClient queries the Custom Search JSON API.
type GoogleClient struct {
	BaseURL    string
	APIKey     string
	EngineID   string
	HTTPClient *http.Client
}

func NewGoogleClient(baseURL, apiKey, engineID string, timeout time.Duration) *GoogleClient {
	if baseURL == "" {
		baseURL = DefaultGoogleURL
	}
	return &GoogleClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		EngineID:   engineID,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (c *GoogleClient) Name() string { return "google" }

func (c *GoogleClient) Query(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("key", c.APIKey)
	q.Set("cx", c.EngineID)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(maxResults))
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
		detail := gjson.GetBytes(body, "error.message").String()
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("google returned status %d: %s", resp.StatusCode, detail)
	}
	if !gjson.ValidBytes(body) {
		return nil, apperr.Parse("search", errors.New("google returned invalid JSON"))
	}

	var results []SearchResult
	gjson.GetBytes(body, "items").ForEach(func(_, item gjson.Result) bool {
		results = append(results, SearchResult{
			Title:   item.Get("title").String(),
			Link:    item.Get("link").String(),
			Snippet: item.Get("snippet").String(),
		})
		return len(results) < maxResults
	})
	return results, nil
}
