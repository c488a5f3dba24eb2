package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"talktonic/internal/apperr"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (compatible; TalkTonic/1.0)"
	pagePrompt       = "Summarize the following webpage content in 3-4 sentences:\n\n%s"
)

// Extractor selects how page text is pulled out of HTML.
type Extractor string

const (
	ExtractStrip       Extractor = "strip"
	ExtractDOM         Extractor = "dom"
	ExtractReadability Extractor = "readability"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// PageConfig tunes fetching and extraction.
type PageConfig struct {
	UserAgent string
	Timeout   time.Duration
	MaxSizeMB int
	MaxChars  int
	Extractor Extractor
}

// PageSummarizer fetches a page, extracts its text and asks the LLM for a summary.
type PageSummarizer struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	maxChars   int
	extractor  Extractor
	llm        Completer
}

func NewPageSummarizer(cfg PageConfig, llm Completer) *PageSummarizer {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 5
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = 3500
	}
	if cfg.Extractor == "" {
		cfg.Extractor = ExtractStrip
	}
	return &PageSummarizer{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  int64(cfg.MaxSizeMB) * 1024 * 1024,
		maxChars:  cfg.MaxChars,
		extractor: cfg.Extractor,
		llm:       llm,
	}
}

// Summarize fetches rawURL once and summarizes the first MaxChars characters
// of its text. An LLM failure is returned as the LLM's own error.
func (p *PageSummarizer) Summarize(ctx context.Context, rawURL string) (string, error) {
	text, err := p.Text(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return p.llm.Complete(ctx, fmt.Sprintf(pagePrompt, text))
}

// Text fetches rawURL and returns its normalized, truncated text.
func (p *PageSummarizer) Text(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", apperr.Network("webpage", fmt.Errorf("invalid URL: %w", err))
	}

	data, contentType, err := p.fetch(ctx, rawURL)
	if err != nil {
		log.Printf("[WebParser] fetch %s failed: %v", rawURL, err)
		return "", apperr.Network("webpage", err)
	}

	var text string
	if strings.Contains(contentType, "application/pdf") {
		log.Printf("[WebParser] Detected PDF, extracting text...")
		text, err = pdfText(data)
	} else {
		text, err = p.extract(data, parsed)
	}
	if err != nil {
		return "", apperr.Parse("webpage", err)
	}
	return truncateRunes(normalizeSpace(text), p.maxChars), nil
}

func (p *PageSummarizer) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", statusError(resp, rawURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, "", fmt.Errorf("content exceeds size limit of %dMB", p.maxBytes/(1024*1024))
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (p *PageSummarizer) extract(data []byte, pageURL *url.URL) (string, error) {
	switch p.extractor {
	case ExtractDOM:
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("failed to parse HTML: %w", err)
		}
		doc.Find("script, style, noscript, template").Remove()
		body := doc.Find("body")
		if body.Length() == 0 {
			return doc.Text(), nil
		}
		return body.Text(), nil
	case ExtractReadability:
		article, err := readability.FromReader(bytes.NewReader(data), pageURL)
		if err != nil {
			return "", fmt.Errorf("readability: %w", err)
		}
		if strings.TrimSpace(article.TextContent) == "" {
			return "", errors.New("readability found no article text")
		}
		return article.TextContent, nil
	default:
		return tagRe.ReplaceAllString(string(data), ""), nil
	}
}

// statusError mirrors the "404 Client Error: Not Found for url: ..." wording.
func statusError(resp *http.Response, rawURL string) error {
	class := "Client Error"
	if resp.StatusCode >= 500 {
		class = "Server Error"
	}
	return fmt.Errorf("%d %s: %s for url: %s", resp.StatusCode, class, http.StatusText(resp.StatusCode), rawURL)
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
