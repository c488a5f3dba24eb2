package tools

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"talktonic/internal/apperr"
)

const (
	searchSummaryPrompt = "Summarize the following search snippets concisely in 3 sentences:\n\n"
	noSearchResults     = "No relevant results found."
)

// Completer answers a single-turn prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// SearchResult is one hit from a search provider.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchProvider runs a raw query against a search backend.
type SearchProvider interface {
	Name() string
	Query(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// SearchGateway turns provider hits into a summarized, listed reply.
type SearchGateway struct {
	provider   SearchProvider
	llm        Completer
	maxResults int
}

func NewSearchGateway(provider SearchProvider, llm Completer, maxResults int) *SearchGateway {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &SearchGateway{provider: provider, llm: llm, maxResults: maxResults}
}

// Search queries the provider once and summarizes the top results with the LLM.
// A failed summary keeps the result list and shows the LLM marker in its place.
func (g *SearchGateway) Search(ctx context.Context, query string) (string, error) {
	results, err := g.provider.Query(ctx, query, g.maxResults)
	if err != nil {
		log.Printf("[Search] %s query failed: %v", g.provider.Name(), err)
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return "", err
		}
		return "", apperr.Network("search", err)
	}
	if len(results) > g.maxResults {
		results = results[:g.maxResults]
	}
	if len(results) == 0 {
		return noSearchResults, nil
	}

	summary, err := g.llm.Complete(ctx, searchSummaryPrompt+joinSnippets(results))
	if err != nil {
		log.Printf("[Search] summary failed: %v", err)
		var ae *apperr.Error
		if !errors.As(err, &ae) {
			err = apperr.Network("llm", err)
		}
		summary = apperr.Marker(err)
	}
	return FormatSearch(summary, results), nil
}

// FormatSearch renders the reply shown to the visitor.
func FormatSearch(summary string, results []SearchResult) string {
	var b strings.Builder
	b.WriteString("Search Summary:\n")
	b.WriteString(summary)
	b.WriteString("\n\n\n\nTop Results:\n")
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = "No title"
		}
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, title, r.Link)
	}
	return b.String()
}

func joinSnippets(results []SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("%s — %s (%s)", r.Title, r.Snippet, r.Link)
	}
	return strings.Join(parts, "\n\n")
}
