package tools

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talktonic/internal/apperr"
)

type stubLLM struct {
	reply   string
	err     error
	prompts []string
}

func (s *stubLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, s.err
}

const googleBody = `{"items":[
 {"title":"Go","link":"https://go.dev","snippet":"The Go language"},
 {"title":"","link":"https://x.io","snippet":"untitled"},
 {"title":"Three","link":"https://3.io","snippet":"s3"},
 {"title":"Four","link":"https://4.io","snippet":"s4"},
 {"title":"Five","link":"https://5.io","snippet":"s5"},
 {"title":"Six","link":"https://6.io","snippet":"s6"}
]}`

func googleServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "k", q.Get("key"))
		assert.Equal(t, "cx1", q.Get("cx"))
		assert.Equal(t, "5", q.Get("num"))
		assert.Equal(t, "golang news", q.Get("q"))
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchGateway_GoogleSummaryAndList(t *testing.T) {
	srv := googleServer(t, http.StatusOK, googleBody)
	llm := &stubLLM{reply: "Go is a language."}
	g := NewSearchGateway(NewGoogleClient(srv.URL, "k", "cx1", time.Second), llm, 5)

	out, err := g.Search(context.Background(), "golang news")
	require.NoError(t, err)

	require.Len(t, llm.prompts, 1)
	assert.True(t, strings.HasPrefix(llm.prompts[0], searchSummaryPrompt+"Go — The Go language (https://go.dev)\n\n"))
	assert.NotContains(t, llm.prompts[0], "Six")

	want := "Search Summary:\nGo is a language.\n\n\n\nTop Results:\n" +
		"1. Go — https://go.dev\n" +
		"2. No title — https://x.io\n" +
		"3. Three — https://3.io\n" +
		"4. Four — https://4.io\n" +
		"5. Five — https://5.io\n"
	assert.Equal(t, want, out)
}

func TestSearchGateway_NoResults(t *testing.T) {
	srv := googleServer(t, http.StatusOK, `{"searchInformation":{}}`)
	llm := &stubLLM{}
	g := NewSearchGateway(NewGoogleClient(srv.URL, "k", "cx1", time.Second), llm, 5)

	out, err := g.Search(context.Background(), "golang news")
	require.NoError(t, err)
	assert.Equal(t, "No relevant results found.", out)
	assert.Empty(t, llm.prompts)
}

func TestSearchGateway_SummaryFailureKeepsList(t *testing.T) {
	srv := googleServer(t, http.StatusOK, googleBody)
	llm := &stubLLM{err: apperr.Network("llm", errors.New("status 429: rate limited"))}
	g := NewSearchGateway(NewGoogleClient(srv.URL, "k", "cx1", time.Second), llm, 5)

	out, err := g.Search(context.Background(), "golang news")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Search Summary:\n[Error calling LLM: status 429: rate limited]\n"))
	assert.Contains(t, out, "1. Go — https://go.dev\n")
}

func TestSearchGateway_ProviderErrors(t *testing.T) {
	srv := googleServer(t, http.StatusForbidden, `{"error":{"message":"API key not valid"}}`)
	g := NewSearchGateway(NewGoogleClient(srv.URL, "k", "cx1", time.Second), &stubLLM{}, 5)
	_, err := g.Search(context.Background(), "golang news")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
	assert.Equal(t, "[Error during web search: google returned status 403: API key not valid]", apperr.Marker(err))

	bad := googleServer(t, http.StatusOK, `{not json`)
	g = NewSearchGateway(NewGoogleClient(bad.URL, "k", "cx1", time.Second), &stubLLM{}, 5)
	_, err = g.Search(context.Background(), "golang news")
	assert.Equal(t, apperr.KindParse, apperr.KindOf(err))
}

func TestSearXNGClient_Query(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		io.WriteString(w, `{"query":"q","results":[
			{"title":"A","url":"https://a.io","content":"ca"},
			{"title":"B","url":"https://b.io","content":"cb"},
			{"title":"C","url":"https://c.io","content":"cc"}]}`)
	}))
	defer srv.Close()

	results, err := NewSearXNGClient(srv.URL, time.Second).Query(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Equal(t, []SearchResult{
		{Title: "A", Link: "https://a.io", Snippet: "ca"},
		{Title: "B", Link: "https://b.io", Snippet: "cb"},
	}, results)
}
