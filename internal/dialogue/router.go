package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"talktonic/internal/apperr"
	"talktonic/internal/chat"
	"talktonic/internal/format"
)

// Completer answers a single-turn prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Searcher runs a web search and returns a formatted summary.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// PageSummarizer fetches a page and summarizes its text.
type PageSummarizer interface {
	Summarize(ctx context.Context, url string) (string, error)
}

// Path names the branch a turn took.
type Path string

const (
	PathCSV        Path = "csv"
	PathURL        Path = "url"
	PathKeywordURL Path = "keyword_url"
	PathChat       Path = "chat"
	PathSearch     Path = "search"
	PathError      Path = "error"
)

// Outcome is the result of one routed turn. Reply is always set; Err carries
// the typed failure behind a marker reply.
type Outcome struct {
	Path  Path
	Input InputType
	Reply chat.Message
	Err   error
}

// Router decides which collaborator answers a piece of user input.
type Router struct {
	llm    Completer
	search Searcher
	pages  PageSummarizer

	triggers atomic.Pointer[Triggers]
}

func NewRouter(llm Completer, search Searcher, pages PageSummarizer, triggers Triggers) *Router {
	r := &Router{llm: llm, search: search, pages: pages}
	r.SetTriggers(triggers)
	return r
}

// SetTriggers swaps the keyword and uncertainty lists for subsequent turns.
func (r *Router) SetTriggers(t Triggers) {
	n := t.Normalized()
	r.triggers.Store(&n)
}

func (r *Router) Triggers() Triggers {
	return *r.triggers.Load()
}

// Route records input on the session, dispatches it and records exactly one bot reply.
func (r *Router) Route(ctx context.Context, sess *chat.Session, input string) (out Outcome) {
	sess.Append(chat.UserText(input))
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[Router] recovered panic for session %s: %v", sess.ID, p)
			out = failed(PathError, Classify(input), apperr.Routing("route", fmt.Errorf("%v", p)))
		}
		sess.Append(out.Reply)
	}()
	return r.dispatch(ctx, input)
}

func (r *Router) dispatch(ctx context.Context, input string) Outcome {
	kind := Classify(input)
	trimmed := strings.TrimSpace(input)

	// CSV shape wins over everything, including JSON-looking text.
	if IsCSV(input) {
		text, err := format.DescribeCSV(input)
		if err != nil {
			return failed(PathCSV, kind, apperr.Parse("csv", err))
		}
		return succeeded(PathCSV, kind, text)
	}

	if IsURL(input) || kind == TypeURL {
		return r.summarize(ctx, PathURL, kind, trimmed)
	}

	t := r.Triggers()
	if t.WantsPageSummary(strings.ToLower(trimmed)) {
		if u, ok := ExtractURL(trimmed); ok {
			return r.summarize(ctx, PathKeywordURL, kind, u)
		}
	}

	if r.llm == nil {
		return failed(PathError, kind, apperr.Routing("route", errors.New("no LLM gateway configured")))
	}
	completion, err := r.llm.Complete(ctx, trimmed)
	if err != nil {
		return failed(PathChat, kind, typed("llm", err))
	}
	if !t.SoundsUncertain(completion) {
		return succeeded(PathChat, kind, completion)
	}

	log.Printf("[Router] completion sounds uncertain, falling back to web search")
	if r.search == nil {
		return failed(PathError, kind, apperr.Routing("route", errors.New("no search gateway configured")))
	}
	result, err := r.search.Search(ctx, trimmed)
	if err != nil {
		return failed(PathSearch, kind, typed("search", err))
	}
	return succeeded(PathSearch, kind, result)
}

func (r *Router) summarize(ctx context.Context, path Path, kind InputType, url string) Outcome {
	if r.pages == nil {
		return failed(PathError, kind, apperr.Routing("route", errors.New("no page summarizer configured")))
	}
	summary, err := r.pages.Summarize(ctx, url)
	if err != nil {
		return failed(path, kind, typed("webpage", err))
	}
	return succeeded(path, kind, summary)
}

func succeeded(path Path, kind InputType, text string) Outcome {
	return Outcome{Path: path, Input: kind, Reply: chat.BotText(text)}
}

func failed(path Path, kind InputType, err error) Outcome {
	return Outcome{Path: path, Input: kind, Reply: chat.BotText(apperr.Marker(err)), Err: err}
}

// typed tags errors from third-party collaborators with op so they get the right marker.
func typed(op string, err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.Network(op, err)
}
