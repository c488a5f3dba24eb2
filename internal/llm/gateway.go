package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"talktonic/internal/apperr"
)

const (
	DefaultURL   = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel = "llama3-8b-8192"
)

// Gateway asks an OpenAI-compatible chat completion endpoint single-turn questions.
type Gateway struct {
	client *Client
	url    string
	model  string
	apiKey string
}

func NewGateway(client *Client, url, model, apiKey string) *Gateway {
	if url == "" {
		url = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gateway{client: client, url: url, model: model, apiKey: apiKey}
}

// WithClient returns a copy of g that submits through client, e.g. at another priority.
func (g *Gateway) WithClient(client *Client) *Gateway {
	c := *g
	c.client = client
	return &c
}

// Complete sends prompt to the configured model.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	return g.CompleteWith(ctx, prompt, g.model)
}

// CompleteWith sends prompt as a single user message to model and returns the
// first choice's content.
func (g *Gateway) CompleteWith(ctx context.Context, prompt, model string) (string, error) {
	payload := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	headers := map[string]string{}
	if g.apiKey != "" {
		headers["Authorization"] = "Bearer " + g.apiKey
	}

	body, err := g.client.Call(ctx, g.url, headers, payload)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			return "", apperr.Network("llm", fmt.Errorf("status %d: %s", se.Code, errorDetail(se.Body)))
		}
		return "", apperr.Network("llm", err)
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return "", apperr.Parse("llm", errors.New("response has no choices[0].message.content"))
	}
	return content.String(), nil
}

// errorDetail pulls the provider's error message out of a failed reply.
func errorDetail(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return msg.String()
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		return "empty body"
	}
	return s
}
