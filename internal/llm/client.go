package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var errStopped = errors.New("llm queue stopped")

// Client submits requests at a fixed priority and waits for the result.
type Client struct {
	manager  *Manager
	priority Priority
	timeout  time.Duration
}

func NewClient(manager *Manager, priority Priority, timeout time.Duration) *Client {
	return &Client{
		manager:  manager,
		priority: priority,
		timeout:  timeout,
	}
}

// Call posts payload to url and returns the body of a 200 reply. Other
// statuses come back as *StatusError.
func (c *Client) Call(ctx context.Context, url string, headers map[string]string, payload map[string]interface{}) ([]byte, error) {
	respCh := make(chan *Response, 1)
	errCh := make(chan error, 1)

	req := &Request{
		ID:         fmt.Sprintf("%s_%d", c.priority, time.Now().UnixNano()),
		Priority:   c.priority,
		Context:    ctx,
		URL:        url,
		Headers:    headers,
		Payload:    payload,
		ResponseCh: respCh,
		ErrorCh:    errCh,
		SubmitTime: time.Now(),
		Timeout:    c.timeout,
	}

	if err := c.manager.Submit(req); err != nil {
		return nil, fmt.Errorf("failed to submit: %w", err)
	}

	select {
	case resp := <-respCh:
		if resp.StatusCode != http.StatusOK {
			return nil, &StatusError{Code: resp.StatusCode, Body: resp.Body}
		}
		return resp.Body, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.manager.stopCh:
		return nil, errStopped
	}
}
