package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrQueueFull is returned when a priority lane has no room. The call is not retried.
var ErrQueueFull = errors.New("llm queue full")

// Priority levels
type Priority int

const (
	PriorityCritical   Priority = 0 // visitor chat turns
	PriorityBackground Priority = 1 // search and page summaries
)

func (p Priority) String() string {
	if p == PriorityCritical {
		return "critical"
	}
	return "background"
}

// Request is one queued completion call.
type Request struct {
	ID       string
	Priority Priority
	Context  context.Context

	URL     string
	Headers map[string]string
	Payload map[string]interface{}

	ResponseCh chan<- *Response
	ErrorCh    chan<- error

	SubmitTime time.Time
	Timeout    time.Duration
}

// Response is the raw HTTP result of a Request.
type Response struct {
	StatusCode int
	Body       []byte
	Waited     time.Duration
}

// StatusError reports a non-200 reply from the completion endpoint.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("LLM returned status %d", e.Code)
}

// Metrics tracks queue performance
type Metrics struct {
	CriticalEnqueued    int64
	CriticalProcessed   int64
	CriticalDropped     int64
	BackgroundEnqueued  int64
	BackgroundProcessed int64
	BackgroundDropped   int64
	CurrentQueueDepth   map[Priority]int
}
