package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

// maxResponseBytes caps how much of a completion reply is read.
const maxResponseBytes = 4 << 20

// Manager runs completion calls from two priority lanes under a shared
// concurrency limit. Critical requests always go first.
type Manager struct {
	criticalQueue   chan *Request
	backgroundQueue chan *Request

	semaphore chan struct{}
	http      *http.Client

	mu      sync.RWMutex
	metrics Metrics

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	config *Config
}

// NewManager starts the dispatcher goroutine. Call Stop to release it.
func NewManager(config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}
	m := &Manager{
		criticalQueue:   make(chan *Request, config.CriticalQueueSize),
		backgroundQueue: make(chan *Request, config.BackgroundQueueSize),
		semaphore:       make(chan struct{}, config.MaxConcurrent),
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
		metrics: Metrics{
			CurrentQueueDepth: map[Priority]int{
				PriorityCritical:   0,
				PriorityBackground: 0,
			},
		},
		stopCh: make(chan struct{}),
		config: config,
	}

	m.wg.Add(1)
	go m.dispatcher()

	log.Printf("[LLM Queue] Started with %d concurrent slots", config.MaxConcurrent)
	return m
}

// Submit enqueues req without blocking. A full lane returns ErrQueueFull.
func (m *Manager) Submit(req *Request) error {
	queue := m.backgroundQueue
	if req.Priority == PriorityCritical {
		queue = m.criticalQueue
	}

	m.mu.Lock()
	if req.Priority == PriorityCritical {
		m.metrics.CriticalEnqueued++
	} else {
		m.metrics.BackgroundEnqueued++
	}
	m.mu.Unlock()

	select {
	case queue <- req:
		return nil
	default:
		m.mu.Lock()
		if req.Priority == PriorityCritical {
			m.metrics.CriticalDropped++
		} else {
			m.metrics.BackgroundDropped++
		}
		m.mu.Unlock()
		log.Printf("[LLM Queue] WARNING: %s queue full, dropping request %s", req.Priority, req.ID)
		return ErrQueueFull
	}
}

func (m *Manager) dispatcher() {
	defer m.wg.Done()

	for {
		var req *Request
		select {
		case <-m.stopCh:
			return
		case req = <-m.criticalQueue:
		case req = <-m.backgroundQueue:
			// a critical request may have landed while we picked background
			select {
			case crit := <-m.criticalQueue:
				m.requeue(req)
				req = crit
			default:
			}
		}

		select {
		case <-m.stopCh:
			req.ErrorCh <- fmt.Errorf("llm queue stopped")
			return
		case m.semaphore <- struct{}{}:
		}

		m.wg.Add(1)
		go m.process(req)
	}
}

func (m *Manager) requeue(req *Request) {
	select {
	case m.backgroundQueue <- req:
	default:
		req.ErrorCh <- ErrQueueFull
	}
}

func (m *Manager) process(req *Request) {
	defer func() {
		<-m.semaphore
		m.wg.Done()

		m.mu.Lock()
		if req.Priority == PriorityCritical {
			m.metrics.CriticalProcessed++
		} else {
			m.metrics.BackgroundProcessed++
		}
		m.mu.Unlock()
	}()

	if err := req.Context.Err(); err != nil {
		req.ErrorCh <- err
		return
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(req.Context, req.Timeout)
	defer cancel()

	resp, err := m.do(ctx, req)
	if err != nil {
		log.Printf("[LLM Queue] Request %s failed after %s: %v", req.ID, time.Since(start), err)
		req.ErrorCh <- err
		return
	}
	resp.Waited = start.Sub(req.SubmitTime)
	log.Printf("[LLM Queue] Request %s completed in %s (queued %s)", req.ID, time.Since(start), resp.Waited)
	req.ResponseCh <- resp
}

func (m *Manager) do(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := m.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &Response{StatusCode: httpResp.StatusCode, Body: data}, nil
}

// GetMetrics returns a snapshot of queue statistics.
func (m *Manager) GetMetrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.metrics
	out.CurrentQueueDepth = map[Priority]int{
		PriorityCritical:   len(m.criticalQueue),
		PriorityBackground: len(m.backgroundQueue),
	}
	return out
}

// Stop shuts the dispatcher down and waits for in-flight calls.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.wg.Wait()
		log.Printf("[LLM Queue] Stopped")
	})
}
