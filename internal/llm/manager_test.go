package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_QueueFull(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()

	m := NewManager(&Config{MaxConcurrent: 1, CriticalQueueSize: 1, BackgroundQueueSize: 1})
	defer m.Stop()
	defer close(release)

	mk := func() *Request {
		return &Request{
			ID: "r", Priority: PriorityCritical, Context: context.Background(), URL: srv.URL,
			ResponseCh: make(chan *Response, 1), ErrorCh: make(chan error, 1), Timeout: time.Second,
		}
	}
	// one request holds the slot, one waits in the dispatcher, one fills the lane
	require.NoError(t, m.Submit(mk()))
	require.Eventually(t, func() bool { return len(m.semaphore) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, m.Submit(mk()))
	require.Eventually(t, func() bool { return len(m.criticalQueue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, m.Submit(mk()))

	err := m.Submit(mk())
	assert.True(t, errors.Is(err, ErrQueueFull))
	assert.Equal(t, int64(1), m.GetMetrics().CriticalDropped)
}

func TestManager_BoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	m := NewManager(&Config{MaxConcurrent: 2, CriticalQueueSize: 10, BackgroundQueueSize: 10})
	defer m.Stop()
	c := NewClient(m, PriorityBackground, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Call(context.Background(), srv.URL, nil, map[string]interface{}{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Eventually(t, func() bool { return m.GetMetrics().BackgroundProcessed == 6 }, time.Second, 5*time.Millisecond)
}
