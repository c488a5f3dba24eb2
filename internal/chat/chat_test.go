package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSession_AppendKeepsOrder(t *testing.T) {
	s := NewSession()
	s.Append(UserText("hi"))
	seq := s.Append(BotText("hello"))
	if seq != 1 {
		t.Errorf("expected seq 1, got %d", seq)
	}
	msgs := s.Messages()
	if len(msgs) != 2 || msgs[0].Sender != SenderUser || msgs[1].Sender != SenderBot {
		t.Errorf("unexpected transcript: %+v", msgs)
	}
	msgs[0].Content = "changed"
	if s.Transcript[0].Content != "hi" {
		t.Errorf("Messages must return a copy")
	}
}

func TestSession_ClearedIsFresh(t *testing.T) {
	s := NewSession()
	s.PendingInput = "draft"
	s.Append(UserText("hi"))

	c := s.Cleared()
	if c.ID != s.ID {
		t.Errorf("cleared session must keep the id")
	}
	if len(c.Transcript) != 0 || c.PendingInput != "" {
		t.Errorf("cleared session must be empty: %+v", c)
	}
	if c.Epoch != s.Epoch+1 {
		t.Errorf("expected epoch %d, got %d", s.Epoch+1, c.Epoch)
	}
	if len(s.Transcript) != 1 {
		t.Errorf("original session must not be mutated")
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s := NewSession()
	s.Append(UserText("hi"))
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Load(ctx, s.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got.Append(BotText("not saved"))
	again, _ := st.Load(ctx, s.ID)
	if len(again.Transcript) != 1 {
		t.Errorf("store must hand out copies, got %d messages", len(again.Transcript))
	}
	if n, _ := st.Count(ctx); n != 1 {
		t.Errorf("expected 1 session, got %d", n)
	}
	if _, err := st.Load(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemoryStore_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewMemoryStoreTTL(time.Minute)
	st.now = func() time.Time { return clock }

	idle, active := NewSession(), NewSession()
	if err := st.Save(ctx, idle); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.Save(ctx, active); err != nil {
		t.Fatalf("save: %v", err)
	}

	clock = clock.Add(40 * time.Second)
	if err := st.Save(ctx, active); err != nil {
		t.Fatalf("save: %v", err)
	}

	clock = clock.Add(30 * time.Second)
	if n, _ := st.Count(ctx); n != 1 {
		t.Errorf("expected 1 live session, got %d", n)
	}
	if _, err := st.Load(ctx, idle.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected idle session to expire, got %v", err)
	}
	if _, err := st.Load(ctx, active.ID); err != nil {
		t.Errorf("saved session must stay live: %v", err)
	}
}

func TestMemoryStore_NoTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	clock := time.Now()
	st := NewMemoryStore()
	st.now = func() time.Time { return clock }
	s := NewSession()
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	clock = clock.Add(1000 * time.Hour)
	if _, err := st.Load(ctx, s.ID); err != nil {
		t.Errorf("expected session to stay, got %v", err)
	}
}

func TestLocker_SerializesSameID(t *testing.T) {
	l := NewLocker()
	var mu sync.Mutex
	active, maxActive := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("s1")
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if maxActive != 1 {
		t.Errorf("expected at most one holder, saw %d", maxActive)
	}
	if len(l.locks) != 0 {
		t.Errorf("expected lock table to drain, has %d entries", len(l.locks))
	}
}
