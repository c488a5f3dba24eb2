package redisdb

import (
	"context"
	"os"
	"testing"
	"time"

	"talktonic/internal/chat"
	"talktonic/internal/config"
)

func TestNewClient_BasicConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.Password = ""
	cfg.Redis.DB = 15

	client := NewClient(cfg)
	if client == nil {
		t.Fatalf("NewClient returned nil")
	}
	opts := client.Options()
	if opts.Addr != cfg.Redis.Addr {
		t.Errorf("expected Addr %s, got %s", cfg.Redis.Addr, opts.Addr)
	}
	if opts.DB != cfg.Redis.DB {
		t.Errorf("expected DB %d, got %d", cfg.Redis.DB, opts.DB)
	}
}

// Runs only against a real Redis; set TEST_REDIS_ADDR to enable.
func TestSessionStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run real Redis test")
	}
	cfg := &config.Config{}
	cfg.Redis.Addr = addr
	cfg.Redis.DB = 15
	rdb := NewClient(cfg)
	defer rdb.Close()
	ctx := context.Background()
	if err := rdb.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	store := NewSessionStore(rdb, time.Minute)
	if _, err := store.Load(ctx, "missing"); err != chat.ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	s := chat.NewSession()
	s.Append(chat.UserText("hi"))
	s.Append(chat.BotText("hello"))
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load(ctx, s.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Transcript) != 2 || got.Transcript[1].Content != "hello" {
		t.Errorf("unexpected transcript: %+v", got.Transcript)
	}

	n, err := store.Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("expected 1 session, got %d (%v)", n, err)
	}
	if err := store.rdb.Del(ctx, "session:"+s.ID).Err(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, s.ID); err != chat.ErrSessionNotFound {
		t.Errorf("expected deleted session to be gone, got %v", err)
	}
}
