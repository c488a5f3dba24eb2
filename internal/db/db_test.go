package db

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"talktonic/internal/chat"
	"talktonic/internal/config"
)

func TestInit_InvalidDSN(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.Driver = "postgres"
	cfg.Database.DSN = "invalid-dsn-for-testing"
	if err := Init(cfg); err == nil {
		t.Errorf("expected error for invalid DSN, got nil")
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Errorf("expected error for unsupported driver")
	}
}

// Skipped unless TEST_DB_DSN points at a Postgres test instance.
func TestInit_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("set TEST_DB_DSN to run real DB test")
	}
	cfg := &config.Config{}
	cfg.Database.Driver = "postgres"
	cfg.Database.DSN = dsn
	if err := Init(cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if DB == nil {
		t.Fatalf("DB not set")
	}
}

func TestArchive_RecordsAndOrders(t *testing.T) {
	gdb, err := Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	gdb.Exec("DELETE FROM messages")
	a := NewArchive(gdb)
	ctx := context.Background()

	msgs := []chat.Message{chat.UserText("hello"), chat.BotText("Paris.")}
	for i := len(msgs) - 1; i >= 0; i-- {
		meta := map[string]any{"path": "chat", "classification": "chat"}
		if err := a.Archive(ctx, "s1", 0, i, msgs[i], meta); err != nil {
			t.Fatalf("archive: %v", err)
		}
	}
	if err := a.Archive(ctx, "s1", 1, 0, chat.UserText("after clear"), map[string]any{"path": "url"}); err != nil {
		t.Fatalf("archive: %v", err)
	}

	hist, err := a.History(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 || hist[0].Content != "hello" || hist[1].Sender != "bot" {
		t.Fatalf("unexpected history: %+v", hist)
	}
	var meta map[string]string
	if err := json.Unmarshal(hist[1].Meta, &meta); err != nil || meta["path"] != "chat" {
		t.Errorf("meta not stored: %s (%v)", hist[1].Meta, err)
	}

	counts, err := a.CountByPath(ctx)
	if err != nil {
		t.Fatalf("count by path: %v", err)
	}
	if counts["chat"] != 1 || len(counts) != 1 {
		t.Errorf("expected one bot reply on chat path, got %v", counts)
	}
}
