// Package app assembles gateways, stores and the conversation service from config.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"talktonic/internal/chat"
	"talktonic/internal/config"
	"talktonic/internal/db"
	"talktonic/internal/dialogue"
	"talktonic/internal/llm"
	redisdb "talktonic/internal/redis"
	"talktonic/internal/tools"
)

// Gateways bundles the outbound collaborators of the router.
type Gateways struct {
	Manager *llm.Manager
	Chat    *llm.Gateway
	Search  *tools.SearchGateway
	Pages   *tools.PageSummarizer
}

// NewGateways builds the LLM queue and the gateways on top of it. Chat turns
// run at critical priority; search and page summaries at background priority.
func NewGateways(cfg *config.Config) (*Gateways, error) {
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	manager := llm.NewManager(&llm.Config{
		MaxConcurrent:       cfg.LLM.MaxConcurrent,
		CriticalQueueSize:   cfg.LLM.CriticalQueueSize,
		BackgroundQueueSize: cfg.LLM.BackgroundQueueSize,
		CriticalTimeout:     timeout,
		BackgroundTimeout:   timeout,
	})

	chatLLM := llm.NewGateway(llm.NewClient(manager, llm.PriorityCritical, timeout), cfg.LLM.URL, cfg.LLM.Model, cfg.LLM.APIKey)
	bgLLM := chatLLM.WithClient(llm.NewClient(manager, llm.PriorityBackground, timeout))

	searchTimeout := time.Duration(cfg.Search.TimeoutSeconds) * time.Second
	var provider tools.SearchProvider
	switch cfg.Search.Provider {
	case "searxng":
		provider = tools.NewSearXNGClient(cfg.Search.SearxNGURL, searchTimeout)
	case "google", "":
		provider = tools.NewGoogleClient(cfg.Search.GoogleURL, cfg.Search.GoogleAPIKey, cfg.Search.GoogleEngineID, searchTimeout)
	default:
		manager.Stop()
		return nil, fmt.Errorf("unknown search provider %q", cfg.Search.Provider)
	}

	if err := tools.SetPDFLicense(cfg.WebPage.PDFLicenseKey); err != nil {
		log.Printf("[App] warning: PDF license rejected, PDF pages will fail: %v", err)
	}
	pages := tools.NewPageSummarizer(tools.PageConfig{
		UserAgent: cfg.WebPage.UserAgent,
		Timeout:   time.Duration(cfg.WebPage.TimeoutSeconds) * time.Second,
		MaxSizeMB: cfg.WebPage.MaxSizeMB,
		MaxChars:  cfg.WebPage.MaxChars,
		Extractor: tools.Extractor(cfg.WebPage.Extractor),
	}, bgLLM)

	return &Gateways{
		Manager: manager,
		Chat:    chatLLM,
		Search:  tools.NewSearchGateway(provider, bgLLM, cfg.Search.MaxResults),
		Pages:   pages,
	}, nil
}

// Router returns a router over these gateways using the configured triggers.
func (g *Gateways) Router(triggers dialogue.Triggers) *dialogue.Router {
	return dialogue.NewRouter(g.Chat, g.Search, g.Pages, triggers)
}

func (g *Gateways) Close() {
	g.Manager.Stop()
}

// NewStore returns the configured session store and a func that releases it.
func NewStore(ctx context.Context, cfg *config.Config) (chat.Store, func(), error) {
	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	if cfg.Session.Store != "redis" {
		return chat.NewMemoryStoreTTL(ttl), func() {}, nil
	}
	rdb := redisdb.NewClient(cfg)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return redisdb.NewSessionStore(rdb, ttl), func() { closeRedis(rdb) }, nil
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		log.Printf("[App] redis close: %v", err)
	}
}

// NewArchive opens the archive database, or returns nil when none is configured.
func NewArchive(cfg *config.Config) (*db.Archive, error) {
	if cfg.Database.Driver == "" {
		return nil, nil
	}
	if err := db.Init(cfg); err != nil {
		return nil, fmt.Errorf("archive database: %w", err)
	}
	return db.NewArchive(db.DB), nil
}
