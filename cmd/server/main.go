package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"talktonic/internal/api"
	"talktonic/internal/app"
	"talktonic/internal/auth"
	"talktonic/internal/config"
	"talktonic/internal/dialogue"
)

func main() {
	path := os.Getenv("TALKTONIC_CONFIG")
	if path == "" {
		path = "config.json"
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()

	archive, err := app.NewArchive(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	if archive == nil {
		log.Printf("[Main] transcript archive disabled (no database.driver)")
	}

	store, release, err := app.NewStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Session store error: %v\n", err)
		os.Exit(1)
	}
	defer release()

	gateways, err := app.NewGateways(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Gateway error: %v\n", err)
		os.Exit(1)
	}
	defer gateways.Close()

	router := gateways.Router(cfg.Triggers)
	if err := config.WatchTriggers(ctx, path, router.SetTriggers); err != nil {
		log.Printf("[Main] WARNING: trigger hot reload disabled: %v", err)
	}

	var conv *dialogue.Conversation
	if archive != nil {
		conv = dialogue.NewConversation(router, store, archive)
	} else {
		conv = dialogue.NewConversation(router, store, nil)
	}

	r := api.SetupRouter(cfg, api.Deps{
		Conversation: conv,
		Archive:      archive,
		Limiter:      auth.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst),
	})
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Starting server on %s%s\n", addr, cfg.Server.Subpath)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
