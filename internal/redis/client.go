package redisdb

import (
	"time"

	"github.com/redis/go-redis/v9"

	"talktonic/internal/config"
)

// NewClient builds the session store client. A slow Redis surfaces as a store error.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}
