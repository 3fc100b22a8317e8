package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

type Clients struct {
	Redis redis.UniversalClient
}

// wireClients connects optional clients. Redis is skipped when REDIS_ADDR is empty.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return Clients{}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return Clients{}, fmt.Errorf("redis ping: %w", err)
	}
	return Clients{Redis: rdb}, nil
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
