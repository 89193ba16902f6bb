package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/CreditFox/internal/pkg/env"
)

// Options returns the redis options configured through CACHE_* variables.
func Options() *redis.Options {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       env.GetEnvInt("CACHE_DB", 0),
	}
}

// SetupCache creates the redis client and tests the connection. An unreachable
// cache is logged, not fatal: balances are always read from the database on a miss.
func SetupCache(opts *redis.Options, log *slog.Logger) *redis.Client {
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Warn("could not connect to cache", "addr", opts.Addr, "error", err)
	} else {
		log.Info("connected to cache", "addr", opts.Addr, "reply", pong)
	}
	return client
}
