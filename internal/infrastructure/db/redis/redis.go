// Package redis backs the failed-login limiter with Redis counters.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout   = 5 * time.Second
	defaultPrefix = "caja:"
)

// Config is the REDIS_* and LOGIN_* environment, flattened for this package.
type Config struct {
	Addr     string
	Password string
	DB       int

	// KeyPrefix namespaces every key so several deployments can share one
	// Redis database. Empty means "caja:".
	KeyPrefix   string
	MaxAttempts int
	Window      time.Duration
}

// Open dials Redis, pings it and returns a limiter bound to the client.
// The caller owns the client and must close it.
func Open(ctx context.Context, cfg Config) (*redis.Client, *LoginLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return client, NewLoginLimiter(client, cfg), nil
}

// Ping checks connectivity under a short timeout. The readiness check uses it.
func Ping(ctx context.Context, client *redis.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	return nil
}
