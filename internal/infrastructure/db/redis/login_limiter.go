package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter counts failed logins per normalized email in Redis.
// Key format: <prefix>login:fail:<email>. A key expires window after its
// first failure, so the lockout lifts on its own.
type LoginLimiter struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
}

// NewLoginLimiter wraps client. MaxAttempts <= 0 disables blocking.
func NewLoginLimiter(client *redis.Client, cfg Config) *LoginLimiter {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &LoginLimiter{
		client: client,
		prefix: prefix,
		max:    int64(cfg.MaxAttempts),
		window: cfg.Window,
	}
}

// Blocked reports whether key has reached the failure threshold.
func (l *LoginLimiter) Blocked(ctx context.Context, key string) (bool, error) {
	if l.max <= 0 {
		return false, nil
	}
	n, err := l.client.Get(ctx, l.key(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("login limiter get: %w", err)
	}
	return n >= l.max, nil
}

// RecordFailure increments the counter, starting the window on the first hit.
func (l *LoginLimiter) RecordFailure(ctx context.Context, key string) error {
	if l.max <= 0 {
		return nil
	}
	k := l.key(key)
	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("login limiter incr: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	if l.max <= 0 {
		return nil
	}
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("login limiter reset: %w", err)
	}
	return nil
}

func (l *LoginLimiter) key(email string) string {
	return l.prefix + "login:fail:" + email
}
