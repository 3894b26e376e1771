// Package throttle counts failed logins per account so repeated password
// guessing gets locked out for a while.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned when the counter backend cannot be reached.
var ErrUnavailable = errors.New("login throttle backend unavailable")

// LoginLimiter decides whether another login attempt for key is allowed.
type LoginLimiter interface {
	// Allow reports whether key is still below the failure limit.
	Allow(ctx context.Context, key string) (bool, error)
	// Fail records one failed attempt for key.
	Fail(ctx context.Context, key string) error
	// Reset forgets all failures of key, typically after a successful login.
	Reset(ctx context.Context, key string) error
}

// RedisLimiter keeps one counter per key that expires window after the
// first failure, so the lockout lifts on its own.
type RedisLimiter struct {
	redis       redis.UniversalClient
	maxAttempts int
	window      time.Duration
}

func NewRedisLimiter(client redis.UniversalClient, maxAttempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{redis: client, maxAttempts: maxAttempts, window: window}
}

func (l *RedisLimiter) key(k string) string {
	return "eventhub:login_failures:" + strings.ToLower(k)
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.maxAttempts <= 0 {
		return true, nil
	}
	n, err := l.redis.Get(ctx, l.key(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n < int64(l.maxAttempts), nil
}

func (l *RedisLimiter) Fail(ctx context.Context, key string) error {
	k := l.key(key)
	n, err := l.redis.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if n == 1 && l.window > 0 {
		if err := l.redis.Expire(ctx, k, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Nop never throttles. Used when no Redis address is configured.
type Nop struct{}

func (Nop) Allow(context.Context, string) (bool, error) { return true, nil }
func (Nop) Fail(context.Context, string) error          { return nil }
func (Nop) Reset(context.Context, string) error         { return nil }
