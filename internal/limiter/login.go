// Package limiter throttles repeated failed logins per identifier using a
// fixed window counter in Redis.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrLoginRateLimited   = errors.New("too many failed login attempts")
	ErrLimiterUnavailable = errors.New("login limiter unavailable")
)

const keyPrefix = "login:fail:"

// LoginLimiter counts failed logins for an identifier. Once maxAttempts
// failures land inside window, further attempts are refused until the window
// expires. A successful login clears the counter.
type LoginLimiter struct {
	redis       redis.Cmdable
	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(client redis.Cmdable, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		redis:       client,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Allow returns ErrLoginRateLimited when identifier has used up its attempts.
func (l *LoginLimiter) Allow(ctx context.Context, identifier string) error {
	count, err := l.redis.Get(ctx, loginKey(identifier)).Int64()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if count >= int64(l.maxAttempts) {
		return ErrLoginRateLimited
	}
	return nil
}

// RecordFailure counts a failed attempt. The window starts at the first failure.
func (l *LoginLimiter) RecordFailure(ctx context.Context, identifier string) error {
	key := loginKey(identifier)
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	}
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, identifier string) error {
	if err := l.redis.Del(ctx, loginKey(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return nil
}

func loginKey(identifier string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(identifier))
}
