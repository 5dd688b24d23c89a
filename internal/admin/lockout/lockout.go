// Package lockout throttles failed admin logins. Failures are counted per
// username within a sliding window; exceeding the threshold hard-locks the
// account for a fixed duration.
package lockout

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Policy holds the lockout thresholds.
type Policy struct {
	Threshold int
	Window    time.Duration
	Duration  time.Duration
}

// DefaultPolicy matches five failures within fifteen minutes.
func DefaultPolicy() Policy {
	return Policy{Threshold: 5, Window: 15 * time.Minute, Duration: 15 * time.Minute}
}

// Lockout tracks login failures per username.
type Lockout interface {
	// Fail records a failed attempt and reports whether the account is
	// now locked.
	Fail(ctx context.Context, username string) (locked bool, err error)
	// IsLocked reports whether the account is currently locked.
	IsLocked(ctx context.Context, username string) (bool, error)
	// Clear resets the failure count after a successful login.
	Clear(ctx context.Context, username string) error
}

// RedisLockout keeps counters in redis so the lockout survives restarts
// and is shared across instances.
type RedisLockout struct {
	client *redis.Client
	policy Policy
}

func NewRedis(client *redis.Client, policy Policy) *RedisLockout {
	if policy.Threshold <= 0 {
		policy = DefaultPolicy()
	}
	return &RedisLockout{client: client, policy: policy}
}

func failureKey(username string) string { return "login:failures:" + username }
func lockKey(username string) string    { return "login:locked:" + username }

func (l *RedisLockout) Fail(ctx context.Context, username string) (bool, error) {
	key := failureKey(username)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("increment login failures: %w", err)
	}
	if count == 1 {
		// First failure starts the window.
		if err := l.client.Expire(ctx, key, l.policy.Window).Err(); err != nil {
			return false, fmt.Errorf("set failure window: %w", err)
		}
	}
	if count < int64(l.policy.Threshold) {
		return false, nil
	}
	if err := l.client.Set(ctx, lockKey(username), "1", l.policy.Duration).Err(); err != nil {
		return false, fmt.Errorf("set lock: %w", err)
	}
	return true, nil
}

func (l *RedisLockout) IsLocked(ctx context.Context, username string) (bool, error) {
	n, err := l.client.Exists(ctx, lockKey(username)).Result()
	if err != nil {
		return false, fmt.Errorf("check lock: %w", err)
	}
	return n > 0, nil
}

func (l *RedisLockout) Clear(ctx context.Context, username string) error {
	if err := l.client.Del(ctx, failureKey(username), lockKey(username)).Err(); err != nil {
		return fmt.Errorf("clear lockout: %w", err)
	}
	return nil
}
