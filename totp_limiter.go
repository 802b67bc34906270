package fixauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// totpLimiter throttles second-factor code attempts per admin. Counters
// live in Redis so the limit holds across replicas; with no Redis client
// configured the engine runs without attempt limiting.
type totpLimiter struct {
	redis       *redis.Client
	maxAttempts int
	cooldown    time.Duration
}

func newTOTPLimiter(redisClient *redis.Client, maxAttempts int, cooldown time.Duration) *totpLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &totpLimiter{redis: redisClient, maxAttempts: maxAttempts, cooldown: cooldown}
}

func (l *totpLimiter) key(adminID string) string {
	return "fixauth:2fa:att:" + adminID
}

func (l *totpLimiter) Check(ctx context.Context, adminID string) error {
	count, err := l.redis.Get(ctx, l.key(adminID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count >= int64(l.maxAttempts) {
		return ErrTOTPRateLimited
	}
	return nil
}

func (l *totpLimiter) RecordFailure(ctx context.Context, adminID string) error {
	count, err := l.redis.Incr(ctx, l.key(adminID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, l.key(adminID), l.cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	if count >= int64(l.maxAttempts) {
		return ErrTOTPRateLimited
	}
	return nil
}

func (l *totpLimiter) Reset(ctx context.Context, adminID string) error {
	if err := l.redis.Del(ctx, l.key(adminID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
