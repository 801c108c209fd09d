package limiter

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient is the subset of go-redis used by the limiter; *redis.Client
// satisfies it and tests substitute a fake returning constructed Cmd results.
type redisClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis is a redis-backed limiter: a failure counter with a sliding window
// and a separate block key once the threshold is reached.
type Redis struct {
	client   redisClient
	window   time.Duration
	maxFails int
	blockFor time.Duration
}

// NewRedis constructs a redis-backed limiter.
func NewRedis(client redisClient, window time.Duration, maxFails int, blockFor time.Duration) *Redis {
	return &Redis{client: client, window: window, maxFails: maxFails, blockFor: blockFor}
}

const (
	failKeyPrefix  = "qtim:limiter:fail:"
	blockKeyPrefix = "qtim:limiter:block:"
)

func (l *Redis) failKey(login string, ipHash []byte) string {
	return failKeyPrefix + login + ":" + hex.EncodeToString(ipHash)
}

func (l *Redis) blockKey(login string, ipHash []byte) string {
	return blockKeyPrefix + login + ":" + hex.EncodeToString(ipHash)
}

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *Redis) Allow(ctx context.Context, login string, ipHash []byte) (bool, time.Duration, error) {
	key := l.blockKey(login, ipHash)
	if err := l.client.Get(ctx, key).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return true, 0, nil
		}
		return false, 0, err
	}
	retry, err := l.client.PTTL(ctx, key).Result()
	if err != nil || retry < 0 {
		retry = 0
	}
	return false, retry, nil
}

// Success resets counters for (login, ip).
func (l *Redis) Success(ctx context.Context, login string, ipHash []byte) error {
	return l.client.Del(ctx, l.failKey(login, ipHash), l.blockKey(login, ipHash)).Err()
}

// Failure records a failed attempt; places a block once maxFails is reached
// within the window.
func (l *Redis) Failure(ctx context.Context, login string, ipHash []byte) (bool, time.Duration, error) {
	key := l.failKey(login, ipHash)
	fails, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if fails == 1 {
		// counter lives for one window; expiry resets with it
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, 0, err
		}
	}
	if int(fails) < l.maxFails {
		return false, 0, nil
	}
	if err := l.client.Set(ctx, l.blockKey(login, ipHash), 1, l.blockFor).Err(); err != nil {
		return false, 0, err
	}
	if err := l.client.Del(ctx, key).Err(); err != nil {
		return false, 0, err
	}
	return true, l.blockFor, nil
}
