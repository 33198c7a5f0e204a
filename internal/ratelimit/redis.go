package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisIncrScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter implements a fixed-window rate limiter backed by Redis so
// limits hold across several API instances.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter constructs a RedisLimiter.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: strings.TrimSpace(prefix),
	}
}

// Allow checks whether the request fits in the current window.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	if limit <= 0 || key == "" || l == nil || l.client == nil {
		return Result{Allowed: true}, nil
	}
	if window <= 0 {
		window = DefaultWindow
	}
	idx, reset := windowIndex(now, window)
	ttl := int64((2 * window) / time.Second)
	if ttl < 1 {
		ttl = 1
	}
	res, errEval := redisIncrScript.Run(ctx, l.client, []string{l.buildKey(key, idx)}, ttl).Result()
	if errEval != nil {
		return Result{}, errEval
	}
	count, ok := res.(int64)
	if !ok {
		return Result{}, errors.New("rate limit redis: unexpected response type")
	}
	if count > int64(limit) {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	return Result{Allowed: true, Remaining: limit - int(count), Reset: reset}, nil
}

func (l *RedisLimiter) buildKey(key string, idx int64) string {
	idxStr := strconv.FormatInt(idx, 10)
	if l.prefix == "" {
		return key + ":" + idxStr
	}
	return l.prefix + ":" + key + ":" + idxStr
}
