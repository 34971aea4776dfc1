package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Limiter = (*RedisLimiter)(nil)

type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	config Config
	now    func() time.Time
	seq    atomic.Uint64
}

type RedisOption func(*RedisLimiter)

func WithPrefix(prefix string) RedisOption {
	return func(l *RedisLimiter) {
		if prefix != "" {
			l.prefix = prefix
		}
	}
}

func WithClock(now func() time.Time) RedisOption {
	return func(l *RedisLimiter) {
		if now != nil {
			l.now = now
		}
	}
}

func NewRedisLimiter(client redis.UniversalClient, config Config, opts ...RedisOption) (*RedisLimiter, error) {
	if client == nil {
		return nil, errors.New("ratelimit: redis client is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Algorithm == "" {
		config.Algorithm = AlgorithmSlidingWindow
	}

	l := &RedisLimiter{
		client: client,
		prefix: "ratelimit",
		config: config,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	fullKey := l.prefix + ":" + key

	switch l.config.Algorithm {
	case AlgorithmFixedWindow:
		return l.fixedWindow(ctx, fullKey)
	default:
		return l.slidingWindow(ctx, fullKey)
	}
}

var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local count = redis.call('ZCARD', key)
local retryAfter = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  redis.call('PEXPIRE', key, window)
  return {1, limit - count - 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
  retryAfter = tonumber(oldest[2]) + window - now
  if retryAfter < 0 then retryAfter = 0 end
end
return {0, 0, retryAfter}
`)

func (l *RedisLimiter) slidingWindow(ctx context.Context, key string) (Result, error) {
	now := l.now()
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + strconv.FormatUint(l.seq.Add(1), 10)

	reply, err := slidingWindowScript.Run(ctx, l.client, []string{key},
		l.config.Limit,
		l.config.Window.Milliseconds(),
		now.UnixMilli(),
		member,
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: sliding window eval failed: %w", err)
	}

	return l.result(now, reply, now.Add(l.config.Window)), nil
}

var fixedWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])

local current = redis.call('INCR', key)
if current == 1 then
  redis.call('PEXPIRE', key, window)
end

local ttl = redis.call('PTTL', key)
if current <= limit then
  return {1, limit - current, ttl}
end
return {0, 0, ttl}
`)

func (l *RedisLimiter) fixedWindow(ctx context.Context, key string) (Result, error) {
	now := l.now()

	reply, err := fixedWindowScript.Run(ctx, l.client, []string{key},
		l.config.Limit,
		l.config.Window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: fixed window eval failed: %w", err)
	}

	result := l.result(now, reply, time.Time{})
	ttl := time.Duration(reply[2]) * time.Millisecond
	result.ResetAt = now.Add(ttl)
	if result.Allowed {
		result.RetryAfter = 0
	}
	return result, nil
}

func (l *RedisLimiter) result(now time.Time, reply []int64, resetAt time.Time) Result {
	if len(reply) < 3 {
		return Result{Allowed: true, Limit: l.config.Limit, ResetAt: now}
	}
	return Result{
		Allowed:    reply[0] == 1,
		Limit:      l.config.Limit,
		Remaining:  reply[1],
		ResetAt:    resetAt,
		RetryAfter: time.Duration(reply[2]) * time.Millisecond,
	}
}
