package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joshuarp/taskguard-api/internal/shared/config"
	"github.com/joshuarp/taskguard-api/internal/shared/queue"
	sharedratelimit "github.com/joshuarp/taskguard-api/internal/shared/ratelimit"
)

func provideRedisClient(cfg config.ConfigProvider) *redis.Client {
	host := strings.TrimSpace(cfg.GetString("redis.host"))
	if host == "" {
		host = "localhost"
	}

	port := cfg.GetInt("redis.port")
	if port == 0 {
		port = 6379
	}

	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.GetString("redis.password"),
		DB:       cfg.GetInt("redis.db"),
	})
}

func provideRedisQueue(cfg config.ConfigProvider, client *redis.Client) *queue.RedisQueue {
	return queue.NewRedisQueue(client, strings.TrimSpace(cfg.GetString("queue.prefix")))
}

func provideQueue(q *queue.RedisQueue) queue.Queue {
	return q
}

func providePublisher(q *queue.RedisQueue) queue.Publisher {
	return q
}

func provideAPIRateLimiter(cfg config.ConfigProvider, client *redis.Client) (sharedratelimit.Limiter, error) {
	if client == nil {
		return nil, fmt.Errorf("app: redis client is required for api rate limiter")
	}
	if cfg.IsSet("rate_limit.api.enabled") && !cfg.GetBool("rate_limit.api.enabled") {
		return nil, nil
	}

	limit := cfg.GetInt("rate_limit.api.limit")
	if limit <= 0 {
		limit = 120
	}

	window := cfg.GetDuration("rate_limit.api.window")
	if window <= 0 {
		window = time.Minute
	}

	prefix := strings.TrimSpace(cfg.GetString("queue.prefix"))
	if prefix == "" {
		prefix = "taskguard"
	}

	limiter, err := sharedratelimit.NewRedisLimiter(client, sharedratelimit.Config{
		Algorithm: sharedratelimit.ParseAlgorithm(cfg.GetString("rate_limit.api.algorithm")),
		Limit:     int64(limit),
		Window:    window,
	}, sharedratelimit.WithPrefix(prefix+":ratelimit"))
	if err != nil {
		return nil, fmt.Errorf("app: failed to init api rate limiter: %w", err)
	}
	return limiter, nil
}
