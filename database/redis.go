package database

import (
	"context"
	"os"

	"homely-khana/logger"

	"github.com/redis/go-redis/v9"
)

// InitRedis initializes and returns the shared Redis client used by the
// dashboard cache. The connection is verified with a ping so a bad REDIS_URL
// fails at startup instead of on the first request.
func InitRedis() (*redis.Client, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Error("Invalid REDIS_URL", err)
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err)
		return nil, err
	}

	logger.Success("Successfully connected to Redis")
	return client, nil
}
