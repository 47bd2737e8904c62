package config

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

var RedisClient *redis.Client

// InitRedis connects the change-feed client. It is a no-op when REDIS_HOST is empty.
func InitRedis(ctx context.Context, config Config) error {
	addr := config.GetRedisConnString()
	if addr == "" {
		Logger.Infow("redis not configured, change feed disabled")
		return nil
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	})

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}
