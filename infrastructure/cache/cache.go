package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"mx-social/infrastructure/logger"
)

// NewCache connects Redis. A nil client is returned when Redis is not
// reachable; callers fall back to in-memory stores.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available")
		return nil, err
	}
	return client, nil
}
