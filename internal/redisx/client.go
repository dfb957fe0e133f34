package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Ping fails fast at startup instead of on the first request.
func Ping(ctx context.Context, rdb *redis.Client) error {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// MarkOnce records id for service and reports whether this was the first time.
func MarkOnce(ctx context.Context, rdb *redis.Client, service, id string) (bool, error) {
	return rdb.SetNX(ctx, fmt.Sprintf(KeyDedup, service, id), "1", TTLDedup).Result()
}
