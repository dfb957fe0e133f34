package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Guard is the shared in-flight guard for gateways that sign with one wallet.
// The TTL frees a key whose holder died before releasing it.
type Guard struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewGuard(rdb *redis.Client, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = TTLInflight
	}
	return &Guard{Redis: rdb, TTL: ttl}
}

func (g *Guard) Acquire(ctx context.Context, key string) (bool, error) {
	return g.Redis.SetNX(ctx, fmt.Sprintf(KeyInflight, key), "1", g.TTL).Result()
}

func (g *Guard) Release(ctx context.Context, key string) {
	if err := g.Redis.Del(ctx, fmt.Sprintf(KeyInflight, key)).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("inflight release failed, waiting for ttl")
	}
}
