package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
)

// SnapshotStore caches the latest reconciled snapshot of each auction and
// announces it on the auction's channel.
type SnapshotStore struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewSnapshotStore(rdb *redis.Client, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = TTLSnapshot
	}
	return &SnapshotStore{Redis: rdb, TTL: ttl}
}

func (s *SnapshotStore) Publish(ctx context.Context, a auction.Auction) error {
	snap := a.Snapshot()
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.Redis.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, fmt.Sprintf(KeySnapshot, snap.ID), b, s.TTL)
		p.Publish(ctx, fmt.Sprintf(ChannelSnapshot, snap.ID), b)
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Get returns the cached snapshot; ok is false on a miss.
func (s *SnapshotStore) Get(ctx context.Context, id string) (auction.Snapshot, bool, error) {
	var snap auction.Snapshot
	b, err := s.Redis.Get(ctx, fmt.Sprintf(KeySnapshot, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, err
	}
	if err := json.Unmarshal(b, &snap); err != nil {
		return snap, false, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return snap, true, nil
}
