package redisx

import (
	"strings"
	"time"
)

const (
	// Cached snapshot: auction:snapshot:{auction_id} -> auction.Snapshot JSON
	KeySnapshot = "auction:snapshot:%s"

	// Pub/sub channel per auction, payload = auction.Snapshot JSON
	ChannelSnapshot  = "auction_snapshots:%s"
	PatternSnapshots = "auction_snapshots:*"

	// In-flight submission guard: inflight:{caller}:{auction_id}
	KeyInflight = "inflight:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSnapshot = 5 * time.Minute
	TTLInflight = 3 * time.Minute // must outlive SUBMIT_TIMEOUT
	TTLDedup    = 48 * time.Hour
)

// ChannelID extracts the auction id from a snapshot channel name.
func ChannelID(channel string) string {
	id, ok := strings.CutPrefix(channel, "auction_snapshots:")
	if !ok {
		return ""
	}
	return id
}
