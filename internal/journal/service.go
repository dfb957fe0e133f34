package journal

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
	kafkax "github.com/ariefcatur/go-realtime-auctions/internal/kafka"
	"github.com/ariefcatur/go-realtime-auctions/internal/redisx"
)

const dedupScope = "journal"

type Store interface {
	Upsert(ctx context.Context, rec Record) error
}

// Service persists submission outcome events; it is the consumer handler of
// the outcomes topic.
type Service struct {
	Store Store
	Redis *redis.Client
}

func (s *Service) HandleOutcome(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.UnmarshalEnvelope(m.Value)
	if err != nil {
		log.Warn().Err(err).Int64("offset", m.Offset).Msg("skipping malformed event")
		return nil
	}
	if _, ok := eventStatus[env.EventType]; !ok {
		return nil
	}

	first, err := redisx.MarkOnce(ctx, s.Redis, dedupScope, env.EventID)
	if err != nil {
		// the upsert is idempotent, so carry on without the fast path
		log.Warn().Err(err).Str("event_id", env.EventID).Msg("dedup unavailable")
		first = true
	}
	if !first {
		return nil
	}

	p, err := kafkax.UnwrapPayload[auction.SubmissionPayload](env.Payload)
	if err != nil {
		log.Warn().Err(err).Str("event_id", env.EventID).Msg("skipping event with bad payload")
		return nil
	}
	rec, err := recordFrom(env, p)
	if err != nil {
		log.Warn().Err(err).Msg("skipping event")
		return nil
	}

	if err := s.Store.Upsert(ctx, rec); err != nil {
		// let the redelivery through the dedup check
		_ = s.Redis.Del(context.WithoutCancel(ctx), fmt.Sprintf(redisx.KeyDedup, dedupScope, env.EventID)).Err()
		return fmt.Errorf("journal %s: %w", env.EventID, err)
	}
	log.Debug().Str("ticket", rec.TicketID).Str("status", string(rec.Status)).Msg("journaled")
	return nil
}
