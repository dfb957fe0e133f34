package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
	"github.com/ariefcatur/go-realtime-auctions/internal/config"
	"github.com/ariefcatur/go-realtime-auctions/internal/journal"
	kafkax "github.com/ariefcatur/go-realtime-auctions/internal/kafka"
	"github.com/ariefcatur/go-realtime-auctions/internal/postgres"
	"github.com/ariefcatur/go-realtime-auctions/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	cfg.ServiceName += "-journal"
	cfg.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("exit")
		os.Exit(1)
	}
	log.Info().Msg("journal consumer stopped")
}

func run(ctx context.Context, cfg config.Config) error {
	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("db: %w", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &journal.Service{Store: &journal.Repo{DB: db}, Redis: rdb}
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.JournalGroup, auction.TopicSubmissionOutcomes, cfg.JournalWorkers)

	log.Info().
		Str("group", cfg.JournalGroup).
		Str("topic", auction.TopicSubmissionOutcomes).
		Int("workers", cfg.JournalWorkers).
		Msg("journal consumer started")
	if err := cons.Start(ctx, svc.HandleOutcome); err != nil {
		return fmt.Errorf("consumer: %w", err)
	}
	return nil
}
