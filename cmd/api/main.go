package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
	"github.com/ariefcatur/go-realtime-auctions/internal/config"
	"github.com/ariefcatur/go-realtime-auctions/internal/ethledger"
	"github.com/ariefcatur/go-realtime-auctions/internal/httpx"
	"github.com/ariefcatur/go-realtime-auctions/internal/journal"
	kafkax "github.com/ariefcatur/go-realtime-auctions/internal/kafka"
	"github.com/ariefcatur/go-realtime-auctions/internal/ledger"
	"github.com/ariefcatur/go-realtime-auctions/internal/lifecycle"
	"github.com/ariefcatur/go-realtime-auctions/internal/notify"
	"github.com/ariefcatur/go-realtime-auctions/internal/postgres"
	"github.com/ariefcatur/go-realtime-auctions/internal/redisx"
	"github.com/ariefcatur/go-realtime-auctions/internal/submit"
	"github.com/ariefcatur/go-realtime-auctions/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	cfg.SetupLogging()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("exit")
		os.Exit(1)
	}
}

// run owns every resource it opens; it returns instead of exiting so the
// deferred closes always run.
func run(ctx context.Context, cfg config.Config) error {
	// Ledger
	wallet, err := ethledger.NewKeyWallet(cfg.WalletKey)
	if err != nil {
		return err
	}
	dialCtx, cancelDial := context.WithTimeout(ctx, 10*time.Second)
	chain, err := ethledger.Dial(dialCtx, cfg.LedgerRPCURL, cfg.ContractAddress, wallet)
	cancelDial()
	if err != nil {
		return fmt.Errorf("ledger dial: %w", err)
	}
	defer chain.Close()
	if addr, ok := wallet.Identity(); ok {
		log.Info().Str("wallet", addr.Hex()).Str("chain_id", chain.ChainID().String()).Msg("wallet ready")
	} else {
		wallet.RequestConnection()
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, auction.TopicSubmissionOutcomes, 1024)
	prod.Start(ctx)

	var guard submit.InflightGuard = submit.NewMemoryGuard()
	if cfg.InflightGuard == "redis" {
		guard = redisx.NewGuard(rdb, cfg.SubmitTimeout+time.Minute)
	}

	snapshots := redisx.NewSnapshotStore(rdb, cfg.SnapshotTTL)
	manager := lifecycle.NewManager(
		ledger.NewReader(chain, cfg.FetchConcurrency),
		submit.New(chain, guard, cfg.SubmitTimeout),
		wallet,
		notify.Multi{notify.Log{}, notify.NewKafka(prod, cfg.ServiceName)},
		snapshots,
	)

	hub := ws.NewHub()
	handler := &httpx.AuctionsHandler{Auctions: manager, Stream: hub}

	// Journal reads are optional on the gateway
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Warn().Err(err).Msg("postgres unavailable, submissions endpoint disabled")
	} else {
		defer db.Close()
		handler.Journal = &journal.Repo{DB: db}
	}

	router := httpx.NewRouter()
	handler.Register(router)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return hub.Run(gctx, rdb) })
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)

		// settle what is already on the ledger before the producer goes away
		drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.SubmitTimeout)
		defer cancelDrain()
		if err := manager.Drain(drainCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown with submissions still pending")
		}
		prod.Close()
		prod.WaitClosed()
		return nil
	})

	return g.Wait()
}
