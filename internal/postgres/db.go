package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	ticket_id   TEXT PRIMARY KEY,
	event_id    TEXT NOT NULL,
	auction_id  NUMERIC(78,0) NOT NULL,
	action      TEXT NOT NULL,
	caller      TEXT NOT NULL DEFAULT '',
	amount_wei  NUMERIC(78,0),
	tx_hash     TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	kind        TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	superseded  BOOLEAN NOT NULL DEFAULT FALSE,
	occurred_at TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS submissions_auction_idx ON submissions (auction_id, occurred_at DESC);
`

// Migrate creates the journal tables if they are missing.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
