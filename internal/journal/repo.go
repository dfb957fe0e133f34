package journal

import (
	"context"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
)

type Repo struct{ DB *pgxpool.Pool }

// Upsert keeps the newest state per ticket. Redelivered or out-of-order
// events never move a ticket back in time.
func (r *Repo) Upsert(ctx context.Context, rec Record) error {
	var amount any
	if rec.AmountWei != "" {
		amount = rec.AmountWei
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO submissions(ticket_id, event_id, auction_id, action, caller, amount_wei,
		                        tx_hash, status, kind, reason, superseded, occurred_at)
		VALUES ($1,$2,$3::text::numeric,$4,$5,$6::text::numeric,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (ticket_id) DO UPDATE SET
			event_id = EXCLUDED.event_id,
			tx_hash = CASE WHEN EXCLUDED.tx_hash <> '' THEN EXCLUDED.tx_hash ELSE submissions.tx_hash END,
			status = EXCLUDED.status,
			kind = EXCLUDED.kind,
			reason = EXCLUDED.reason,
			superseded = EXCLUDED.superseded,
			occurred_at = EXCLUDED.occurred_at,
			updated_at = now()
		WHERE submissions.occurred_at <= EXCLUDED.occurred_at
	`, rec.TicketID, rec.EventID, rec.AuctionID, rec.Action, rec.Caller, amount,
		rec.TxHash, string(rec.Status), rec.Kind, rec.Reason, rec.Superseded, rec.OccurredAt)
	return err
}

func (r *Repo) ListByAuction(ctx context.Context, auctionID string, limit int) ([]Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx, `
		SELECT ticket_id, event_id, auction_id::text, action, caller, COALESCE(amount_wei::text, ''),
		       tx_hash, status, kind, reason, superseded, occurred_at
		FROM submissions WHERE auction_id = $1::text::numeric
		ORDER BY occurred_at DESC LIMIT $2`, auctionID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanRecord)
}

func scanRecord(row pgx.CollectableRow) (Record, error) {
	var rec Record
	var status string
	err := row.Scan(&rec.TicketID, &rec.EventID, &rec.AuctionID, &rec.Action, &rec.Caller, &rec.AmountWei,
		&rec.TxHash, &status, &rec.Kind, &rec.Reason, &rec.Superseded, &rec.OccurredAt)
	if err != nil {
		return rec, err
	}
	rec.Status = Status(status)
	if v, ok := new(big.Int).SetString(rec.AmountWei, 10); ok {
		rec.Amount = auction.FormatAmount(v)
	}
	return rec, nil
}
