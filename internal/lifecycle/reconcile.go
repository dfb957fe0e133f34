package lifecycle

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
	"github.com/ariefcatur/go-realtime-auctions/internal/submit"
)

// settle waits for the submission, re-reads the auction whatever the result,
// reports the outcome and publishes the reconciled snapshot.
func (m *Manager) settle(wait func(context.Context) (submit.Result, error), t *Ticket, note Note, expected auction.Auction) {
	res, _ := wait(context.Background())
	note.TxHash = res.TxHash
	note.Submitted = true

	ctx, cancel := context.WithTimeout(context.Background(), m.ReadTimeout)
	defer cancel()
	view, rerr := m.Load(ctx, t.Action.AuctionID)

	out := Outcome{
		Status:       res.Status,
		TxHash:       res.TxHash,
		Err:          res.Err,
		View:         view,
		ReconcileErr: rerr,
	}
	if res.Err == nil && rerr == nil && !view.Snapshot.Equal(expected) {
		out.Superseded = true
		note.Superseded = true
	}

	if res.Err != nil {
		note.Kind, _ = auction.KindOf(res.Err)
		m.Notifier.Error(note, auction.Message(res.Err))
	} else {
		m.Notifier.Success(note)
	}

	if rerr != nil {
		log.Warn().Err(rerr).Str("auction_id", t.Action.AuctionID.String()).Msg("reconcile read failed, view marked unavailable")
	} else {
		m.publish(ctx, view.Snapshot)
	}

	t.resolve(out)
}

func (m *Manager) publish(ctx context.Context, a auction.Auction) {
	if m.Publisher == nil {
		return
	}
	if err := m.Publisher.Publish(ctx, a); err != nil {
		log.Warn().Err(err).Str("auction_id", a.ID.String()).Msg("snapshot publish failed")
	}
}

// Drain blocks until every dispatched action has settled or ctx ends.
func (m *Manager) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
