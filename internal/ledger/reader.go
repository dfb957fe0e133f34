package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
)

// Contract is the read side of the marketplace contract. Implementations
// return the raw positional record exactly as the ledger produced it.
type Contract interface {
	ReadAuction(ctx context.Context, id *big.Int) ([]any, error)
	AuctionCount(ctx context.Context) (*big.Int, error)
}

const defaultConcurrency = 8

type Reader struct {
	Contract    Contract
	Concurrency int // FetchMany fan-out, default 8
}

func NewReader(c Contract, concurrency int) *Reader {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Reader{Contract: c, Concurrency: concurrency}
}

// Fetch reads auction id and decodes it. It has no side effects and may be
// called concurrently.
func (r *Reader) Fetch(ctx context.Context, id *big.Int) (auction.Auction, error) {
	raw, err := r.Contract.ReadAuction(ctx, id)
	if err != nil {
		return auction.Auction{}, fmt.Errorf("read auction %s: %w", id, classify(ctx, err))
	}
	a, err := DecodeAuction(id, raw)
	if err != nil {
		return auction.Auction{}, fmt.Errorf("read auction %s: %w", id, err)
	}
	return a, nil
}

// Count returns how many auctions the contract holds; ids run 0..n-1.
func (r *Reader) Count(ctx context.Context) (int64, error) {
	n, err := r.Contract.AuctionCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("auction count: %w", classify(ctx, err))
	}
	if n == nil || !n.IsInt64() || n.Sign() < 0 {
		return 0, auction.Decode("auction count %v out of range", n)
	}
	return n.Int64(), nil
}

// Result is one FetchMany entry; exactly one of Auction/Err is meaningful.
type Result struct {
	ID      *big.Int
	Auction auction.Auction
	Err     error
}

// FetchMany reads ids concurrently. A failed id is reported in its own
// Result and never aborts the others; results keep the order of ids.
func (r *Reader) FetchMany(ctx context.Context, ids []*big.Int) []Result {
	out := make([]Result, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	limit := r.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			a, err := r.Fetch(gctx, id)
			out[i] = Result{ID: id, Auction: a, Err: err}
			if err != nil {
				log.Warn().Err(err).Str("auction_id", id.String()).Msg("fetch failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// classify maps transport failures onto the connectivity taxonomy. Errors that
// are already classified pass through.
func classify(ctx context.Context, err error) error {
	if _, ok := auction.KindOf(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return auction.Timeout(err)
	}
	return auction.Unavailable(err)
}
