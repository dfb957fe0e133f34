package submit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
)

// Transactor writes to the ledger. Send must broadcast at most once per call.
type Transactor interface {
	Send(ctx context.Context, act auction.Action) (common.Hash, error)
	WaitConfirmed(ctx context.Context, hash common.Hash) error
}

const DefaultTimeout = 2 * time.Minute

// Submitter turns validated actions into ledger writes. It does not check
// business rules and it never retries.
type Submitter struct {
	Tx      Transactor
	Guard   InflightGuard
	Timeout time.Duration // bound on send + confirmation
}

func New(tx Transactor, guard InflightGuard, timeout time.Duration) *Submitter {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Submitter{Tx: tx, Guard: guard, Timeout: timeout}
}

// Submit dispatches act for caller and returns at once. While a previous
// submission by caller for the same auction is unresolved the call fails
// with SubmissionInProgress and nothing is sent.
func (s *Submitter) Submit(ctx context.Context, caller common.Address, act auction.Action) (*Handle, error) {
	key := GuardKey(caller, act.AuctionID)
	ok, err := s.Guard.Acquire(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("inflight guard: %w", err)
	}
	if !ok {
		return nil, auction.ErrSubmissionInProgress
	}

	h := newHandle(act, caller)
	// once sent, a write outlives the request that asked for it
	go s.run(context.WithoutCancel(ctx), key, h)
	return h, nil
}

func (s *Submitter) run(ctx context.Context, key string, h *Handle) {
	res := s.execute(ctx, h)
	s.Guard.Release(context.Background(), key)
	h.resolve(res)

	ev := log.Info()
	if res.Err != nil {
		ev = log.Warn().Err(res.Err)
	}
	ev.Str("action", h.action.String()).
		Str("caller", h.caller.Hex()).
		Str("tx", h.TxHash().Hex()).
		Str("status", string(res.Status)).
		Msg("submission settled")
}

func (s *Submitter) execute(ctx context.Context, h *Handle) Result {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	hash, err := s.Tx.Send(ctx, h.action)
	if err != nil {
		return Result{Status: StatusFailed, Err: classify(ctx, err)}
	}
	h.setTxHash(hash)

	if err := s.Tx.WaitConfirmed(ctx, hash); err != nil {
		return Result{Status: StatusFailed, Err: classify(ctx, err)}
	}
	return Result{Status: StatusConfirmed}
}

func classify(ctx context.Context, err error) error {
	if _, ok := auction.KindOf(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return auction.Timeout(err)
	}
	return auction.Unavailable(err)
}
