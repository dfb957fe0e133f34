package submit

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusFailed    Status = "FAILED"
)

// Result is how a submission settled. Err is set only when Status is FAILED.
type Result struct {
	Status Status
	TxHash common.Hash
	Err    error
}

// Handle tracks one submission until it resolves.
type Handle struct {
	action auction.Action
	caller common.Address
	done   chan struct{}

	mu     sync.Mutex
	txHash common.Hash
	result Result
}

func newHandle(act auction.Action, caller common.Address) *Handle {
	return &Handle{
		action: act,
		caller: caller,
		done:   make(chan struct{}),
		result: Result{Status: StatusPending},
	}
}

func (h *Handle) Action() auction.Action { return h.action }
func (h *Handle) Caller() common.Address { return h.caller }
func (h *Handle) Done() <-chan struct{}  { return h.done }

// TxHash is zero until the transaction has been broadcast.
func (h *Handle) TxHash() common.Hash {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.txHash
}

// Result reports the current state; Status is PENDING until Done is closed.
func (h *Handle) Result() Result {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}

// Wait blocks until the submission resolves or ctx ends. Giving up on the
// wait does not cancel the submission.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		return h.Result(), nil
	case <-ctx.Done():
		return h.Result(), ctx.Err()
	}
}

func (h *Handle) setTxHash(hash common.Hash) {
	h.mu.Lock()
	h.txHash = hash
	h.mu.Unlock()
}

func (h *Handle) resolve(r Result) {
	h.mu.Lock()
	r.TxHash = h.txHash
	h.result = r
	h.mu.Unlock()
	close(h.done)
}
