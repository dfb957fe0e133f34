package lifecycle

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
	"github.com/ariefcatur/go-realtime-auctions/internal/submit"
)

// Outcome is the settled result of a submitted action. View is the state
// read back from the ledger afterwards; ReconcileErr is set when that read
// failed. Superseded means the action confirmed but the ledger shows
// something other than its effect, e.g. a higher bid landed first.
type Outcome struct {
	Status       submit.Status
	TxHash       common.Hash
	Err          error
	View         View
	ReconcileErr error
	Superseded   bool
}

type Ticket struct {
	ID     string
	Action auction.Action
	Caller common.Address

	done    chan struct{}
	mu      sync.Mutex
	outcome Outcome
}

func newTicket(id string, act auction.Action, caller common.Address) *Ticket {
	return &Ticket{
		ID:      id,
		Action:  act,
		Caller:  caller,
		done:    make(chan struct{}),
		outcome: Outcome{Status: submit.StatusPending},
	}
}

func (t *Ticket) Done() <-chan struct{} { return t.done }

func (t *Ticket) Outcome() Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outcome
}

func (t *Ticket) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-t.done:
		return t.Outcome(), nil
	case <-ctx.Done():
		return t.Outcome(), ctx.Err()
	}
}

func (t *Ticket) resolve(o Outcome) {
	t.mu.Lock()
	t.outcome = o
	t.mu.Unlock()
	close(t.done)
}
