package lifecycle

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
	"github.com/ariefcatur/go-realtime-auctions/internal/ledger"
	"github.com/ariefcatur/go-realtime-auctions/internal/submit"
)

type Reader interface {
	Fetch(ctx context.Context, id *big.Int) (auction.Auction, error)
	Count(ctx context.Context) (int64, error)
	FetchMany(ctx context.Context, ids []*big.Int) []ledger.Result
}

type Submitter interface {
	Submit(ctx context.Context, caller common.Address, act auction.Action) (*submit.Handle, error)
}

// Wallet is the caller's identity. RequestConnection must return promptly;
// the manager never waits for a connection to appear.
type Wallet interface {
	Identity() (common.Address, bool)
	RequestConnection()
}

// Note identifies the action a notification is about.
type Note struct {
	TicketID   string
	Action     auction.ActionKind
	AuctionID  *big.Int
	Amount     *big.Int
	Caller     common.Address
	TxHash     common.Hash
	Kind       auction.Kind // set on errors
	Submitted  bool         // false when the action was refused before anything was sent
	Superseded bool
}

// Notifier receives Pending then exactly one of Success or Error for every
// submitted action. A locally rejected action gets a single Error.
type Notifier interface {
	Pending(n Note)
	Success(n Note)
	Error(n Note, message string)
}

type Publisher interface {
	Publish(ctx context.Context, a auction.Auction) error
}

type nopNotifier struct{}

func (nopNotifier) Pending(Note)       {}
func (nopNotifier) Success(Note)       {}
func (nopNotifier) Error(Note, string) {}
