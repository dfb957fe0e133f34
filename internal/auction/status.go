package auction

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type State string

const (
	StateOpen   State = "OPEN"
	StateClosed State = "CLOSED"
)

// validNext mirrors the transitions the contract enforces. Closed is terminal.
var validNext = map[State]map[ActionKind]State{
	StateOpen: {
		ActionPlaceBid: StateOpen,
		ActionCloseBid: StateClosed,
	},
	StateClosed: {},
}

func Next(from State, kind ActionKind) (State, bool) {
	to, ok := validNext[from][kind]
	return to, ok
}

func CanTransition(from State, kind ActionKind) bool {
	_, ok := Next(from, kind)
	return ok
}

// Apply returns the snapshot a confirmed action by caller would leave behind.
// It never touches a; the result is only a local expectation; the ledger
// read that follows confirmation is what gets installed.
func Apply(a Auction, act Action, caller common.Address) (Auction, error) {
	to, ok := Next(a.State(), act.Kind)
	if !ok {
		return Auction{}, rejectf(KindAuctionClosed, "%s on auction %s", act.Kind, intString(a.ID))
	}
	out := a.Clone()
	switch act.Kind {
	case ActionPlaceBid:
		if cmpInt(act.Amount, a.HighestBid) <= 0 {
			return Auction{}, rejectf(KindBidTooLow, "%s <= %s", intString(act.Amount), intString(a.HighestBid))
		}
		out.HighestBid = new(big.Int).Set(act.Amount)
		out.HighestBidder = caller
	case ActionCloseBid:
		if !a.HasBids() {
			return Auction{}, ErrNoBidsYet
		}
		out.Owner = a.HighestBidder
	}
	out.StillOpen = to == StateOpen
	return out, nil
}
