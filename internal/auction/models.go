package auction

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NoBidder is the highestBidder value of an auction nobody has bid on.
var NoBidder = common.Address{}

type Metadata struct {
	Name        string
	Image       string
	Description string
	Location    string
}

// Auction is a typed snapshot of one ledger auction record.
// Amounts are in the ledger's native unit (see Decimals).
type Auction struct {
	ID            *big.Int
	Creator       common.Address
	Owner         common.Address
	Metadata      Metadata
	HighestBidder common.Address
	HighestBid    *big.Int
	StillOpen     bool
}

func (a Auction) HasBids() bool { return a.HighestBidder != NoBidder }

func (a Auction) State() State {
	if a.StillOpen {
		return StateOpen
	}
	return StateClosed
}

// Clone returns a copy that shares no big.Int with a.
func (a Auction) Clone() Auction {
	out := a
	out.ID = cloneInt(a.ID)
	out.HighestBid = cloneInt(a.HighestBid)
	return out
}

// Equal compares every field, amounts by value.
func (a Auction) Equal(b Auction) bool {
	return cmpInt(a.ID, b.ID) == 0 &&
		a.Creator == b.Creator &&
		a.Owner == b.Owner &&
		a.Metadata == b.Metadata &&
		a.HighestBidder == b.HighestBidder &&
		cmpInt(a.HighestBid, b.HighestBid) == 0 &&
		a.StillOpen == b.StillOpen
}

// Snapshot is the wire form of an Auction used by the cache, the websocket
// stream and the HTTP API.
type Snapshot struct {
	ID                string `json:"id"`
	Creator           string `json:"creator"`
	Owner             string `json:"owner"`
	Name              string `json:"name"`
	Image             string `json:"image"`
	Description       string `json:"description"`
	Location          string `json:"location"`
	HighestBidder     string `json:"highest_bidder"`
	HasBids           bool   `json:"has_bids"`
	HighestBidWei     string `json:"highest_bid_wei"`
	HighestBidDisplay string `json:"highest_bid"`
	StillOpen         bool   `json:"still_open"`
	State             State  `json:"state"`
}

func (a Auction) Snapshot() Snapshot {
	return Snapshot{
		ID:                intString(a.ID),
		Creator:           a.Creator.Hex(),
		Owner:             a.Owner.Hex(),
		Name:              a.Metadata.Name,
		Image:             a.Metadata.Image,
		Description:       a.Metadata.Description,
		Location:          a.Metadata.Location,
		HighestBidder:     a.HighestBidder.Hex(),
		HasBids:           a.HasBids(),
		HighestBidWei:     intString(a.HighestBid),
		HighestBidDisplay: FormatAmount(a.HighestBid),
		StillOpen:         a.StillOpen,
		State:             a.State(),
	}
}

type ActionKind string

const (
	ActionPlaceBid ActionKind = "PlaceBid"
	ActionCloseBid ActionKind = "CloseBid"
)

// Action is a requested ledger mutation. Amount is nil for CloseBid.
type Action struct {
	Kind      ActionKind
	AuctionID *big.Int
	Amount    *big.Int
}

func PlaceBid(id, amount *big.Int) Action {
	return Action{Kind: ActionPlaceBid, AuctionID: cloneInt(id), Amount: cloneInt(amount)}
}

func CloseBid(id *big.Int) Action {
	return Action{Kind: ActionCloseBid, AuctionID: cloneInt(id)}
}

func (a Action) String() string {
	if a.Kind == ActionPlaceBid {
		return string(a.Kind) + "(" + intString(a.AuctionID) + ", " + intString(a.Amount) + ")"
	}
	return string(a.Kind) + "(" + intString(a.AuctionID) + ")"
}

func cloneInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

// cmpInt treats nil as zero.
func cmpInt(a, b *big.Int) int {
	if a == nil {
		a = new(big.Int)
	}
	if b == nil {
		b = new(big.Int)
	}
	return a.Cmp(b)
}

func intString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
