package auction

import "math/big"

// ValidatePlaceBid decides locally whether a bid of amount may be submitted
// against snap. A nil result means accept. The first failing rule wins.
func ValidatePlaceBid(snap Auction, amount *big.Int, callerHasIdentity bool) error {
	if !callerHasIdentity {
		return ErrNoWalletConnected
	}
	if !snap.StillOpen {
		return ErrAuctionClosed
	}
	if amount == nil || amount.Sign() <= 0 || cmpInt(amount, snap.HighestBid) <= 0 {
		return rejectf(KindBidTooLow, "bid %s must exceed %s", FormatAmount(amount), FormatAmount(snap.HighestBid))
	}
	return nil
}

// ValidateCloseBid decides locally whether snap may be closed. An auction
// without a bidder is NoBidsYet whether or not it is still open.
func ValidateCloseBid(snap Auction, callerHasIdentity bool) error {
	if !callerHasIdentity {
		return ErrNoWalletConnected
	}
	if !snap.HasBids() {
		return ErrNoBidsYet
	}
	if !snap.StillOpen {
		return ErrAuctionClosed
	}
	return nil
}

// Validate dispatches on the action kind.
func Validate(snap Auction, act Action, callerHasIdentity bool) error {
	if act.Kind == ActionCloseBid {
		return ValidateCloseBid(snap, callerHasIdentity)
	}
	return ValidatePlaceBid(snap, act.Amount, callerHasIdentity)
}
