package auction

import (
	"errors"
	"math/big"
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestCanTransition(t *testing.T) {
	check.True(t, CanTransition(StateOpen, ActionPlaceBid))
	check.True(t, CanTransition(StateOpen, ActionCloseBid))
	check.False(t, CanTransition(StateClosed, ActionPlaceBid))
	check.False(t, CanTransition(StateClosed, ActionCloseBid))

	to, ok := Next(StateOpen, ActionCloseBid)
	check.True(t, ok)
	check.Equal(t, StateClosed, to)
}

func TestApply_PlaceBid(t *testing.T) {
	snap := openAuction("0", NoBidder)

	got, err := Apply(snap, PlaceBid(snap.ID, units("5")), bidderB)
	check.NoError(t, err)
	check.Equal(t, bidderB, got.HighestBidder)
	check.Equal(t, units("5").String(), got.HighestBid.String())
	check.True(t, got.StillOpen)
	check.Equal(t, creatorA, got.Owner)

	// input untouched
	check.Equal(t, NoBidder, snap.HighestBidder)
	check.Equal(t, "0", snap.HighestBid.String())
}

func TestApply_PlaceBidMustExceed(t *testing.T) {
	snap := openAuction("5", bidderB)
	_, err := Apply(snap, PlaceBid(snap.ID, units("5")), bidderC)
	check.True(t, errors.Is(err, ErrBidTooLow))
}

func TestApply_CloseBid(t *testing.T) {
	snap := openAuction("5", bidderB)

	got, err := Apply(snap, CloseBid(snap.ID), creatorA)
	check.NoError(t, err)
	check.False(t, got.StillOpen)
	check.Equal(t, bidderB, got.Owner)
	check.Equal(t, StateClosed, got.State())

	_, err = Apply(got, CloseBid(snap.ID), creatorA)
	check.True(t, errors.Is(err, ErrAuctionClosed))
	_, err = Apply(got, PlaceBid(snap.ID, units("50")), bidderC)
	check.True(t, errors.Is(err, ErrAuctionClosed))
}

func TestApply_CloseWithoutBids(t *testing.T) {
	snap := openAuction("0", NoBidder)
	_, err := Apply(snap, CloseBid(snap.ID), creatorA)
	check.True(t, errors.Is(err, ErrNoBidsYet))
}

func TestAuction_CloneAndEqual(t *testing.T) {
	a := openAuction("5", bidderB)
	b := a.Clone()
	check.True(t, a.Equal(b))

	b.HighestBid.Add(b.HighestBid, big.NewInt(1))
	check.False(t, a.Equal(b))
	check.Equal(t, units("5").String(), a.HighestBid.String())
}

func TestAuction_Snapshot(t *testing.T) {
	s := openAuction("1.25", bidderB).Snapshot()
	check.Equal(t, "1", s.ID)
	check.Equal(t, "1.25", s.HighestBidDisplay)
	check.Equal(t, "1250000000000000000", s.HighestBidWei)
	check.True(t, s.HasBids)
	check.Equal(t, StateOpen, s.State)

	fresh := openAuction("0", NoBidder).Snapshot()
	check.False(t, fresh.HasBids)
	check.Equal(t, "0", fresh.HighestBidDisplay)
}
