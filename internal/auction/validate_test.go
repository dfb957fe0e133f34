package auction

import (
	"errors"
	"math/big"
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestValidatePlaceBid(t *testing.T) {
	closed := openAuction("5", bidderB)
	closed.StillOpen = false
	closed.Owner = bidderB

	tests := []struct {
		name     string
		snap     Auction
		amount   *big.Int
		identity bool
		want     error
	}{
		{"no wallet", openAuction("0", NoBidder), units("5"), false, ErrNoWalletConnected},
		{"no wallet wins over closed", closed, units("9"), false, ErrNoWalletConnected},
		{"closed", closed, units("9"), true, ErrAuctionClosed},
		{"closed wins over too low", closed, units("1"), true, ErrAuctionClosed},
		{"equal bid rejected", openAuction("5", bidderB), units("5"), true, ErrBidTooLow},
		{"lower bid rejected", openAuction("5", bidderB), units("3"), true, ErrBidTooLow},
		{"zero on fresh auction", openAuction("0", NoBidder), big.NewInt(0), true, ErrBidTooLow},
		{"nil amount", openAuction("0", NoBidder), nil, true, ErrBidTooLow},
		{"one wei above", openAuction("5", bidderB), new(big.Int).Add(units("5"), big.NewInt(1)), true, nil},
		{"first bid", openAuction("0", NoBidder), units("5"), true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlaceBid(tt.snap, tt.amount, tt.identity)
			if tt.want == nil {
				check.NoError(t, err)
				return
			}
			check.True(t, errors.Is(err, tt.want))
			check.Equal(t, ClassValidation, ClassOf(err))
		})
	}
}

func TestValidatePlaceBid_AmountAtOrBelowHighestAlwaysTooLow(t *testing.T) {
	highest := units("2.5")
	snap := openAuction("2.5", bidderB)
	for _, delta := range []int64{0, 1, 1000, 1e18, 2e18} {
		amount := new(big.Int).Sub(highest, big.NewInt(delta))
		err := ValidatePlaceBid(snap, amount, true)
		check.True(t, errors.Is(err, ErrBidTooLow))
	}
	for _, delta := range []int64{1, 1000, 1e18} {
		amount := new(big.Int).Add(highest, big.NewInt(delta))
		check.NoError(t, ValidatePlaceBid(snap, amount, true))
	}
}

func TestValidateCloseBid(t *testing.T) {
	closed := openAuction("5", bidderB)
	closed.StillOpen = false
	closedEmpty := openAuction("0", NoBidder)
	closedEmpty.StillOpen = false

	tests := []struct {
		name     string
		snap     Auction
		identity bool
		want     error
	}{
		{"no wallet", openAuction("5", bidderB), false, ErrNoWalletConnected},
		{"closed", closed, true, ErrAuctionClosed},
		{"no bids", openAuction("0", NoBidder), true, ErrNoBidsYet},
		{"no bids wins over closed", closedEmpty, true, ErrNoBidsYet},
		{"has bid", openAuction("5", bidderB), true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCloseBid(tt.snap, tt.identity)
			if tt.want == nil {
				check.NoError(t, err)
				return
			}
			check.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestValidate_ClosedRejectsBothActions(t *testing.T) {
	closed := openAuction("5", bidderB)
	closed.StillOpen = false

	check.True(t, errors.Is(Validate(closed, PlaceBid(closed.ID, units("100")), true), ErrAuctionClosed))
	check.True(t, errors.Is(Validate(closed, CloseBid(closed.ID), true), ErrAuctionClosed))
}
