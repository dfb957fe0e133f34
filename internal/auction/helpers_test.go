package auction

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	creatorA = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bidderB  = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	bidderC  = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

func units(s string) *big.Int {
	v, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return v
}

func openAuction(highest string, bidder common.Address) Auction {
	return Auction{
		ID:            big.NewInt(1),
		Creator:       creatorA,
		Owner:         creatorA,
		Metadata:      Metadata{Name: "Lamp", Image: "https://img/lamp.png", Description: "brass", Location: "Lagos"},
		HighestBidder: bidder,
		HighestBid:    units(highest),
		StillOpen:     true,
	}
}
