package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
)

// Positions of readProduct's return tuple.
const (
	posCreator = iota
	posOwner
	posName
	posImage
	posDescription
	posLocation
	posHighestBidder
	posHighestBid
	posStillOpen

	recordArity
)

var fieldNames = [recordArity]string{
	"creator", "owner", "name", "image", "description", "location",
	"highestBidder", "highestBid", "stillOpen",
}

// DecodeAuction maps the positional record onto the typed snapshot. The raw
// record goes no further than this function.
func DecodeAuction(id *big.Int, raw []any) (auction.Auction, error) {
	if len(raw) != recordArity {
		return auction.Auction{}, auction.Decode("auction %s: expected %d fields, got %d", id, recordArity, len(raw))
	}
	d := decoder{raw: raw, id: id}
	a := auction.Auction{
		ID:      new(big.Int).Set(id),
		Creator: d.address(posCreator),
		Owner:   d.address(posOwner),
		Metadata: auction.Metadata{
			Name:        d.str(posName),
			Image:       d.str(posImage),
			Description: d.str(posDescription),
			Location:    d.str(posLocation),
		},
		HighestBidder: d.address(posHighestBidder),
		HighestBid:    d.amount(posHighestBid),
		StillOpen:     d.boolean(posStillOpen),
	}
	if d.err != nil {
		return auction.Auction{}, d.err
	}
	return a, nil
}

// decoder keeps the first type mismatch and ignores the rest.
type decoder struct {
	raw []any
	id  *big.Int
	err error
}

func (d *decoder) fail(pos int, want string) {
	if d.err == nil {
		d.err = auction.Decode("auction %s: field %d (%s) is %T, want %s", d.id, pos, fieldNames[pos], d.raw[pos], want)
	}
}

func (d *decoder) address(pos int) common.Address {
	v, ok := d.raw[pos].(common.Address)
	if !ok {
		d.fail(pos, "address")
	}
	return v
}

func (d *decoder) str(pos int) string {
	v, ok := d.raw[pos].(string)
	if !ok {
		d.fail(pos, "string")
	}
	return v
}

func (d *decoder) amount(pos int) *big.Int {
	v, ok := d.raw[pos].(*big.Int)
	if !ok || v == nil {
		d.fail(pos, "*big.Int")
		return nil
	}
	if v.Sign() < 0 {
		if d.err == nil {
			d.err = auction.Decode("auction %s: field %d (%s) is negative", d.id, pos, fieldNames[pos])
		}
		return nil
	}
	return new(big.Int).Set(v)
}

func (d *decoder) boolean(pos int) bool {
	v, ok := d.raw[pos].(bool)
	if !ok {
		d.fail(pos, "bool")
	}
	return v
}
