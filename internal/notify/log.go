package notify

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
	"github.com/ariefcatur/go-realtime-auctions/internal/lifecycle"
)

// Log writes every notification to the global zerolog logger.
type Log struct{}

func (Log) Pending(n lifecycle.Note) {
	fields(log.Info(), n).Msg("transaction pending")
}

func (Log) Success(n lifecycle.Note) {
	fields(log.Info(), n).Bool("superseded", n.Superseded).Msg("transaction confirmed")
}

func (Log) Error(n lifecycle.Note, message string) {
	fields(log.Warn(), n).Str("kind", string(n.Kind)).Msg(message)
}

func fields(ev *zerolog.Event, n lifecycle.Note) *zerolog.Event {
	ev = ev.Str("ticket", n.TicketID).
		Str("action", string(n.Action)).
		Str("auction_id", n.AuctionID.String())
	if n.Amount != nil {
		ev = ev.Str("amount", auction.FormatAmount(n.Amount))
	}
	if n.Caller != (common.Address{}) {
		ev = ev.Str("caller", n.Caller.Hex())
	}
	if n.TxHash != (common.Hash{}) {
		ev = ev.Str("tx", n.TxHash.Hex())
	}
	return ev
}
