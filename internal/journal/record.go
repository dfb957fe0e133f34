package journal

import (
	"fmt"
	"time"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusFailed    Status = "FAILED"
	StatusRejected  Status = "REJECTED"
)

var eventStatus = map[string]Status{
	auction.EventSubmissionPending:   StatusPending,
	auction.EventSubmissionConfirmed: StatusConfirmed,
	auction.EventSubmissionFailed:    StatusFailed,
	auction.EventSubmissionRejected:  StatusRejected,
}

// Record is one row of the submissions table: the latest known state of a
// single ticket.
type Record struct {
	TicketID   string    `json:"ticket_id"`
	EventID    string    `json:"event_id"`
	AuctionID  string    `json:"auction_id"`
	Action     string    `json:"action"`
	Caller     string    `json:"caller,omitempty"`
	AmountWei  string    `json:"amount_wei,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	TxHash     string    `json:"tx_hash,omitempty"`
	Status     Status    `json:"status"`
	Kind       string    `json:"kind,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Superseded bool      `json:"superseded"`
	OccurredAt time.Time `json:"occurred_at"`
}

func recordFrom(env auction.Envelope, p auction.SubmissionPayload) (Record, error) {
	st, ok := eventStatus[env.EventType]
	if !ok {
		return Record{}, fmt.Errorf("unknown event type %q", env.EventType)
	}
	if p.TicketID == "" || p.AuctionID == "" {
		return Record{}, fmt.Errorf("event %s: missing ticket or auction id", env.EventID)
	}
	return Record{
		TicketID:   p.TicketID,
		EventID:    env.EventID,
		AuctionID:  p.AuctionID,
		Action:     string(p.Action),
		Caller:     p.Caller,
		AmountWei:  p.AmountWei,
		TxHash:     p.TxHash,
		Status:     st,
		Kind:       string(p.Kind),
		Reason:     p.Message,
		Superseded: p.Superseded,
		OccurredAt: env.OccurredAt,
	}, nil
}
