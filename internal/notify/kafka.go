package notify

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
	kafkax "github.com/ariefcatur/go-realtime-auctions/internal/kafka"
	"github.com/ariefcatur/go-realtime-auctions/internal/lifecycle"
)

type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Kafka turns notifications into Submission* outcome events.
type Kafka struct {
	Producer EventPublisher
	Service  string
	now      func() time.Time
}

func NewKafka(p EventPublisher, service string) *Kafka {
	return &Kafka{Producer: p, Service: service, now: time.Now}
}

func (k *Kafka) Pending(n lifecycle.Note) {
	k.emit(auction.EventSubmissionPending, n, "")
}

func (k *Kafka) Success(n lifecycle.Note) {
	k.emit(auction.EventSubmissionConfirmed, n, "")
}

func (k *Kafka) Error(n lifecycle.Note, message string) {
	if n.Submitted {
		k.emit(auction.EventSubmissionFailed, n, message)
		return
	}
	k.emit(auction.EventSubmissionRejected, n, message)
}

func (k *Kafka) emit(eventType string, n lifecycle.Note, message string) {
	p := auction.SubmissionPayload{
		TicketID:   n.TicketID,
		AuctionID:  n.AuctionID.String(),
		Action:     n.Action,
		Kind:       n.Kind,
		Message:    message,
		Superseded: n.Superseded,
	}
	if n.Amount != nil {
		p.AmountWei = n.Amount.String()
	}
	if n.Caller != (common.Address{}) {
		p.Caller = n.Caller.Hex()
	}
	if n.TxHash != (common.Hash{}) {
		p.TxHash = n.TxHash.Hex()
	}

	now := time.Now
	if k.now != nil {
		now = k.now
	}
	ev := auction.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    now().UTC(),
		Producer:      k.Service,
		CorrelationID: n.TicketID,
		Payload:       kafkax.MustMarshal(p),
	}
	k.Producer.Publish(auction.PartitionKey(p.AuctionID), kafkax.MustMarshal(ev), kafkax.EventHeaders(eventType, 1)...)
}
