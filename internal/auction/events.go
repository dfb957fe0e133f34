package auction

import (
	"encoding/json"
	"time"
)

const (
	EventSubmissionPending   = "SubmissionPending"
	EventSubmissionConfirmed = "SubmissionConfirmed"
	EventSubmissionFailed    = "SubmissionFailed"
	EventSubmissionRejected  = "SubmissionRejected" // refused locally, nothing sent
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // ticket id
	Payload       json.RawMessage `json:"payload"`
}

// SubmissionPayload is carried by every Submission* event. Amounts are wei
// strings so consumers never go through floating point.
type SubmissionPayload struct {
	TicketID   string     `json:"ticket_id"`
	AuctionID  string     `json:"auction_id"`
	Action     ActionKind `json:"action"`
	Caller     string     `json:"caller"`
	AmountWei  string     `json:"amount_wei,omitempty"`
	TxHash     string     `json:"tx_hash,omitempty"`
	Kind       Kind       `json:"kind,omitempty"`
	Message    string     `json:"message,omitempty"`
	Superseded bool       `json:"superseded,omitempty"`
}
