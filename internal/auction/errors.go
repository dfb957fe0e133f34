package auction

import (
	"errors"
	"fmt"
)

type Class string

const (
	ClassValidation   Class = "validation"
	ClassConnectivity Class = "connectivity"
	ClassLedger       Class = "ledger"
	ClassDecode       Class = "decode"
)

type Kind string

const (
	KindAuctionClosed        Kind = "AuctionClosed"
	KindBidTooLow            Kind = "BidTooLow"
	KindNoBidsYet            Kind = "NoBidsYet"
	KindNoWalletConnected    Kind = "NoWalletConnected"
	KindSubmissionInProgress Kind = "SubmissionInProgress"
	KindLedgerUnavailable    Kind = "LedgerUnavailable"
	KindTimeout              Kind = "Timeout"
	KindLedgerError          Kind = "LedgerError"
	KindDecodeError          Kind = "DecodeError"
)

var kindClass = map[Kind]Class{
	KindAuctionClosed:        ClassValidation,
	KindBidTooLow:            ClassValidation,
	KindNoBidsYet:            ClassValidation,
	KindNoWalletConnected:    ClassValidation,
	KindSubmissionInProgress: ClassValidation,
	KindLedgerUnavailable:    ClassConnectivity,
	KindTimeout:              ClassConnectivity,
	KindLedgerError:          ClassLedger,
	KindDecodeError:          ClassDecode,
}

var kindMessage = map[Kind]string{
	KindAuctionClosed:        "This auction is closed",
	KindBidTooLow:            "Bid amount too small",
	KindNoBidsYet:            "Product must have at least 1 bid before you can close",
	KindNoWalletConnected:    "Connect a wallet to continue",
	KindSubmissionInProgress: "A transaction for this auction is already pending",
	KindLedgerUnavailable:    "Could not reach the network. Try again.",
	KindTimeout:              "Timed out waiting for confirmation, the transaction may still go through",
	KindLedgerError:          "Transaction failed",
	KindDecodeError:          "Auction data is unavailable",
}

const fallbackMessage = "Something went wrong. Try again."

// Error is the single error type of the lifecycle core. Two Errors match
// under errors.Is when their kinds are equal, so the Err* values below work
// as sentinels.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

var (
	ErrAuctionClosed        = &Error{Kind: KindAuctionClosed}
	ErrBidTooLow            = &Error{Kind: KindBidTooLow}
	ErrNoBidsYet            = &Error{Kind: KindNoBidsYet}
	ErrNoWalletConnected    = &Error{Kind: KindNoWalletConnected}
	ErrSubmissionInProgress = &Error{Kind: KindSubmissionInProgress}
	ErrLedgerUnavailable    = &Error{Kind: KindLedgerUnavailable}
	ErrTimeout              = &Error{Kind: KindTimeout}
	ErrLedger               = &Error{Kind: KindLedgerError}
	ErrDecode               = &Error{Kind: KindDecodeError}
)

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (e *Error) Class() Class { return kindClass[e.Kind] }

func Unavailable(err error) *Error {
	return &Error{Kind: KindLedgerUnavailable, Err: err}
}

func Timeout(err error) *Error {
	return &Error{Kind: KindTimeout, Err: err}
}

// Rejected reports a write the ledger refused; reason is the ledger's own
// text when it gave one.
func Rejected(reason string, err error) *Error {
	return &Error{Kind: KindLedgerError, Reason: reason, Err: err}
}

func Decode(format string, args ...any) *Error {
	return &Error{Kind: KindDecodeError, Reason: fmt.Sprintf(format, args...)}
}

func rejectf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// ClassOf returns "" for errors outside the taxonomy.
func ClassOf(err error) Class {
	if k, ok := KindOf(err); ok {
		return kindClass[k]
	}
	return ""
}

func IsValidation(err error) bool { return ClassOf(err) == ClassValidation }

// Message turns err into the text shown to the user. Raw error values never
// leak through; only a ledger revert reason is passed along.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return fallbackMessage
	}
	msg, ok := kindMessage[e.Kind]
	if !ok {
		return fallbackMessage
	}
	if e.Kind == KindLedgerError && e.Reason != "" {
		return msg + ": " + e.Reason
	}
	return msg
}
