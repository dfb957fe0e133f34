package auction

import (
	"errors"
	"fmt"
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("submit: %w", Rejected("bid too low", errors.New("execution reverted")))
	check.True(t, errors.Is(err, ErrLedger))
	check.False(t, errors.Is(err, ErrBidTooLow))

	k, ok := KindOf(err)
	check.True(t, ok)
	check.Equal(t, KindLedgerError, k)
	check.Equal(t, ClassLedger, ClassOf(err))
}

func TestError_Classes(t *testing.T) {
	check.Equal(t, ClassValidation, ErrSubmissionInProgress.Class())
	check.Equal(t, ClassConnectivity, Timeout(nil).Class())
	check.Equal(t, ClassConnectivity, Unavailable(errors.New("dial tcp")).Class())
	check.Equal(t, ClassDecode, Decode("position %d", 3).Class())
	check.Equal(t, Class(""), ClassOf(errors.New("plain")))
	check.True(t, IsValidation(ErrNoBidsYet))
	check.False(t, IsValidation(ErrTimeout))
}

func TestMessage(t *testing.T) {
	check.Equal(t, "Bid amount too small", Message(ErrBidTooLow))
	check.Equal(t, "Transaction failed: Bid too low", Message(Rejected("Bid too low", nil)))
	check.Equal(t, "Transaction failed", Message(Rejected("", errors.New("status 0"))))
	check.Equal(t, "Something went wrong. Try again.", Message(errors.New("dial tcp 10.0.0.1: refused")))

	// internal details stay out of the user message
	msg := Message(Unavailable(errors.New("dial tcp 10.0.0.1: refused")))
	check.Equal(t, "Could not reach the network. Try again.", msg)
}
