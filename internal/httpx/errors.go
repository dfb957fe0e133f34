package httpx

import (
	"errors"
	"net/http"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
)

type errorResp struct {
	Error string       `json:"error"`
	Kind  auction.Kind `json:"kind,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, auction.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, auction.ErrNoWalletConnected):
		return http.StatusUnauthorized
	case errors.Is(err, auction.ErrSubmissionInProgress):
		return http.StatusConflict
	case auction.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auction.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, auction.ErrLedgerUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, auction.ErrDecode), errors.Is(err, auction.ErrLedger):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResp{Error: auction.Message(err)}
	if errors.Is(err, auction.ErrInvalidAmount) {
		resp.Error = err.Error()
	}
	resp.Kind, _ = auction.KindOf(err)
	writeJSON(w, statusFor(err), resp)
}
