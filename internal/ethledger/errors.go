package ethledger

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
)

const revertedPrefix = "execution reverted"

// classifyCall maps a failed read. Node-side errors on a view call still mean
// the record could not be read, so everything that is not a deadline is
// connectivity.
func classifyCall(ctx context.Context, err error) error {
	if isDeadline(ctx, err) {
		return auction.Timeout(err)
	}
	return auction.Unavailable(err)
}

// classifySend separates ledger refusals (revert during estimation, node
// rejecting the transaction) from not reaching the node at all.
func classifySend(ctx context.Context, err error) error {
	if isDeadline(ctx, err) {
		return auction.Timeout(err)
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return auction.Rejected(reasonFrom(err), err)
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) || strings.Contains(err.Error(), revertedPrefix) {
		return auction.Rejected(reasonFrom(err), err)
	}
	return auction.Unavailable(err)
}

func isDeadline(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}

// reasonFrom extracts the contract's require() message: first from the ABI
// encoded revert data, then from the node's "execution reverted: ..." text.
func reasonFrom(err error) string {
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if reason, ok := unpackRevert(dataErr.ErrorData()); ok {
			return reason
		}
	}
	msg := err.Error()
	if i := strings.Index(msg, revertedPrefix+": "); i >= 0 {
		return strings.TrimSpace(msg[i+len(revertedPrefix)+2:])
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.Error()
	}
	return ""
}

func unpackRevert(data any) (string, bool) {
	s, ok := data.(string)
	if !ok {
		return "", false
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return "", false
	}
	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		return "", false
	}
	return reason, true
}
