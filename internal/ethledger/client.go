package ethledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
)

// receiptSource is what confirmation polling needs from the node.
type receiptSource interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client talks to the marketplace contract over JSON-RPC. It serves both the
// ledger reader and the transaction submitter.
type Client struct {
	eth      *ethclient.Client
	contract *bind.BoundContract
	abi      abi.ABI
	address  common.Address
	chainID  *big.Int
	wallet   *KeyWallet
	receipts receiptSource
	poll     time.Duration
}

func Dial(ctx context.Context, rpcURL, contractAddress string, wallet *KeyWallet) (*Client, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("contract address %q is not a hex address", contractAddress)
	}
	parsed, err := abi.JSON(strings.NewReader(marketplaceABI))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("chain id: %w", err)
	}
	addr := common.HexToAddress(contractAddress)
	return &Client{
		eth:      eth,
		contract: bind.NewBoundContract(addr, parsed, eth, eth, eth),
		abi:      parsed,
		address:  addr,
		chainID:  chainID,
		wallet:   wallet,
		receipts: eth,
		poll:     time.Second,
	}, nil
}

func (c *Client) Close() { c.eth.Close() }

func (c *Client) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

// ReadAuction returns readProduct's outputs in ABI order.
func (c *Client) ReadAuction(ctx context.Context, id *big.Int) ([]any, error) {
	var out []any
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodRead, id); err != nil {
		return nil, classifyCall(ctx, err)
	}
	return out, nil
}

func (c *Client) AuctionCount(ctx context.Context) (*big.Int, error) {
	var out []any
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, methodLength); err != nil {
		return nil, classifyCall(ctx, err)
	}
	if len(out) != 1 {
		return nil, auction.Decode("%s returned %d values", methodLength, len(out))
	}
	n, ok := out[0].(*big.Int)
	if !ok {
		return nil, auction.Decode("%s returned %T", methodLength, out[0])
	}
	return n, nil
}

// Send signs and broadcasts act once. It never resends.
func (c *Client) Send(ctx context.Context, act auction.Action) (common.Hash, error) {
	opts, err := c.wallet.transactOpts(c.chainID)
	if err != nil {
		return common.Hash{}, auction.ErrNoWalletConnected
	}
	opts.Context = ctx

	var tx *types.Transaction
	switch act.Kind {
	case auction.ActionPlaceBid:
		opts.Value = act.Amount
		tx, err = c.contract.Transact(opts, methodBid, act.AuctionID)
	case auction.ActionCloseBid:
		tx, err = c.contract.Transact(opts, methodClose, act.AuctionID)
	default:
		return common.Hash{}, fmt.Errorf("unknown action %q", act.Kind)
	}
	if err != nil {
		return common.Hash{}, classifySend(ctx, err)
	}
	log.Info().Str("tx", tx.Hash().Hex()).Str("action", act.String()).Msg("transaction sent")
	return tx.Hash(), nil
}

// WaitConfirmed polls for the receipt of hash until it is mined or ctx ends.
// A failed receipt is replayed as a call to recover the revert reason.
func (c *Client) WaitConfirmed(ctx context.Context, hash common.Hash) error {
	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		receipt, err := c.receipts.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status == types.ReceiptStatusSuccessful {
				return nil
			}
			return auction.Rejected(c.revertReason(ctx, hash, receipt.BlockNumber), errors.New("transaction reverted"))
		}
		if !errors.Is(err, ethereum.NotFound) {
			log.Debug().Err(err).Str("tx", hash.Hex()).Msg("receipt poll failed")
		}

		select {
		case <-ctx.Done():
			return auction.Timeout(ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) revertReason(ctx context.Context, hash common.Hash, block *big.Int) string {
	tx, _, err := c.receipts.TransactionByHash(ctx, hash)
	if err != nil {
		return ""
	}
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return ""
	}
	msg := ethereum.CallMsg{
		From:  from,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	_, err = c.receipts.CallContract(ctx, msg, block)
	if err == nil {
		return ""
	}
	return reasonFrom(err)
}
