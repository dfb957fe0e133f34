package ethledger

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
	"github.com/ariefcatur/go-realtime-auctions/internal/ledger"
)

type dataError struct {
	msg  string
	data any
}

func (e dataError) Error() string  { return e.msg }
func (e dataError) ErrorCode() int { return 3 }
func (e dataError) ErrorData() any { return e.data }

func revertData(t *testing.T, reason string) string {
	t.Helper()
	str, err := abi.NewType("string", "", nil)
	assert.NoError(t, err)
	packed, err := abi.Arguments{{Type: str}}.Pack(reason)
	assert.NoError(t, err)
	selector := crypto.Keccak256([]byte("Error(string)"))[:4]
	return hexutil.Encode(append(selector, packed...))
}

func TestReadProduct_ABIMatchesDecoder(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(marketplaceABI))
	assert.NoError(t, err)

	creator := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bidder := common.HexToAddress("0x00000000000000000000000000000000000000b2")
	highest, _ := new(big.Int).SetString("5000000000000000000", 10)

	out, err := parsed.Methods[methodRead].Outputs.Pack(
		creator, creator, "Lamp", "https://img/lamp.png", "brass", "Lagos", bidder, highest, true,
	)
	assert.NoError(t, err)

	raw, err := parsed.Unpack(methodRead, out)
	assert.NoError(t, err)

	a, err := ledger.DecodeAuction(big.NewInt(2), raw)
	assert.NoError(t, err)
	check.Equal(t, creator, a.Creator)
	check.Equal(t, bidder, a.HighestBidder)
	check.Equal(t, "5", auction.FormatAmount(a.HighestBid))
	check.Equal(t, "Lagos", a.Metadata.Location)
	check.True(t, a.StillOpen)
}

func TestABI_WriteMethods(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(marketplaceABI))
	assert.NoError(t, err)
	check.True(t, parsed.Methods[methodBid].IsPayable())
	check.False(t, parsed.Methods[methodClose].IsPayable())
	_, err = parsed.Pack(methodBid, big.NewInt(1))
	check.NoError(t, err)
}

func TestClassifySend(t *testing.T) {
	ctx := context.Background()

	err := classifySend(ctx, dataError{msg: "execution reverted: Bid too low", data: revertData(t, "Bid too low")})
	check.True(t, errors.Is(err, auction.ErrLedger))
	check.Equal(t, "Transaction failed: Bid too low", auction.Message(err))

	err = classifySend(ctx, errors.New("failed to estimate gas needed: execution reverted: Auction closed"))
	check.True(t, errors.Is(err, auction.ErrLedger))
	check.Equal(t, "Transaction failed: Auction closed", auction.Message(err))

	err = classifySend(ctx, errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"))
	check.True(t, errors.Is(err, auction.ErrLedgerUnavailable))

	err = classifySend(ctx, context.DeadlineExceeded)
	check.True(t, errors.Is(err, auction.ErrTimeout))
}

type fakeReceipts struct {
	misses  int32 // NotFound answers before the receipt shows up
	calls   atomic.Int32
	receipt *types.Receipt
	tx      *types.Transaction
	callErr error
}

func (f *fakeReceipts) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if f.calls.Add(1) <= f.misses || f.receipt == nil {
		return nil, ethereum.NotFound
	}
	return f.receipt, nil
}

func (f *fakeReceipts) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	return f.tx, false, nil
}

func (f *fakeReceipts) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	return nil, f.callErr
}

func TestWaitConfirmed_Success(t *testing.T) {
	f := &fakeReceipts{misses: 2, receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}}
	c := &Client{receipts: f, poll: time.Millisecond}

	err := c.WaitConfirmed(context.Background(), common.HexToHash("0x01"))
	check.NoError(t, err)
	check.Equal(t, int32(3), f.calls.Load())
}

func TestWaitConfirmed_RevertedWithReason(t *testing.T) {
	key, err := crypto.GenerateKey()
	assert.NoError(t, err)
	to := common.HexToAddress("0x00000000000000000000000000000000000000ff")
	tx := types.MustSignNewTx(key, types.LatestSignerForChainID(big.NewInt(44787)), &types.LegacyTx{
		Nonce: 1, To: &to, Gas: 100000, GasPrice: big.NewInt(1), Value: big.NewInt(5),
	})

	f := &fakeReceipts{
		receipt: &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(10)},
		tx:      tx,
		callErr: dataError{msg: "execution reverted", data: revertData(t, "Bid too low")},
	}
	c := &Client{receipts: f, poll: time.Millisecond}

	err = c.WaitConfirmed(context.Background(), tx.Hash())
	check.True(t, errors.Is(err, auction.ErrLedger))
	check.Equal(t, "Transaction failed: Bid too low", auction.Message(err))
}

func TestWaitConfirmed_Timeout(t *testing.T) {
	f := &fakeReceipts{}
	c := &Client{receipts: f, poll: time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.WaitConfirmed(ctx, common.HexToHash("0x02"))
	check.True(t, errors.Is(err, auction.ErrTimeout))
}

func TestKeyWallet(t *testing.T) {
	empty, err := NewKeyWallet("")
	assert.NoError(t, err)
	_, ok := empty.Identity()
	check.False(t, ok)

	key, err := crypto.GenerateKey()
	assert.NoError(t, err)
	w, err := NewKeyWallet(hexutil.Encode(crypto.FromECDSA(key)))
	assert.NoError(t, err)
	addr, ok := w.Identity()
	check.True(t, ok)
	check.Equal(t, crypto.PubkeyToAddress(key.PublicKey), addr)

	_, err = NewKeyWallet("not-a-key")
	check.Error(t, err)
}
