package lifecycle

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
	"github.com/ariefcatur/go-realtime-auctions/internal/ledger"
	"github.com/ariefcatur/go-realtime-auctions/internal/submit"
)

var (
	creatorA = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bidderB  = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	bidderC  = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

func units(s string) *big.Int {
	v, err := auction.ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return v
}

type pendingTx struct {
	act    auction.Action
	caller common.Address
}

// chain is an in-memory marketplace contract. Writes are estimated on Send
// and take effect when WaitConfirmed "mines" them.
type chain struct {
	mu       sync.Mutex
	auctions []auction.Auction
	pending  map[common.Hash]pendingTx
	nonce    int64
	broken   map[int64]bool // ids whose record comes back malformed
	readErr  error
	afterTx  func(c *chain) // runs after each mined tx, outside the lock

	reads atomic.Int32
	sends atomic.Int32
}

func newChain(auctions ...auction.Auction) *chain {
	return &chain{auctions: auctions, pending: map[common.Hash]pendingTx{}, broken: map[int64]bool{}}
}

func (c *chain) ReadAuction(ctx context.Context, id *big.Int) ([]any, error) {
	c.reads.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return nil, c.readErr
	}
	if c.broken[id.Int64()] {
		return []any{"not", "a", "record"}, nil
	}
	a := c.auctions[id.Int64()]
	return []any{
		a.Creator, a.Owner, a.Metadata.Name, a.Metadata.Image, a.Metadata.Description, a.Metadata.Location,
		a.HighestBidder, new(big.Int).Set(a.HighestBid), a.StillOpen,
	}, nil
}

func (c *chain) AuctionCount(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return big.NewInt(int64(len(c.auctions))), nil
}

func (c *chain) setReadErr(err error) {
	c.mu.Lock()
	c.readErr = err
	c.mu.Unlock()
}

// mine applies act for caller with the contract's own rules.
func (c *chain) mine(act auction.Action, caller common.Address) error {
	c.mu.Lock()
	id := act.AuctionID.Int64()
	next, err := auction.Apply(c.auctions[id], act, caller)
	if err == nil {
		c.auctions[id] = next
	}
	hook := c.afterTx
	c.mu.Unlock()
	if err != nil {
		kind, _ := auction.KindOf(err)
		return auction.Rejected(string(kind), err)
	}
	if hook != nil {
		hook(c)
	}
	return nil
}

// account signs for one address; gate, when set, holds mining until closed.
type account struct {
	c    *chain
	addr common.Address
	gate chan struct{}
}

func (a *account) Send(ctx context.Context, act auction.Action) (common.Hash, error) {
	a.c.sends.Add(1)
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	if _, err := auction.Apply(a.c.auctions[act.AuctionID.Int64()], act, a.addr); err != nil {
		kind, _ := auction.KindOf(err)
		return common.Hash{}, auction.Rejected(string(kind), err)
	}
	a.c.nonce++
	hash := common.BigToHash(big.NewInt(a.c.nonce))
	a.c.pending[hash] = pendingTx{act: act, caller: a.addr}
	return hash, nil
}

func (a *account) WaitConfirmed(ctx context.Context, hash common.Hash) error {
	if a.gate != nil {
		select {
		case <-a.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	a.c.mu.Lock()
	tx, ok := a.c.pending[hash]
	delete(a.c.pending, hash)
	a.c.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown tx %s", hash)
	}
	return a.c.mine(tx.act, tx.caller)
}

type fakeWallet struct {
	addr      common.Address
	connected bool
	requests  atomic.Int32
}

func (w *fakeWallet) Identity() (common.Address, bool) { return w.addr, w.connected }
func (w *fakeWallet) RequestConnection()               { w.requests.Add(1) }

type recorder struct {
	mu     sync.Mutex
	events []string
	notes  []Note
}

func (r *recorder) add(ev string, n Note) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.notes = append(r.notes, n)
	r.mu.Unlock()
}

func (r *recorder) Pending(n Note)           { r.add("pending", n) }
func (r *recorder) Success(n Note)           { r.add("success", n) }
func (r *recorder) Error(n Note, msg string) { r.add("error: "+msg, n) }

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) last() Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notes[len(r.notes)-1]
}

type published struct {
	mu    sync.Mutex
	snaps []auction.Auction
}

func (p *published) Publish(ctx context.Context, a auction.Auction) error {
	p.mu.Lock()
	p.snaps = append(p.snaps, a.Clone())
	p.mu.Unlock()
	return nil
}

func (p *published) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snaps)
}

type harness struct {
	m      *Manager
	acct   *account
	wallet *fakeWallet
	notes  *recorder
	pub    *published
}

func newHarness(c *chain, caller common.Address) *harness {
	acct := &account{c: c, addr: caller}
	w := &fakeWallet{addr: caller, connected: true}
	notes := &recorder{}
	pub := &published{}
	m := NewManager(ledger.NewReader(c, 4), submit.New(acct, nil, time.Second), w, notes, pub)
	return &harness{m: m, acct: acct, wallet: w, notes: notes, pub: pub}
}

func freshAuction(id int64) auction.Auction {
	return auction.Auction{
		ID:            big.NewInt(id),
		Creator:       creatorA,
		Owner:         creatorA,
		Metadata:      auction.Metadata{Name: "Lamp", Image: "https://img/lamp.png", Description: "brass", Location: "Lagos"},
		HighestBidder: auction.NoBidder,
		HighestBid:    new(big.Int),
		StillOpen:     true,
	}
}

func settle(t *testing.T, tk *Ticket) Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, err := tk.Wait(ctx)
	if err != nil {
		t.Fatalf("ticket %s never settled: %v", tk.ID, err)
	}
	return out
}
