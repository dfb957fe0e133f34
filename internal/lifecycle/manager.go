package lifecycle

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
)

const defaultReadTimeout = 15 * time.Second

// ErrNoAuctionID is returned when an operation is given a nil auction id.
var ErrNoAuctionID = errors.New("lifecycle: nil auction id")

// Manager owns the local view of every auction it has seen and runs each
// bid or close through validate, submit and reconcile.
type Manager struct {
	Reader    Reader
	Submitter Submitter
	Wallet    Wallet
	Notifier  Notifier
	Publisher Publisher // optional

	// ReadTimeout bounds the reconcile read after a submission settles.
	ReadTimeout time.Duration

	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	inflight sync.WaitGroup
}

func NewManager(r Reader, s Submitter, w Wallet, n Notifier, p Publisher) *Manager {
	if n == nil {
		n = nopNotifier{}
	}
	return &Manager{
		Reader:      r,
		Submitter:   s,
		Wallet:      w,
		Notifier:    n,
		Publisher:   p,
		ReadTimeout: defaultReadTimeout,
		now:         time.Now,
		entries:     make(map[string]*entry),
	}
}

func (m *Manager) entry(id *big.Int) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id.String()]
	if !ok {
		e = &entry{view: View{ID: new(big.Int).Set(id)}}
		m.entries[id.String()] = e
	}
	return e
}

// View returns the local view of id without touching the ledger.
func (m *Manager) View(id *big.Int) (View, bool) {
	if id == nil {
		return View{}, false
	}
	m.mu.Lock()
	e, ok := m.entries[id.String()]
	m.mu.Unlock()
	if !ok {
		return View{}, false
	}
	v := e.get()
	return v, v.Loaded || v.Err != nil
}

// Load reads id from the ledger and replaces the local snapshot. On a failed
// read the previous snapshot stays and the view is marked unavailable.
func (m *Manager) Load(ctx context.Context, id *big.Int) (View, error) {
	if id == nil {
		return View{}, ErrNoAuctionID
	}
	e := m.entry(id)
	e.load.Lock()
	defer e.load.Unlock()

	a, err := m.Reader.Fetch(ctx, id)
	if err != nil {
		return e.fail(err, m.now()), err
	}
	return e.install(a, m.now()), nil
}

// Refresh is Load followed by publishing the fresh snapshot.
func (m *Manager) Refresh(ctx context.Context, id *big.Int) (View, error) {
	v, err := m.Load(ctx, id)
	if err != nil {
		return v, err
	}
	m.publish(ctx, v.Snapshot)
	return v, nil
}

// LoadAll lists every auction on the ledger. Per-auction failures show up in
// the returned views; only a failed count is an error.
func (m *Manager) LoadAll(ctx context.Context) ([]View, error) {
	n, err := m.Reader.Count(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]*big.Int, n)
	for i := range ids {
		ids[i] = big.NewInt(int64(i))
	}

	results := m.Reader.FetchMany(ctx, ids)
	views := make([]View, 0, len(results))
	for _, r := range results {
		e := m.entry(r.ID)
		if r.Err != nil {
			views = append(views, e.fail(r.Err, m.now()))
			continue
		}
		views = append(views, e.install(r.Auction, m.now()))
	}
	return views, nil
}

func (m *Manager) PlaceBid(ctx context.Context, id, amount *big.Int) (*Ticket, error) {
	return m.dispatch(ctx, auction.PlaceBid(id, amount))
}

func (m *Manager) CloseBid(ctx context.Context, id *big.Int) (*Ticket, error) {
	return m.dispatch(ctx, auction.CloseBid(id))
}

func (m *Manager) dispatch(ctx context.Context, act auction.Action) (*Ticket, error) {
	if act.AuctionID == nil {
		return nil, ErrNoAuctionID
	}
	note := Note{
		TicketID:  uuid.NewString(),
		Action:    act.Kind,
		AuctionID: act.AuctionID,
		Amount:    act.Amount,
	}

	caller, ok := m.Wallet.Identity()
	if !ok {
		m.Wallet.RequestConnection()
		return nil, m.reject(note, auction.ErrNoWalletConnected)
	}
	note.Caller = caller

	view, _ := m.View(act.AuctionID)
	if !view.Loaded {
		var err error
		if view, err = m.Load(ctx, act.AuctionID); err != nil {
			return nil, m.reject(note, err)
		}
	}

	if err := auction.Validate(view.Snapshot, act, true); err != nil {
		return nil, m.reject(note, err)
	}
	expected, err := auction.Apply(view.Snapshot, act, caller)
	if err != nil {
		return nil, m.reject(note, err)
	}

	m.Notifier.Pending(note)
	h, err := m.Submitter.Submit(ctx, caller, act)
	if err != nil {
		return nil, m.reject(note, err)
	}

	t := newTicket(note.TicketID, act, caller)
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		m.settle(h.Wait, t, note, expected)
	}()
	return t, nil
}

func (m *Manager) reject(note Note, err error) error {
	note.Kind, _ = auction.KindOf(err)
	m.Notifier.Error(note, auction.Message(err))
	log.Info().Err(err).Str("ticket", note.TicketID).Str("auction_id", note.AuctionID.String()).
		Str("action", string(note.Action)).Msg("action refused")
	return err
}
