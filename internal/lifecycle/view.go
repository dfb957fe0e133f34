package lifecycle

import (
	"math/big"
	"sync"
	"time"

	"github.com/ariefcatur/go-realtime-auctions/internal/auction"
)

// View is what the service currently holds for one auction. Snapshot is the
// last successful read; when the latest read failed Available is false and
// Err says why, but the older Snapshot is kept.
type View struct {
	ID        *big.Int
	Snapshot  auction.Auction
	Loaded    bool
	Available bool
	Err       error
	Updated   time.Time
}

func (v View) clone() View {
	v.ID = new(big.Int).Set(v.ID)
	if v.Loaded {
		v.Snapshot = v.Snapshot.Clone()
	}
	return v
}

// entry guards one auction's view. load serialises ledger reads so a slow
// read can never overwrite a newer one; mu guards the view itself.
type entry struct {
	load sync.Mutex
	mu   sync.RWMutex
	view View
}

func (e *entry) get() View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.view.clone()
}

func (e *entry) install(a auction.Auction, now time.Time) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view = View{ID: e.view.ID, Snapshot: a.Clone(), Loaded: true, Available: true, Updated: now}
	return e.view.clone()
}

func (e *entry) fail(err error, now time.Time) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.Available = false
	e.view.Err = err
	e.view.Updated = now
	return e.view.clone()
}
