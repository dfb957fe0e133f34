package submit

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// InflightGuard admits one submission per key until Release.
type InflightGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string)
}

// GuardKey scopes the guard to one caller and one auction.
func GuardKey(caller common.Address, auctionID *big.Int) string {
	return strings.ToLower(caller.Hex()) + ":" + auctionID.String()
}

// MemoryGuard is the in-process guard, enough for a single gateway.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[string]struct{})}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return false, nil
	}
	g.held[key] = struct{}{}
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, key string) {
	g.mu.Lock()
	delete(g.held, key)
	g.mu.Unlock()
}
