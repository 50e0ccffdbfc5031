package ledger

import (
	"sync"

	"github.com/kilianp07/cargo-agent/core/model"
)

// CoinLedger is the append-only record of coins earned per delivered order.
// Entries are in completion order. Append and Snapshot are safe to call
// concurrently: the HTTP front door polls while the pipeline appends.
type CoinLedger struct {
	mu    sync.Mutex
	coins []int
}

// NewCoinLedger creates an empty ledger.
func NewCoinLedger() *CoinLedger { return &CoinLedger{} }

// Add appends one reward entry.
func (l *CoinLedger) Add(coins int) {
	l.mu.Lock()
	l.coins = append(l.coins, coins)
	l.mu.Unlock()
}

// Snapshot returns a copy of all entries recorded so far.
func (l *CoinLedger) Snapshot() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]int, len(l.coins))
	copy(out, l.coins)
	return out
}

// Total sums all recorded rewards.
func (l *CoinLedger) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, c := range l.coins {
		total += c
	}
	return total
}

// OrderStore records every order event received from the broker, regardless
// of outcome, for the front door's order listing.
type OrderStore struct {
	mu     sync.RWMutex
	orders []model.Order
}

// NewOrderStore creates an empty store.
func NewOrderStore() *OrderStore { return &OrderStore{} }

// Add records a received order.
func (s *OrderStore) Add(o model.Order) {
	s.mu.Lock()
	s.orders = append(s.orders, o)
	s.mu.Unlock()
}

// All returns a copy of the received orders in arrival order.
func (s *OrderStore) All() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Order, len(s.orders))
	copy(out, s.orders)
	return out
}
