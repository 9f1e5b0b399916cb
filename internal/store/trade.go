package store

import (
	"sync"

	"github.com/jaeminoh/marketsim/internal/domain"
)

// TradeStore is a thread-safe in-memory store for executed trades,
// keyed by instrument. Trades are append-only and chronological.
type TradeStore struct {
	mu     sync.RWMutex
	trades map[string][]*domain.Trade // instrument_id → trades (chronological)
}

// NewTradeStore creates an empty TradeStore.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		trades: make(map[string][]*domain.Trade),
	}
}

// Append adds a trade to the instrument's chronological list.
func (s *TradeStore) Append(t *domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades[t.InstrumentID] = append(s.trades[t.InstrumentID], t)
}

// ByInstrument returns all trades for an instrument in chronological
// order. Returns an empty slice if no trades exist.
func (s *TradeStore) ByInstrument(instrumentID string) []*domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades := s.trades[instrumentID]
	// Return a copy to avoid callers mutating the internal slice.
	out := make([]*domain.Trade, len(trades))
	copy(out, trades)
	return out
}

// Recent returns up to n most recent trades for an instrument, newest
// first. Used by the trend analysis query.
func (s *TradeStore) Recent(instrumentID string, n int) []*domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trades := s.trades[instrumentID]
	if n > len(trades) {
		n = len(trades)
	}
	out := make([]*domain.Trade, 0, n)
	for i := len(trades) - 1; i >= len(trades)-n; i-- {
		out = append(out, trades[i])
	}
	return out
}
