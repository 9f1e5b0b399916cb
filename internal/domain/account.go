package domain

import (
	"sync"
	"time"
)

// Holding represents a participant's position in a single instrument.
type Holding struct {
	Quantity         int64
	ReservedQuantity int64 // shares locked by resting sell orders
}

// Account represents a market participant's financial state.
type Account struct {
	OwnerID      string
	CashBalance  int64               // total cash in credits (available + reserved)
	ReservedCash int64               // cash locked by resting buy orders
	Holdings     map[string]*Holding // instrument_id → holding

	// Unbounded marks the market maker's account: reservation and balance
	// checks are skipped for it, so its balances may go negative.
	Unbounded bool

	CreatedAt time.Time
	Mu        sync.Mutex // guards balance and holding mutations
}

// AvailableCash returns the unreserved cash balance.
func (a *Account) AvailableCash() int64 {
	return a.CashBalance - a.ReservedCash
}

// AvailableShares returns the unreserved quantity held in the given
// instrument, or 0 if the account holds none.
func (a *Account) AvailableShares(instrumentID string) int64 {
	h, ok := a.Holdings[instrumentID]
	if !ok {
		return 0
	}
	return h.Quantity - h.ReservedQuantity
}

// Holding returns the holding for instrumentID, creating an empty one if
// absent. The caller must hold Mu.
func (a *Account) Holding(instrumentID string) *Holding {
	h, ok := a.Holdings[instrumentID]
	if !ok {
		h = &Holding{}
		a.Holdings[instrumentID] = h
	}
	return h
}
