package store

import (
	"sort"
	"sync"

	"github.com/jaeminoh/marketsim/internal/domain"
)

// AccountStore is a thread-safe in-memory ledger of participant accounts,
// keyed by owner_id. Beyond plain storage it implements the settlement
// operations the matching engine runs against: reservation at submission,
// release at cancellation, and all-or-nothing settle per trade.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

// NewAccountStore creates an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]*domain.Account),
	}
}

// Create adds an account to the store. It returns
// domain.ErrAccountAlreadyExists if an account with the same owner exists.
func (s *AccountStore) Create(a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.OwnerID]; exists {
		return domain.ErrAccountAlreadyExists
	}
	s.accounts[a.OwnerID] = a
	return nil
}

// Get retrieves an account by owner ID. It returns
// domain.ErrAccountNotFound if the account does not exist.
func (s *AccountStore) Get(ownerID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[ownerID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return a, nil
}

// Exists returns true if an account with the given owner ID exists.
func (s *AccountStore) Exists(ownerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[ownerID]
	return ok
}

// All returns every account, sorted by owner ID for deterministic output.
func (s *AccountStore) All() []*domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OwnerID < out[j].OwnerID })
	return out
}

// Reserve locks the outgoing asset for a new order before it is inserted
// into the book: cash (price × qty) for a buy, shares (qty) for a sell.
// Unbounded accounts skip reservation entirely. Returns
// domain.ErrInsufficientFunds or domain.ErrInsufficientShares without
// mutating anything if the available balance does not cover the order.
func (s *AccountStore) Reserve(ownerID, instrumentID string, side domain.OrderSide, price, qty int64) error {
	a, err := s.Get(ownerID)
	if err != nil {
		return err
	}

	a.Mu.Lock()
	defer a.Mu.Unlock()

	if a.Unbounded {
		return nil
	}
	if side == domain.OrderSideBuy {
		required := price * qty
		if a.AvailableCash() < required {
			return domain.ErrInsufficientFunds
		}
		a.ReservedCash += required
		return nil
	}
	if a.AvailableShares(instrumentID) < qty {
		return domain.ErrInsufficientShares
	}
	a.Holding(instrumentID).ReservedQuantity += qty
	return nil
}

// Release returns a previously taken reservation, e.g. when a resting
// order is cancelled or a market sell does not fully fill.
func (s *AccountStore) Release(ownerID, instrumentID string, side domain.OrderSide, price, qty int64) {
	a, err := s.Get(ownerID)
	if err != nil {
		return
	}

	a.Mu.Lock()
	defer a.Mu.Unlock()

	if a.Unbounded {
		return
	}
	if side == domain.OrderSideBuy {
		a.ReservedCash -= price * qty
		return
	}
	if h, ok := a.Holdings[instrumentID]; ok {
		h.ReservedQuantity -= qty
	}
}

// Settle atomically moves cash and shares for exactly one trade: the buyer
// pays price × qty and receives qty shares, the seller the reverse.
// buyerRelease is the per-share price at which the buyer's cash was
// reserved (the buy order's limit price), or 0 when nothing was reserved
// (market buys). Both insufficiency checks run before any mutation, so a
// failed settle leaves both accounts untouched. Under the reservation
// discipline a failure here indicates a data-integrity bug, not a normal
// business condition.
func (s *AccountStore) Settle(buyerID, sellerID, instrumentID string, price, qty, buyerRelease int64) error {
	buyer, err := s.Get(buyerID)
	if err != nil {
		return err
	}
	seller, err := s.Get(sellerID)
	if err != nil {
		return err
	}

	lockPair(buyer, seller)
	defer unlockPair(buyer, seller)

	total := price * qty

	// All-or-nothing checks first.
	if !buyer.Unbounded && buyer.CashBalance < total {
		return domain.ErrInsufficientFunds
	}
	if !seller.Unbounded {
		h, ok := seller.Holdings[instrumentID]
		if !ok || h.Quantity < qty {
			return domain.ErrInsufficientShares
		}
	}

	// Buyer: pay cash, release reservation, receive shares.
	buyer.CashBalance -= total
	if !buyer.Unbounded && buyerRelease > 0 {
		buyer.ReservedCash -= buyerRelease * qty
	}
	buyer.Holding(instrumentID).Quantity += qty

	// Seller: receive cash, hand over shares, release reservation.
	seller.CashBalance += total
	sh := seller.Holding(instrumentID)
	sh.Quantity -= qty
	if !seller.Unbounded {
		sh.ReservedQuantity -= qty
	}
	return nil
}

// lockPair acquires both account locks in a stable order so concurrent
// settlements can never deadlock. Self-trades lock once.
func lockPair(a, b *domain.Account) {
	switch {
	case a == b:
		a.Mu.Lock()
	case a.OwnerID < b.OwnerID:
		a.Mu.Lock()
		b.Mu.Lock()
	default:
		b.Mu.Lock()
		a.Mu.Lock()
	}
}

func unlockPair(a, b *domain.Account) {
	a.Mu.Unlock()
	if a != b {
		b.Mu.Unlock()
	}
}
