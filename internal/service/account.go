package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/jaeminoh/marketsim/internal/domain"
	"github.com/jaeminoh/marketsim/internal/store"
)

// RankEntry is one leaderboard row. TotalAssets values holdings at the
// current reference price.
type RankEntry struct {
	OwnerID       string
	CashBalance   int64
	HoldingsValue int64
	TotalAssets   int64
}

// AccountService handles participant registration and portfolio queries.
type AccountService struct {
	accounts     *store.AccountStore
	instruments  *store.InstrumentStore
	persist      store.Persistence
	startingCash int64
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	accounts *store.AccountStore,
	instruments *store.InstrumentStore,
	persist store.Persistence,
	startingCash int64,
) *AccountService {
	return &AccountService{
		accounts:     accounts,
		instruments:  instruments,
		persist:      persist,
		startingCash: startingCash,
	}
}

// Register creates a participant account seeded with the registration
// cash bonus.
func (s *AccountService) Register(ownerID string) (*domain.Account, error) {
	if !ownerIDRegex.MatchString(ownerID) {
		return nil, &domain.ValidationError{Message: "owner_id must match ^[a-zA-Z0-9_-]{1,64}$"}
	}

	a := &domain.Account{
		OwnerID:     ownerID,
		CashBalance: s.startingCash,
		Holdings:    make(map[string]*domain.Holding),
		CreatedAt:   time.Now(),
	}
	if err := s.accounts.Create(a); err != nil {
		return nil, err
	}
	if err := s.persist.SaveAccount(a); err != nil {
		return a, fmt.Errorf("%w: save account %s: %v", domain.ErrPersistence, ownerID, err)
	}
	return a, nil
}

// Get retrieves an account by owner ID.
func (s *AccountService) Get(ownerID string) (*domain.Account, error) {
	return s.accounts.Get(ownerID)
}

// Valuation returns the account's holdings valued at current reference
// prices.
func (s *AccountService) Valuation(a *domain.Account) int64 {
	a.Mu.Lock()
	defer a.Mu.Unlock()

	var total int64
	for instID, h := range a.Holdings {
		price, err := s.instruments.ReferencePrice(instID)
		if err != nil {
			continue
		}
		total += h.Quantity * price
	}
	return total
}

// Leaderboard ranks all regular participants by total assets, richest
// first. The unbounded market maker account is excluded.
func (s *AccountService) Leaderboard() []RankEntry {
	var out []RankEntry
	for _, a := range s.accounts.All() {
		if a.Unbounded {
			continue
		}
		holdings := s.Valuation(a)
		a.Mu.Lock()
		cash := a.CashBalance
		a.Mu.Unlock()
		out = append(out, RankEntry{
			OwnerID:       a.OwnerID,
			CashBalance:   cash,
			HoldingsValue: holdings,
			TotalAssets:   cash + holdings,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAssets != out[j].TotalAssets {
			return out[i].TotalAssets > out[j].TotalAssets
		}
		return out[i].OwnerID < out[j].OwnerID
	})
	return out
}
