package store

import "github.com/jaeminoh/marketsim/internal/domain"

// Persistence is the collaborator contract the engine records durable
// state through. Calls are synchronous and failure-raising: the matching
// loop halts at the failing trade and surfaces the wrapped
// domain.ErrPersistence without rolling back settled trades.
//
// The in-memory stores remain authoritative for live matching; this
// interface only mirrors state out (and loads it back at startup when a
// database is configured).
type Persistence interface {
	RecordTrade(t *domain.Trade) error
	SaveInstrument(inst *domain.Instrument) error
	SaveAccount(a *domain.Account) error
	LoadInstrument(id string) (*domain.Instrument, error)
	LoadAccount(ownerID string) (*domain.Account, error)
}

// NopPersistence discards every write and reports every load as a miss.
// Used when the simulator runs purely in memory.
type NopPersistence struct{}

func (NopPersistence) RecordTrade(*domain.Trade) error            { return nil }
func (NopPersistence) SaveInstrument(*domain.Instrument) error    { return nil }
func (NopPersistence) SaveAccount(*domain.Account) error          { return nil }
func (NopPersistence) LoadInstrument(string) (*domain.Instrument, error) {
	return nil, domain.ErrUnknownInstrument
}
func (NopPersistence) LoadAccount(string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}
