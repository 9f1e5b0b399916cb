package store

import (
	"sort"
	"sync"

	"github.com/jaeminoh/marketsim/internal/domain"
)

// InstrumentStore is a thread-safe in-memory registry of tradable
// instruments, keyed by ticker. Reference-price mutations go through
// SetReferencePrice so readers never observe a torn update.
type InstrumentStore struct {
	mu          sync.RWMutex
	instruments map[string]*domain.Instrument
}

// NewInstrumentStore creates an empty InstrumentStore.
func NewInstrumentStore() *InstrumentStore {
	return &InstrumentStore{
		instruments: make(map[string]*domain.Instrument),
	}
}

// Create registers an instrument. Registering the same ticker twice
// overwrites the previous entry; seeding happens once at startup.
func (s *InstrumentStore) Create(inst *domain.Instrument) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.instruments[inst.ID] = inst
}

// Get retrieves an instrument by ticker. It returns
// domain.ErrUnknownInstrument if the ticker is not registered.
func (s *InstrumentStore) Get(id string) (*domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instruments[id]
	if !ok {
		return nil, domain.ErrUnknownInstrument
	}
	return inst, nil
}

// Exists returns true if the ticker is registered.
func (s *InstrumentStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.instruments[id]
	return ok
}

// List returns all instruments sorted by ticker.
func (s *InstrumentStore) List() []*domain.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Instrument, 0, len(s.instruments))
	for _, inst := range s.instruments {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ReferencePrice returns the current reference price for a ticker.
func (s *InstrumentStore) ReferencePrice(id string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instruments[id]
	if !ok {
		return 0, domain.ErrUnknownInstrument
	}
	return inst.ReferencePrice, nil
}

// SetReferencePrice updates the reference price for a ticker and returns
// the updated instrument. Called by the matching engine after each trade
// and by the price impact adapter on news events.
func (s *InstrumentStore) SetReferencePrice(id string, price int64) (*domain.Instrument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.instruments[id]
	if !ok {
		return nil, domain.ErrUnknownInstrument
	}
	inst.ReferencePrice = price
	return inst, nil
}
