// Package dbstore implements durable persistence on SQLite via GORM.
// The in-memory stores stay authoritative at runtime; dbstore records
// trades and the latest instrument and account state so a restart can
// reload prices and balances.
package dbstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jaeminoh/marketsim/internal/domain"
)

// InstrumentModel is the instruments table row.
type InstrumentModel struct {
	ID             string `gorm:"primaryKey"`
	Name           string `gorm:"not null"`
	Sector         string `gorm:"not null"`
	ReferencePrice int64  `gorm:"not null"`
	TotalShares    int64  `gorm:"not null"`
	UpdatedAt      time.Time
}

func (InstrumentModel) TableName() string { return "instruments" }

// AccountModel is the accounts table row. Holdings are stored as a JSON
// map of instrument ID to quantity; reservations are runtime state and
// are not persisted.
type AccountModel struct {
	OwnerID     string `gorm:"primaryKey"`
	CashBalance int64  `gorm:"not null"`
	Holdings    string `gorm:"not null;default:'{}'"`
	Unbounded   bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AccountModel) TableName() string { return "accounts" }

// TradeModel is the trades table row, append only.
type TradeModel struct {
	TradeID      string `gorm:"primaryKey"`
	InstrumentID string `gorm:"index;not null"`
	Price        int64  `gorm:"not null"`
	Quantity     int64  `gorm:"not null"`
	BuyerID      string `gorm:"not null"`
	SellerID     string `gorm:"not null"`
	BuyOrderID   string `gorm:"not null"`
	SellOrderID  string `gorm:"not null"`
	Seq          uint64 `gorm:"index;not null"`
	ExecutedAt   time.Time
}

func (TradeModel) TableName() string { return "trades" }

// Store is a store.Persistence backed by SQLite.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&InstrumentModel{}, &AccountModel{}, &TradeModel{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordTrade appends one executed trade.
func (s *Store) RecordTrade(t *domain.Trade) error {
	row := TradeModel{
		TradeID:      t.TradeID,
		InstrumentID: t.InstrumentID,
		Price:        t.Price,
		Quantity:     t.Quantity,
		BuyerID:      t.BuyerID,
		SellerID:     t.SellerID,
		BuyOrderID:   t.BuyOrderID,
		SellOrderID:  t.SellOrderID,
		Seq:          t.Seq,
		ExecutedAt:   t.ExecutedAt,
	}
	return s.db.Create(&row).Error
}

// SaveInstrument upserts the instrument's latest state.
func (s *Store) SaveInstrument(inst *domain.Instrument) error {
	row := InstrumentModel{
		ID:             inst.ID,
		Name:           inst.Name,
		Sector:         inst.Sector,
		ReferencePrice: inst.ReferencePrice,
		TotalShares:    inst.TotalShares,
	}
	return s.db.Save(&row).Error
}

// SaveAccount upserts the account's latest cash and holdings. The caller
// must not hold the account mutex; SaveAccount takes it to read a
// consistent snapshot.
func (s *Store) SaveAccount(a *domain.Account) error {
	a.Mu.Lock()
	quantities := make(map[string]int64, len(a.Holdings))
	for instID, h := range a.Holdings {
		if h.Quantity != 0 {
			quantities[instID] = h.Quantity
		}
	}
	row := AccountModel{
		OwnerID:     a.OwnerID,
		CashBalance: a.CashBalance,
		Unbounded:   a.Unbounded,
		CreatedAt:   a.CreatedAt,
	}
	a.Mu.Unlock()

	encoded, err := json.Marshal(quantities)
	if err != nil {
		return fmt.Errorf("encode holdings for %s: %w", a.OwnerID, err)
	}
	row.Holdings = string(encoded)
	return s.db.Save(&row).Error
}

// LoadInstrument reads one instrument, returning domain.ErrUnknownInstrument
// when it has never been saved.
func (s *Store) LoadInstrument(id string) (*domain.Instrument, error) {
	var row InstrumentModel
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnknownInstrument
		}
		return nil, err
	}
	return &domain.Instrument{
		ID:             row.ID,
		Name:           row.Name,
		Sector:         row.Sector,
		ReferencePrice: row.ReferencePrice,
		TotalShares:    row.TotalShares,
	}, nil
}

// LoadAccount reads one account, returning domain.ErrAccountNotFound when
// it has never been saved. Reservations start empty; resting orders do
// not survive a restart.
func (s *Store) LoadAccount(ownerID string) (*domain.Account, error) {
	var row AccountModel
	if err := s.db.First(&row, "owner_id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	var quantities map[string]int64
	if err := json.Unmarshal([]byte(row.Holdings), &quantities); err != nil {
		return nil, fmt.Errorf("decode holdings for %s: %w", ownerID, err)
	}

	holdings := make(map[string]*domain.Holding, len(quantities))
	for instID, qty := range quantities {
		holdings[instID] = &domain.Holding{Quantity: qty}
	}
	return &domain.Account{
		OwnerID:     row.OwnerID,
		CashBalance: row.CashBalance,
		Holdings:    holdings,
		Unbounded:   row.Unbounded,
		CreatedAt:   row.CreatedAt,
	}, nil
}
