package engine

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/jaeminoh/marketsim/internal/domain"
	"github.com/jaeminoh/marketsim/internal/store"
)

// MakerConfig tunes the liquidity provisioner's quoting ladder.
type MakerConfig struct {
	OwnerID     string  // the maker's account identity
	Levels      int     // ladder levels per side, e.g. 5
	SpreadStep  float64 // per-level offset as a fraction of reference price, e.g. 0.0015
	MinQuantity int64   // randomized quote size lower bound
	MaxQuantity int64   // randomized quote size upper bound
	Cash        int64   // seeded cash reserve
	Inventory   int64   // seeded share inventory per instrument
}

// MarketMaker guarantees two-sided liquidity: each tick it purges its own
// stale quotes and re-injects a symmetric ladder of resting limit orders
// around every instrument's reference price. Its account is unbounded and
// exempt from reservation, so it can always quote both sides.
type MarketMaker struct {
	cfg         MakerConfig
	matcher     *Matcher
	accounts    *store.AccountStore
	instruments *store.InstrumentStore
	rng         *rand.Rand
	log         *zap.Logger
}

// NewMarketMaker creates a MarketMaker. rng may be seeded deterministically
// in tests.
func NewMarketMaker(
	cfg MakerConfig,
	matcher *Matcher,
	accounts *store.AccountStore,
	instruments *store.InstrumentStore,
	rng *rand.Rand,
	log *zap.Logger,
) *MarketMaker {
	return &MarketMaker{
		cfg:         cfg,
		matcher:     matcher,
		accounts:    accounts,
		instruments: instruments,
		rng:         rng,
		log:         log,
	}
}

// EnsureAccount creates the maker's unbounded account if it does not
// exist yet, seeded with the configured cash reserve and a large share
// inventory in every registered instrument.
func (mm *MarketMaker) EnsureAccount() {
	if mm.accounts.Exists(mm.cfg.OwnerID) {
		return
	}
	holdings := make(map[string]*domain.Holding)
	for _, inst := range mm.instruments.List() {
		holdings[inst.ID] = &domain.Holding{Quantity: mm.cfg.Inventory}
	}
	_ = mm.accounts.Create(&domain.Account{
		OwnerID:     mm.cfg.OwnerID,
		CashBalance: mm.cfg.Cash,
		Holdings:    holdings,
		Unbounded:   true,
		CreatedAt:   time.Now(),
	})
	mm.log.Info("market maker account seeded",
		zap.String("owner", mm.cfg.OwnerID),
		zap.Int64("cash", mm.cfg.Cash),
		zap.Int64("inventory_per_instrument", mm.cfg.Inventory))
}

// RunTick refreshes the maker's ladder on every given instrument: purge
// the previous quotes, then submit one buy and one sell per ladder level
// at offsets growing with the level index. Individual submission failures
// are logged and skipped so one bad quote never starves the rest of the
// book.
func (mm *MarketMaker) RunTick(instrumentIDs []string) {
	for _, id := range instrumentIDs {
		refPrice, err := mm.instruments.ReferencePrice(id)
		if err != nil {
			mm.log.Warn("liquidity tick skipped unknown instrument", zap.String("instrument", id))
			continue
		}

		mm.matcher.PurgeOwner(id, mm.cfg.OwnerID)

		for level := 1; level <= mm.cfg.Levels; level++ {
			offset := int64(float64(refPrice) * mm.cfg.SpreadStep * float64(level))
			if offset < 1 {
				offset = 1
			}

			bidPrice := refPrice - offset
			if bidPrice < 1 {
				bidPrice = 1
			}
			askPrice := refPrice + offset

			mm.quote(id, domain.OrderSideBuy, bidPrice)
			mm.quote(id, domain.OrderSideSell, askPrice)
		}
	}
}

// quote submits a single resting limit order with a randomized size.
func (mm *MarketMaker) quote(instrumentID string, side domain.OrderSide, price int64) {
	qty := mm.cfg.MinQuantity
	if span := mm.cfg.MaxQuantity - mm.cfg.MinQuantity; span > 0 {
		qty += mm.rng.Int63n(span + 1)
	}

	_, err := mm.matcher.Submit(&domain.Order{
		OwnerID:      mm.cfg.OwnerID,
		InstrumentID: instrumentID,
		Side:         side,
		Kind:         domain.OrderKindLimit,
		Price:        price,
		Quantity:     qty,
	})
	if err != nil {
		mm.log.Warn("maker quote rejected",
			zap.String("instrument", instrumentID),
			zap.String("side", string(side)),
			zap.Int64("price", price),
			zap.Error(err))
	}
}
