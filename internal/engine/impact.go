package engine

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/jaeminoh/marketsim/internal/domain"
	"github.com/jaeminoh/marketsim/internal/store"
)

// ImpactConfig tunes how strongly news moves prices.
type ImpactConfig struct {
	VolatilityFactor float64 // price change per unit of magnitude, e.g. 0.005
	FloorPrice       int64   // reference price never drops below this, e.g. 10
}

// ImpactAdapter applies an exogenous sentiment score from published news
// directly to an instrument's reference price. This is independent of
// matching: no trade is generated, and the next trade will use the
// updated reference via the liquidity ladder, not as a constraint.
type ImpactAdapter struct {
	cfg         ImpactConfig
	instruments *store.InstrumentStore
	persist     store.Persistence
	log         *zap.Logger
}

// NewImpactAdapter creates an ImpactAdapter.
func NewImpactAdapter(cfg ImpactConfig, instruments *store.InstrumentStore, persist store.Persistence, log *zap.Logger) *ImpactAdapter {
	return &ImpactAdapter{
		cfg:         cfg,
		instruments: instruments,
		persist:     persist,
		log:         log,
	}
}

// Apply moves the instrument's reference price by
// direction × |magnitude| × volatility_factor, rounded to whole credits
// and clamped at the floor price. It returns the new reference price.
func (ia *ImpactAdapter) Apply(instrumentID string, sentiment domain.Sentiment, magnitude float64) (int64, error) {
	oldPrice, err := ia.instruments.ReferencePrice(instrumentID)
	if err != nil {
		return 0, err
	}

	changeRate := float64(sentiment.Direction()) * math.Abs(magnitude) * ia.cfg.VolatilityFactor
	newPrice := int64(math.Round(float64(oldPrice) * (1 + changeRate)))
	if newPrice < ia.cfg.FloorPrice {
		newPrice = ia.cfg.FloorPrice
	}

	inst, err := ia.instruments.SetReferencePrice(instrumentID, newPrice)
	if err != nil {
		return 0, err
	}
	if err := ia.persist.SaveInstrument(inst); err != nil {
		return newPrice, fmt.Errorf("%w: save instrument %s: %v", domain.ErrPersistence, instrumentID, err)
	}

	ia.log.Info("news impact applied",
		zap.String("instrument", instrumentID),
		zap.String("sentiment", string(sentiment)),
		zap.Float64("magnitude", magnitude),
		zap.Int64("old_price", oldPrice),
		zap.Int64("new_price", newPrice))
	return newPrice, nil
}
