package service

import (
	"github.com/jaeminoh/marketsim/internal/domain"
	"github.com/jaeminoh/marketsim/internal/engine"
	"github.com/jaeminoh/marketsim/internal/store"
)

// trendWindow is how many recent trades the trend classifier looks at.
const trendWindow = 20

// Trend labels, ordered from strongest rise to strongest fall.
const (
	TrendSurging  = "surging"
	TrendRising   = "rising"
	TrendFlat     = "flat"
	TrendFalling  = "falling"
	TrendPlunging = "plunging"
	TrendUnknown  = "unknown" // no trades yet
)

// InstrumentStatus is one row of the market overview.
type InstrumentStatus struct {
	ID             string
	Name           string
	Sector         string
	ReferencePrice int64
	BidDepth       int
	AskDepth       int
}

// MarketService serves read-only market data: snapshots, the overview
// board, trade history, and the recent-trend classification.
type MarketService struct {
	instruments   *store.InstrumentStore
	trades        *store.TradeStore
	matcher       *engine.Matcher
	snapshotDepth int
}

// NewMarketService creates a new MarketService.
func NewMarketService(
	instruments *store.InstrumentStore,
	trades *store.TradeStore,
	matcher *engine.Matcher,
	snapshotDepth int,
) *MarketService {
	return &MarketService{
		instruments:   instruments,
		trades:        trades,
		matcher:       matcher,
		snapshotDepth: snapshotDepth,
	}
}

// Instruments returns all registered instruments sorted by ticker.
func (s *MarketService) Instruments() []*domain.Instrument {
	return s.instruments.List()
}

// Snapshot returns the reference price and top book levels for one
// instrument.
func (s *MarketService) Snapshot(instrumentID string) (*engine.Snapshot, error) {
	return s.matcher.Snapshot(instrumentID, s.snapshotDepth)
}

// Overview returns one status row per instrument: display data plus the
// current book depth on each side.
func (s *MarketService) Overview() []InstrumentStatus {
	insts := s.instruments.List()
	out := make([]InstrumentStatus, 0, len(insts))
	for _, inst := range insts {
		bids, asks := s.matcher.BookDepth(inst.ID)
		out = append(out, InstrumentStatus{
			ID:             inst.ID,
			Name:           inst.Name,
			Sector:         inst.Sector,
			ReferencePrice: inst.ReferencePrice,
			BidDepth:       bids,
			AskDepth:       asks,
		})
	}
	return out
}

// Trades returns an instrument's full trade history in chronological
// order.
func (s *MarketService) Trades(instrumentID string) ([]*domain.Trade, error) {
	if !s.instruments.Exists(instrumentID) {
		return nil, domain.ErrUnknownInstrument
	}
	return s.trades.ByInstrument(instrumentID), nil
}

// Trend classifies the price movement over the instrument's most recent
// trades by comparing the newest trade price against the oldest in the
// window: more than ±2% is surging/plunging, any other move is
// rising/falling.
func (s *MarketService) Trend(instrumentID string) (string, error) {
	if !s.instruments.Exists(instrumentID) {
		return "", domain.ErrUnknownInstrument
	}

	recent := s.trades.Recent(instrumentID, trendWindow)
	if len(recent) == 0 {
		return TrendUnknown, nil
	}

	newest := recent[0].Price
	oldest := recent[len(recent)-1].Price

	switch {
	case newest*100 > oldest*102:
		return TrendSurging, nil
	case newest > oldest:
		return TrendRising, nil
	case newest*100 < oldest*98:
		return TrendPlunging, nil
	case newest < oldest:
		return TrendFalling, nil
	default:
		return TrendFlat, nil
	}
}
