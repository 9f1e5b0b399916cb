package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jaeminoh/marketsim/internal/domain"
)

// appendTrades records a synthetic trade per price, in order.
func appendTrades(e *testEnv, prices ...int64) {
	for i, p := range prices {
		e.trades.Append(&domain.Trade{
			TradeID:      fmt.Sprintf("t-%d", i),
			InstrumentID: "TEST",
			Price:        p,
			Quantity:     1,
			BuyerID:      "b",
			SellerID:     "s",
			Seq:          uint64(i + 1),
			ExecutedAt:   time.Now(),
		})
	}
}

func TestMarketService_Trend_NoTrades(t *testing.T) {
	e := newTestEnv()

	trend, err := e.marketSvc.Trend("TEST")
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if trend != TrendUnknown {
		t.Errorf("expected %s, got %s", TrendUnknown, trend)
	}
}

func TestMarketService_Trend_Classification(t *testing.T) {
	cases := []struct {
		name   string
		prices []int64 // oldest first
		want   string
	}{
		{"flat", []int64{100, 100}, TrendFlat},
		{"rising within 2%", []int64{100, 101}, TrendRising},
		{"surging above 2%", []int64{100, 103}, TrendSurging},
		{"falling within 2%", []int64{100, 99}, TrendFalling},
		{"plunging below 2%", []int64{100, 97}, TrendPlunging},
		{"single trade is flat", []int64{100}, TrendFlat},
		{"boundary +2% is rising", []int64{100, 102}, TrendRising},
		{"boundary -2% is falling", []int64{100, 98}, TrendFalling},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv()
			appendTrades(e, tc.prices...)

			trend, err := e.marketSvc.Trend("TEST")
			if err != nil {
				t.Fatalf("trend: %v", err)
			}
			if trend != tc.want {
				t.Errorf("expected %s, got %s", tc.want, trend)
			}
		})
	}
}

func TestMarketService_Trend_UsesOnlyRecentWindow(t *testing.T) {
	e := newTestEnv()
	// One old trade at 1, then a window full of trades at 100: the old
	// trade falls outside the 20-trade window and must not register as a
	// surge.
	prices := []int64{1}
	for i := 0; i < trendWindow; i++ {
		prices = append(prices, 100)
	}
	appendTrades(e, prices...)

	trend, err := e.marketSvc.Trend("TEST")
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if trend != TrendFlat {
		t.Errorf("expected %s across the window, got %s", TrendFlat, trend)
	}
}

func TestMarketService_Trend_UnknownInstrument(t *testing.T) {
	e := newTestEnv()

	_, err := e.marketSvc.Trend("NOPE")
	if !errors.Is(err, domain.ErrUnknownInstrument) {
		t.Fatalf("expected ErrUnknownInstrument, got %v", err)
	}
}

func TestMarketService_Trades(t *testing.T) {
	e := newTestEnv()
	appendTrades(e, 100, 105, 110)

	trades, err := e.marketSvc.Trades("TEST")
	if err != nil {
		t.Fatalf("trades: %v", err)
	}
	if len(trades) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(trades))
	}
	// Chronological order.
	if trades[0].Price != 100 || trades[2].Price != 110 {
		t.Errorf("expected chronological order, got %d .. %d", trades[0].Price, trades[2].Price)
	}

	if _, err := e.marketSvc.Trades("NOPE"); !errors.Is(err, domain.ErrUnknownInstrument) {
		t.Fatalf("expected ErrUnknownInstrument, got %v", err)
	}
}

func TestMarketService_Overview(t *testing.T) {
	e := newTestEnv()
	e.register(t, "alice")

	if _, err := e.orderSvc.Submit(SubmitOrderRequest{
		OwnerID: "alice", InstrumentID: "TEST",
		Side: domain.OrderSideBuy, Kind: domain.OrderKindLimit,
		Price: int64Ptr(90), Quantity: 5,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	rows := e.marketSvc.Overview()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.ID != "TEST" || row.ReferencePrice != 100 {
		t.Errorf("wrong row: %+v", row)
	}
	if row.BidDepth != 1 || row.AskDepth != 0 {
		t.Errorf("expected 1 bid 0 asks, got %d/%d", row.BidDepth, row.AskDepth)
	}
}

func TestMarketService_Snapshot(t *testing.T) {
	e := newTestEnv()
	e.register(t, "alice")

	if _, err := e.orderSvc.Submit(SubmitOrderRequest{
		OwnerID: "alice", InstrumentID: "TEST",
		Side: domain.OrderSideBuy, Kind: domain.OrderKindLimit,
		Price: int64Ptr(90), Quantity: 5,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	snap, err := e.marketSvc.Snapshot("TEST")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Bids) != 1 || snap.Bids[0].Price != 90 {
		t.Errorf("wrong bids: %+v", snap.Bids)
	}
}

func TestNewsService_ApplyImpact(t *testing.T) {
	e := newTestEnv()

	// 100 × (1 − 80 × 0.005) = 60
	newPrice, err := e.newsSvc.ApplyImpact("TEST", "negative", 80)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if newPrice != 60 {
		t.Errorf("expected 60, got %d", newPrice)
	}
}

func TestNewsService_ApplyImpact_InvalidSentiment(t *testing.T) {
	e := newTestEnv()

	_, err := e.newsSvc.ApplyImpact("TEST", "bullish", 10)
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
