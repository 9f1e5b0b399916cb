package service

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jaeminoh/marketsim/internal/domain"
	"github.com/jaeminoh/marketsim/internal/engine"
	"github.com/jaeminoh/marketsim/internal/sim"
	"github.com/jaeminoh/marketsim/internal/store"
)

// testEnv bundles the stores, engine, and services most service tests
// need, with one registered instrument "TEST" at reference price 100.
type testEnv struct {
	accounts    *store.AccountStore
	instruments *store.InstrumentStore
	orders      *store.OrderStore
	trades      *store.TradeStore
	matcher     *engine.Matcher
	impact      *engine.ImpactAdapter

	orderSvc   *OrderService
	marketSvc  *MarketService
	accountSvc *AccountService
	newsSvc    *NewsService
}

func newTestEnv() *testEnv {
	accounts := store.NewAccountStore()
	instruments := store.NewInstrumentStore()
	orders := store.NewOrderStore()
	trades := store.NewTradeStore()
	instruments.Create(&domain.Instrument{
		ID:             "TEST",
		Name:           "Test Co",
		Sector:         "software",
		ReferencePrice: 100,
		TotalShares:    1_000_000,
	})

	log := zap.NewNop()
	clock := sim.NewSimClock(time.Now())
	matcher := engine.NewMatcher(engine.NewBookManager(), accounts, instruments, orders, trades, store.NopPersistence{}, clock, log)
	impact := engine.NewImpactAdapter(engine.ImpactConfig{VolatilityFactor: 0.005, FloorPrice: 10}, instruments, store.NopPersistence{}, log)

	return &testEnv{
		accounts:    accounts,
		instruments: instruments,
		orders:      orders,
		trades:      trades,
		matcher:     matcher,
		impact:      impact,
		orderSvc:    NewOrderService(matcher, accounts, instruments, orders),
		marketSvc:   NewMarketService(instruments, trades, matcher, 5),
		accountSvc:  NewAccountService(accounts, instruments, store.NopPersistence{}, 100_000),
		newsSvc:     NewNewsService(impact),
	}
}

func (e *testEnv) register(t *testing.T, ownerID string) *domain.Account {
	t.Helper()
	a, err := e.accountSvc.Register(ownerID)
	if err != nil {
		t.Fatalf("register %s: %v", ownerID, err)
	}
	return a
}

func int64Ptr(v int64) *int64 { return &v }

func TestOrderService_Submit_Limit(t *testing.T) {
	e := newTestEnv()
	e.register(t, "alice")

	result, err := e.orderSvc.Submit(SubmitOrderRequest{
		OwnerID:      "alice",
		InstrumentID: "TEST",
		Side:         domain.OrderSideBuy,
		Kind:         domain.OrderKindLimit,
		Price:        int64Ptr(90),
		Quantity:     10,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Order.Status != domain.OrderStatusPending {
		t.Errorf("expected PENDING, got %s", result.Order.Status)
	}
	if result.Order.Price != 90 {
		t.Errorf("expected price 90, got %d", result.Order.Price)
	}
}

func TestOrderService_Submit_ValidationFailures(t *testing.T) {
	e := newTestEnv()
	e.register(t, "alice")

	cases := []struct {
		name string
		req  SubmitOrderRequest
	}{
		{"empty owner", SubmitOrderRequest{InstrumentID: "TEST", Side: domain.OrderSideBuy, Kind: domain.OrderKindLimit, Price: int64Ptr(90), Quantity: 1}},
		{"owner with spaces", SubmitOrderRequest{OwnerID: "a b", InstrumentID: "TEST", Side: domain.OrderSideBuy, Kind: domain.OrderKindLimit, Price: int64Ptr(90), Quantity: 1}},
		{"bad side", SubmitOrderRequest{OwnerID: "alice", InstrumentID: "TEST", Side: "HOLD", Kind: domain.OrderKindLimit, Price: int64Ptr(90), Quantity: 1}},
		{"bad kind", SubmitOrderRequest{OwnerID: "alice", InstrumentID: "TEST", Side: domain.OrderSideBuy, Kind: "STOP_LOSS", Price: int64Ptr(90), Quantity: 1}},
		{"zero quantity", SubmitOrderRequest{OwnerID: "alice", InstrumentID: "TEST", Side: domain.OrderSideBuy, Kind: domain.OrderKindLimit, Price: int64Ptr(90), Quantity: 0}},
		{"limit without price", SubmitOrderRequest{OwnerID: "alice", InstrumentID: "TEST", Side: domain.OrderSideBuy, Kind: domain.OrderKindLimit, Quantity: 1}},
		{"limit with zero price", SubmitOrderRequest{OwnerID: "alice", InstrumentID: "TEST", Side: domain.OrderSideBuy, Kind: domain.OrderKindLimit, Price: int64Ptr(0), Quantity: 1}},
		{"market with price", SubmitOrderRequest{OwnerID: "alice", InstrumentID: "TEST", Side: domain.OrderSideBuy, Kind: domain.OrderKindMarket, Price: int64Ptr(90), Quantity: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.orderSvc.Submit(tc.req)
			var validationErr *domain.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestOrderService_Submit_UnknownInstrument(t *testing.T) {
	e := newTestEnv()
	e.register(t, "alice")

	_, err := e.orderSvc.Submit(SubmitOrderRequest{
		OwnerID:      "alice",
		InstrumentID: "NOPE",
		Side:         domain.OrderSideBuy,
		Kind:         domain.OrderKindLimit,
		Price:        int64Ptr(90),
		Quantity:     1,
	})
	if !errors.Is(err, domain.ErrUnknownInstrument) {
		t.Fatalf("expected ErrUnknownInstrument, got %v", err)
	}
}

func TestOrderService_Submit_AccountNotFound(t *testing.T) {
	e := newTestEnv()

	_, err := e.orderSvc.Submit(SubmitOrderRequest{
		OwnerID:      "ghost",
		InstrumentID: "TEST",
		Side:         domain.OrderSideBuy,
		Kind:         domain.OrderKindLimit,
		Price:        int64Ptr(90),
		Quantity:     1,
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestOrderService_Cancel_ReportsRefund(t *testing.T) {
	e := newTestEnv()
	e.register(t, "alice")

	result, err := e.orderSvc.Submit(SubmitOrderRequest{
		OwnerID:      "alice",
		InstrumentID: "TEST",
		Side:         domain.OrderSideBuy,
		Kind:         domain.OrderKindLimit,
		Price:        int64Ptr(90),
		Quantity:     10,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	cancelled, err := e.orderSvc.Cancel(result.Order.OrderID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !cancelled.RefundApplied {
		t.Error("expected refund applied")
	}
	if cancelled.Order.Status != domain.OrderStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Order.Status)
	}

	// Second cancel is rejected, not a crash.
	_, err = e.orderSvc.Cancel(result.Order.OrderID)
	if !errors.Is(err, domain.ErrOrderNotCancellable) {
		t.Fatalf("expected ErrOrderNotCancellable, got %v", err)
	}
}

func TestOrderService_ListByOwner(t *testing.T) {
	e := newTestEnv()
	e.register(t, "alice")

	first, err := e.orderSvc.Submit(SubmitOrderRequest{
		OwnerID: "alice", InstrumentID: "TEST",
		Side: domain.OrderSideBuy, Kind: domain.OrderKindLimit,
		Price: int64Ptr(80), Quantity: 1,
	})
	if err != nil {
		t.Fatalf("submit 1: %v", err)
	}
	second, err := e.orderSvc.Submit(SubmitOrderRequest{
		OwnerID: "alice", InstrumentID: "TEST",
		Side: domain.OrderSideBuy, Kind: domain.OrderKindLimit,
		Price: int64Ptr(85), Quantity: 1,
	})
	if err != nil {
		t.Fatalf("submit 2: %v", err)
	}

	orders, err := e.orderSvc.ListByOwner("alice", nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	// Newest first.
	if orders[0].OrderID != second.Order.OrderID || orders[1].OrderID != first.Order.OrderID {
		t.Error("expected newest-first ordering")
	}

	// Status filter.
	if _, err := e.orderSvc.Cancel(first.Order.OrderID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	status := domain.OrderStatusCancelled
	filtered, err := e.orderSvc.ListByOwner("alice", &status)
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(filtered) != 1 || filtered[0].OrderID != first.Order.OrderID {
		t.Errorf("expected only the cancelled order, got %d", len(filtered))
	}
}

func TestOrderService_ListByOwner_UnknownAccount(t *testing.T) {
	e := newTestEnv()

	_, err := e.orderSvc.ListByOwner("ghost", nil)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
