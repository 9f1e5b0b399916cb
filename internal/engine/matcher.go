package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jaeminoh/marketsim/internal/domain"
	"github.com/jaeminoh/marketsim/internal/sim"
	"github.com/jaeminoh/marketsim/internal/store"
)

// Ledger is the account-ledger collaborator the matcher settles against.
// Implementations must make Settle all-or-nothing per trade: both
// insufficiency checks run before any mutation.
type Ledger interface {
	Get(ownerID string) (*domain.Account, error)
	Reserve(ownerID, instrumentID string, side domain.OrderSide, price, qty int64) error
	Release(ownerID, instrumentID string, side domain.OrderSide, price, qty int64)
	Settle(buyerID, sellerID, instrumentID string, price, qty, buyerRelease int64) error
}

// MatchResult reports the outcome of one order submission: the trades
// executed during the matching pass and the submitted order carrying its
// final status.
type MatchResult struct {
	Order  *domain.Order
	Trades []*domain.Trade
}

// Snapshot is a read-only view of one instrument's market state.
type Snapshot struct {
	InstrumentID   string
	ReferencePrice int64
	Bids           []PriceLevel
	Asks           []PriceLevel
	At             time.Time
}

// Matcher implements the continuous matching engine. One instance serves
// all instruments; each instrument's book lock serializes submissions so
// a matching pass (validation → reservation → match loop → settlement →
// book cleanup) never interleaves with another for the same instrument.
//
// The ledger and persistence collaborators are interfaces so the same
// engine runs in-memory only or persistence-backed.
type Matcher struct {
	books       *BookManager
	ledger      Ledger
	instruments *store.InstrumentStore
	orders      *store.OrderStore
	trades      *store.TradeStore
	persist     store.Persistence
	clock       sim.Clock
	log         *zap.Logger

	orderSeq atomic.Uint64
	tradeSeq atomic.Uint64
}

// NewMatcher creates a Matcher with the given collaborators.
func NewMatcher(
	books *BookManager,
	ledger Ledger,
	instruments *store.InstrumentStore,
	orders *store.OrderStore,
	trades *store.TradeStore,
	persist store.Persistence,
	clock sim.Clock,
	log *zap.Logger,
) *Matcher {
	return &Matcher{
		books:       books,
		ledger:      ledger,
		instruments: instruments,
		orders:      orders,
		trades:      trades,
		persist:     persist,
		clock:       clock,
		log:         log,
	}
}

// Submit processes one newly submitted order through the matching engine:
// validate, reserve the outgoing asset, run the match loop against the
// opposite side of the book, settle each trade, and rest or discard any
// remainder. LIMIT remainders rest on the book; MARKET remainders are
// discarded (market orders never rest).
//
// The trade price of every fill is the resting (maker) order's price.
// A settlement or persistence failure aborts the remainder of the loop;
// trades already executed stand and are returned alongside the error.
func (m *Matcher) Submit(order *domain.Order) (*MatchResult, error) {
	// Validation happens before any book or balance mutation.
	if order.Side != domain.OrderSideBuy && order.Side != domain.OrderSideSell {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid order side %q", order.Side)}
	}
	if order.Quantity <= 0 {
		return nil, &domain.ValidationError{Message: "quantity must be a positive integer"}
	}
	switch order.Kind {
	case domain.OrderKindLimit:
		if order.Price <= 0 {
			return nil, &domain.ValidationError{Message: "limit orders require a positive price"}
		}
	case domain.OrderKindMarket:
		order.Price = 0
	default:
		return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid order kind %q", order.Kind)}
	}
	if !m.instruments.Exists(order.InstrumentID) {
		return nil, domain.ErrUnknownInstrument
	}

	book := m.books.GetOrCreate(order.InstrumentID)
	book.mu.Lock()
	defer book.mu.Unlock()

	// Reserve the outgoing asset so settlement can never fail for lack of
	// funds or shares. Market buys have no limit price to reserve at;
	// affordability is checked against the current book instead, which is
	// safe because the book lock is held for the whole pass.
	if order.Kind == domain.OrderKindMarket && order.Side == domain.OrderSideBuy {
		if err := m.checkMarketBuyFunds(book, order); err != nil {
			return nil, err
		}
	} else {
		if err := m.ledger.Reserve(order.OwnerID, order.InstrumentID, order.Side, order.Price, order.Quantity); err != nil {
			return nil, err
		}
	}

	order.OrderID = uuid.New().String()
	order.Seq = m.orderSeq.Add(1)
	order.SubmittedAt = m.clock.Now()
	order.RemainingQuantity = order.Quantity
	order.FilledQuantity = 0
	order.CancelledQuantity = 0
	order.Status = domain.OrderStatusPending
	m.orders.Create(order)

	trades, loopErr := m.matchLoop(book, order)

	if order.RemainingQuantity > 0 {
		if order.Kind == domain.OrderKindLimit {
			// The unfilled remainder rests.
			entry := OrderBookEntry{
				Price:   order.Price,
				Seq:     order.Seq,
				OrderID: order.OrderID,
				Order:   order,
			}
			if order.Side == domain.OrderSideBuy {
				book.InsertBid(entry)
			} else {
				book.InsertAsk(entry)
			}
		} else {
			// Market orders never rest: discard the remainder and return
			// the share reservation taken for a market sell.
			order.CancelledQuantity = order.RemainingQuantity
			order.RemainingQuantity = 0
			if order.FilledQuantity == order.Quantity {
				order.Status = domain.OrderStatusFilled
			} else {
				order.Status = domain.OrderStatusCancelled
			}
			if order.Side == domain.OrderSideSell && order.CancelledQuantity > 0 {
				m.ledger.Release(order.OwnerID, order.InstrumentID, domain.OrderSideSell, 0, order.CancelledQuantity)
			}
		}
	}

	return &MatchResult{Order: order, Trades: trades}, loopErr
}

// matchLoop repeatedly pairs the incoming order with the best resting
// order on the opposite side while a crossing is possible. The book was
// uncrossed before this submission, so every possible crossing involves
// the incoming order.
func (m *Matcher) matchLoop(book *OrderBook, order *domain.Order) ([]*domain.Trade, error) {
	var trades []*domain.Trade

	for order.RemainingQuantity > 0 {
		var bestEntry OrderBookEntry
		var found bool
		if order.Side == domain.OrderSideBuy {
			bestEntry, found = book.BestAsk()
		} else {
			bestEntry, found = book.BestBid()
		}
		if !found {
			break
		}

		// A market order crosses unconditionally; a limit order crosses
		// while best bid ≥ best ask (equal prices always trade).
		if order.Kind == domain.OrderKindLimit {
			if order.Side == domain.OrderSideBuy && order.Price < bestEntry.Price {
				break
			}
			if order.Side == domain.OrderSideSell && bestEntry.Price < order.Price {
				break
			}
		}

		resting := bestEntry.Order

		fillQty := order.RemainingQuantity
		if resting.RemainingQuantity < fillQty {
			fillQty = resting.RemainingQuantity
		}

		// Maker's price always wins: the resting order was in the book
		// before this pass began, the aggressor gets price improvement.
		tradePrice := resting.Price

		var bidOrder, askOrder *domain.Order
		if order.Side == domain.OrderSideBuy {
			bidOrder, askOrder = order, resting
		} else {
			bidOrder, askOrder = resting, order
		}

		// The buyer's cash was reserved at the bid's limit price; market
		// buys reserved nothing.
		var buyerRelease int64
		if bidOrder.Kind == domain.OrderKindLimit {
			buyerRelease = bidOrder.Price
		}

		if err := m.ledger.Settle(bidOrder.OwnerID, askOrder.OwnerID, order.InstrumentID, tradePrice, fillQty, buyerRelease); err != nil {
			// Data-integrity condition: completed trades stand, the
			// remainder of this matching pass is abandoned.
			order.Status = domain.OrderStatusPartiallyFilled
			m.log.Error("settlement failed mid-match",
				zap.String("instrument", order.InstrumentID),
				zap.String("order_id", order.OrderID),
				zap.Error(err))
			return trades, err
		}

		order.RemainingQuantity -= fillQty
		order.FilledQuantity += fillQty
		resting.RemainingQuantity -= fillQty
		resting.FilledQuantity += fillQty

		if order.RemainingQuantity == 0 {
			order.Status = domain.OrderStatusFilled
		} else {
			order.Status = domain.OrderStatusPartiallyFilled
		}
		if resting.RemainingQuantity == 0 {
			resting.Status = domain.OrderStatusFilled
			book.Remove(resting.OrderID)
		} else {
			resting.Status = domain.OrderStatusPartiallyFilled
		}

		// The reference price follows the most recent trade.
		inst, _ := m.instruments.SetReferencePrice(order.InstrumentID, tradePrice)

		trade := &domain.Trade{
			TradeID:      uuid.New().String(),
			InstrumentID: order.InstrumentID,
			Price:        tradePrice,
			Quantity:     fillQty,
			BuyerID:      bidOrder.OwnerID,
			SellerID:     askOrder.OwnerID,
			BuyOrderID:   bidOrder.OrderID,
			SellOrderID:  askOrder.OrderID,
			Seq:          m.tradeSeq.Add(1),
			ExecutedAt:   m.clock.Now(),
		}
		trades = append(trades, trade)
		m.trades.Append(trade)

		m.log.Debug("trade executed",
			zap.String("instrument", trade.InstrumentID),
			zap.Int64("price", trade.Price),
			zap.Int64("quantity", trade.Quantity),
			zap.String("buyer", trade.BuyerID),
			zap.String("seller", trade.SellerID))

		if err := m.persistStep(trade, inst, bidOrder.OwnerID, askOrder.OwnerID); err != nil {
			order.Status = domain.OrderStatusPartiallyFilled
			m.log.Error("persistence failed mid-match",
				zap.String("instrument", order.InstrumentID),
				zap.String("trade_id", trade.TradeID),
				zap.Error(err))
			return trades, err
		}
	}

	return trades, nil
}

// checkMarketBuyFunds simulates the market buy's fills against the
// current book and verifies the buyer can afford the estimated cost.
func (m *Matcher) checkMarketBuyFunds(book *OrderBook, order *domain.Order) error {
	buyer, err := m.ledger.Get(order.OwnerID)
	if err != nil {
		return err
	}

	var estimated int64
	remaining := order.Quantity
	book.WalkAsks(func(entry OrderBookEntry) bool {
		fillQty := remaining
		if entry.Order.RemainingQuantity < fillQty {
			fillQty = entry.Order.RemainingQuantity
		}
		estimated += entry.Price * fillQty
		remaining -= fillQty
		return remaining > 0
	})

	buyer.Mu.Lock()
	defer buyer.Mu.Unlock()
	if !buyer.Unbounded && buyer.AvailableCash() < estimated {
		return domain.ErrInsufficientFunds
	}
	return nil
}

// persistStep mirrors one executed trade out through the persistence
// collaborator: the trade record, the moved instrument price, and both
// touched accounts. Failures wrap domain.ErrPersistence.
func (m *Matcher) persistStep(t *domain.Trade, inst *domain.Instrument, buyerID, sellerID string) error {
	if err := m.persist.RecordTrade(t); err != nil {
		return fmt.Errorf("%w: record trade %s: %v", domain.ErrPersistence, t.TradeID, err)
	}
	if inst != nil {
		if err := m.persist.SaveInstrument(inst); err != nil {
			return fmt.Errorf("%w: save instrument %s: %v", domain.ErrPersistence, inst.ID, err)
		}
	}
	for _, ownerID := range []string{buyerID, sellerID} {
		a, err := m.ledger.Get(ownerID)
		if err != nil {
			continue
		}
		if err := m.persist.SaveAccount(a); err != nil {
			return fmt.Errorf("%w: save account %s: %v", domain.ErrPersistence, ownerID, err)
		}
	}
	return nil
}

// Cancel removes a resting order from the book and returns any reserved
// funds or shares. Cancelling an already-filled or already-cancelled
// order is not a crash: it returns domain.ErrOrderNotCancellable. The
// second return value reports whether a reservation refund was applied.
func (m *Matcher) Cancel(orderID string) (*domain.Order, bool, error) {
	order, err := m.orders.Get(orderID)
	if err != nil {
		return nil, false, err
	}

	switch order.Status {
	case domain.OrderStatusPending, domain.OrderStatusPartiallyFilled:
	default:
		return order, false, domain.ErrOrderNotCancellable
	}

	book := m.books.GetOrCreate(order.InstrumentID)
	book.mu.Lock()
	defer book.mu.Unlock()

	// Re-check under the book lock; the order may have filled meanwhile.
	switch order.Status {
	case domain.OrderStatusPending, domain.OrderStatusPartiallyFilled:
	default:
		return order, false, domain.ErrOrderNotCancellable
	}

	book.Remove(order.OrderID)

	now := m.clock.Now()
	order.CancelledQuantity = order.RemainingQuantity
	order.RemainingQuantity = 0
	order.Status = domain.OrderStatusCancelled
	order.CancelledAt = &now

	refunded := false
	if order.CancelledQuantity > 0 && order.Kind == domain.OrderKindLimit {
		if acct, err := m.ledger.Get(order.OwnerID); err == nil && !acct.Unbounded {
			m.ledger.Release(order.OwnerID, order.InstrumentID, order.Side, order.Price, order.CancelledQuantity)
			refunded = true
		}
	}
	return order, refunded, nil
}

// PurgeOwner cancels every resting order of one owner on one instrument
// and returns their reservations. Other owners' resting orders are not
// affected. Used by the liquidity provisioner to tear down its stale
// ladder each tick.
func (m *Matcher) PurgeOwner(instrumentID, ownerID string) int {
	book := m.books.GetOrCreate(instrumentID)
	book.mu.Lock()
	defer book.mu.Unlock()

	removed := book.Purge(func(o *domain.Order) bool {
		return o.OwnerID == ownerID
	})

	now := m.clock.Now()
	for _, o := range removed {
		o.CancelledQuantity = o.RemainingQuantity
		o.RemainingQuantity = 0
		o.Status = domain.OrderStatusCancelled
		o.CancelledAt = &now
		m.ledger.Release(o.OwnerID, o.InstrumentID, o.Side, o.Price, o.CancelledQuantity)
	}
	return len(removed)
}

// Snapshot returns the instrument's reference price and the top-n
// aggregated levels of each book side.
func (m *Matcher) Snapshot(instrumentID string, depth int) (*Snapshot, error) {
	refPrice, err := m.instruments.ReferencePrice(instrumentID)
	if err != nil {
		return nil, err
	}

	book := m.books.GetOrCreate(instrumentID)
	book.RLock()
	defer book.RUnlock()

	return &Snapshot{
		InstrumentID:   instrumentID,
		ReferencePrice: refPrice,
		Bids:           book.TopBids(depth),
		Asks:           book.TopAsks(depth),
		At:             m.clock.Now(),
	}, nil
}

// BookDepth returns the resting order counts on each side of an
// instrument's book.
func (m *Matcher) BookDepth(instrumentID string) (bids, asks int) {
	book := m.books.GetOrCreate(instrumentID)
	book.RLock()
	defer book.RUnlock()
	return book.BidCount(), book.AskCount()
}
