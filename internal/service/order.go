package service

import (
	"fmt"
	"regexp"

	"github.com/jaeminoh/marketsim/internal/domain"
	"github.com/jaeminoh/marketsim/internal/engine"
	"github.com/jaeminoh/marketsim/internal/store"
)

var ownerIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidOrderStatuses lists all valid order status values for filtering.
var ValidOrderStatuses = map[domain.OrderStatus]bool{
	domain.OrderStatusPending:         true,
	domain.OrderStatusPartiallyFilled: true,
	domain.OrderStatusFilled:          true,
	domain.OrderStatusCancelled:       true,
}

// SubmitOrderRequest represents the input for order submission.
type SubmitOrderRequest struct {
	OwnerID      string
	InstrumentID string
	Side         domain.OrderSide
	Kind         domain.OrderKind
	Price        *int64 // required for limit, must be nil for market
	Quantity     int64
}

// CancelResult reports the outcome of a cancellation.
type CancelResult struct {
	Order         *domain.Order
	RefundApplied bool
}

// OrderService validates order requests and hands them to the matching
// engine.
type OrderService struct {
	matcher     *engine.Matcher
	accounts    *store.AccountStore
	instruments *store.InstrumentStore
	orders      *store.OrderStore
}

// NewOrderService creates a new OrderService with the given dependencies.
func NewOrderService(
	matcher *engine.Matcher,
	accounts *store.AccountStore,
	instruments *store.InstrumentStore,
	orders *store.OrderStore,
) *OrderService {
	return &OrderService{
		matcher:     matcher,
		accounts:    accounts,
		instruments: instruments,
		orders:      orders,
	}
}

// Submit validates the request and runs it through the matching engine.
// Validation rejects malformed orders before any book or balance
// mutation.
func (s *OrderService) Submit(req SubmitOrderRequest) (*engine.MatchResult, error) {
	if !ownerIDRegex.MatchString(req.OwnerID) {
		return nil, &domain.ValidationError{Message: "owner_id must match ^[a-zA-Z0-9_-]{1,64}$"}
	}
	if req.Side != domain.OrderSideBuy && req.Side != domain.OrderSideSell {
		return nil, &domain.ValidationError{Message: "side must be 'BUY' or 'SELL'"}
	}
	if req.Kind != domain.OrderKindLimit && req.Kind != domain.OrderKindMarket {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("unknown order kind: %s, must be one of: LIMIT, MARKET", req.Kind),
		}
	}
	if req.Quantity <= 0 {
		return nil, &domain.ValidationError{Message: "quantity must be a positive integer"}
	}

	var price int64
	switch req.Kind {
	case domain.OrderKindLimit:
		if req.Price == nil || *req.Price <= 0 {
			return nil, &domain.ValidationError{Message: "limit orders require a positive price"}
		}
		price = *req.Price
	case domain.OrderKindMarket:
		if req.Price != nil {
			return nil, &domain.ValidationError{Message: "market orders must not carry a price"}
		}
	}

	if !s.instruments.Exists(req.InstrumentID) {
		return nil, domain.ErrUnknownInstrument
	}
	if !s.accounts.Exists(req.OwnerID) {
		return nil, domain.ErrAccountNotFound
	}

	return s.matcher.Submit(&domain.Order{
		OwnerID:      req.OwnerID,
		InstrumentID: req.InstrumentID,
		Side:         req.Side,
		Kind:         req.Kind,
		Price:        price,
		Quantity:     req.Quantity,
	})
}

// Get retrieves an order by ID.
func (s *OrderService) Get(orderID string) (*domain.Order, error) {
	return s.orders.Get(orderID)
}

// Cancel removes a resting order and reports whether a reservation
// refund was applied. Idempotent: terminal orders yield
// domain.ErrOrderNotCancellable.
func (s *OrderService) Cancel(orderID string) (*CancelResult, error) {
	order, refunded, err := s.matcher.Cancel(orderID)
	if err != nil {
		return nil, err
	}
	return &CancelResult{Order: order, RefundApplied: refunded}, nil
}

// ListByOwner returns an owner's orders, newest first, optionally
// filtered by status.
func (s *OrderService) ListByOwner(ownerID string, status *domain.OrderStatus) ([]*domain.Order, error) {
	if status != nil && !ValidOrderStatuses[*status] {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("unknown order status: %s", *status)}
	}
	if !s.accounts.Exists(ownerID) {
		return nil, domain.ErrAccountNotFound
	}
	return s.orders.ListByOwner(ownerID, status), nil
}
