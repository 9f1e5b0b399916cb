package domain

import "time"

// OrderKind distinguishes limit orders from market orders.
type OrderKind string

const (
	OrderKindLimit  OrderKind = "LIMIT"
	OrderKindMarket OrderKind = "MARKET"
)

// OrderSide indicates whether an order buys or sells shares.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"
)

// Order represents a buy or sell instruction submitted by a participant.
// While resting it is owned exclusively by its order book slot; once filled
// or cancelled it becomes an immutable historical record.
type Order struct {
	OrderID           string
	OwnerID           string
	InstrumentID      string
	Side              OrderSide
	Kind              OrderKind
	Price             int64 // credits per share; 0 for market orders
	Quantity          int64
	FilledQuantity    int64
	RemainingQuantity int64
	CancelledQuantity int64
	Status            OrderStatus

	// Seq is the monotonically increasing submission sequence assigned by
	// the matcher. Price-time priority ties break on Seq, not wall time,
	// because the simulated clock advances in whole minutes.
	Seq uint64

	SubmittedAt time.Time
	CancelledAt *time.Time
}

// Terminal reports whether the order can no longer change state.
func (o *Order) Terminal() bool {
	return o.Status == OrderStatusFilled || o.Status == OrderStatusCancelled
}
