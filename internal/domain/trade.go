package domain

import "time"

// Trade represents a matched execution between a buy and a sell order.
// One record is appended per matched pair per matching step.
type Trade struct {
	TradeID      string
	InstrumentID string
	Price        int64 // credits per share, always > 0
	Quantity     int64 // shares, always > 0
	BuyerID      string
	SellerID     string
	BuyOrderID   string
	SellOrderID  string

	// Seq is the monotonically increasing trade sequence across the whole
	// engine, assigned at execution.
	Seq uint64

	ExecutedAt time.Time
}
