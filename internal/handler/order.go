package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jaeminoh/marketsim/internal/domain"
	"github.com/jaeminoh/marketsim/internal/service"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// submitOrderRequest is the JSON request body for POST /orders.
type submitOrderRequest struct {
	OwnerID      string `json:"owner_id"`
	InstrumentID string `json:"instrument_id"`
	Side         string `json:"side"`
	Kind         string `json:"kind"`
	Price        *int64 `json:"price"`
	Quantity     int64  `json:"quantity"`
}

// orderResponse is the JSON representation of an order. Market orders
// carry a null price.
type orderResponse struct {
	OrderID           string  `json:"order_id"`
	OwnerID           string  `json:"owner_id"`
	InstrumentID      string  `json:"instrument_id"`
	Side              string  `json:"side"`
	Kind              string  `json:"kind"`
	Price             *int64  `json:"price"`
	Quantity          int64   `json:"quantity"`
	FilledQuantity    int64   `json:"filled_quantity"`
	RemainingQuantity int64   `json:"remaining_quantity"`
	CancelledQuantity int64   `json:"cancelled_quantity"`
	Status            string  `json:"status"`
	SubmittedAt       string  `json:"submitted_at"`
	CancelledAt       *string `json:"cancelled_at"`
}

// submitOrderResponse pairs the submitted order with the trades its
// matching pass produced.
type submitOrderResponse struct {
	Order  orderResponse   `json:"order"`
	Trades []tradeResponse `json:"trades"`
}

// cancelOrderResponse reports the cancelled order and whether a
// reservation was released.
type cancelOrderResponse struct {
	Order         orderResponse `json:"order"`
	RefundApplied bool          `json:"refund_applied"`
}

// tradeResponse is a single executed trade.
type tradeResponse struct {
	TradeID      string `json:"trade_id"`
	InstrumentID string `json:"instrument_id"`
	Price        int64  `json:"price"`
	Quantity     int64  `json:"quantity"`
	BuyerID      string `json:"buyer_id"`
	SellerID     string `json:"seller_id"`
	ExecutedAt   string `json:"executed_at"`
}

// SubmitOrder handles POST /orders.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.orderSvc.Submit(service.SubmitOrderRequest{
		OwnerID:      req.OwnerID,
		InstrumentID: req.InstrumentID,
		Side:         domain.OrderSide(req.Side),
		Kind:         domain.OrderKind(req.Kind),
		Price:        req.Price,
		Quantity:     req.Quantity,
	})
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, submitOrderResponse{
		Order:  buildOrderResponse(result.Order),
		Trades: buildTradeResponses(result.Trades),
	})
}

// GetOrder handles GET /orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	order, err := h.orderSvc.Get(orderID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

// CancelOrder handles DELETE /orders/{order_id}.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")

	result, err := h.orderSvc.Cancel(orderID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, cancelOrderResponse{
		Order:         buildOrderResponse(result.Order),
		RefundApplied: result.RefundApplied,
	})
}

// buildOrderResponse converts a domain order to its JSON form.
func buildOrderResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		OrderID:           o.OrderID,
		OwnerID:           o.OwnerID,
		InstrumentID:      o.InstrumentID,
		Side:              string(o.Side),
		Kind:              string(o.Kind),
		Quantity:          o.Quantity,
		FilledQuantity:    o.FilledQuantity,
		RemainingQuantity: o.RemainingQuantity,
		CancelledQuantity: o.CancelledQuantity,
		Status:            string(o.Status),
		SubmittedAt:       o.SubmittedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if o.Kind == domain.OrderKindLimit {
		price := o.Price
		resp.Price = &price
	}
	if o.CancelledAt != nil {
		s := o.CancelledAt.UTC().Format("2006-01-02T15:04:05Z")
		resp.CancelledAt = &s
	}
	return resp
}

// buildTradeResponses converts domain trades to response trades.
func buildTradeResponses(trades []*domain.Trade) []tradeResponse {
	result := make([]tradeResponse, len(trades))
	for i, t := range trades {
		result[i] = tradeResponse{
			TradeID:      t.TradeID,
			InstrumentID: t.InstrumentID,
			Price:        t.Price,
			Quantity:     t.Quantity,
			BuyerID:      t.BuyerID,
			SellerID:     t.SellerID,
			ExecutedAt:   t.ExecutedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	return result
}

// mapDomainError maps domain errors to HTTP responses. All handlers share
// the same mapping.
func mapDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		WriteError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrUnknownInstrument):
		WriteError(w, http.StatusNotFound, "instrument_not_found", err.Error())
	case errors.Is(err, domain.ErrAccountAlreadyExists):
		WriteError(w, http.StatusConflict, "account_already_exists", err.Error())
	case errors.Is(err, domain.ErrOrderNotCancellable):
		WriteError(w, http.StatusConflict, "order_not_cancellable", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		WriteError(w, http.StatusUnprocessableEntity, "insufficient_funds", err.Error())
	case errors.Is(err, domain.ErrInsufficientShares):
		WriteError(w, http.StatusUnprocessableEntity, "insufficient_shares", err.Error())
	case errors.Is(err, domain.ErrPersistence):
		WriteError(w, http.StatusInternalServerError, "persistence_error", "Failed to persist market state")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
