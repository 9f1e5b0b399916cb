package handler

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/jaeminoh/marketsim/internal/domain"
	"github.com/jaeminoh/marketsim/internal/service"
)

// AccountHandler handles HTTP requests for account endpoints.
type AccountHandler struct {
	accountSvc *service.AccountService
	orderSvc   *service.OrderService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService, orderSvc *service.OrderService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc, orderSvc: orderSvc}
}

// registerRequest is the JSON request body for POST /accounts.
type registerRequest struct {
	OwnerID string `json:"owner_id"`
}

// holdingResponse is one instrument position in an account response.
type holdingResponse struct {
	InstrumentID     string `json:"instrument_id"`
	Quantity         int64  `json:"quantity"`
	ReservedQuantity int64  `json:"reserved_quantity"`
}

// accountResponse is the JSON representation of an account.
type accountResponse struct {
	OwnerID       string            `json:"owner_id"`
	CashBalance   int64             `json:"cash_balance"`
	ReservedCash  int64             `json:"reserved_cash"`
	AvailableCash int64             `json:"available_cash"`
	Holdings      []holdingResponse `json:"holdings"`
	CreatedAt     string            `json:"created_at"`
}

// rankEntryResponse is one leaderboard row.
type rankEntryResponse struct {
	Rank          int    `json:"rank"`
	OwnerID       string `json:"owner_id"`
	CashBalance   int64  `json:"cash_balance"`
	HoldingsValue int64  `json:"holdings_value"`
	TotalAssets   int64  `json:"total_assets"`
}

// Register handles POST /accounts.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	account, err := h.accountSvc.Register(req.OwnerID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildAccountResponse(account))
}

// GetAccount handles GET /accounts/{owner_id}.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "owner_id")

	account, err := h.accountSvc.Get(ownerID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildAccountResponse(account))
}

// ListOrders handles GET /accounts/{owner_id}/orders. An optional status
// query parameter filters by order status.
func (h *AccountHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "owner_id")

	var status *domain.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.OrderStatus(raw)
		if !service.ValidOrderStatuses[s] {
			WriteError(w, http.StatusBadRequest, "validation_error",
				"status must be one of: PENDING, PARTIALLY_FILLED, FILLED, CANCELLED")
			return
		}
		status = &s
	}

	orders, err := h.orderSvc.ListByOwner(ownerID, status)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = buildOrderResponse(o)
	}
	WriteJSON(w, http.StatusOK, out)
}

// Leaderboard handles GET /rank.
func (h *AccountHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries := h.accountSvc.Leaderboard()
	out := make([]rankEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = rankEntryResponse{
			Rank:          i + 1,
			OwnerID:       e.OwnerID,
			CashBalance:   e.CashBalance,
			HoldingsValue: e.HoldingsValue,
			TotalAssets:   e.TotalAssets,
		}
	}
	WriteJSON(w, http.StatusOK, out)
}

// buildAccountResponse converts a domain account to its JSON form.
// Holdings are sorted by instrument so the output is stable.
func buildAccountResponse(a *domain.Account) accountResponse {
	a.Mu.Lock()
	defer a.Mu.Unlock()

	holdings := make([]holdingResponse, 0, len(a.Holdings))
	for instID, h := range a.Holdings {
		holdings = append(holdings, holdingResponse{
			InstrumentID:     instID,
			Quantity:         h.Quantity,
			ReservedQuantity: h.ReservedQuantity,
		})
	}
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].InstrumentID < holdings[j].InstrumentID
	})

	return accountResponse{
		OwnerID:       a.OwnerID,
		CashBalance:   a.CashBalance,
		ReservedCash:  a.ReservedCash,
		AvailableCash: a.CashBalance - a.ReservedCash,
		Holdings:      holdings,
		CreatedAt:     a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
