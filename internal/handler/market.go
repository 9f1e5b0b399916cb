package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jaeminoh/marketsim/internal/engine"
	"github.com/jaeminoh/marketsim/internal/service"
)

// MarketHandler handles HTTP requests for market data endpoints.
type MarketHandler struct {
	marketSvc *service.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc *service.MarketService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

// instrumentStatusResponse is one row of GET /instruments.
type instrumentStatusResponse struct {
	InstrumentID   string `json:"instrument_id"`
	Name           string `json:"name"`
	Sector         string `json:"sector"`
	ReferencePrice int64  `json:"reference_price"`
	BidDepth       int    `json:"bid_depth"`
	AskDepth       int    `json:"ask_depth"`
}

// priceLevelResponse is one aggregated book level.
type priceLevelResponse struct {
	Price         int64 `json:"price"`
	TotalQuantity int64 `json:"total_quantity"`
	OrderCount    int   `json:"order_count"`
}

// bookResponse is the JSON response for GET /instruments/{id}/book.
type bookResponse struct {
	InstrumentID   string               `json:"instrument_id"`
	ReferencePrice int64                `json:"reference_price"`
	Bids           []priceLevelResponse `json:"bids"`
	Asks           []priceLevelResponse `json:"asks"`
	At             string               `json:"at"`
}

// trendResponse is the JSON response for GET /instruments/{id}/trend.
type trendResponse struct {
	InstrumentID string `json:"instrument_id"`
	Trend        string `json:"trend"`
}

// Overview handles GET /instruments.
func (h *MarketHandler) Overview(w http.ResponseWriter, r *http.Request) {
	rows := h.marketSvc.Overview()
	out := make([]instrumentStatusResponse, len(rows))
	for i, row := range rows {
		out[i] = instrumentStatusResponse{
			InstrumentID:   row.ID,
			Name:           row.Name,
			Sector:         row.Sector,
			ReferencePrice: row.ReferencePrice,
			BidDepth:       row.BidDepth,
			AskDepth:       row.AskDepth,
		}
	}
	WriteJSON(w, http.StatusOK, out)
}

// GetBook handles GET /instruments/{instrument_id}/book.
func (h *MarketHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	instrumentID := chi.URLParam(r, "instrument_id")

	snap, err := h.marketSvc.Snapshot(instrumentID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, bookResponse{
		InstrumentID:   snap.InstrumentID,
		ReferencePrice: snap.ReferencePrice,
		Bids:           buildLevelResponses(snap.Bids),
		Asks:           buildLevelResponses(snap.Asks),
		At:             snap.At.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

// ListTrades handles GET /instruments/{instrument_id}/trades.
func (h *MarketHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	instrumentID := chi.URLParam(r, "instrument_id")

	trades, err := h.marketSvc.Trades(instrumentID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildTradeResponses(trades))
}

// GetTrend handles GET /instruments/{instrument_id}/trend.
func (h *MarketHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	instrumentID := chi.URLParam(r, "instrument_id")

	trend, err := h.marketSvc.Trend(instrumentID)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, trendResponse{
		InstrumentID: instrumentID,
		Trend:        trend,
	})
}

// buildLevelResponses converts book levels to their JSON form.
func buildLevelResponses(levels []engine.PriceLevel) []priceLevelResponse {
	out := make([]priceLevelResponse, len(levels))
	for i, l := range levels {
		out[i] = priceLevelResponse{
			Price:         l.Price,
			TotalQuantity: l.TotalQuantity,
			OrderCount:    l.OrderCount,
		}
	}
	return out
}
