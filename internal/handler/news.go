package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jaeminoh/marketsim/internal/service"
)

// NewsHandler handles HTTP requests for news impact endpoints.
type NewsHandler struct {
	newsSvc *service.NewsService
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(newsSvc *service.NewsService) *NewsHandler {
	return &NewsHandler{newsSvc: newsSvc}
}

// applyNewsRequest is the JSON request body for POST /instruments/{id}/news.
type applyNewsRequest struct {
	Headline  string  `json:"headline"`
	Sentiment string  `json:"sentiment"`
	Magnitude float64 `json:"magnitude"`
}

// applyNewsResponse reports the reference price after the impact.
type applyNewsResponse struct {
	InstrumentID   string  `json:"instrument_id"`
	Sentiment      string  `json:"sentiment"`
	Magnitude      float64 `json:"magnitude"`
	ReferencePrice int64   `json:"reference_price"`
}

// ApplyNews handles POST /instruments/{instrument_id}/news.
func (h *NewsHandler) ApplyNews(w http.ResponseWriter, r *http.Request) {
	instrumentID := chi.URLParam(r, "instrument_id")

	var req applyNewsRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	newPrice, err := h.newsSvc.ApplyImpact(instrumentID, req.Sentiment, req.Magnitude)
	if err != nil {
		mapDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, applyNewsResponse{
		InstrumentID:   instrumentID,
		Sentiment:      req.Sentiment,
		Magnitude:      req.Magnitude,
		ReferencePrice: newPrice,
	})
}
