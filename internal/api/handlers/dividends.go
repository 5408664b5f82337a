package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sleepingstar/stockfolio/internal/api/request"
	"github.com/sleepingstar/stockfolio/internal/api/response"
	"github.com/sleepingstar/stockfolio/internal/service"
	"github.com/sleepingstar/stockfolio/internal/validation"
)

// DividendHandler handles HTTP requests for dividend endpoints.
type DividendHandler struct {
	dividendService *service.DividendService
}

// NewDividendHandler creates a new DividendHandler with the provided service dependency.
func NewDividendHandler(dividendService *service.DividendService) *DividendHandler {
	return &DividendHandler{
		dividendService: dividendService,
	}
}

// Dividends handles GET requests for the portfolio's dividends, ordered by
// dense ID. With a ?ticker= query the list is filtered to that ticker.
//
// Endpoint: GET /api/users/{userID}/portfolios/{portfolioID}/dividends[?ticker=...]
func (h *DividendHandler) Dividends(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	if ticker := r.URL.Query().Get("ticker"); ticker != "" {
		dividends, err := h.dividendService.ListByTicker(userID, portfolioID, ticker)
		if err != nil {
			response.RespondError(w, errStatus(err), "failed to retrieve dividends", err.Error())
			return
		}
		response.RespondJSON(w, http.StatusOK, dividends)
		return
	}

	dividends, err := h.dividendService.List(userID, portfolioID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve dividends", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, dividends)
}

// CreateDividend handles POST requests to record a dividend payment. The
// assigned dense ID equals the portfolio's dividend count before the create
// and spans all tickers.
//
// Endpoint: POST /api/users/{userID}/portfolios/{portfolioID}/dividends
// Request Body: CreateDividendRequest (ticker, amount)
// Response: 201 Created with Dividend
func (h *DividendHandler) CreateDividend(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	req, err := parseJSON[request.CreateDividendRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateDividend(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	dividend, err := h.dividendService.Add(r.Context(), userID, portfolioID, req)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to create dividend", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, dividend)
}

// GetDividend handles GET requests for a single dividend by dense ID.
//
// Endpoint: GET /api/users/{userID}/portfolios/{portfolioID}/dividends/{dividendID}
func (h *DividendHandler) GetDividend(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	dividendID, err := pathID(r, "dividendID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid dividend ID", err.Error())
		return
	}

	dividend, err := h.dividendService.Get(userID, portfolioID, dividendID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve dividends", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, dividend)
}

// DeleteDividend handles DELETE requests to remove a dividend. The
// portfolio's remaining dividends are renumbered.
//
// Endpoint: DELETE /api/users/{userID}/portfolios/{portfolioID}/dividends/{dividendID}
// Response: 204 No Content
func (h *DividendHandler) DeleteDividend(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	dividendID, err := pathID(r, "dividendID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid dividend ID", err.Error())
		return
	}

	if err := h.dividendService.Delete(r.Context(), userID, portfolioID, dividendID); err != nil {
		response.RespondError(w, errStatus(err), "failed to delete dividend", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
