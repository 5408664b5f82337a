package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sleepingstar/stockfolio/internal/api/request"
	"github.com/sleepingstar/stockfolio/internal/api/response"
	"github.com/sleepingstar/stockfolio/internal/service"
	"github.com/sleepingstar/stockfolio/internal/validation"
)

// StockHandler handles HTTP requests for stock endpoints.
type StockHandler struct {
	stockService   *service.StockService
	metricsService *service.MetricsService
}

// NewStockHandler creates a new StockHandler with the provided service dependencies.
func NewStockHandler(stockService *service.StockService, metricsService *service.MetricsService) *StockHandler {
	return &StockHandler{
		stockService:   stockService,
		metricsService: metricsService,
	}
}

// Stocks handles GET requests for all stocks held in a portfolio.
//
// Endpoint: GET /api/users/{userID}/portfolios/{portfolioID}/stocks
func (h *StockHandler) Stocks(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	stocks, err := h.stockService.List(userID, portfolioID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve stocks", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, stocks)
}

// AddStock handles POST requests to register a ticker in a portfolio.
// Tickers also appear implicitly when the first order, dividend or option
// references them; this endpoint is the explicit path.
//
// Endpoint: POST /api/users/{userID}/portfolios/{portfolioID}/stocks
// Response: 201 Created with Stock
// Error: 409 Conflict if the ticker is already held
func (h *StockHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	req, err := parseJSON[request.AddStockRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateAddStock(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	stock, err := h.stockService.Add(r.Context(), userID, portfolioID, req.Ticker)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to add stock", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, stock)
}

// GetStock handles GET requests for a single stock row.
//
// Endpoint: GET /api/users/{userID}/portfolios/{portfolioID}/stocks/{ticker}
func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ticker := chi.URLParam(r, "ticker")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	stock, err := h.stockService.Get(userID, portfolioID, ticker)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve stocks", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, stock)
}

// DeleteStock handles DELETE requests to remove a ticker and its orders.
// Dividends and options for the ticker are kept.
//
// Endpoint: DELETE /api/users/{userID}/portfolios/{portfolioID}/stocks/{ticker}
// Response: 204 No Content
func (h *StockHandler) DeleteStock(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ticker := chi.URLParam(r, "ticker")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	if err := h.stockService.Delete(r.Context(), userID, portfolioID, ticker); err != nil {
		response.RespondError(w, errStatus(err), "failed to delete stock", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// StockSummary handles GET requests for a ticker's recomputed position
// figures. Fields are null when the ticker has no Filled orders.
//
// Endpoint: GET /api/users/{userID}/portfolios/{portfolioID}/stocks/{ticker}/summary
func (h *StockHandler) StockSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ticker := chi.URLParam(r, "ticker")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	summary, err := h.metricsService.StockSummary(userID, portfolioID, ticker)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to compute aggregates", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
