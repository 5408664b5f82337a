package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sleepingstar/stockfolio/internal/api/request"
	"github.com/sleepingstar/stockfolio/internal/api/response"
	"github.com/sleepingstar/stockfolio/internal/service"
	"github.com/sleepingstar/stockfolio/internal/validation"
)

// PortfolioHandler handles HTTP requests for portfolio endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the portfolio and metrics services.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
	metricsService   *service.MetricsService
}

// NewPortfolioHandler creates a new PortfolioHandler with the provided service dependencies.
func NewPortfolioHandler(portfolioService *service.PortfolioService, metricsService *service.MetricsService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		metricsService:   metricsService,
	}
}

// Portfolios handles GET requests for a user's portfolios, ordered by dense
// ID. With a ?name= query it resolves that single portfolio instead.
//
// Endpoint: GET /api/users/{userID}/portfolios[?name=...]
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if name := r.URL.Query().Get("name"); name != "" {
		portfolio, err := h.portfolioService.GetByName(userID, name)
		if err != nil {
			response.RespondError(w, errStatus(err), "failed to retrieve portfolios", err.Error())
			return
		}
		response.RespondJSON(w, http.StatusOK, portfolio)
		return
	}

	portfolios, err := h.portfolioService.List(userID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve portfolios", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolios)
}

// CreatePortfolio handles POST requests to create a portfolio. The assigned
// dense ID equals the user's portfolio count before the create.
//
// Endpoint: POST /api/users/{userID}/portfolios
// Request Body: CreatePortfolioRequest (name and description optional)
// Response: 201 Created with Portfolio
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	req, err := parseJSON[request.CreatePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreatePortfolio(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	portfolio, err := h.portfolioService.Create(r.Context(), userID, req)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to create portfolio", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, portfolio)
}

// GetPortfolio handles GET requests for a single portfolio by dense ID.
//
// Endpoint: GET /api/users/{userID}/portfolios/{portfolioID}
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	portfolio, err := h.portfolioService.Get(userID, portfolioID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve portfolios", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// RenamePortfolio handles PUT requests to change a portfolio's name.
//
// Endpoint: PUT /api/users/{userID}/portfolios/{portfolioID}/name
func (h *PortfolioHandler) RenamePortfolio(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	req, err := parseJSON[request.RenamePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRenamePortfolio(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	portfolio, err := h.portfolioService.Rename(r.Context(), userID, portfolioID, req)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to rename portfolio", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// UpdateDescription handles PUT requests to replace a portfolio's description.
//
// Endpoint: PUT /api/users/{userID}/portfolios/{portfolioID}/description
func (h *PortfolioHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	req, err := parseJSON[request.UpdatePortfolioDescriptionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	portfolio, err := h.portfolioService.UpdateDescription(r.Context(), userID, portfolioID, req)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to update portfolio", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, portfolio)
}

// DeletePortfolio handles DELETE requests to remove a portfolio. Deletion
// cascades the portfolio's stocks, orders, dividends and options, and the
// user's remaining portfolios are renumbered.
//
// Endpoint: DELETE /api/users/{userID}/portfolios/{portfolioID}
// Response: 204 No Content
func (h *PortfolioHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	if err := h.portfolioService.Delete(r.Context(), userID, portfolioID); err != nil {
		response.RespondError(w, errStatus(err), "failed to delete portfolio", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// PortfolioSummary handles GET requests for a portfolio's recomputed
// aggregates. Absent aggregates are null, not zero.
//
// Endpoint: GET /api/users/{userID}/portfolios/{portfolioID}/summary
func (h *PortfolioHandler) PortfolioSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	summary, err := h.metricsService.PortfolioSummary(userID, portfolioID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to compute aggregates", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
