package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sleepingstar/stockfolio/internal/api/request"
	"github.com/sleepingstar/stockfolio/internal/api/response"
	"github.com/sleepingstar/stockfolio/internal/service"
	"github.com/sleepingstar/stockfolio/internal/validation"
)

// WatchlistHandler handles HTTP requests for watchlist endpoints.
type WatchlistHandler struct {
	watchlistService *service.WatchlistService
}

// NewWatchlistHandler creates a new WatchlistHandler with the provided service dependency.
func NewWatchlistHandler(watchlistService *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
	}
}

// Watchlists handles GET requests for a user's watchlists, ordered by dense
// ID. With a ?name= query it resolves that single watchlist instead.
//
// Endpoint: GET /api/users/{userID}/watchlists[?name=...]
func (h *WatchlistHandler) Watchlists(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if name := r.URL.Query().Get("name"); name != "" {
		watchlist, err := h.watchlistService.GetByName(userID, name)
		if err != nil {
			response.RespondError(w, errStatus(err), "failed to retrieve watchlists", err.Error())
			return
		}
		response.RespondJSON(w, http.StatusOK, watchlist)
		return
	}

	watchlists, err := h.watchlistService.List(userID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve watchlists", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, watchlists)
}

// CreateWatchlist handles POST requests to create a watchlist.
//
// Endpoint: POST /api/users/{userID}/watchlists
// Request Body: CreateWatchlistRequest (name and description optional)
// Response: 201 Created with Watchlist
func (h *WatchlistHandler) CreateWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	req, err := parseJSON[request.CreateWatchlistRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateWatchlist(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	watchlist, err := h.watchlistService.Create(r.Context(), userID, req)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to create watchlist", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, watchlist)
}

// GetWatchlist handles GET requests for a single watchlist by dense ID.
//
// Endpoint: GET /api/users/{userID}/watchlists/{watchlistID}
func (h *WatchlistHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	watchlistID, err := pathID(r, "watchlistID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid watchlist ID", err.Error())
		return
	}

	watchlist, err := h.watchlistService.Get(userID, watchlistID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve watchlists", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, watchlist)
}

// RenameWatchlist handles PUT requests to change a watchlist's name.
//
// Endpoint: PUT /api/users/{userID}/watchlists/{watchlistID}/name
func (h *WatchlistHandler) RenameWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	watchlistID, err := pathID(r, "watchlistID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid watchlist ID", err.Error())
		return
	}

	req, err := parseJSON[request.RenameWatchlistRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRenameWatchlist(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	watchlist, err := h.watchlistService.Rename(r.Context(), userID, watchlistID, req)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to rename watchlist", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, watchlist)
}

// UpdateDescription handles PUT requests to replace a watchlist's description.
//
// Endpoint: PUT /api/users/{userID}/watchlists/{watchlistID}/description
func (h *WatchlistHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	watchlistID, err := pathID(r, "watchlistID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid watchlist ID", err.Error())
		return
	}

	req, err := parseJSON[request.UpdateWatchlistDescriptionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	watchlist, err := h.watchlistService.UpdateDescription(r.Context(), userID, watchlistID, req)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to update watchlist", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, watchlist)
}

// DeleteWatchlist handles DELETE requests to remove a watchlist and its
// memberships. The user's remaining watchlists are renumbered.
//
// Endpoint: DELETE /api/users/{userID}/watchlists/{watchlistID}
// Response: 204 No Content
func (h *WatchlistHandler) DeleteWatchlist(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	watchlistID, err := pathID(r, "watchlistID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid watchlist ID", err.Error())
		return
	}

	if err := h.watchlistService.Delete(r.Context(), userID, watchlistID); err != nil {
		response.RespondError(w, errStatus(err), "failed to delete watchlist", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Tickers handles GET requests for the tickers on a watchlist in insertion
// order.
//
// Endpoint: GET /api/users/{userID}/watchlists/{watchlistID}/tickers
func (h *WatchlistHandler) Tickers(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	watchlistID, err := pathID(r, "watchlistID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid watchlist ID", err.Error())
		return
	}

	tickers, err := h.watchlistService.WatchedTickers(userID, watchlistID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve watchlists", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, tickers)
}

// WatchTicker handles POST requests to add a ticker to a watchlist.
//
// Endpoint: POST /api/users/{userID}/watchlists/{watchlistID}/tickers
// Request Body: WatchTickerRequest (ticker)
// Response: 201 Created
// Error: 409 Conflict if the ticker is already watched
func (h *WatchlistHandler) WatchTicker(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	watchlistID, err := pathID(r, "watchlistID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid watchlist ID", err.Error())
		return
	}

	req, err := parseJSON[request.WatchTickerRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateWatchTicker(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.watchlistService.Watch(r.Context(), userID, watchlistID, req.Ticker); err != nil {
		response.RespondError(w, errStatus(err), "failed to watch ticker", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, nil)
}

// UnwatchTicker handles DELETE requests to drop a ticker from a watchlist.
//
// Endpoint: DELETE /api/users/{userID}/watchlists/{watchlistID}/tickers/{ticker}
// Response: 204 No Content
// Error: 404 Not Found if the ticker is not on the list
func (h *WatchlistHandler) UnwatchTicker(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ticker := chi.URLParam(r, "ticker")

	watchlistID, err := pathID(r, "watchlistID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid watchlist ID", err.Error())
		return
	}

	if err := h.watchlistService.Unwatch(r.Context(), userID, watchlistID, ticker); err != nil {
		response.RespondError(w, errStatus(err), "failed to unwatch ticker", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
