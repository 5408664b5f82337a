package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sleepingstar/stockfolio/internal/api/request"
	"github.com/sleepingstar/stockfolio/internal/api/response"
	"github.com/sleepingstar/stockfolio/internal/model"
	"github.com/sleepingstar/stockfolio/internal/service"
	"github.com/sleepingstar/stockfolio/internal/validation"
)

// OptionHandler handles HTTP requests for option endpoints.
type OptionHandler struct {
	optionService *service.OptionService
}

// NewOptionHandler creates a new OptionHandler with the provided service dependency.
func NewOptionHandler(optionService *service.OptionService) *OptionHandler {
	return &OptionHandler{
		optionService: optionService,
	}
}

// Options handles GET requests for the portfolio's options, ordered by
// dense ID. With a ?ticker= query the list is filtered to that ticker.
//
// Endpoint: GET /api/users/{userID}/portfolios/{portfolioID}/options[?ticker=...]
func (h *OptionHandler) Options(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	if ticker := r.URL.Query().Get("ticker"); ticker != "" {
		options, err := h.optionService.ListByTicker(userID, portfolioID, ticker)
		if err != nil {
			response.RespondError(w, errStatus(err), "failed to retrieve options", err.Error())
			return
		}
		response.RespondJSON(w, http.StatusOK, options)
		return
	}

	options, err := h.optionService.List(userID, portfolioID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve options", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, options)
}

// CreateOption handles POST requests to record an option position. The
// assigned dense ID equals the portfolio's option count before the create
// and spans all tickers.
//
// Endpoint: POST /api/users/{userID}/portfolios/{portfolioID}/options
// Request Body: CreateOptionRequest
// Response: 201 Created with Option
func (h *OptionHandler) CreateOption(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	req, err := parseJSON[request.CreateOptionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateOption(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	option, err := h.optionService.Add(r.Context(), userID, portfolioID, req)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to create option", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, option)
}

// GetOption handles GET requests for a single option by dense ID.
//
// Endpoint: GET /api/users/{userID}/portfolios/{portfolioID}/options/{optionID}
func (h *OptionHandler) GetOption(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	optionID, err := pathID(r, "optionID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid option ID", err.Error())
		return
	}

	option, err := h.optionService.Get(userID, portfolioID, optionID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve options", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, option)
}

// UpdateOption handles PUT requests to change an option's fields. Omitted
// fields keep their stored values; a body with no recognized fields is a
// 400.
//
// Endpoint: PUT /api/users/{userID}/portfolios/{portfolioID}/options/{optionID}
// Request Body: UpdateOptionRequest (all fields optional)
func (h *OptionHandler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	optionID, err := pathID(r, "optionID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid option ID", err.Error())
		return
	}

	req, err := parseJSON[request.UpdateOptionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateOption(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	option, err := h.optionService.Update(r.Context(), userID, portfolioID, optionID, req)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to update option", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, option)
}

// settleOption wires the three terminal transitions through one code path.
func (h *OptionHandler) settleOption(w http.ResponseWriter, r *http.Request, settle func(r *http.Request, userID string, portfolioID, optionID int64, req request.SettleOptionRequest) (model.Option, error)) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	optionID, err := pathID(r, "optionID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid option ID", err.Error())
		return
	}

	req, err := parseJSON[request.SettleOptionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	option, err := settle(r, userID, portfolioID, optionID, req)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to settle option", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, option)
}

// CloseOption handles POST requests to settle an option as closed.
//
// Endpoint: POST /api/users/{userID}/portfolios/{portfolioID}/options/{optionID}/close
func (h *OptionHandler) CloseOption(w http.ResponseWriter, r *http.Request) {
	h.settleOption(w, r, func(r *http.Request, userID string, portfolioID, optionID int64, req request.SettleOptionRequest) (model.Option, error) {
		return h.optionService.Close(r.Context(), userID, portfolioID, optionID, req)
	})
}

// ExpireOption handles POST requests to settle an option as expired.
//
// Endpoint: POST /api/users/{userID}/portfolios/{portfolioID}/options/{optionID}/expire
func (h *OptionHandler) ExpireOption(w http.ResponseWriter, r *http.Request) {
	h.settleOption(w, r, func(r *http.Request, userID string, portfolioID, optionID int64, req request.SettleOptionRequest) (model.Option, error) {
		return h.optionService.Expire(r.Context(), userID, portfolioID, optionID, req)
	})
}

// ExerciseOption handles POST requests to settle an option as exercised.
//
// Endpoint: POST /api/users/{userID}/portfolios/{portfolioID}/options/{optionID}/exercise
func (h *OptionHandler) ExerciseOption(w http.ResponseWriter, r *http.Request) {
	h.settleOption(w, r, func(r *http.Request, userID string, portfolioID, optionID int64, req request.SettleOptionRequest) (model.Option, error) {
		return h.optionService.Exercise(r.Context(), userID, portfolioID, optionID, req)
	})
}

// DeleteOption handles DELETE requests to remove an option. The portfolio's
// remaining options are renumbered.
//
// Endpoint: DELETE /api/users/{userID}/portfolios/{portfolioID}/options/{optionID}
// Response: 204 No Content
func (h *OptionHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	optionID, err := pathID(r, "optionID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid option ID", err.Error())
		return
	}

	if err := h.optionService.Delete(r.Context(), userID, portfolioID, optionID); err != nil {
		response.RespondError(w, errStatus(err), "failed to delete option", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
