package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sleepingstar/stockfolio/internal/api/request"
	"github.com/sleepingstar/stockfolio/internal/api/response"
	"github.com/sleepingstar/stockfolio/internal/service"
	"github.com/sleepingstar/stockfolio/internal/validation"
)

// UserHandler handles HTTP requests for user endpoints.
type UserHandler struct {
	userService    *service.UserService
	metricsService *service.MetricsService
}

// NewUserHandler creates a new UserHandler with the provided service dependencies.
func NewUserHandler(userService *service.UserService, metricsService *service.MetricsService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		metricsService: metricsService,
	}
}

// CreateUser handles POST requests to register a user. Registering a user
// that already exists returns the existing row.
//
// Endpoint: POST /api/users
// Response: 201 Created with User
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateUserRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateUser(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	user, err := h.userService.EnsureUser(r.Context(), req.UserID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to create user", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, user)
}

// GetUser handles GET requests for a single user.
//
// Endpoint: GET /api/users/{userID}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.userService.GetUser(userID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve user", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE requests to remove a user and everything they
// own. Deleting a missing user is a 404.
//
// Endpoint: DELETE /api/users/{userID}
// Response: 204 No Content
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	deleted, err := h.userService.DeleteUser(r.Context(), userID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to delete user", err.Error())
		return
	}
	if !deleted {
		response.RespondError(w, http.StatusNotFound, "user not found", nil)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// UserGainLossResponse carries the cross-portfolio gain/loss aggregate.
// GainLoss is null when no portfolio had anything to aggregate.
type UserGainLossResponse struct {
	UserID   string   `json:"userId"`
	GainLoss *float64 `json:"gainLoss"`
}

// GainLoss handles GET requests for the user's total gain/loss across all
// portfolios.
//
// Endpoint: GET /api/users/{userID}/gainloss
func (h *UserHandler) GainLoss(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	total, ok, err := h.metricsService.UserGainLoss(userID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to compute aggregates", err.Error())
		return
	}

	resp := UserGainLossResponse{UserID: userID}
	if ok {
		resp.GainLoss = &total
	}

	response.RespondJSON(w, http.StatusOK, resp)
}
