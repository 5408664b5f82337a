package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sleepingstar/stockfolio/internal/api/request"
	"github.com/sleepingstar/stockfolio/internal/api/response"
	"github.com/sleepingstar/stockfolio/internal/service"
	"github.com/sleepingstar/stockfolio/internal/validation"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new OrderHandler with the provided service dependency.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// Orders handles GET requests for all orders on one ticker, ordered by
// dense ID.
//
// Endpoint: GET /api/users/{userID}/portfolios/{portfolioID}/stocks/{ticker}/orders
func (h *OrderHandler) Orders(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ticker := chi.URLParam(r, "ticker")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	orders, err := h.orderService.List(userID, portfolioID, ticker)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve orders", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, orders)
}

// AllOrders handles GET requests for every order in the portfolio across
// all tickers.
//
// Endpoint: GET /api/users/{userID}/portfolios/{portfolioID}/orders
func (h *OrderHandler) AllOrders(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	orders, err := h.orderService.ListAll(userID, portfolioID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve orders", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, orders)
}

// CreateOrder handles POST requests to record an order. The stock row is
// created on first use; the assigned dense ID equals the (portfolio, ticker)
// order count before the create.
//
// Endpoint: POST /api/users/{userID}/portfolios/{portfolioID}/stocks/{ticker}/orders
// Request Body: CreateOrderRequest (price, quantity, status, type)
// Response: 201 Created with Order
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ticker := chi.URLParam(r, "ticker")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	req, err := parseJSON[request.CreateOrderRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateOrder(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	order, err := h.orderService.Add(r.Context(), userID, portfolioID, ticker, req)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to create order", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, order)
}

// GetOrder handles GET requests for a single order by dense ID.
//
// Endpoint: GET /api/users/{userID}/portfolios/{portfolioID}/stocks/{ticker}/orders/{orderID}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ticker := chi.URLParam(r, "ticker")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	orderID, err := pathID(r, "orderID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid order ID", err.Error())
		return
	}

	order, err := h.orderService.Get(userID, portfolioID, ticker, orderID)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to retrieve orders", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, order)
}

// UpdateOrder handles PUT requests to change an order's fields. Omitted
// fields keep their stored values; a body with no recognized fields is a
// 400.
//
// Endpoint: PUT /api/users/{userID}/portfolios/{portfolioID}/stocks/{ticker}/orders/{orderID}
// Request Body: UpdateOrderRequest (all fields optional)
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ticker := chi.URLParam(r, "ticker")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	orderID, err := pathID(r, "orderID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid order ID", err.Error())
		return
	}

	req, err := parseJSON[request.UpdateOrderRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateOrder(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	order, err := h.orderService.Update(r.Context(), userID, portfolioID, ticker, orderID, req)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to update order", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, order)
}

// DeleteOrder handles DELETE requests to remove an order. The remaining
// orders in the (portfolio, ticker) scope are renumbered.
//
// Endpoint: DELETE /api/users/{userID}/portfolios/{portfolioID}/stocks/{ticker}/orders/{orderID}
// Response: 204 No Content
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	ticker := chi.URLParam(r, "ticker")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	orderID, err := pathID(r, "orderID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid order ID", err.Error())
		return
	}

	if err := h.orderService.Delete(r.Context(), userID, portfolioID, ticker, orderID); err != nil {
		response.RespondError(w, errStatus(err), "failed to delete order", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// PurgeResponse reports how many orders a purge removed.
type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

// PurgeOrders handles POST requests to bulk-delete orders by status. The
// body may name one ticker or "all"; status defaults to Cancelled. Every
// affected ticker scope is renumbered.
//
// Endpoint: POST /api/users/{userID}/portfolios/{portfolioID}/orders/purge
// Request Body: PurgeOrdersRequest (ticker and status optional)
func (h *OrderHandler) PurgeOrders(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	portfolioID, err := pathID(r, "portfolioID")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID", err.Error())
		return
	}

	req, err := parseJSON[request.PurgeOrdersRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidatePurgeOrders(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	deleted, err := h.orderService.Purge(r.Context(), userID, portfolioID, req)
	if err != nil {
		response.RespondError(w, errStatus(err), "failed to purge orders", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, PurgeResponse{Deleted: deleted})
}
