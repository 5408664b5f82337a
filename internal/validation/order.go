package validation

import (
	"github.com/sleepingstar/stockfolio/internal/api/request"
	"github.com/sleepingstar/stockfolio/internal/model"
)

func ValidateCreateOrder(req request.CreateOrderRequest) error {
	errors := make(map[string]string)

	if req.Price < 0 {
		errors["price"] = "price cannot be negative"
	}
	if req.Quantity <= 0 {
		errors["quantity"] = "quantity must be positive"
	}
	if !model.OrderStatus(req.Status).Valid() {
		errors["status"] = "status must be Filled, Pending or Cancelled"
	}
	if !model.OrderType(req.Type).Valid() {
		errors["type"] = "type must be Buy or Sell"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateUpdateOrder(req request.UpdateOrderRequest) error {
	errors := make(map[string]string)

	if req.Price != nil && *req.Price < 0 {
		errors["price"] = "price cannot be negative"
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		errors["quantity"] = "quantity must be positive"
	}
	if req.Status != nil && !model.OrderStatus(*req.Status).Valid() {
		errors["status"] = "status must be Filled, Pending or Cancelled"
	}
	if req.Type != nil && !model.OrderType(*req.Type).Valid() {
		errors["type"] = "type must be Buy or Sell"
	}
	if req.Created != nil {
		if _, err := model.ParseLedgerTime(*req.Created); err != nil {
			errors["created"] = "created must use the MM-DD-YYYY hh:mm:ss AM/PM format"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidatePurgeOrders(req request.PurgeOrdersRequest) error {
	errors := make(map[string]string)

	if req.Ticker != "" && req.Ticker != "all" && !validTicker(req.Ticker) {
		errors["ticker"] = "ticker must be a symbol or \"all\""
	}
	if req.Status != "" && !model.OrderStatus(req.Status).Valid() {
		errors["status"] = "status must be Filled, Pending or Cancelled"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
