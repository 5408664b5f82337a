package validation

import (
	"github.com/sleepingstar/stockfolio/internal/api/request"
	"github.com/sleepingstar/stockfolio/internal/model"
)

func ValidateCreateOption(req request.CreateOptionRequest) error {
	errors := make(map[string]string)

	checkTicker(errors, req.Ticker)

	if !model.OptionType(req.Type).Valid() {
		errors["type"] = "type must be Call or Put"
	}
	if req.Strike <= 0 {
		errors["strike"] = "strike must be positive"
	}
	if req.Premium < 0 {
		errors["premium"] = "premium cannot be negative"
	}
	if req.Quantity <= 0 {
		errors["quantity"] = "quantity must be positive"
	}
	if req.Expires == "" {
		errors["expires"] = "expires is required"
	}
	if !model.OptionStatus(req.Status).Valid() {
		errors["status"] = "status must be Filled, Pending, Cancelled, Expired, Exercised or Closed"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateUpdateOption(req request.UpdateOptionRequest) error {
	errors := make(map[string]string)

	if req.Type != nil && !model.OptionType(*req.Type).Valid() {
		errors["type"] = "type must be Call or Put"
	}
	if req.Strike != nil && *req.Strike <= 0 {
		errors["strike"] = "strike must be positive"
	}
	if req.Premium != nil && *req.Premium < 0 {
		errors["premium"] = "premium cannot be negative"
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		errors["quantity"] = "quantity must be positive"
	}
	if req.Expires != nil && *req.Expires == "" {
		errors["expires"] = "expires cannot be empty"
	}
	if req.Status != nil && !model.OptionStatus(*req.Status).Valid() {
		errors["status"] = "status must be Filled, Pending, Cancelled, Expired, Exercised or Closed"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
