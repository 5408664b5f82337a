package validation

import (
	"github.com/sleepingstar/stockfolio/internal/api/request"
)

func ValidateCreateDividend(req request.CreateDividendRequest) error {
	errors := make(map[string]string)

	checkTicker(errors, req.Ticker)

	if req.Amount < 0 {
		errors["amount"] = "amount cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
