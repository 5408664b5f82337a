package validation

import (
	"strings"

	"github.com/sleepingstar/stockfolio/internal/api/request"
)

const maxNameLength = 100

func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	if len(req.Name) > maxNameLength {
		errors["name"] = "name is too long"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateRenamePortfolio(req request.RenamePortfolioRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}
	if len(req.Name) > maxNameLength {
		errors["name"] = "name is too long"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateAddStock(req request.AddStockRequest) error {
	errors := make(map[string]string)

	checkTicker(errors, req.Ticker)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
