package validation

import (
	"strings"

	"github.com/sleepingstar/stockfolio/internal/api/request"
)

func ValidateCreateWatchlist(req request.CreateWatchlistRequest) error {
	errors := make(map[string]string)

	if len(req.Name) > maxNameLength {
		errors["name"] = "name is too long"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateRenameWatchlist(req request.RenameWatchlistRequest) error {
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

func ValidateWatchTicker(req request.WatchTickerRequest) error {
	errors := make(map[string]string)

	checkTicker(errors, req.Ticker)

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
