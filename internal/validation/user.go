package validation

import (
	"strings"

	"github.com/sleepingstar/stockfolio/internal/api/request"
)

func ValidateCreateUser(req request.CreateUserRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.UserID) == "" {
		errors["userId"] = "userId is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
