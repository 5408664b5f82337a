package validation

import (
	"fmt"
	"strings"
)

type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}

// validTicker reports whether s looks like a ticker symbol: 1-10 characters,
// uppercase letters, digits, dot or dash.
func validTicker(s string) bool {
	if len(s) == 0 || len(s) > 10 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '-':
		default:
			return false
		}
	}
	return true
}

func checkTicker(errors map[string]string, ticker string) {
	if strings.TrimSpace(ticker) == "" {
		errors["ticker"] = "ticker is required"
		return
	}
	if !validTicker(ticker) {
		errors["ticker"] = "ticker must be 1-10 uppercase letters, digits, dot or dash"
	}
}
