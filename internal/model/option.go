package model

// OptionStatus is the lifecycle state of an option position.
type OptionStatus string

const (
	OptionStatusFilled    OptionStatus = "Filled"
	OptionStatusPending   OptionStatus = "Pending"
	OptionStatusCancelled OptionStatus = "Cancelled"
	OptionStatusExpired   OptionStatus = "Expired"
	OptionStatusExercised OptionStatus = "Exercised"
	OptionStatusClosed    OptionStatus = "Closed"
)

// Valid reports whether s is a recognized option status.
func (s OptionStatus) Valid() bool {
	switch s {
	case OptionStatusFilled, OptionStatusPending, OptionStatusCancelled,
		OptionStatusExpired, OptionStatusExercised, OptionStatusClosed:
		return true
	}
	return false
}

// OptionType is the contract kind.
type OptionType string

const (
	OptionTypeCall OptionType = "Call"
	OptionTypePut  OptionType = "Put"
)

// Valid reports whether t is a recognized option type.
func (t OptionType) Valid() bool {
	return t == OptionTypeCall || t == OptionTypePut
}

// Option represents an option row from the database.
//
// OptionID is dense per portfolio_key across all tickers. GainLoss is nil
// until the position reaches a terminal state (Closed, Expired, Exercised).
type Option struct {
	OptionKey    int64        `json:"-"`
	PortfolioKey int64        `json:"-"`
	Ticker       string       `json:"ticker"`
	OptionID     int64        `json:"optionId"`
	Type         OptionType   `json:"type"`
	Strike       float64      `json:"strike"`
	Premium      float64      `json:"premium"`
	Quantity     float64      `json:"quantity"`
	Expires      string       `json:"expires"`
	Status       OptionStatus `json:"status"`
	GainLoss     *float64     `json:"gainLoss,omitempty"`
	Created      string       `json:"created"`
}
