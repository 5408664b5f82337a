package request

// CreateDividendRequest represents the request body for recording a dividend
// payment. Both fields are required.
type CreateDividendRequest struct {
	Ticker string  `json:"ticker"`
	Amount float64 `json:"amount"`
}
