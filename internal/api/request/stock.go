package request

// AddStockRequest represents the request body for adding a ticker to a portfolio.
type AddStockRequest struct {
	Ticker string `json:"ticker"`
}
