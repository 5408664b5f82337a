package model

// Dividend represents a dividend payment recorded under a portfolio.
//
// DividendID is dense per portfolio_key and spans all tickers in that
// portfolio, unlike order IDs which are dense per (portfolio, ticker).
type Dividend struct {
	DividendKey  int64   `json:"-"`
	PortfolioKey int64   `json:"-"`
	Ticker       string  `json:"ticker"`
	DividendID   int64   `json:"dividendId"`
	Amount       float64 `json:"amount"`
	Created      string  `json:"created"`
}
