package model

// Stock represents a held ticker under a portfolio. A row exists once any
// order, dividend or option has referenced the (portfolio, ticker) pair;
// it is created lazily on first use.
type Stock struct {
	StockKey     int64  `json:"-"`
	PortfolioKey int64  `json:"-"`
	Ticker       string `json:"ticker"`
	Created      string `json:"created"`
}

// StockSummary carries the recomputed position figures for one ticker.
type StockSummary struct {
	Ticker     string   `json:"ticker"`
	Quantity   *float64 `json:"quantity"`
	Investment *float64 `json:"investment"`
	GainLoss   *float64 `json:"gainLoss"`
}
