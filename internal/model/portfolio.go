package model

// Portfolio represents a portfolio row from the database.
//
// PortfolioKey is the immutable surrogate key used for all child foreign
// keys. PortfolioID is the user-visible dense index, always contiguous
// 0..count-1 per user ordered by creation time; it is the only field
// renumbered when a sibling is deleted.
type Portfolio struct {
	PortfolioKey int64  `json:"-"`
	UserID       string `json:"userId"`
	PortfolioID  int64  `json:"portfolioId"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Created      string `json:"created"`
}

// PortfolioSummary carries the recomputed aggregates for one portfolio.
// Investment, gain/loss and dividends are reported separately; a combined
// total is deliberately not derived here (the components cancel when summed,
// see the aggregation docs), leaving that choice to the caller.
type PortfolioSummary struct {
	PortfolioID int64    `json:"portfolioId"`
	Name        string   `json:"name"`
	Quantity    *float64 `json:"quantity"`
	Investment  *float64 `json:"investment"`
	GainLoss    *float64 `json:"gainLoss"`
	Dividends   *float64 `json:"dividends"`
}
