package model

// Watchlist is a named membership list of tickers. WatchlistID follows the
// same dense-index pattern as portfolios, renumbered after deletion.
type Watchlist struct {
	WatchlistKey int64  `json:"-"`
	UserID       string `json:"userId"`
	WatchlistID  int64  `json:"watchlistId"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Created      string `json:"created"`
}
