package request

// CreateWatchlistRequest represents the request body for creating a
// watchlist. Both fields are optional; an empty name falls back to a default
// derived from the assigned dense ID.
type CreateWatchlistRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// RenameWatchlistRequest represents the request body for renaming a watchlist.
type RenameWatchlistRequest struct {
	Name string `json:"name"`
}

// UpdateWatchlistDescriptionRequest represents the request body for replacing
// a watchlist's description.
type UpdateWatchlistDescriptionRequest struct {
	Description string `json:"description"`
}

// WatchTickerRequest represents the request body for adding a ticker to a
// watchlist.
type WatchTickerRequest struct {
	Ticker string `json:"ticker"`
}
