package request

// CreatePortfolioRequest represents the request body for creating a portfolio.
// Both fields are optional; empty values fall back to defaults derived from
// the assigned dense ID.
type CreatePortfolioRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// RenamePortfolioRequest represents the request body for renaming a portfolio.
type RenamePortfolioRequest struct {
	Name string `json:"name"`
}

// UpdatePortfolioDescriptionRequest represents the request body for replacing
// a portfolio's description.
type UpdatePortfolioDescriptionRequest struct {
	Description string `json:"description"`
}
