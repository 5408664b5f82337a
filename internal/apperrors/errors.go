package apperrors

import "errors"

// Domain entity errors represent missing entities in the hierarchy.
// Lookup failures resolve to these sentinels at the service boundary; they
// are never raised out of the process as store-level errors.
var (
	// ErrUserNotFound indicates that a user with the given platform ID does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrPortfolioNotFound indicates that a portfolio with the given dense ID does not exist for the user.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrStockNotFound indicates that the ticker is not held in the portfolio.
	ErrStockNotFound = errors.New("stock not found")

	// ErrOrderNotFound indicates that an order with the given dense ID does not exist for the ticker.
	ErrOrderNotFound = errors.New("order not found")

	// ErrDividendNotFound indicates that a dividend with the given dense ID does not exist in the portfolio.
	ErrDividendNotFound = errors.New("dividend not found")

	// ErrOptionNotFound indicates that an option with the given dense ID does not exist in the portfolio.
	ErrOptionNotFound = errors.New("option not found")

	// ErrWatchlistNotFound indicates that a watchlist with the given dense ID does not exist for the user.
	ErrWatchlistNotFound = errors.New("watchlist not found")

	// ErrTickerNotWatched indicates that the ticker is not on the watchlist.
	ErrTickerNotWatched = errors.New("ticker not watched")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrDuplicateEntry indicates that a row with the same unique constraint already exists,
	// e.g. adding a ticker twice to the same portfolio or watchlist.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrNoFieldsToUpdate indicates a partial update carried no recognized fields.
	ErrNoFieldsToUpdate = errors.New("no fields to update")

	// ErrInvalidOrderStatus indicates an order status outside Filled/Pending/Cancelled.
	ErrInvalidOrderStatus = errors.New("invalid order status")

	// ErrInvalidOrderType indicates an order type outside Buy/Sell.
	ErrInvalidOrderType = errors.New("invalid order type")

	// ErrInvalidOptionStatus indicates an option status outside the recognized set.
	ErrInvalidOptionStatus = errors.New("invalid option status")

	// ErrInvalidOptionType indicates an option type outside Call/Put.
	ErrInvalidOptionType = errors.New("invalid option type")

	// ErrInvalidTicker indicates an empty or malformed ticker symbol.
	ErrInvalidTicker = errors.New("invalid ticker")

	// ErrEmptyID indicates that a required identifier parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// Store-level failure errors. A mutating operation that hits one of these has
// rolled back its transaction; previously committed siblings are untouched.
var (
	// ErrWriteFailed indicates the record store rejected a write.
	ErrWriteFailed = errors.New("write failed")

	// ErrReindexFailed indicates dense-index compaction could not complete.
	ErrReindexFailed = errors.New("reindex failed")
)
