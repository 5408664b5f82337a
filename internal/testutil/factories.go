package testutil

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sleepingstar/stockfolio/internal/model"
	"github.com/sleepingstar/stockfolio/internal/repository"
)

// ledgerSeq drives the default created timestamps so that every row built in
// a test is strictly later than the row built before it.
var ledgerSeq int64

var ledgerBase = time.Date(2024, time.January, 2, 9, 30, 0, 0, time.UTC)

// NextLedgerTime returns a formatted timestamp one minute later than the
// previous call. Pass an explicit value to WithCreated when a test needs full
// control over ordering.
func NextLedgerTime() string {
	n := atomic.AddInt64(&ledgerSeq, 1)
	return model.FormatLedgerTime(ledgerBase.Add(time.Duration(n) * time.Minute))
}

// LedgerTimeAt returns a formatted timestamp offset minutes after a fixed
// base. Useful for tests that assert creation-time ordering directly.
func LedgerTimeAt(minutes int) string {
	return model.FormatLedgerTime(ledgerBase.Add(time.Duration(minutes) * time.Minute))
}

// allocateKey draws a surrogate key through the same counter the services
// use, so rows built here never collide with rows created through a service.
func allocateKey(t *testing.T, db *sql.DB, scope string) int64 {
	t.Helper()

	key, err := repository.NewKeyAllocator(db).Allocate(context.Background(), scope)
	if err != nil {
		t.Fatalf("Failed to allocate %s key: %v", scope, err)
	}
	return key
}

// ensureUser inserts the user row if it does not exist yet.
func ensureUser(t *testing.T, db *sql.DB, userID string) {
	t.Helper()

	_, err := db.Exec(
		"INSERT INTO users (user_id, created) VALUES (?, ?) ON CONFLICT (user_id) DO NOTHING",
		userID, NextLedgerTime(),
	)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
}

// ensureStock returns the stock_key for (portfolioKey, ticker), creating the
// row when absent.
func ensureStock(t *testing.T, db *sql.DB, portfolioKey int64, ticker string) int64 {
	t.Helper()

	var stockKey int64
	err := db.QueryRow(
		"SELECT stock_key FROM stocks WHERE portfolio_key = ? AND ticker = ?",
		portfolioKey, ticker,
	).Scan(&stockKey)
	if err == nil {
		return stockKey
	}
	if err != sql.ErrNoRows {
		t.Fatalf("Failed to look up test stock: %v", err)
	}

	stockKey = allocateKey(t, db, repository.ScopeStock)
	_, err = db.Exec(
		"INSERT INTO stocks (stock_key, portfolio_key, ticker, created) VALUES (?, ?, ?, ?)",
		stockKey, portfolioKey, ticker, NextLedgerTime(),
	)
	if err != nil {
		t.Fatalf("Failed to create test stock: %v", err)
	}
	return stockKey
}

// scopedCount returns the number of rows matching the query, used to derive
// the next dense index for a scope.
func scopedCount(t *testing.T, db *sql.DB, query string, args ...any) int64 {
	t.Helper()

	var n int64
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

// UserBuilder provides a fluent interface for creating test users.
type UserBuilder struct {
	UserID  string
	Created string
}

// NewUser creates a UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	return &UserBuilder{
		UserID:  MakeUserID(),
		Created: NextLedgerTime(),
	}
}

// WithUserID sets a custom user ID.
func (b *UserBuilder) WithUserID(id string) *UserBuilder {
	b.UserID = id
	return b
}

// WithCreated sets a custom creation timestamp.
func (b *UserBuilder) WithCreated(created string) *UserBuilder {
	b.Created = created
	return b
}

// Build creates the user in the database and returns it.
func (b *UserBuilder) Build(t *testing.T, db *sql.DB) model.User {
	t.Helper()

	_, err := db.Exec(
		"INSERT INTO users (user_id, created) VALUES (?, ?)",
		b.UserID, b.Created,
	)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return model.User{UserID: b.UserID, Created: b.Created}
}

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio(userID).Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio(userID).
//	    WithName("Custom Portfolio").
//	    WithCreated(testutil.LedgerTimeAt(5)).
//	    Build(t, db)
type PortfolioBuilder struct {
	UserID      string
	PortfolioID int64
	Name        string
	Description string
	Created     string

	idSet bool
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults. The dense
// index defaults to the user's current portfolio count.
func NewPortfolio(userID string) *PortfolioBuilder {
	return &PortfolioBuilder{
		UserID:      userID,
		Name:        MakePortfolioName("Test Portfolio"),
		Description: "Test description",
		Created:     NextLedgerTime(),
	}
}

// WithPortfolioID sets an explicit dense index instead of the derived count.
func (b *PortfolioBuilder) WithPortfolioID(id int64) *PortfolioBuilder {
	b.PortfolioID = id
	b.idSet = true
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithDescription sets a custom description.
func (b *PortfolioBuilder) WithDescription(desc string) *PortfolioBuilder {
	b.Description = desc
	return b
}

// WithCreated sets a custom creation timestamp.
func (b *PortfolioBuilder) WithCreated(created string) *PortfolioBuilder {
	b.Created = created
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	ensureUser(t, db, b.UserID)

	if !b.idSet {
		b.PortfolioID = scopedCount(t, db,
			"SELECT COUNT(*) FROM portfolios WHERE user_id = ?", b.UserID)
	}
	key := allocateKey(t, db, repository.ScopePortfolio)

	_, err := db.Exec(`
		INSERT INTO portfolios (portfolio_key, user_id, portfolio_id, name, description, created)
		VALUES (?, ?, ?, ?, ?, ?)
	`, key, b.UserID, b.PortfolioID, b.Name, b.Description, b.Created)
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return model.Portfolio{
		PortfolioKey: key,
		UserID:       b.UserID,
		PortfolioID:  b.PortfolioID,
		Name:         b.Name,
		Description:  b.Description,
		Created:      b.Created,
	}
}

// OrderBuilder provides a fluent interface for creating test orders under an
// existing portfolio. The stock row is created on first use, matching the
// service behavior.
type OrderBuilder struct {
	Portfolio model.Portfolio
	Ticker    string
	OrderID   int64
	Price     float64
	Quantity  float64
	Status    model.OrderStatus
	Type      model.OrderType
	Created   string

	idSet bool
}

// NewOrder creates an OrderBuilder with sensible defaults: a Filled Buy of
// 10 shares at 100.
func NewOrder(portfolio model.Portfolio, ticker string) *OrderBuilder {
	return &OrderBuilder{
		Portfolio: portfolio,
		Ticker:    ticker,
		Price:     100,
		Quantity:  10,
		Status:    model.OrderStatusFilled,
		Type:      model.OrderTypeBuy,
		Created:   NextLedgerTime(),
	}
}

// WithOrderID sets an explicit dense index instead of the derived count.
func (b *OrderBuilder) WithOrderID(id int64) *OrderBuilder {
	b.OrderID = id
	b.idSet = true
	return b
}

// WithPrice sets a custom price.
func (b *OrderBuilder) WithPrice(price float64) *OrderBuilder {
	b.Price = price
	return b
}

// WithQuantity sets a custom quantity.
func (b *OrderBuilder) WithQuantity(qty float64) *OrderBuilder {
	b.Quantity = qty
	return b
}

// WithStatus sets a custom status.
func (b *OrderBuilder) WithStatus(status model.OrderStatus) *OrderBuilder {
	b.Status = status
	return b
}

// WithType sets a custom order type.
func (b *OrderBuilder) WithType(orderType model.OrderType) *OrderBuilder {
	b.Type = orderType
	return b
}

// Sell marks the order as a sell.
func (b *OrderBuilder) Sell() *OrderBuilder {
	b.Type = model.OrderTypeSell
	return b
}

// Pending marks the order as pending.
func (b *OrderBuilder) Pending() *OrderBuilder {
	b.Status = model.OrderStatusPending
	return b
}

// Cancelled marks the order as cancelled.
func (b *OrderBuilder) Cancelled() *OrderBuilder {
	b.Status = model.OrderStatusCancelled
	return b
}

// WithCreated sets a custom creation timestamp.
func (b *OrderBuilder) WithCreated(created string) *OrderBuilder {
	b.Created = created
	return b
}

// Build creates the order in the database and returns it.
func (b *OrderBuilder) Build(t *testing.T, db *sql.DB) model.Order {
	t.Helper()

	stockKey := ensureStock(t, db, b.Portfolio.PortfolioKey, b.Ticker)

	if !b.idSet {
		b.OrderID = scopedCount(t, db,
			"SELECT COUNT(*) FROM orders WHERE portfolio_key = ? AND ticker = ?",
			b.Portfolio.PortfolioKey, b.Ticker)
	}
	key := allocateKey(t, db, repository.ScopeOrder)

	_, err := db.Exec(`
		INSERT INTO orders (order_key, stock_key, portfolio_key, ticker, order_id, price, quantity, status, type, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, key, stockKey, b.Portfolio.PortfolioKey, b.Ticker, b.OrderID,
		b.Price, b.Quantity, string(b.Status), string(b.Type), b.Created)
	if err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}

	return model.Order{
		OrderKey:     key,
		StockKey:     stockKey,
		PortfolioKey: b.Portfolio.PortfolioKey,
		Ticker:       b.Ticker,
		OrderID:      b.OrderID,
		Price:        b.Price,
		Quantity:     b.Quantity,
		Status:       b.Status,
		Type:         b.Type,
		Created:      b.Created,
	}
}

// DividendBuilder provides a fluent interface for creating test dividends.
type DividendBuilder struct {
	Portfolio  model.Portfolio
	Ticker     string
	DividendID int64
	Amount     float64
	Created    string

	idSet bool
}

// NewDividend creates a DividendBuilder with sensible defaults.
func NewDividend(portfolio model.Portfolio, ticker string) *DividendBuilder {
	return &DividendBuilder{
		Portfolio: portfolio,
		Ticker:    ticker,
		Amount:    25,
		Created:   NextLedgerTime(),
	}
}

// WithDividendID sets an explicit dense index instead of the derived count.
func (b *DividendBuilder) WithDividendID(id int64) *DividendBuilder {
	b.DividendID = id
	b.idSet = true
	return b
}

// WithAmount sets a custom amount.
func (b *DividendBuilder) WithAmount(amount float64) *DividendBuilder {
	b.Amount = amount
	return b
}

// WithCreated sets a custom creation timestamp.
func (b *DividendBuilder) WithCreated(created string) *DividendBuilder {
	b.Created = created
	return b
}

// Build creates the dividend in the database and returns it.
func (b *DividendBuilder) Build(t *testing.T, db *sql.DB) model.Dividend {
	t.Helper()

	ensureStock(t, db, b.Portfolio.PortfolioKey, b.Ticker)

	if !b.idSet {
		b.DividendID = scopedCount(t, db,
			"SELECT COUNT(*) FROM dividends WHERE portfolio_key = ?",
			b.Portfolio.PortfolioKey)
	}
	key := allocateKey(t, db, repository.ScopeDividend)

	_, err := db.Exec(`
		INSERT INTO dividends (dividend_key, portfolio_key, ticker, dividend_id, amount, created)
		VALUES (?, ?, ?, ?, ?, ?)
	`, key, b.Portfolio.PortfolioKey, b.Ticker, b.DividendID, b.Amount, b.Created)
	if err != nil {
		t.Fatalf("Failed to create test dividend: %v", err)
	}

	return model.Dividend{
		DividendKey:  key,
		PortfolioKey: b.Portfolio.PortfolioKey,
		Ticker:       b.Ticker,
		DividendID:   b.DividendID,
		Amount:       b.Amount,
		Created:      b.Created,
	}
}

// OptionBuilder provides a fluent interface for creating test options.
type OptionBuilder struct {
	Portfolio model.Portfolio
	Ticker    string
	OptionID  int64
	Type      model.OptionType
	Strike    float64
	Premium   float64
	Quantity  float64
	Expires   string
	Status    model.OptionStatus
	GainLoss  *float64
	Created   string

	idSet bool
}

// NewOption creates an OptionBuilder with sensible defaults: a Filled Call.
func NewOption(portfolio model.Portfolio, ticker string) *OptionBuilder {
	return &OptionBuilder{
		Portfolio: portfolio,
		Ticker:    ticker,
		Type:      model.OptionTypeCall,
		Strike:    110,
		Premium:   2.5,
		Quantity:  1,
		Expires:   LedgerTimeAt(60 * 24 * 30),
		Status:    model.OptionStatusFilled,
		Created:   NextLedgerTime(),
	}
}

// WithOptionID sets an explicit dense index instead of the derived count.
func (b *OptionBuilder) WithOptionID(id int64) *OptionBuilder {
	b.OptionID = id
	b.idSet = true
	return b
}

// Put marks the option as a put.
func (b *OptionBuilder) Put() *OptionBuilder {
	b.Type = model.OptionTypePut
	return b
}

// WithStrike sets a custom strike price.
func (b *OptionBuilder) WithStrike(strike float64) *OptionBuilder {
	b.Strike = strike
	return b
}

// WithPremium sets a custom premium.
func (b *OptionBuilder) WithPremium(premium float64) *OptionBuilder {
	b.Premium = premium
	return b
}

// WithQuantity sets a custom quantity.
func (b *OptionBuilder) WithQuantity(qty float64) *OptionBuilder {
	b.Quantity = qty
	return b
}

// WithStatus sets a custom status.
func (b *OptionBuilder) WithStatus(status model.OptionStatus) *OptionBuilder {
	b.Status = status
	return b
}

// WithCreated sets a custom creation timestamp.
func (b *OptionBuilder) WithCreated(created string) *OptionBuilder {
	b.Created = created
	return b
}

// Build creates the option in the database and returns it.
func (b *OptionBuilder) Build(t *testing.T, db *sql.DB) model.Option {
	t.Helper()

	ensureStock(t, db, b.Portfolio.PortfolioKey, b.Ticker)

	if !b.idSet {
		b.OptionID = scopedCount(t, db,
			"SELECT COUNT(*) FROM options WHERE portfolio_key = ?",
			b.Portfolio.PortfolioKey)
	}
	key := allocateKey(t, db, repository.ScopeOption)

	_, err := db.Exec(`
		INSERT INTO options (option_key, portfolio_key, ticker, option_id, type, strike, premium, quantity, expires, status, gain_loss, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, key, b.Portfolio.PortfolioKey, b.Ticker, b.OptionID, string(b.Type),
		b.Strike, b.Premium, b.Quantity, b.Expires, string(b.Status), b.GainLoss, b.Created)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return model.Option{
		OptionKey:    key,
		PortfolioKey: b.Portfolio.PortfolioKey,
		Ticker:       b.Ticker,
		OptionID:     b.OptionID,
		Type:         b.Type,
		Strike:       b.Strike,
		Premium:      b.Premium,
		Quantity:     b.Quantity,
		Expires:      b.Expires,
		Status:       b.Status,
		GainLoss:     b.GainLoss,
		Created:      b.Created,
	}
}

// WatchlistBuilder provides a fluent interface for creating test watchlists.
type WatchlistBuilder struct {
	UserID      string
	WatchlistID int64
	Name        string
	Description string
	Created     string
	Tickers     []string

	idSet bool
}

// NewWatchlist creates a WatchlistBuilder with sensible defaults.
func NewWatchlist(userID string) *WatchlistBuilder {
	return &WatchlistBuilder{
		UserID:      userID,
		Name:        MakeWatchlistName("Test Watchlist"),
		Description: "Test description",
		Created:     NextLedgerTime(),
	}
}

// WithWatchlistID sets an explicit dense index instead of the derived count.
func (b *WatchlistBuilder) WithWatchlistID(id int64) *WatchlistBuilder {
	b.WatchlistID = id
	b.idSet = true
	return b
}

// WithName sets a custom name.
func (b *WatchlistBuilder) WithName(name string) *WatchlistBuilder {
	b.Name = name
	return b
}

// WithDescription sets a custom description.
func (b *WatchlistBuilder) WithDescription(desc string) *WatchlistBuilder {
	b.Description = desc
	return b
}

// WithCreated sets a custom creation timestamp.
func (b *WatchlistBuilder) WithCreated(created string) *WatchlistBuilder {
	b.Created = created
	return b
}

// Watching adds tickers to the membership list.
func (b *WatchlistBuilder) Watching(tickers ...string) *WatchlistBuilder {
	b.Tickers = append(b.Tickers, tickers...)
	return b
}

// Build creates the watchlist and its ticker memberships in the database.
func (b *WatchlistBuilder) Build(t *testing.T, db *sql.DB) model.Watchlist {
	t.Helper()

	ensureUser(t, db, b.UserID)

	if !b.idSet {
		b.WatchlistID = scopedCount(t, db,
			"SELECT COUNT(*) FROM watchlists WHERE user_id = ?", b.UserID)
	}
	key := allocateKey(t, db, repository.ScopeWatchlist)

	_, err := db.Exec(`
		INSERT INTO watchlists (watchlist_key, user_id, watchlist_id, name, description, created)
		VALUES (?, ?, ?, ?, ?, ?)
	`, key, b.UserID, b.WatchlistID, b.Name, b.Description, b.Created)
	if err != nil {
		t.Fatalf("Failed to create test watchlist: %v", err)
	}

	for _, ticker := range b.Tickers {
		_, err := db.Exec(
			"INSERT INTO watching (watchlist_key, ticker, created) VALUES (?, ?, ?)",
			key, ticker, NextLedgerTime(),
		)
		if err != nil {
			t.Fatalf("Failed to watch test ticker: %v", err)
		}
	}

	return model.Watchlist{
		WatchlistKey: key,
		UserID:       b.UserID,
		WatchlistID:  b.WatchlistID,
		Name:         b.Name,
		Description:  b.Description,
		Created:      b.Created,
	}
}
