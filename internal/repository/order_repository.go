package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/model"
)

// OrderRepository provides data access methods for the orders table.
// The dense order_id is scoped per (portfolio_key, ticker); reindexing and
// counting always operate on that pair.
type OrderRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewOrderRepository creates a new OrderRepository with the provided database connection.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *OrderRepository) WithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{db: r.db, tx: tx}
}

func (r *OrderRepository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const orderColumns = "order_key, stock_key, portfolio_key, ticker, order_id, price, quantity, status, type, created"

func scanOrder(row interface{ Scan(...any) error }) (model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.OrderKey,
		&o.StockKey,
		&o.PortfolioKey,
		&o.Ticker,
		&o.OrderID,
		&o.Price,
		&o.Quantity,
		&o.Status,
		&o.Type,
		&o.Created,
	)
	return o, err
}

// Insert stores a new order row with an already-allocated surrogate key.
func (r *OrderRepository) Insert(ctx context.Context, o *model.Order) error {
	_, err := r.q().ExecContext(ctx,
		"INSERT INTO orders (order_key, stock_key, portfolio_key, ticker, order_id, price, quantity, status, type, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		o.OrderKey, o.StockKey, o.PortfolioKey, o.Ticker, o.OrderID, o.Price, o.Quantity, o.Status, o.Type, o.Created,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert order: %v", apperrors.ErrWriteFailed, err)
	}
	return nil
}

// Get retrieves an order by its dense ID within the (portfolio, ticker) scope.
func (r *OrderRepository) Get(portfolioKey int64, ticker string, orderID int64) (model.Order, error) {
	o, err := scanOrder(r.q().QueryRow(
		"SELECT "+orderColumns+" FROM orders WHERE portfolio_key = ? AND ticker = ? AND order_id = ?",
		portfolioKey, ticker, orderID,
	))
	if err == sql.ErrNoRows {
		return model.Order{}, apperrors.ErrOrderNotFound
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("failed to query order: %w", err)
	}

	return o, nil
}

// ListByTicker retrieves all orders for a (portfolio, ticker) pair ordered by
// dense ID.
func (r *OrderRepository) ListByTicker(portfolioKey int64, ticker string) ([]model.Order, error) {
	rows, err := r.q().Query(
		"SELECT "+orderColumns+" FROM orders WHERE portfolio_key = ? AND ticker = ? ORDER BY order_id",
		portfolioKey, ticker,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders table: %w", err)
	}
	return collectOrders(rows)
}

// ListByPortfolio retrieves every order under a portfolio across all tickers.
func (r *OrderRepository) ListByPortfolio(portfolioKey int64) ([]model.Order, error) {
	rows, err := r.q().Query(
		"SELECT "+orderColumns+" FROM orders WHERE portfolio_key = ? ORDER BY ticker, order_id",
		portfolioKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders table: %w", err)
	}
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]model.Order, error) {
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders table: %w", err)
	}

	return orders, nil
}

// CountByTicker returns the number of orders in a (portfolio, ticker) scope.
// The next dense order ID for a create equals this count.
func (r *OrderRepository) CountByTicker(portfolioKey int64, ticker string) (int64, error) {
	var count int64

	err := r.q().QueryRow(
		"SELECT COUNT(*) FROM orders WHERE portfolio_key = ? AND ticker = ?",
		portfolioKey, ticker,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

// Update rewrites an order's mutable fields, addressed by surrogate key so
// the dense ID never moves. Callers merge unchanged fields beforehand.
func (r *OrderRepository) Update(ctx context.Context, o *model.Order) error {
	_, err := r.q().ExecContext(ctx,
		"UPDATE orders SET price = ?, quantity = ?, status = ?, type = ?, created = ? WHERE order_key = ?",
		o.Price, o.Quantity, o.Status, o.Type, o.Created, o.OrderKey,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

// Delete removes an order row by surrogate key.
func (r *OrderRepository) Delete(ctx context.Context, orderKey int64) error {
	_, err := r.q().ExecContext(ctx,
		"DELETE FROM orders WHERE order_key = ?",
		orderKey,
	)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// TickersWithStatus lists the distinct tickers in a portfolio that hold at
// least one order with the given status. Used to decide which scopes a purge
// must reindex.
func (r *OrderRepository) TickersWithStatus(portfolioKey int64, status model.OrderStatus) ([]string, error) {
	rows, err := r.q().Query(
		"SELECT DISTINCT ticker FROM orders WHERE portfolio_key = ? AND status = ?",
		portfolioKey, status,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query purge scopes: %w", err)
	}
	defer rows.Close()

	tickers := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan purge scope: %w", err)
		}
		tickers = append(tickers, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purge scopes: %w", err)
	}

	return tickers, nil
}

// PurgeByStatus bulk-deletes all orders matching status in the scope. Pass an
// empty ticker to purge across every ticker in the portfolio. Returns the
// number of rows deleted.
func (r *OrderRepository) PurgeByStatus(ctx context.Context, portfolioKey int64, ticker string, status model.OrderStatus) (int64, error) {
	query := "DELETE FROM orders WHERE portfolio_key = ? AND status = ?"
	args := []any{portfolioKey, status}

	if ticker != "" {
		query += " AND ticker = ?"
		args = append(args, ticker)
	}

	res, err := r.q().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge orders: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read purge result: %w", err)
	}

	return deleted, nil
}

// Reindex renumbers the (portfolio, ticker) scope's orders to a contiguous
// 0-based sequence ranked by creation time, surrogate key breaking ties, in
// one statement. An empty scope is a no-op. Returns the scope size.
func (r *OrderRepository) Reindex(ctx context.Context, portfolioKey int64, ticker string) (int, error) {
	rows, err := r.q().QueryContext(ctx,
		"SELECT order_key, created FROM orders WHERE portfolio_key = ? AND ticker = ?",
		portfolioKey, ticker,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to query order scope: %w", err)
	}

	scope, err := collectKeyedRows(rows)
	if err != nil {
		return 0, err
	}
	if len(scope) == 0 {
		return 0, nil
	}

	rankByCreated(scope)
	caseSQL, args := reindexCase("order_key", scope)
	args = append(args, portfolioKey, ticker)

	//#nosec G202 -- the CASE fragment is built from placeholders only
	_, err = r.q().ExecContext(ctx,
		"UPDATE orders SET order_id = "+caseSQL+" WHERE portfolio_key = ? AND ticker = ?",
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reindex orders: %w", err)
	}

	return len(scope), nil
}
