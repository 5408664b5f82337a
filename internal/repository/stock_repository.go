package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/model"
)

// StockRepository provides data access methods for the stocks table. Stocks
// have no dense index of their own; tickers are their user-visible handle.
type StockRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewStockRepository creates a new StockRepository with the provided database connection.
func NewStockRepository(db *sql.DB) *StockRepository {
	return &StockRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *StockRepository) WithTx(tx *sql.Tx) *StockRepository {
	return &StockRepository{db: r.db, tx: tx}
}

func (r *StockRepository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert stores a new stock row with an already-allocated surrogate key.
func (r *StockRepository) Insert(ctx context.Context, s *model.Stock) error {
	_, err := r.q().ExecContext(ctx,
		"INSERT INTO stocks (stock_key, portfolio_key, ticker, created) VALUES (?, ?, ?, ?)",
		s.StockKey, s.PortfolioKey, s.Ticker, s.Created,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert stock: %v", apperrors.ErrWriteFailed, err)
	}
	return nil
}

// Get retrieves the stock row for a (portfolio, ticker) pair.
func (r *StockRepository) Get(portfolioKey int64, ticker string) (model.Stock, error) {
	var s model.Stock

	err := r.q().QueryRow(
		"SELECT stock_key, portfolio_key, ticker, created FROM stocks WHERE portfolio_key = ? AND ticker = ?",
		portfolioKey, ticker,
	).Scan(&s.StockKey, &s.PortfolioKey, &s.Ticker, &s.Created)
	if err == sql.ErrNoRows {
		return model.Stock{}, apperrors.ErrStockNotFound
	}
	if err != nil {
		return model.Stock{}, fmt.Errorf("failed to query stock: %w", err)
	}

	return s, nil
}

// Exists reports whether the ticker is held in the portfolio.
func (r *StockRepository) Exists(portfolioKey int64, ticker string) (bool, error) {
	var one int

	err := r.q().QueryRow(
		"SELECT 1 FROM stocks WHERE portfolio_key = ? AND ticker = ?",
		portfolioKey, ticker,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query stock: %w", err)
	}

	return true, nil
}

// ListByPortfolio retrieves all stocks under a portfolio ordered by creation.
func (r *StockRepository) ListByPortfolio(portfolioKey int64) ([]model.Stock, error) {
	rows, err := r.q().Query(
		"SELECT stock_key, portfolio_key, ticker, created FROM stocks WHERE portfolio_key = ? ORDER BY stock_key",
		portfolioKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks table: %w", err)
	}
	defer rows.Close()

	stocks := []model.Stock{}
	for rows.Next() {
		var s model.Stock
		if err := rows.Scan(&s.StockKey, &s.PortfolioKey, &s.Ticker, &s.Created); err != nil {
			return nil, fmt.Errorf("failed to scan stock row: %w", err)
		}
		stocks = append(stocks, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stocks table: %w", err)
	}

	return stocks, nil
}

// Tickers retrieves all tickers under a portfolio ordered by creation.
func (r *StockRepository) Tickers(portfolioKey int64) ([]string, error) {
	rows, err := r.q().Query(
		"SELECT ticker FROM stocks WHERE portfolio_key = ? ORDER BY stock_key",
		portfolioKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}
	defer rows.Close()

	tickers := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickers: %w", err)
	}

	return tickers, nil
}

// CountByPortfolio returns the number of stocks held in a portfolio.
func (r *StockRepository) CountByPortfolio(portfolioKey int64) (int64, error) {
	var count int64

	err := r.q().QueryRow(
		"SELECT COUNT(*) FROM stocks WHERE portfolio_key = ?",
		portfolioKey,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count stocks: %w", err)
	}

	return count, nil
}

// Delete removes a stock row. Foreign keys cascade the stock's orders; the
// portfolio's dividends and options for the ticker are untouched, as they
// reference the portfolio directly.
func (r *StockRepository) Delete(ctx context.Context, stockKey int64) error {
	_, err := r.q().ExecContext(ctx,
		"DELETE FROM stocks WHERE stock_key = ?",
		stockKey,
	)
	if err != nil {
		return fmt.Errorf("failed to delete stock: %w", err)
	}
	return nil
}
