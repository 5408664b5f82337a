package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/model"
)

// DividendRepository provides data access methods for the dividends table.
// The dense dividend_id is scoped per portfolio_key and spans all tickers.
type DividendRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewDividendRepository creates a new DividendRepository with the provided database connection.
func NewDividendRepository(db *sql.DB) *DividendRepository {
	return &DividendRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *DividendRepository) WithTx(tx *sql.Tx) *DividendRepository {
	return &DividendRepository{db: r.db, tx: tx}
}

func (r *DividendRepository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const dividendColumns = "dividend_key, portfolio_key, ticker, dividend_id, amount, created"

func scanDividend(row interface{ Scan(...any) error }) (model.Dividend, error) {
	var d model.Dividend
	err := row.Scan(&d.DividendKey, &d.PortfolioKey, &d.Ticker, &d.DividendID, &d.Amount, &d.Created)
	return d, err
}

// Insert stores a new dividend row with an already-allocated surrogate key.
func (r *DividendRepository) Insert(ctx context.Context, d *model.Dividend) error {
	_, err := r.q().ExecContext(ctx,
		"INSERT INTO dividends (dividend_key, portfolio_key, ticker, dividend_id, amount, created) VALUES (?, ?, ?, ?, ?, ?)",
		d.DividendKey, d.PortfolioKey, d.Ticker, d.DividendID, d.Amount, d.Created,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert dividend: %v", apperrors.ErrWriteFailed, err)
	}
	return nil
}

// Get retrieves a dividend by its dense ID within the portfolio scope.
func (r *DividendRepository) Get(portfolioKey, dividendID int64) (model.Dividend, error) {
	d, err := scanDividend(r.q().QueryRow(
		"SELECT "+dividendColumns+" FROM dividends WHERE portfolio_key = ? AND dividend_id = ?",
		portfolioKey, dividendID,
	))
	if err == sql.ErrNoRows {
		return model.Dividend{}, apperrors.ErrDividendNotFound
	}
	if err != nil {
		return model.Dividend{}, fmt.Errorf("failed to query dividend: %w", err)
	}

	return d, nil
}

// ListByPortfolio retrieves all dividends in a portfolio ordered by dense ID.
func (r *DividendRepository) ListByPortfolio(portfolioKey int64) ([]model.Dividend, error) {
	rows, err := r.q().Query(
		"SELECT "+dividendColumns+" FROM dividends WHERE portfolio_key = ? ORDER BY dividend_id",
		portfolioKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividends table: %w", err)
	}
	return collectDividends(rows)
}

// ListByTicker retrieves all dividends recorded for one ticker in a portfolio.
func (r *DividendRepository) ListByTicker(portfolioKey int64, ticker string) ([]model.Dividend, error) {
	rows, err := r.q().Query(
		"SELECT "+dividendColumns+" FROM dividends WHERE portfolio_key = ? AND ticker = ? ORDER BY dividend_id",
		portfolioKey, ticker,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividends table: %w", err)
	}
	return collectDividends(rows)
}

func collectDividends(rows *sql.Rows) ([]model.Dividend, error) {
	defer rows.Close()

	dividends := []model.Dividend{}
	for rows.Next() {
		d, err := scanDividend(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dividend row: %w", err)
		}
		dividends = append(dividends, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividends table: %w", err)
	}

	return dividends, nil
}

// CountByPortfolio returns the number of dividends in a portfolio. The next
// dense dividend ID for a create equals this count.
func (r *DividendRepository) CountByPortfolio(portfolioKey int64) (int64, error) {
	var count int64

	err := r.q().QueryRow(
		"SELECT COUNT(*) FROM dividends WHERE portfolio_key = ?",
		portfolioKey,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count dividends: %w", err)
	}

	return count, nil
}

// CountByTicker returns the number of dividends for one ticker in a portfolio.
func (r *DividendRepository) CountByTicker(portfolioKey int64, ticker string) (int64, error) {
	var count int64

	err := r.q().QueryRow(
		"SELECT COUNT(*) FROM dividends WHERE portfolio_key = ? AND ticker = ?",
		portfolioKey, ticker,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count dividends: %w", err)
	}

	return count, nil
}

// Delete removes a dividend row by surrogate key.
func (r *DividendRepository) Delete(ctx context.Context, dividendKey int64) error {
	_, err := r.q().ExecContext(ctx,
		"DELETE FROM dividends WHERE dividend_key = ?",
		dividendKey,
	)
	if err != nil {
		return fmt.Errorf("failed to delete dividend: %w", err)
	}
	return nil
}

// Reindex renumbers the portfolio's remaining dividends to a contiguous
// 0-based sequence ranked by creation time, surrogate key breaking ties, in
// one statement. An empty scope is a no-op. Returns the scope size.
func (r *DividendRepository) Reindex(ctx context.Context, portfolioKey int64) (int, error) {
	rows, err := r.q().QueryContext(ctx,
		"SELECT dividend_key, created FROM dividends WHERE portfolio_key = ?",
		portfolioKey,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to query dividend scope: %w", err)
	}

	scope, err := collectKeyedRows(rows)
	if err != nil {
		return 0, err
	}
	if len(scope) == 0 {
		return 0, nil
	}

	rankByCreated(scope)
	caseSQL, args := reindexCase("dividend_key", scope)
	args = append(args, portfolioKey)

	//#nosec G202 -- the CASE fragment is built from placeholders only
	_, err = r.q().ExecContext(ctx,
		"UPDATE dividends SET dividend_id = "+caseSQL+" WHERE portfolio_key = ?",
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reindex dividends: %w", err)
	}

	return len(scope), nil
}
