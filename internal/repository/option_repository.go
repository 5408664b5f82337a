package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/model"
)

// OptionRepository provides data access methods for the options table.
// The dense option_id is scoped per portfolio_key and spans all tickers,
// like dividends and unlike orders.
type OptionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewOptionRepository creates a new OptionRepository with the provided database connection.
func NewOptionRepository(db *sql.DB) *OptionRepository {
	return &OptionRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *OptionRepository) WithTx(tx *sql.Tx) *OptionRepository {
	return &OptionRepository{db: r.db, tx: tx}
}

func (r *OptionRepository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const optionColumns = "option_key, portfolio_key, ticker, option_id, type, strike, premium, quantity, expires, status, gain_loss, created"

func scanOption(row interface{ Scan(...any) error }) (model.Option, error) {
	var o model.Option
	var gainLoss sql.NullFloat64

	err := row.Scan(
		&o.OptionKey,
		&o.PortfolioKey,
		&o.Ticker,
		&o.OptionID,
		&o.Type,
		&o.Strike,
		&o.Premium,
		&o.Quantity,
		&o.Expires,
		&o.Status,
		&gainLoss,
		&o.Created,
	)
	if gainLoss.Valid {
		o.GainLoss = &gainLoss.Float64
	}
	return o, err
}

// Insert stores a new option row with an already-allocated surrogate key.
func (r *OptionRepository) Insert(ctx context.Context, o *model.Option) error {
	var gainLoss any
	if o.GainLoss != nil {
		gainLoss = *o.GainLoss
	}

	_, err := r.q().ExecContext(ctx,
		"INSERT INTO options (option_key, portfolio_key, ticker, option_id, type, strike, premium, quantity, expires, status, gain_loss, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		o.OptionKey, o.PortfolioKey, o.Ticker, o.OptionID, o.Type, o.Strike, o.Premium, o.Quantity, o.Expires, o.Status, gainLoss, o.Created,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert option: %v", apperrors.ErrWriteFailed, err)
	}
	return nil
}

// Get retrieves an option by its dense ID within the portfolio scope.
func (r *OptionRepository) Get(portfolioKey, optionID int64) (model.Option, error) {
	o, err := scanOption(r.q().QueryRow(
		"SELECT "+optionColumns+" FROM options WHERE portfolio_key = ? AND option_id = ?",
		portfolioKey, optionID,
	))
	if err == sql.ErrNoRows {
		return model.Option{}, apperrors.ErrOptionNotFound
	}
	if err != nil {
		return model.Option{}, fmt.Errorf("failed to query option: %w", err)
	}

	return o, nil
}

// ListByPortfolio retrieves all options in a portfolio ordered by dense ID.
func (r *OptionRepository) ListByPortfolio(portfolioKey int64) ([]model.Option, error) {
	rows, err := r.q().Query(
		"SELECT "+optionColumns+" FROM options WHERE portfolio_key = ? ORDER BY option_id",
		portfolioKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query options table: %w", err)
	}
	return collectOptions(rows)
}

// ListByTicker retrieves all options for one ticker in a portfolio.
func (r *OptionRepository) ListByTicker(portfolioKey int64, ticker string) ([]model.Option, error) {
	rows, err := r.q().Query(
		"SELECT "+optionColumns+" FROM options WHERE portfolio_key = ? AND ticker = ? ORDER BY option_id",
		portfolioKey, ticker,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query options table: %w", err)
	}
	return collectOptions(rows)
}

func collectOptions(rows *sql.Rows) ([]model.Option, error) {
	defer rows.Close()

	options := []model.Option{}
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan option row: %w", err)
		}
		options = append(options, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options table: %w", err)
	}

	return options, nil
}

// CountByPortfolio returns the number of options in a portfolio. The next
// dense option ID for a create equals this count.
func (r *OptionRepository) CountByPortfolio(portfolioKey int64) (int64, error) {
	var count int64

	err := r.q().QueryRow(
		"SELECT COUNT(*) FROM options WHERE portfolio_key = ?",
		portfolioKey,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count options: %w", err)
	}

	return count, nil
}

// CountByTicker returns the number of options for one ticker in a portfolio.
func (r *OptionRepository) CountByTicker(portfolioKey int64, ticker string) (int64, error) {
	var count int64

	err := r.q().QueryRow(
		"SELECT COUNT(*) FROM options WHERE portfolio_key = ? AND ticker = ?",
		portfolioKey, ticker,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count options: %w", err)
	}

	return count, nil
}

// CountByType returns the number of Call or Put contracts for one ticker.
func (r *OptionRepository) CountByType(portfolioKey int64, ticker string, optionType model.OptionType) (int64, error) {
	var count int64

	err := r.q().QueryRow(
		"SELECT COUNT(*) FROM options WHERE portfolio_key = ? AND ticker = ? AND type = ?",
		portfolioKey, ticker, optionType,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count options by type: %w", err)
	}

	return count, nil
}

// Update rewrites an option's mutable fields, addressed by surrogate key so
// the dense ID never moves. Callers merge unchanged fields beforehand.
func (r *OptionRepository) Update(ctx context.Context, o *model.Option) error {
	var gainLoss any
	if o.GainLoss != nil {
		gainLoss = *o.GainLoss
	}

	_, err := r.q().ExecContext(ctx,
		"UPDATE options SET type = ?, strike = ?, premium = ?, quantity = ?, expires = ?, status = ?, gain_loss = ? WHERE option_key = ?",
		o.Type, o.Strike, o.Premium, o.Quantity, o.Expires, o.Status, gainLoss, o.OptionKey,
	)
	if err != nil {
		return fmt.Errorf("failed to update option: %w", err)
	}
	return nil
}

// Settle moves an option into a terminal status and records its gain/loss.
func (r *OptionRepository) Settle(ctx context.Context, optionKey int64, status model.OptionStatus, gainLoss float64) error {
	_, err := r.q().ExecContext(ctx,
		"UPDATE options SET status = ?, gain_loss = ? WHERE option_key = ?",
		status, gainLoss, optionKey,
	)
	if err != nil {
		return fmt.Errorf("failed to settle option: %w", err)
	}
	return nil
}

// Delete removes an option row by surrogate key.
func (r *OptionRepository) Delete(ctx context.Context, optionKey int64) error {
	_, err := r.q().ExecContext(ctx,
		"DELETE FROM options WHERE option_key = ?",
		optionKey,
	)
	if err != nil {
		return fmt.Errorf("failed to delete option: %w", err)
	}
	return nil
}

// Reindex renumbers the portfolio's remaining options to a contiguous
// 0-based sequence ranked by creation time, surrogate key breaking ties, in
// one statement. An empty scope is a no-op. Returns the scope size.
func (r *OptionRepository) Reindex(ctx context.Context, portfolioKey int64) (int, error) {
	rows, err := r.q().QueryContext(ctx,
		"SELECT option_key, created FROM options WHERE portfolio_key = ?",
		portfolioKey,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to query option scope: %w", err)
	}

	scope, err := collectKeyedRows(rows)
	if err != nil {
		return 0, err
	}
	if len(scope) == 0 {
		return 0, nil
	}

	rankByCreated(scope)
	caseSQL, args := reindexCase("option_key", scope)
	args = append(args, portfolioKey)

	//#nosec G202 -- the CASE fragment is built from placeholders only
	_, err = r.q().ExecContext(ctx,
		"UPDATE options SET option_id = "+caseSQL+" WHERE portfolio_key = ?",
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reindex options: %w", err)
	}

	return len(scope), nil
}
