package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/model"
)

// PortfolioRepository provides data access methods for the portfolios table,
// including the dense-index compaction that runs after deletions.
type PortfolioRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *PortfolioRepository) WithTx(tx *sql.Tx) *PortfolioRepository {
	return &PortfolioRepository{db: r.db, tx: tx}
}

func (r *PortfolioRepository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const portfolioColumns = "portfolio_key, user_id, portfolio_id, name, description, created"

func scanPortfolio(row interface{ Scan(...any) error }) (model.Portfolio, error) {
	var p model.Portfolio
	err := row.Scan(&p.PortfolioKey, &p.UserID, &p.PortfolioID, &p.Name, &p.Description, &p.Created)
	return p, err
}

// Insert stores a new portfolio row with an already-allocated surrogate key.
func (r *PortfolioRepository) Insert(ctx context.Context, p *model.Portfolio) error {
	_, err := r.q().ExecContext(ctx,
		"INSERT INTO portfolios (portfolio_key, user_id, portfolio_id, name, description, created) VALUES (?, ?, ?, ?, ?, ?)",
		p.PortfolioKey, p.UserID, p.PortfolioID, p.Name, p.Description, p.Created,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert portfolio: %v", apperrors.ErrWriteFailed, err)
	}
	return nil
}

// Get resolves a user-visible dense portfolio ID to the full row, surrogate
// key included. This is the resolution step every child operation starts with.
func (r *PortfolioRepository) Get(userID string, portfolioID int64) (model.Portfolio, error) {
	p, err := scanPortfolio(r.q().QueryRow(
		"SELECT "+portfolioColumns+" FROM portfolios WHERE user_id = ? AND portfolio_id = ?",
		userID, portfolioID,
	))
	if err == sql.ErrNoRows {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio: %w", err)
	}

	return p, nil
}

// GetByName retrieves a portfolio by its display name.
func (r *PortfolioRepository) GetByName(userID, name string) (model.Portfolio, error) {
	p, err := scanPortfolio(r.q().QueryRow(
		"SELECT "+portfolioColumns+" FROM portfolios WHERE user_id = ? AND name = ?",
		userID, name,
	))
	if err == sql.ErrNoRows {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio by name: %w", err)
	}

	return p, nil
}

// First retrieves the user's portfolio at dense index 0.
func (r *PortfolioRepository) First(userID string) (model.Portfolio, error) {
	p, err := scanPortfolio(r.q().QueryRow(
		"SELECT "+portfolioColumns+" FROM portfolios WHERE user_id = ? ORDER BY portfolio_id LIMIT 1",
		userID,
	))
	if err == sql.ErrNoRows {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query first portfolio: %w", err)
	}

	return p, nil
}

// ListByUser retrieves all of a user's portfolios ordered by dense index.
// Returns an empty slice when the user has none.
func (r *PortfolioRepository) ListByUser(userID string) ([]model.Portfolio, error) {
	rows, err := r.q().Query(
		"SELECT "+portfolioColumns+" FROM portfolios WHERE user_id = ? ORDER BY portfolio_id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio row: %w", err)
		}
		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolios table: %w", err)
	}

	return portfolios, nil
}

// CountByUser returns the number of portfolios a user has. The next dense
// index for a create equals this count.
func (r *PortfolioRepository) CountByUser(userID string) (int64, error) {
	var count int64

	err := r.q().QueryRow(
		"SELECT COUNT(*) FROM portfolios WHERE user_id = ?",
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count portfolios: %w", err)
	}

	return count, nil
}

// UpdateName renames a portfolio, addressed by surrogate key.
func (r *PortfolioRepository) UpdateName(ctx context.Context, portfolioKey int64, name string) error {
	_, err := r.q().ExecContext(ctx,
		"UPDATE portfolios SET name = ? WHERE portfolio_key = ?",
		name, portfolioKey,
	)
	if err != nil {
		return fmt.Errorf("failed to rename portfolio: %w", err)
	}
	return nil
}

// UpdateDescription replaces a portfolio's description, addressed by surrogate key.
func (r *PortfolioRepository) UpdateDescription(ctx context.Context, portfolioKey int64, description string) error {
	_, err := r.q().ExecContext(ctx,
		"UPDATE portfolios SET description = ? WHERE portfolio_key = ?",
		description, portfolioKey,
	)
	if err != nil {
		return fmt.Errorf("failed to update portfolio description: %w", err)
	}
	return nil
}

// Delete removes a portfolio row by surrogate key. Foreign keys cascade the
// portfolio's stocks, orders, dividends and options.
func (r *PortfolioRepository) Delete(ctx context.Context, portfolioKey int64) error {
	_, err := r.q().ExecContext(ctx,
		"DELETE FROM portfolios WHERE portfolio_key = ?",
		portfolioKey,
	)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	return nil
}

// Reindex renumbers the user's remaining portfolios to a contiguous 0-based
// sequence ranked by creation time (surrogate key breaks ties). The whole
// scope is rewritten with a single statement. An empty scope is a no-op.
// Returns the number of rows in the scope.
func (r *PortfolioRepository) Reindex(ctx context.Context, userID string) (int, error) {
	rows, err := r.q().QueryContext(ctx,
		"SELECT portfolio_key, created FROM portfolios WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to query portfolio scope: %w", err)
	}

	scope, err := collectKeyedRows(rows)
	if err != nil {
		return 0, err
	}
	if len(scope) == 0 {
		return 0, nil
	}

	rankByCreated(scope)
	caseSQL, args := reindexCase("portfolio_key", scope)
	args = append(args, userID)

	//#nosec G202 -- the CASE fragment is built from placeholders only
	_, err = r.q().ExecContext(ctx,
		"UPDATE portfolios SET portfolio_id = "+caseSQL+" WHERE user_id = ?",
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reindex portfolios: %w", err)
	}

	return len(scope), nil
}
