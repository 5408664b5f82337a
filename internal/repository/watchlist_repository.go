package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/model"
)

// WatchlistRepository provides data access methods for the watchlists and
// watching tables. Watchlists follow the same dense-index pattern as
// portfolios; watching rows are plain memberships keyed by surrogate.
type WatchlistRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewWatchlistRepository creates a new WatchlistRepository with the provided database connection.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *WatchlistRepository) WithTx(tx *sql.Tx) *WatchlistRepository {
	return &WatchlistRepository{db: r.db, tx: tx}
}

func (r *WatchlistRepository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const watchlistColumns = "watchlist_key, user_id, watchlist_id, name, description, created"

func scanWatchlist(row interface{ Scan(...any) error }) (model.Watchlist, error) {
	var w model.Watchlist
	err := row.Scan(&w.WatchlistKey, &w.UserID, &w.WatchlistID, &w.Name, &w.Description, &w.Created)
	return w, err
}

// Insert stores a new watchlist row with an already-allocated surrogate key.
func (r *WatchlistRepository) Insert(ctx context.Context, w *model.Watchlist) error {
	_, err := r.q().ExecContext(ctx,
		"INSERT INTO watchlists (watchlist_key, user_id, watchlist_id, name, description, created) VALUES (?, ?, ?, ?, ?, ?)",
		w.WatchlistKey, w.UserID, w.WatchlistID, w.Name, w.Description, w.Created,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert watchlist: %v", apperrors.ErrWriteFailed, err)
	}
	return nil
}

// Get resolves a dense watchlist ID to the full row.
func (r *WatchlistRepository) Get(userID string, watchlistID int64) (model.Watchlist, error) {
	w, err := scanWatchlist(r.q().QueryRow(
		"SELECT "+watchlistColumns+" FROM watchlists WHERE user_id = ? AND watchlist_id = ?",
		userID, watchlistID,
	))
	if err == sql.ErrNoRows {
		return model.Watchlist{}, apperrors.ErrWatchlistNotFound
	}
	if err != nil {
		return model.Watchlist{}, fmt.Errorf("failed to query watchlist: %w", err)
	}

	return w, nil
}

// GetByName retrieves a watchlist by its display name.
func (r *WatchlistRepository) GetByName(userID, name string) (model.Watchlist, error) {
	w, err := scanWatchlist(r.q().QueryRow(
		"SELECT "+watchlistColumns+" FROM watchlists WHERE user_id = ? AND name = ?",
		userID, name,
	))
	if err == sql.ErrNoRows {
		return model.Watchlist{}, apperrors.ErrWatchlistNotFound
	}
	if err != nil {
		return model.Watchlist{}, fmt.Errorf("failed to query watchlist by name: %w", err)
	}

	return w, nil
}

// ListByUser retrieves all of a user's watchlists ordered by dense index.
func (r *WatchlistRepository) ListByUser(userID string) ([]model.Watchlist, error) {
	rows, err := r.q().Query(
		"SELECT "+watchlistColumns+" FROM watchlists WHERE user_id = ? ORDER BY watchlist_id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlists table: %w", err)
	}
	defer rows.Close()

	watchlists := []model.Watchlist{}
	for rows.Next() {
		w, err := scanWatchlist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist row: %w", err)
		}
		watchlists = append(watchlists, w)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlists table: %w", err)
	}

	return watchlists, nil
}

// CountByUser returns the number of watchlists a user has.
func (r *WatchlistRepository) CountByUser(userID string) (int64, error) {
	var count int64

	err := r.q().QueryRow(
		"SELECT COUNT(*) FROM watchlists WHERE user_id = ?",
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count watchlists: %w", err)
	}

	return count, nil
}

// UpdateName renames a watchlist, addressed by surrogate key.
func (r *WatchlistRepository) UpdateName(ctx context.Context, watchlistKey int64, name string) error {
	_, err := r.q().ExecContext(ctx,
		"UPDATE watchlists SET name = ? WHERE watchlist_key = ?",
		name, watchlistKey,
	)
	if err != nil {
		return fmt.Errorf("failed to rename watchlist: %w", err)
	}
	return nil
}

// UpdateDescription replaces a watchlist's description, addressed by surrogate key.
func (r *WatchlistRepository) UpdateDescription(ctx context.Context, watchlistKey int64, description string) error {
	_, err := r.q().ExecContext(ctx,
		"UPDATE watchlists SET description = ? WHERE watchlist_key = ?",
		description, watchlistKey,
	)
	if err != nil {
		return fmt.Errorf("failed to update watchlist description: %w", err)
	}
	return nil
}

// Delete removes a watchlist row by surrogate key. Foreign keys cascade its
// watching memberships.
func (r *WatchlistRepository) Delete(ctx context.Context, watchlistKey int64) error {
	_, err := r.q().ExecContext(ctx,
		"DELETE FROM watchlists WHERE watchlist_key = ?",
		watchlistKey,
	)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist: %w", err)
	}
	return nil
}

// Reindex renumbers the user's remaining watchlists to a contiguous 0-based
// sequence, same contract as the portfolio compactor.
func (r *WatchlistRepository) Reindex(ctx context.Context, userID string) (int, error) {
	rows, err := r.q().QueryContext(ctx,
		"SELECT watchlist_key, created FROM watchlists WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to query watchlist scope: %w", err)
	}

	scope, err := collectKeyedRows(rows)
	if err != nil {
		return 0, err
	}
	if len(scope) == 0 {
		return 0, nil
	}

	rankByCreated(scope)
	caseSQL, args := reindexCase("watchlist_key", scope)
	args = append(args, userID)

	//#nosec G202 -- the CASE fragment is built from placeholders only
	_, err = r.q().ExecContext(ctx,
		"UPDATE watchlists SET watchlist_id = "+caseSQL+" WHERE user_id = ?",
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reindex watchlists: %w", err)
	}

	return len(scope), nil
}

// AddTicker records a ticker on a watchlist.
func (r *WatchlistRepository) AddTicker(ctx context.Context, watchlistKey int64, ticker, created string) error {
	_, err := r.q().ExecContext(ctx,
		"INSERT INTO watching (watchlist_key, ticker, created) VALUES (?, ?, ?)",
		watchlistKey, ticker, created,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to add ticker to watchlist: %v", apperrors.ErrWriteFailed, err)
	}
	return nil
}

// RemoveTicker drops a ticker from a watchlist. Returns false when the
// ticker was not on the list.
func (r *WatchlistRepository) RemoveTicker(ctx context.Context, watchlistKey int64, ticker string) (bool, error) {
	res, err := r.q().ExecContext(ctx,
		"DELETE FROM watching WHERE watchlist_key = ? AND ticker = ?",
		watchlistKey, ticker,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove ticker from watchlist: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read remove result: %w", err)
	}

	return affected > 0, nil
}

// IsWatched reports whether the ticker is on the watchlist.
func (r *WatchlistRepository) IsWatched(watchlistKey int64, ticker string) (bool, error) {
	var one int

	err := r.q().QueryRow(
		"SELECT 1 FROM watching WHERE watchlist_key = ? AND ticker = ?",
		watchlistKey, ticker,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query watching: %w", err)
	}

	return true, nil
}

// Tickers retrieves the tickers on a watchlist in insertion order.
func (r *WatchlistRepository) Tickers(watchlistKey int64) ([]string, error) {
	rows, err := r.q().Query(
		"SELECT ticker FROM watching WHERE watchlist_key = ? ORDER BY rowid",
		watchlistKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query watching: %w", err)
	}
	defer rows.Close()

	tickers := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan watched ticker: %w", err)
		}
		tickers = append(tickers, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watching: %w", err)
	}

	return tickers, nil
}
