package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Allocation scopes. Each entity type draws from its own counter.
const (
	ScopePortfolio = "portfolio"
	ScopeStock     = "stock"
	ScopeOrder     = "order"
	ScopeDividend  = "dividend"
	ScopeOption    = "option"
	ScopeWatchlist = "watchlist"
)

// KeyAllocator issues surrogate keys: opaque, immutable, monotonically
// increasing per scope for the lifetime of the store. Keys exist purely so
// child rows keep a stable reference across dense-index renumbering; they
// are never reused, even when the row they named is deleted.
type KeyAllocator struct {
	db *sql.DB
	tx *sql.Tx
}

// NewKeyAllocator creates a KeyAllocator with the provided database connection.
func NewKeyAllocator(db *sql.DB) *KeyAllocator {
	return &KeyAllocator{db: db}
}

// WithTx returns a copy of the allocator bound to the given transaction, so
// the key draw commits or rolls back with the row insert it serves.
func (a *KeyAllocator) WithTx(tx *sql.Tx) *KeyAllocator {
	return &KeyAllocator{db: a.db, tx: tx}
}

func (a *KeyAllocator) q() querier {
	if a.tx != nil {
		return a.tx
	}
	return a.db
}

// Allocate returns the next surrogate key for scope, creating the counter on
// first use. Keys start at 1 so the zero value never names a row.
func (a *KeyAllocator) Allocate(ctx context.Context, scope string) (int64, error) {
	q := a.q()

	_, err := q.ExecContext(ctx,
		"INSERT INTO surrogate_keys (scope, next_key) VALUES (?, 0) ON CONFLICT (scope) DO NOTHING",
		scope,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to seed key counter for %s: %w", scope, err)
	}

	var key int64
	err = q.QueryRowContext(ctx,
		"UPDATE surrogate_keys SET next_key = next_key + 1 WHERE scope = ? RETURNING next_key",
		scope,
	).Scan(&key)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate key for %s: %w", scope, err)
	}

	return key, nil
}
