package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/sleepingstar/stockfolio/internal/model"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repositories run against whichever the caller bound via WithTx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RunInTx executes fn inside a single transaction. Any error from fn rolls
// the whole unit back; there is never a partial commit.
func RunInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		//nolint:errcheck // rollback error is subsumed by the original failure
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// keyedRow pairs a surrogate key with its created timestamp for ranking.
type keyedRow struct {
	key     int64
	created string
}

// rankByCreated orders rows by parsed created time ascending, tie-broken by
// surrogate key ascending. The created format has second resolution, so two
// rows inserted in the same second rely on the tie-break; keys are allocated
// monotonically, which preserves creation order. A created value that fails
// to parse sorts by key alone, after all parseable rows.
func rankByCreated(rows []keyedRow) {
	sort.Slice(rows, func(i, j int) bool {
		ti, erri := model.ParseLedgerTime(rows[i].created)
		tj, errj := model.ParseLedgerTime(rows[j].created)
		switch {
		case erri == nil && errj == nil:
			if !ti.Equal(tj) {
				return ti.Before(tj)
			}
		case erri == nil:
			return true
		case errj == nil:
			return false
		}
		return rows[i].key < rows[j].key
	})
}

// reindexCase builds the CASE expression assigning each surrogate key its
// 0-based rank, so a whole scope is renumbered with one UPDATE statement.
// Returns the SQL fragment and its arguments.
func reindexCase(keyColumn string, rows []keyedRow) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, len(rows)*2)

	sb.WriteString("CASE ")
	sb.WriteString(keyColumn)
	for i, row := range rows {
		sb.WriteString(" WHEN ? THEN ?")
		args = append(args, row.key, int64(i))
	}
	sb.WriteString(" END")

	return sb.String(), args
}

// collectKeyedRows drains a (key, created) query result.
func collectKeyedRows(rows *sql.Rows) ([]keyedRow, error) {
	defer rows.Close()

	var out []keyedRow
	for rows.Next() {
		var r keyedRow
		if err := rows.Scan(&r.key, &r.created); err != nil {
			return nil, fmt.Errorf("failed to scan reindex row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reindex rows: %w", err)
	}

	return out, nil
}
