package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/model"
)

// UserRepository provides data access methods for the users table.
type UserRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewUserRepository creates a new UserRepository with the provided database connection.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{db: r.db, tx: tx}
}

func (r *UserRepository) q() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert stores a new user row.
func (r *UserRepository) Insert(ctx context.Context, u *model.User) error {
	_, err := r.q().ExecContext(ctx,
		"INSERT INTO users (user_id, created) VALUES (?, ?)",
		u.UserID, u.Created,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to insert user: %v", apperrors.ErrWriteFailed, err)
	}
	return nil
}

// Get retrieves a user by platform ID.
func (r *UserRepository) Get(userID string) (model.User, error) {
	var u model.User

	err := r.q().QueryRow(
		"SELECT user_id, created FROM users WHERE user_id = ?",
		userID,
	).Scan(&u.UserID, &u.Created)
	if err == sql.ErrNoRows {
		return model.User{}, apperrors.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to query user: %w", err)
	}

	return u, nil
}

// Exists reports whether a user row exists for the platform ID.
func (r *UserRepository) Exists(userID string) (bool, error) {
	var one int

	err := r.q().QueryRow(
		"SELECT 1 FROM users WHERE user_id = ?",
		userID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query user: %w", err)
	}

	return true, nil
}

// Delete removes a user row. Foreign keys cascade the user's portfolios,
// watchlists and everything beneath them.
func (r *UserRepository) Delete(ctx context.Context, userID string) (bool, error) {
	res, err := r.q().ExecContext(ctx,
		"DELETE FROM users WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}

	return affected > 0, nil
}

// Count returns the total number of users in the store.
func (r *UserRepository) Count() (int64, error) {
	var count int64

	err := r.q().QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}
