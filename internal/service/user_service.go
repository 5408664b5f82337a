package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/model"
	"github.com/sleepingstar/stockfolio/internal/repository"
)

// UserService handles user-related business logic operations. Users are the
// root of the containment hierarchy; deleting one cascades every portfolio,
// watchlist and ledger row beneath it.
type UserService struct {
	db       *sql.DB
	userRepo *repository.UserRepository
	locks    *UserLocks
	log      zerolog.Logger
}

// NewUserService creates a new UserService with the provided dependencies.
func NewUserService(
	db *sql.DB,
	userRepo *repository.UserRepository,
	locks *UserLocks,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		db:       db,
		userRepo: userRepo,
		locks:    locks,
		log:      log,
	}
}

// EnsureUser creates the user row if it does not exist yet and returns it.
// Calling it for an existing user is a no-op read.
func (s *UserService) EnsureUser(ctx context.Context, userID string) (model.User, error) {
	if userID == "" {
		return model.User{}, apperrors.ErrEmptyID
	}

	u, err := s.userRepo.Get(userID)
	if err == nil {
		return u, nil
	}

	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	defer release()

	// Re-check under the lock; a concurrent call may have created the row.
	u, err = s.userRepo.Get(userID)
	if err == nil {
		return u, nil
	}

	u = model.User{
		UserID:  userID,
		Created: model.FormatLedgerTime(time.Now()),
	}
	if err := s.userRepo.Insert(ctx, &u); err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info().Str("user_id", userID).Msg("user created")
	return u, nil
}

// GetUser retrieves a user by platform ID.
func (s *UserService) GetUser(userID string) (model.User, error) {
	return s.userRepo.Get(userID)
}

// UserExists reports whether the user is known to the store.
func (s *UserService) UserExists(userID string) (bool, error) {
	return s.userRepo.Exists(userID)
}

// UserCount returns the total number of registered users.
func (s *UserService) UserCount() (int64, error) {
	return s.userRepo.Count()
}

// DeleteUser removes the user and everything beneath them. Returns false
// when no such user existed; deleting a missing user is not an error.
func (s *UserService) DeleteUser(ctx context.Context, userID string) (bool, error) {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return false, err
	}
	defer release()

	var deleted bool
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		deleted, err = s.userRepo.WithTx(tx).Delete(ctx, userID)
		return err
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.log.Info().Str("user_id", userID).Msg("user deleted")
	}
	return deleted, nil
}
