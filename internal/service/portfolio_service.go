package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sleepingstar/stockfolio/internal/api/request"
	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/model"
	"github.com/sleepingstar/stockfolio/internal/repository"
)

// DefaultDescription is stored when a portfolio or watchlist is created
// without one.
const DefaultDescription = "No description provided."

// PortfolioService handles portfolio-related business logic operations.
// Portfolios carry the canonical dense-index behavior: IDs are contiguous
// 0..count-1 per user ordered by creation time, compacted after deletion.
type PortfolioService struct {
	db            *sql.DB
	portfolioRepo *repository.PortfolioRepository
	userRepo      *repository.UserRepository
	allocator     *repository.KeyAllocator
	locks         *UserLocks
	log           zerolog.Logger
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	db *sql.DB,
	portfolioRepo *repository.PortfolioRepository,
	userRepo *repository.UserRepository,
	allocator *repository.KeyAllocator,
	locks *UserLocks,
	log zerolog.Logger,
) *PortfolioService {
	return &PortfolioService{
		db:            db,
		portfolioRepo: portfolioRepo,
		userRepo:      userRepo,
		allocator:     allocator,
		locks:         locks,
		log:           log,
	}
}

// ensureUserTx creates the user row inside tx if it does not exist. Mutating
// a portfolio implicitly registers its owner, matching the create-on-first-
// use behavior of the chat front end.
func ensureUserTx(ctx context.Context, tx *sql.Tx, userRepo *repository.UserRepository, userID string) error {
	users := userRepo.WithTx(tx)

	exists, err := users.Exists(userID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return users.Insert(ctx, &model.User{
		UserID:  userID,
		Created: model.FormatLedgerTime(time.Now()),
	})
}

// Create adds a portfolio for the user. The dense ID equals the current
// portfolio count, so IDs stay contiguous without consulting the compactor.
// An empty name defaults to "Portfolio {id}".
func (s *PortfolioService) Create(ctx context.Context, userID string, req request.CreatePortfolioRequest) (model.Portfolio, error) {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.Portfolio{}, err
	}
	defer release()

	var p model.Portfolio
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := ensureUserTx(ctx, tx, s.userRepo, userID); err != nil {
			return err
		}

		portfolios := s.portfolioRepo.WithTx(tx)

		count, err := portfolios.CountByUser(userID)
		if err != nil {
			return err
		}

		key, err := s.allocator.WithTx(tx).Allocate(ctx, repository.ScopePortfolio)
		if err != nil {
			return err
		}

		name := req.Name
		if name == "" {
			// A survivor of an earlier delete may still hold the computed
			// default, so take the first free slot instead of failing.
			for n := count; ; n++ {
				candidate := fmt.Sprintf("Portfolio %d", n)
				_, err := portfolios.GetByName(userID, candidate)
				if errors.Is(err, apperrors.ErrPortfolioNotFound) {
					name = candidate
					break
				}
				if err != nil {
					return err
				}
			}
		} else if _, err := portfolios.GetByName(userID, name); err == nil {
			return apperrors.ErrDuplicateEntry
		} else if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			return err
		}
		description := req.Description
		if description == "" {
			description = DefaultDescription
		}

		p = model.Portfolio{
			PortfolioKey: key,
			UserID:       userID,
			PortfolioID:  count,
			Name:         name,
			Description:  description,
			Created:      model.FormatLedgerTime(time.Now()),
		}
		return portfolios.Insert(ctx, &p)
	})
	if err != nil {
		return model.Portfolio{}, err
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("portfolio_id", p.PortfolioID).
		Msg("portfolio created")
	return p, nil
}

// Get resolves a dense portfolio ID to the full row.
func (s *PortfolioService) Get(userID string, portfolioID int64) (model.Portfolio, error) {
	return s.portfolioRepo.Get(userID, portfolioID)
}

// GetByName retrieves a portfolio by display name.
func (s *PortfolioService) GetByName(userID, name string) (model.Portfolio, error) {
	return s.portfolioRepo.GetByName(userID, name)
}

// First retrieves the user's portfolio at index 0, the chat front end's
// default when no portfolio is named.
func (s *PortfolioService) First(userID string) (model.Portfolio, error) {
	return s.portfolioRepo.First(userID)
}

// List retrieves all of the user's portfolios ordered by dense ID.
func (s *PortfolioService) List(userID string) ([]model.Portfolio, error) {
	return s.portfolioRepo.ListByUser(userID)
}

// Count returns the number of portfolios the user has.
func (s *PortfolioService) Count(userID string) (int64, error) {
	return s.portfolioRepo.CountByUser(userID)
}

// Rename changes a portfolio's display name.
func (s *PortfolioService) Rename(ctx context.Context, userID string, portfolioID int64, req request.RenamePortfolioRequest) (model.Portfolio, error) {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.Portfolio{}, err
	}
	defer release()

	var p model.Portfolio
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		portfolios := s.portfolioRepo.WithTx(tx)

		var err error
		p, err = portfolios.Get(userID, portfolioID)
		if err != nil {
			return err
		}

		if err := portfolios.UpdateName(ctx, p.PortfolioKey, req.Name); err != nil {
			return err
		}
		p.Name = req.Name
		return nil
	})
	if err != nil {
		return model.Portfolio{}, err
	}

	return p, nil
}

// UpdateDescription replaces a portfolio's description.
func (s *PortfolioService) UpdateDescription(ctx context.Context, userID string, portfolioID int64, req request.UpdatePortfolioDescriptionRequest) (model.Portfolio, error) {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.Portfolio{}, err
	}
	defer release()

	var p model.Portfolio
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		portfolios := s.portfolioRepo.WithTx(tx)

		var err error
		p, err = portfolios.Get(userID, portfolioID)
		if err != nil {
			return err
		}

		if err := portfolios.UpdateDescription(ctx, p.PortfolioKey, req.Description); err != nil {
			return err
		}
		p.Description = req.Description
		return nil
	})
	if err != nil {
		return model.Portfolio{}, err
	}

	return p, nil
}

// Delete removes a portfolio and everything beneath it, then renumbers the
// user's remaining portfolios so their IDs are dense again. Deletion and
// compaction commit together or not at all.
func (s *PortfolioService) Delete(ctx context.Context, userID string, portfolioID int64) error {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		portfolios := s.portfolioRepo.WithTx(tx)

		p, err := portfolios.Get(userID, portfolioID)
		if err != nil {
			return err
		}

		if err := portfolios.Delete(ctx, p.PortfolioKey); err != nil {
			return err
		}

		if _, err := portfolios.Reindex(ctx, userID); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrReindexFailed, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("portfolio_id", portfolioID).
		Msg("portfolio deleted")
	return nil
}
