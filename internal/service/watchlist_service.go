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

// WatchlistService handles watchlist-related business logic operations.
// Watchlists are the lightweight sibling of portfolios: same dense-index
// lifecycle, but their only children are plain ticker memberships.
type WatchlistService struct {
	db            *sql.DB
	watchlistRepo *repository.WatchlistRepository
	userRepo      *repository.UserRepository
	allocator     *repository.KeyAllocator
	locks         *UserLocks
	log           zerolog.Logger
}

// NewWatchlistService creates a new WatchlistService with the provided dependencies.
func NewWatchlistService(
	db *sql.DB,
	watchlistRepo *repository.WatchlistRepository,
	userRepo *repository.UserRepository,
	allocator *repository.KeyAllocator,
	locks *UserLocks,
	log zerolog.Logger,
) *WatchlistService {
	return &WatchlistService{
		db:            db,
		watchlistRepo: watchlistRepo,
		userRepo:      userRepo,
		allocator:     allocator,
		locks:         locks,
		log:           log,
	}
}

// Create adds a watchlist for the user. The dense ID equals the current
// watchlist count. An empty name defaults to "Watchlist {id}".
func (s *WatchlistService) Create(ctx context.Context, userID string, req request.CreateWatchlistRequest) (model.Watchlist, error) {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.Watchlist{}, err
	}
	defer release()

	var w model.Watchlist
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := ensureUserTx(ctx, tx, s.userRepo, userID); err != nil {
			return err
		}

		watchlists := s.watchlistRepo.WithTx(tx)

		count, err := watchlists.CountByUser(userID)
		if err != nil {
			return err
		}

		key, err := s.allocator.WithTx(tx).Allocate(ctx, repository.ScopeWatchlist)
		if err != nil {
			return err
		}

		name := req.Name
		if name == "" {
			// A survivor of an earlier delete may still hold the computed
			// default, so take the first free slot instead of failing.
			for n := count; ; n++ {
				candidate := fmt.Sprintf("Watchlist %d", n)
				_, err := watchlists.GetByName(userID, candidate)
				if errors.Is(err, apperrors.ErrWatchlistNotFound) {
					name = candidate
					break
				}
				if err != nil {
					return err
				}
			}
		} else if _, err := watchlists.GetByName(userID, name); err == nil {
			return apperrors.ErrDuplicateEntry
		} else if !errors.Is(err, apperrors.ErrWatchlistNotFound) {
			return err
		}
		description := req.Description
		if description == "" {
			description = DefaultDescription
		}

		w = model.Watchlist{
			WatchlistKey: key,
			UserID:       userID,
			WatchlistID:  count,
			Name:         name,
			Description:  description,
			Created:      model.FormatLedgerTime(time.Now()),
		}
		return watchlists.Insert(ctx, &w)
	})
	if err != nil {
		return model.Watchlist{}, err
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("watchlist_id", w.WatchlistID).
		Msg("watchlist created")
	return w, nil
}

// Get resolves a dense watchlist ID to the full row.
func (s *WatchlistService) Get(userID string, watchlistID int64) (model.Watchlist, error) {
	return s.watchlistRepo.Get(userID, watchlistID)
}

// GetByName retrieves a watchlist by display name.
func (s *WatchlistService) GetByName(userID, name string) (model.Watchlist, error) {
	return s.watchlistRepo.GetByName(userID, name)
}

// List retrieves all of the user's watchlists ordered by dense ID.
func (s *WatchlistService) List(userID string) ([]model.Watchlist, error) {
	return s.watchlistRepo.ListByUser(userID)
}

// Count returns the number of watchlists the user has.
func (s *WatchlistService) Count(userID string) (int64, error) {
	return s.watchlistRepo.CountByUser(userID)
}

// Rename changes a watchlist's display name.
func (s *WatchlistService) Rename(ctx context.Context, userID string, watchlistID int64, req request.RenameWatchlistRequest) (model.Watchlist, error) {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.Watchlist{}, err
	}
	defer release()

	var w model.Watchlist
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		watchlists := s.watchlistRepo.WithTx(tx)

		var err error
		w, err = watchlists.Get(userID, watchlistID)
		if err != nil {
			return err
		}

		if err := watchlists.UpdateName(ctx, w.WatchlistKey, req.Name); err != nil {
			return err
		}
		w.Name = req.Name
		return nil
	})
	if err != nil {
		return model.Watchlist{}, err
	}

	return w, nil
}

// UpdateDescription replaces a watchlist's description.
func (s *WatchlistService) UpdateDescription(ctx context.Context, userID string, watchlistID int64, req request.UpdateWatchlistDescriptionRequest) (model.Watchlist, error) {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.Watchlist{}, err
	}
	defer release()

	var w model.Watchlist
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		watchlists := s.watchlistRepo.WithTx(tx)

		var err error
		w, err = watchlists.Get(userID, watchlistID)
		if err != nil {
			return err
		}

		if err := watchlists.UpdateDescription(ctx, w.WatchlistKey, req.Description); err != nil {
			return err
		}
		w.Description = req.Description
		return nil
	})
	if err != nil {
		return model.Watchlist{}, err
	}

	return w, nil
}

// Delete removes a watchlist and its memberships, then renumbers the user's
// remaining watchlists.
func (s *WatchlistService) Delete(ctx context.Context, userID string, watchlistID int64) error {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		watchlists := s.watchlistRepo.WithTx(tx)

		w, err := watchlists.Get(userID, watchlistID)
		if err != nil {
			return err
		}

		if err := watchlists.Delete(ctx, w.WatchlistKey); err != nil {
			return err
		}

		if _, err := watchlists.Reindex(ctx, userID); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrReindexFailed, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("watchlist_id", watchlistID).
		Msg("watchlist deleted")
	return nil
}

// Watch adds a ticker to the watchlist. Watching an already-watched ticker
// is ErrDuplicateEntry.
func (s *WatchlistService) Watch(ctx context.Context, userID string, watchlistID int64, ticker string) error {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		watchlists := s.watchlistRepo.WithTx(tx)

		w, err := watchlists.Get(userID, watchlistID)
		if err != nil {
			return err
		}

		watched, err := watchlists.IsWatched(w.WatchlistKey, ticker)
		if err != nil {
			return err
		}
		if watched {
			return apperrors.ErrDuplicateEntry
		}

		return watchlists.AddTicker(ctx, w.WatchlistKey, ticker, model.FormatLedgerTime(time.Now()))
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("watchlist_id", watchlistID).
		Str("ticker", ticker).
		Msg("ticker watched")
	return nil
}

// Unwatch drops a ticker from the watchlist. Removing a ticker that is not
// on the list is ErrTickerNotWatched.
func (s *WatchlistService) Unwatch(ctx context.Context, userID string, watchlistID int64, ticker string) error {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		watchlists := s.watchlistRepo.WithTx(tx)

		w, err := watchlists.Get(userID, watchlistID)
		if err != nil {
			return err
		}

		removed, err := watchlists.RemoveTicker(ctx, w.WatchlistKey, ticker)
		if err != nil {
			return err
		}
		if !removed {
			return apperrors.ErrTickerNotWatched
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("watchlist_id", watchlistID).
		Str("ticker", ticker).
		Msg("ticker unwatched")
	return nil
}

// IsWatched reports whether the ticker is on the watchlist.
func (s *WatchlistService) IsWatched(userID string, watchlistID int64, ticker string) (bool, error) {
	w, err := s.watchlistRepo.Get(userID, watchlistID)
	if err != nil {
		return false, err
	}
	return s.watchlistRepo.IsWatched(w.WatchlistKey, ticker)
}

// WatchedTickers retrieves the tickers on the watchlist in insertion order.
func (s *WatchlistService) WatchedTickers(userID string, watchlistID int64) ([]string, error) {
	w, err := s.watchlistRepo.Get(userID, watchlistID)
	if err != nil {
		return nil, err
	}
	return s.watchlistRepo.Tickers(w.WatchlistKey)
}
