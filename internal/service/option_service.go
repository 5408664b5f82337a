package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sleepingstar/stockfolio/internal/api/request"
	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/model"
	"github.com/sleepingstar/stockfolio/internal/repository"
)

// OptionService handles option-related business logic operations. Option IDs
// follow the dividend scoping: dense per portfolio across all tickers. An
// option's gain/loss stays unset until it reaches a terminal status.
type OptionService struct {
	db            *sql.DB
	optionRepo    *repository.OptionRepository
	stockRepo     *repository.StockRepository
	portfolioRepo *repository.PortfolioRepository
	allocator     *repository.KeyAllocator
	locks         *UserLocks
	log           zerolog.Logger
}

// NewOptionService creates a new OptionService with the provided dependencies.
func NewOptionService(
	db *sql.DB,
	optionRepo *repository.OptionRepository,
	stockRepo *repository.StockRepository,
	portfolioRepo *repository.PortfolioRepository,
	allocator *repository.KeyAllocator,
	locks *UserLocks,
	log zerolog.Logger,
) *OptionService {
	return &OptionService{
		db:            db,
		optionRepo:    optionRepo,
		stockRepo:     stockRepo,
		portfolioRepo: portfolioRepo,
		allocator:     allocator,
		locks:         locks,
		log:           log,
	}
}

// Add records an option position, creating the stock row on first use.
// The dense ID equals the portfolio's current option count.
func (s *OptionService) Add(ctx context.Context, userID string, portfolioID int64, req request.CreateOptionRequest) (model.Option, error) {
	if !model.OptionStatus(req.Status).Valid() {
		return model.Option{}, apperrors.ErrInvalidOptionStatus
	}
	if !model.OptionType(req.Type).Valid() {
		return model.Option{}, apperrors.ErrInvalidOptionType
	}

	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.Option{}, err
	}
	defer release()

	var o model.Option
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.portfolioRepo.WithTx(tx).Get(userID, portfolioID)
		if err != nil {
			return err
		}

		if _, err := ensureStockTx(ctx, tx, s.stockRepo, s.allocator, p.PortfolioKey, req.Ticker); err != nil {
			return err
		}

		options := s.optionRepo.WithTx(tx)

		count, err := options.CountByPortfolio(p.PortfolioKey)
		if err != nil {
			return err
		}

		key, err := s.allocator.WithTx(tx).Allocate(ctx, repository.ScopeOption)
		if err != nil {
			return err
		}

		o = model.Option{
			OptionKey:    key,
			PortfolioKey: p.PortfolioKey,
			Ticker:       req.Ticker,
			OptionID:     count,
			Type:         model.OptionType(req.Type),
			Strike:       req.Strike,
			Premium:      req.Premium,
			Quantity:     req.Quantity,
			Expires:      req.Expires,
			Status:       model.OptionStatus(req.Status),
			Created:      model.FormatLedgerTime(time.Now()),
		}
		return options.Insert(ctx, &o)
	})
	if err != nil {
		return model.Option{}, err
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("portfolio_id", portfolioID).
		Str("ticker", req.Ticker).
		Int64("option_id", o.OptionID).
		Msg("option recorded")
	return o, nil
}

// Get retrieves an option by dense ID within the portfolio.
func (s *OptionService) Get(userID string, portfolioID, optionID int64) (model.Option, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return model.Option{}, err
	}
	return s.optionRepo.Get(p.PortfolioKey, optionID)
}

// List retrieves all options in the portfolio ordered by dense ID.
func (s *OptionService) List(userID string, portfolioID int64) ([]model.Option, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	return s.optionRepo.ListByPortfolio(p.PortfolioKey)
}

// ListByTicker retrieves the options recorded for one ticker.
func (s *OptionService) ListByTicker(userID string, portfolioID int64, ticker string) ([]model.Option, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	return s.optionRepo.ListByTicker(p.PortfolioKey, ticker)
}

// Count returns the number of options in the portfolio.
func (s *OptionService) Count(userID string, portfolioID int64) (int64, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return 0, err
	}
	return s.optionRepo.CountByPortfolio(p.PortfolioKey)
}

// CountByTicker returns the number of options for one ticker.
func (s *OptionService) CountByTicker(userID string, portfolioID int64, ticker string) (int64, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return 0, err
	}
	return s.optionRepo.CountByTicker(p.PortfolioKey, ticker)
}

// CallCount returns the number of Call contracts for one ticker.
func (s *OptionService) CallCount(userID string, portfolioID int64, ticker string) (int64, error) {
	return s.countByType(userID, portfolioID, ticker, model.OptionTypeCall)
}

// PutCount returns the number of Put contracts for one ticker.
func (s *OptionService) PutCount(userID string, portfolioID int64, ticker string) (int64, error) {
	return s.countByType(userID, portfolioID, ticker, model.OptionTypePut)
}

func (s *OptionService) countByType(userID string, portfolioID int64, ticker string, optionType model.OptionType) (int64, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return 0, err
	}
	return s.optionRepo.CountByType(p.PortfolioKey, ticker, optionType)
}

// Update merges the provided fields into the stored option. Nil fields keep
// their stored values; a request with no fields at all is
// ErrNoFieldsToUpdate.
func (s *OptionService) Update(ctx context.Context, userID string, portfolioID, optionID int64, req request.UpdateOptionRequest) (model.Option, error) {
	if req.Empty() {
		return model.Option{}, apperrors.ErrNoFieldsToUpdate
	}
	if req.Status != nil && !model.OptionStatus(*req.Status).Valid() {
		return model.Option{}, apperrors.ErrInvalidOptionStatus
	}
	if req.Type != nil && !model.OptionType(*req.Type).Valid() {
		return model.Option{}, apperrors.ErrInvalidOptionType
	}

	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.Option{}, err
	}
	defer release()

	var o model.Option
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.portfolioRepo.WithTx(tx).Get(userID, portfolioID)
		if err != nil {
			return err
		}

		options := s.optionRepo.WithTx(tx)

		o, err = options.Get(p.PortfolioKey, optionID)
		if err != nil {
			return err
		}

		if req.Type != nil {
			o.Type = model.OptionType(*req.Type)
		}
		if req.Strike != nil {
			o.Strike = *req.Strike
		}
		if req.Premium != nil {
			o.Premium = *req.Premium
		}
		if req.Quantity != nil {
			o.Quantity = *req.Quantity
		}
		if req.Expires != nil {
			o.Expires = *req.Expires
		}
		if req.Status != nil {
			o.Status = model.OptionStatus(*req.Status)
		}

		return options.Update(ctx, &o)
	})
	if err != nil {
		return model.Option{}, err
	}

	return o, nil
}

// Close settles an option as bought/sold back, recording its final gain or loss.
func (s *OptionService) Close(ctx context.Context, userID string, portfolioID, optionID int64, req request.SettleOptionRequest) (model.Option, error) {
	return s.settle(ctx, userID, portfolioID, optionID, model.OptionStatusClosed, req.GainLoss)
}

// Expire settles an option as expired worthless or assigned at expiry.
func (s *OptionService) Expire(ctx context.Context, userID string, portfolioID, optionID int64, req request.SettleOptionRequest) (model.Option, error) {
	return s.settle(ctx, userID, portfolioID, optionID, model.OptionStatusExpired, req.GainLoss)
}

// Exercise settles an option as exercised.
func (s *OptionService) Exercise(ctx context.Context, userID string, portfolioID, optionID int64, req request.SettleOptionRequest) (model.Option, error) {
	return s.settle(ctx, userID, portfolioID, optionID, model.OptionStatusExercised, req.GainLoss)
}

func (s *OptionService) settle(ctx context.Context, userID string, portfolioID, optionID int64, status model.OptionStatus, gainLoss float64) (model.Option, error) {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.Option{}, err
	}
	defer release()

	var o model.Option
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.portfolioRepo.WithTx(tx).Get(userID, portfolioID)
		if err != nil {
			return err
		}

		options := s.optionRepo.WithTx(tx)

		o, err = options.Get(p.PortfolioKey, optionID)
		if err != nil {
			return err
		}

		if err := options.Settle(ctx, o.OptionKey, status, gainLoss); err != nil {
			return err
		}

		o.Status = status
		o.GainLoss = &gainLoss
		return nil
	})
	if err != nil {
		return model.Option{}, err
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("portfolio_id", portfolioID).
		Int64("option_id", optionID).
		Str("status", string(status)).
		Msg("option settled")
	return o, nil
}

// Delete removes an option and renumbers the portfolio's remaining options
// in the same transaction.
func (s *OptionService) Delete(ctx context.Context, userID string, portfolioID, optionID int64) error {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.portfolioRepo.WithTx(tx).Get(userID, portfolioID)
		if err != nil {
			return err
		}

		options := s.optionRepo.WithTx(tx)

		o, err := options.Get(p.PortfolioKey, optionID)
		if err != nil {
			return err
		}

		if err := options.Delete(ctx, o.OptionKey); err != nil {
			return err
		}

		if _, err := options.Reindex(ctx, p.PortfolioKey); err != nil {
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
		Int64("option_id", optionID).
		Msg("option deleted")
	return nil
}
