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

// DividendService handles dividend-related business logic operations.
// Dividend IDs are dense per portfolio and span all tickers, so recording a
// payment for a second ticker continues the portfolio-wide sequence rather
// than starting a new one.
type DividendService struct {
	db            *sql.DB
	dividendRepo  *repository.DividendRepository
	stockRepo     *repository.StockRepository
	portfolioRepo *repository.PortfolioRepository
	allocator     *repository.KeyAllocator
	locks         *UserLocks
	log           zerolog.Logger
}

// NewDividendService creates a new DividendService with the provided dependencies.
func NewDividendService(
	db *sql.DB,
	dividendRepo *repository.DividendRepository,
	stockRepo *repository.StockRepository,
	portfolioRepo *repository.PortfolioRepository,
	allocator *repository.KeyAllocator,
	locks *UserLocks,
	log zerolog.Logger,
) *DividendService {
	return &DividendService{
		db:            db,
		dividendRepo:  dividendRepo,
		stockRepo:     stockRepo,
		portfolioRepo: portfolioRepo,
		allocator:     allocator,
		locks:         locks,
		log:           log,
	}
}

// Add records a dividend payment, creating the stock row on first use.
// The dense ID equals the portfolio's current dividend count.
func (s *DividendService) Add(ctx context.Context, userID string, portfolioID int64, req request.CreateDividendRequest) (model.Dividend, error) {
	if req.Amount < 0 {
		return model.Dividend{}, apperrors.ErrNegativeAmount
	}

	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.Dividend{}, err
	}
	defer release()

	var d model.Dividend
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.portfolioRepo.WithTx(tx).Get(userID, portfolioID)
		if err != nil {
			return err
		}

		if _, err := ensureStockTx(ctx, tx, s.stockRepo, s.allocator, p.PortfolioKey, req.Ticker); err != nil {
			return err
		}

		dividends := s.dividendRepo.WithTx(tx)

		count, err := dividends.CountByPortfolio(p.PortfolioKey)
		if err != nil {
			return err
		}

		key, err := s.allocator.WithTx(tx).Allocate(ctx, repository.ScopeDividend)
		if err != nil {
			return err
		}

		d = model.Dividend{
			DividendKey:  key,
			PortfolioKey: p.PortfolioKey,
			Ticker:       req.Ticker,
			DividendID:   count,
			Amount:       req.Amount,
			Created:      model.FormatLedgerTime(time.Now()),
		}
		return dividends.Insert(ctx, &d)
	})
	if err != nil {
		return model.Dividend{}, err
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("portfolio_id", portfolioID).
		Str("ticker", req.Ticker).
		Int64("dividend_id", d.DividendID).
		Msg("dividend recorded")
	return d, nil
}

// Get retrieves a dividend by dense ID within the portfolio.
func (s *DividendService) Get(userID string, portfolioID, dividendID int64) (model.Dividend, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return model.Dividend{}, err
	}
	return s.dividendRepo.Get(p.PortfolioKey, dividendID)
}

// List retrieves all dividends in the portfolio ordered by dense ID.
func (s *DividendService) List(userID string, portfolioID int64) ([]model.Dividend, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	return s.dividendRepo.ListByPortfolio(p.PortfolioKey)
}

// ListByTicker retrieves the dividends recorded for one ticker.
func (s *DividendService) ListByTicker(userID string, portfolioID int64, ticker string) ([]model.Dividend, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	return s.dividendRepo.ListByTicker(p.PortfolioKey, ticker)
}

// Count returns the number of dividends in the portfolio.
func (s *DividendService) Count(userID string, portfolioID int64) (int64, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return 0, err
	}
	return s.dividendRepo.CountByPortfolio(p.PortfolioKey)
}

// CountByTicker returns the number of dividends for one ticker.
func (s *DividendService) CountByTicker(userID string, portfolioID int64, ticker string) (int64, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return 0, err
	}
	return s.dividendRepo.CountByTicker(p.PortfolioKey, ticker)
}

// Delete removes a dividend and renumbers the portfolio's remaining
// dividends in the same transaction.
func (s *DividendService) Delete(ctx context.Context, userID string, portfolioID, dividendID int64) error {
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

		dividends := s.dividendRepo.WithTx(tx)

		d, err := dividends.Get(p.PortfolioKey, dividendID)
		if err != nil {
			return err
		}

		if err := dividends.Delete(ctx, d.DividendKey); err != nil {
			return err
		}

		if _, err := dividends.Reindex(ctx, p.PortfolioKey); err != nil {
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
		Int64("dividend_id", dividendID).
		Msg("dividend deleted")
	return nil
}
