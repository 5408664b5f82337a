package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/model"
	"github.com/sleepingstar/stockfolio/internal/repository"
)

// StockService handles stock-related business logic operations. A stock row
// pins a ticker to a portfolio; it usually appears lazily when the first
// order, dividend or option references the ticker, but can be added
// explicitly too.
type StockService struct {
	db            *sql.DB
	stockRepo     *repository.StockRepository
	portfolioRepo *repository.PortfolioRepository
	allocator     *repository.KeyAllocator
	locks         *UserLocks
	log           zerolog.Logger
}

// NewStockService creates a new StockService with the provided dependencies.
func NewStockService(
	db *sql.DB,
	stockRepo *repository.StockRepository,
	portfolioRepo *repository.PortfolioRepository,
	allocator *repository.KeyAllocator,
	locks *UserLocks,
	log zerolog.Logger,
) *StockService {
	return &StockService{
		db:            db,
		stockRepo:     stockRepo,
		portfolioRepo: portfolioRepo,
		allocator:     allocator,
		locks:         locks,
		log:           log,
	}
}

// ensureStockTx returns the stock row for (portfolioKey, ticker), creating
// it inside tx when absent. Every ledger write that references a ticker goes
// through here.
func ensureStockTx(
	ctx context.Context,
	tx *sql.Tx,
	stockRepo *repository.StockRepository,
	allocator *repository.KeyAllocator,
	portfolioKey int64,
	ticker string,
) (model.Stock, error) {
	if ticker == "" {
		return model.Stock{}, apperrors.ErrInvalidTicker
	}

	stocks := stockRepo.WithTx(tx)

	st, err := stocks.Get(portfolioKey, ticker)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, apperrors.ErrStockNotFound) {
		return model.Stock{}, err
	}

	key, err := allocator.WithTx(tx).Allocate(ctx, repository.ScopeStock)
	if err != nil {
		return model.Stock{}, err
	}

	st = model.Stock{
		StockKey:     key,
		PortfolioKey: portfolioKey,
		Ticker:       ticker,
		Created:      model.FormatLedgerTime(time.Now()),
	}
	if err := stocks.Insert(ctx, &st); err != nil {
		return model.Stock{}, err
	}

	return st, nil
}

// Add explicitly registers a ticker in a portfolio. Adding a ticker that is
// already held is ErrDuplicateEntry.
func (s *StockService) Add(ctx context.Context, userID string, portfolioID int64, ticker string) (model.Stock, error) {
	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.Stock{}, err
	}
	defer release()

	var st model.Stock
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.portfolioRepo.WithTx(tx).Get(userID, portfolioID)
		if err != nil {
			return err
		}

		exists, err := s.stockRepo.WithTx(tx).Exists(p.PortfolioKey, ticker)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrDuplicateEntry
		}

		st, err = ensureStockTx(ctx, tx, s.stockRepo, s.allocator, p.PortfolioKey, ticker)
		return err
	})
	if err != nil {
		return model.Stock{}, err
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("portfolio_id", portfolioID).
		Str("ticker", ticker).
		Msg("stock added")
	return st, nil
}

// Get retrieves the stock row for a ticker in a portfolio.
func (s *StockService) Get(userID string, portfolioID int64, ticker string) (model.Stock, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return model.Stock{}, err
	}
	return s.stockRepo.Get(p.PortfolioKey, ticker)
}

// List retrieves all stocks held in a portfolio.
func (s *StockService) List(userID string, portfolioID int64) ([]model.Stock, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	return s.stockRepo.ListByPortfolio(p.PortfolioKey)
}

// Tickers retrieves the tickers held in a portfolio in creation order.
func (s *StockService) Tickers(userID string, portfolioID int64) ([]string, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	return s.stockRepo.Tickers(p.PortfolioKey)
}

// Count returns the number of stocks held in a portfolio.
func (s *StockService) Count(userID string, portfolioID int64) (int64, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return 0, err
	}
	return s.stockRepo.CountByPortfolio(p.PortfolioKey)
}

// Delete removes a stock and its orders. Dividends and options for the
// ticker hang off the portfolio directly and are kept; their history
// outlives the position.
func (s *StockService) Delete(ctx context.Context, userID string, portfolioID int64, ticker string) error {
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

		st, err := s.stockRepo.WithTx(tx).Get(p.PortfolioKey, ticker)
		if err != nil {
			return err
		}

		return s.stockRepo.WithTx(tx).Delete(ctx, st.StockKey)
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("portfolio_id", portfolioID).
		Str("ticker", ticker).
		Msg("stock deleted")
	return nil
}
