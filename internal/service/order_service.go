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

// OrderService handles order-related business logic operations. Orders carry
// the tightest dense-index scope in the ledger: IDs are contiguous per
// (portfolio, ticker) pair, so two tickers in one portfolio each start at 0.
type OrderService struct {
	db            *sql.DB
	orderRepo     *repository.OrderRepository
	stockRepo     *repository.StockRepository
	portfolioRepo *repository.PortfolioRepository
	allocator     *repository.KeyAllocator
	locks         *UserLocks
	log           zerolog.Logger
}

// NewOrderService creates a new OrderService with the provided dependencies.
func NewOrderService(
	db *sql.DB,
	orderRepo *repository.OrderRepository,
	stockRepo *repository.StockRepository,
	portfolioRepo *repository.PortfolioRepository,
	allocator *repository.KeyAllocator,
	locks *UserLocks,
	log zerolog.Logger,
) *OrderService {
	return &OrderService{
		db:            db,
		orderRepo:     orderRepo,
		stockRepo:     stockRepo,
		portfolioRepo: portfolioRepo,
		allocator:     allocator,
		locks:         locks,
		log:           log,
	}
}

// Add records an order against a ticker, creating the stock row on first
// use. The dense ID equals the current order count for the (portfolio,
// ticker) scope.
func (s *OrderService) Add(ctx context.Context, userID string, portfolioID int64, ticker string, req request.CreateOrderRequest) (model.Order, error) {
	if !model.OrderStatus(req.Status).Valid() {
		return model.Order{}, apperrors.ErrInvalidOrderStatus
	}
	if !model.OrderType(req.Type).Valid() {
		return model.Order{}, apperrors.ErrInvalidOrderType
	}

	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.Order{}, err
	}
	defer release()

	var o model.Order
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.portfolioRepo.WithTx(tx).Get(userID, portfolioID)
		if err != nil {
			return err
		}

		st, err := ensureStockTx(ctx, tx, s.stockRepo, s.allocator, p.PortfolioKey, ticker)
		if err != nil {
			return err
		}

		orders := s.orderRepo.WithTx(tx)

		count, err := orders.CountByTicker(p.PortfolioKey, ticker)
		if err != nil {
			return err
		}

		key, err := s.allocator.WithTx(tx).Allocate(ctx, repository.ScopeOrder)
		if err != nil {
			return err
		}

		o = model.Order{
			OrderKey:     key,
			StockKey:     st.StockKey,
			PortfolioKey: p.PortfolioKey,
			Ticker:       ticker,
			OrderID:      count,
			Price:        req.Price,
			Quantity:     req.Quantity,
			Status:       model.OrderStatus(req.Status),
			Type:         model.OrderType(req.Type),
			Created:      model.FormatLedgerTime(time.Now()),
		}
		return orders.Insert(ctx, &o)
	})
	if err != nil {
		return model.Order{}, err
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("portfolio_id", portfolioID).
		Str("ticker", ticker).
		Int64("order_id", o.OrderID).
		Msg("order recorded")
	return o, nil
}

// Get retrieves an order by dense ID within its (portfolio, ticker) scope.
func (s *OrderService) Get(userID string, portfolioID int64, ticker string, orderID int64) (model.Order, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return model.Order{}, err
	}
	return s.orderRepo.Get(p.PortfolioKey, ticker, orderID)
}

// List retrieves all orders for a ticker ordered by dense ID.
func (s *OrderService) List(userID string, portfolioID int64, ticker string) ([]model.Order, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.ListByTicker(p.PortfolioKey, ticker)
}

// ListAll retrieves every order in the portfolio across all tickers.
func (s *OrderService) ListAll(userID string, portfolioID int64) ([]model.Order, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.ListByPortfolio(p.PortfolioKey)
}

// Count returns the number of orders for a ticker.
func (s *OrderService) Count(userID string, portfolioID int64, ticker string) (int64, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return 0, err
	}
	return s.orderRepo.CountByTicker(p.PortfolioKey, ticker)
}

// Update merges the provided fields into the stored order. Nil fields keep
// their stored values; a request with no fields at all is
// ErrNoFieldsToUpdate. The order's dense ID and surrogate key never change,
// though replacing Created can move it on the next reindex.
func (s *OrderService) Update(ctx context.Context, userID string, portfolioID int64, ticker string, orderID int64, req request.UpdateOrderRequest) (model.Order, error) {
	if req.Empty() {
		return model.Order{}, apperrors.ErrNoFieldsToUpdate
	}
	if req.Status != nil && !model.OrderStatus(*req.Status).Valid() {
		return model.Order{}, apperrors.ErrInvalidOrderStatus
	}
	if req.Type != nil && !model.OrderType(*req.Type).Valid() {
		return model.Order{}, apperrors.ErrInvalidOrderType
	}

	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return model.Order{}, err
	}
	defer release()

	var o model.Order
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.portfolioRepo.WithTx(tx).Get(userID, portfolioID)
		if err != nil {
			return err
		}

		orders := s.orderRepo.WithTx(tx)

		o, err = orders.Get(p.PortfolioKey, ticker, orderID)
		if err != nil {
			return err
		}

		if req.Price != nil {
			o.Price = *req.Price
		}
		if req.Quantity != nil {
			o.Quantity = *req.Quantity
		}
		if req.Status != nil {
			o.Status = model.OrderStatus(*req.Status)
		}
		if req.Type != nil {
			o.Type = model.OrderType(*req.Type)
		}
		if req.Created != nil {
			o.Created = *req.Created
		}

		return orders.Update(ctx, &o)
	})
	if err != nil {
		return model.Order{}, err
	}

	return o, nil
}

// Delete removes an order and renumbers the remaining orders in its
// (portfolio, ticker) scope. Sibling tickers are untouched.
func (s *OrderService) Delete(ctx context.Context, userID string, portfolioID int64, ticker string, orderID int64) error {
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

		orders := s.orderRepo.WithTx(tx)

		o, err := orders.Get(p.PortfolioKey, ticker, orderID)
		if err != nil {
			return err
		}

		if err := orders.Delete(ctx, o.OrderKey); err != nil {
			return err
		}

		if _, err := orders.Reindex(ctx, p.PortfolioKey, ticker); err != nil {
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
		Str("ticker", ticker).
		Int64("order_id", orderID).
		Msg("order deleted")
	return nil
}

// Purge bulk-deletes orders by status. An empty or "all" ticker spans the
// whole portfolio; status defaults to Cancelled. Every ticker that lost rows
// is reindexed in the same transaction. Returns the number of rows deleted.
func (s *OrderService) Purge(ctx context.Context, userID string, portfolioID int64, req request.PurgeOrdersRequest) (int64, error) {
	status := model.OrderStatusCancelled
	if req.Status != "" {
		status = model.OrderStatus(req.Status)
		if !status.Valid() {
			return 0, apperrors.ErrInvalidOrderStatus
		}
	}

	ticker := req.Ticker
	if ticker == "all" {
		ticker = ""
	}

	release, err := s.locks.Acquire(ctx, userID)
	if err != nil {
		return 0, err
	}
	defer release()

	var deleted int64
	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		p, err := s.portfolioRepo.WithTx(tx).Get(userID, portfolioID)
		if err != nil {
			return err
		}

		orders := s.orderRepo.WithTx(tx)

		affected := []string{ticker}
		if ticker == "" {
			affected, err = orders.TickersWithStatus(p.PortfolioKey, status)
			if err != nil {
				return err
			}
		}

		deleted, err = orders.PurgeByStatus(ctx, p.PortfolioKey, ticker, status)
		if err != nil {
			return err
		}

		for _, t := range affected {
			if _, err := orders.Reindex(ctx, p.PortfolioKey, t); err != nil {
				return fmt.Errorf("%w: %v", apperrors.ErrReindexFailed, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Str("user_id", userID).
		Int64("portfolio_id", portfolioID).
		Str("status", string(status)).
		Int64("deleted", deleted).
		Msg("orders purged")
	return deleted, nil
}
