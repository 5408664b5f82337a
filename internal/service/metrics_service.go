package service

import (
	"github.com/rs/zerolog"

	"github.com/sleepingstar/stockfolio/internal/model"
	"github.com/sleepingstar/stockfolio/internal/repository"
)

// MetricsService recomputes financial aggregates from stored rows on every
// call. Nothing here writes; there are no running totals to drift out of
// sync with the ledger. Only Filled orders contribute.
//
// Scalar aggregates return (value, ok, error) where ok=false means there was
// nothing to aggregate: a ticker with no orders at all, or a portfolio with
// no stocks. Absent is distinct from a computed zero: a stock with one Filled
// Buy and one offsetting Filled Sell has quantity 0 with ok=true, and so does
// a stock whose only orders are Pending.
type MetricsService struct {
	portfolioRepo *repository.PortfolioRepository
	stockRepo     *repository.StockRepository
	orderRepo     *repository.OrderRepository
	dividendRepo  *repository.DividendRepository
	log           zerolog.Logger
}

// NewMetricsService creates a new MetricsService with the provided repository dependencies.
func NewMetricsService(
	portfolioRepo *repository.PortfolioRepository,
	stockRepo *repository.StockRepository,
	orderRepo *repository.OrderRepository,
	dividendRepo *repository.DividendRepository,
	log zerolog.Logger,
) *MetricsService {
	return &MetricsService{
		portfolioRepo: portfolioRepo,
		stockRepo:     stockRepo,
		orderRepo:     orderRepo,
		dividendRepo:  dividendRepo,
		log:           log,
	}
}

// positionFigures replays the Filled subset of an order list.
type positionFigures struct {
	quantity   float64
	investment float64
	gainLoss   float64
}

// replayOrders folds Filled orders into position figures. Buys add quantity
// and cost, sells subtract them; gain/loss is the mirror of investment by
// construction (sell proceeds minus buy cost).
func replayOrders(orders []model.Order) positionFigures {
	var f positionFigures
	for _, o := range orders {
		if o.Status != model.OrderStatusFilled {
			continue
		}
		switch o.Type {
		case model.OrderTypeBuy:
			f.quantity += o.Quantity
			f.investment += o.Price * o.Quantity
			f.gainLoss -= o.Price * o.Quantity
		case model.OrderTypeSell:
			f.quantity -= o.Quantity
			f.investment -= o.Price * o.Quantity
			f.gainLoss += o.Price * o.Quantity
		}
	}
	return f
}

// stockFigures replays a ticker's order history. The bool reports whether
// the ticker has any orders at all; status does not matter for presence.
func (s *MetricsService) stockFigures(userID string, portfolioID int64, ticker string) (positionFigures, bool, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return positionFigures{}, false, err
	}

	orders, err := s.orderRepo.ListByTicker(p.PortfolioKey, ticker)
	if err != nil {
		return positionFigures{}, false, err
	}

	return replayOrders(orders), len(orders) > 0, nil
}

// StockQuantity returns the net held quantity for a ticker: Filled Buy
// quantities minus Filled Sell quantities.
func (s *MetricsService) StockQuantity(userID string, portfolioID int64, ticker string) (float64, bool, error) {
	f, ok, err := s.stockFigures(userID, portfolioID, ticker)
	if err != nil {
		return 0, false, err
	}
	return f.quantity, ok, nil
}

// StockInvestment returns the net cash invested in a ticker: Filled Buy
// cost minus Filled Sell proceeds.
func (s *MetricsService) StockInvestment(userID string, portfolioID int64, ticker string) (float64, bool, error) {
	f, ok, err := s.stockFigures(userID, portfolioID, ticker)
	if err != nil {
		return 0, false, err
	}
	return f.investment, ok, nil
}

// StockGainLoss returns Filled Sell proceeds minus Filled Buy cost for a
// ticker. Note this is the negation of StockInvestment over the same order
// set, so summing the two always cancels; callers wanting a combined total
// must pick one of the components, not add them.
func (s *MetricsService) StockGainLoss(userID string, portfolioID int64, ticker string) (float64, bool, error) {
	f, ok, err := s.stockFigures(userID, portfolioID, ticker)
	if err != nil {
		return 0, false, err
	}
	return f.gainLoss, ok, nil
}

// StockSummary bundles the three position figures for one ticker. Fields are
// nil when the ticker has no orders.
func (s *MetricsService) StockSummary(userID string, portfolioID int64, ticker string) (model.StockSummary, error) {
	f, ok, err := s.stockFigures(userID, portfolioID, ticker)
	if err != nil {
		return model.StockSummary{}, err
	}

	summary := model.StockSummary{Ticker: ticker}
	if ok {
		summary.Quantity = &f.quantity
		summary.Investment = &f.investment
		summary.GainLoss = &f.gainLoss
	}
	return summary, nil
}

// portfolioFigures replays every order in the portfolio in one pass. The
// bool reports whether the portfolio holds any stock; a portfolio whose
// stocks have no Filled orders yet still aggregates to a present zero.
func (s *MetricsService) portfolioFigures(userID string, portfolioID int64) (positionFigures, bool, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return positionFigures{}, false, err
	}

	stocks, err := s.stockRepo.CountByPortfolio(p.PortfolioKey)
	if err != nil {
		return positionFigures{}, false, err
	}

	orders, err := s.orderRepo.ListByPortfolio(p.PortfolioKey)
	if err != nil {
		return positionFigures{}, false, err
	}

	return replayOrders(orders), stocks > 0, nil
}

// PortfolioQuantity sums stock quantities across the portfolio.
func (s *MetricsService) PortfolioQuantity(userID string, portfolioID int64) (float64, bool, error) {
	f, ok, err := s.portfolioFigures(userID, portfolioID)
	if err != nil {
		return 0, false, err
	}
	return f.quantity, ok, nil
}

// PortfolioInvestment sums stock investments across the portfolio.
func (s *MetricsService) PortfolioInvestment(userID string, portfolioID int64) (float64, bool, error) {
	f, ok, err := s.portfolioFigures(userID, portfolioID)
	if err != nil {
		return 0, false, err
	}
	return f.investment, ok, nil
}

// PortfolioGainLoss sums stock gain/loss figures across the portfolio.
func (s *MetricsService) PortfolioGainLoss(userID string, portfolioID int64) (float64, bool, error) {
	f, ok, err := s.portfolioFigures(userID, portfolioID)
	if err != nil {
		return 0, false, err
	}
	return f.gainLoss, ok, nil
}

// PortfolioDividends sums dividend amounts across the portfolio. ok=false
// when no dividend has ever been recorded.
func (s *MetricsService) PortfolioDividends(userID string, portfolioID int64) (float64, bool, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return 0, false, err
	}

	dividends, err := s.dividendRepo.ListByPortfolio(p.PortfolioKey)
	if err != nil {
		return 0, false, err
	}
	if len(dividends) == 0 {
		return 0, false, nil
	}

	var total float64
	for _, d := range dividends {
		total += d.Amount
	}
	return total, true, nil
}

// PortfolioSummary bundles the portfolio's aggregates. Fields are nil when
// the corresponding source rows are absent.
func (s *MetricsService) PortfolioSummary(userID string, portfolioID int64) (model.PortfolioSummary, error) {
	p, err := s.portfolioRepo.Get(userID, portfolioID)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	f, ok, err := s.portfolioFigures(userID, portfolioID)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	summary := model.PortfolioSummary{
		PortfolioID: p.PortfolioID,
		Name:        p.Name,
	}
	if ok {
		summary.Quantity = &f.quantity
		summary.Investment = &f.investment
		summary.GainLoss = &f.gainLoss
	}

	if dividends, ok, err := s.PortfolioDividends(userID, portfolioID); err != nil {
		return model.PortfolioSummary{}, err
	} else if ok {
		summary.Dividends = &dividends
	}

	return summary, nil
}

// UserGainLoss sums portfolio gain/loss across all of the user's
// portfolios, skipping portfolios whose own aggregate is absent. ok=false
// when every portfolio was skipped.
func (s *MetricsService) UserGainLoss(userID string) (float64, bool, error) {
	portfolios, err := s.portfolioRepo.ListByUser(userID)
	if err != nil {
		return 0, false, err
	}

	var total float64
	any := false
	for _, p := range portfolios {
		stocks, err := s.stockRepo.CountByPortfolio(p.PortfolioKey)
		if err != nil {
			return 0, false, err
		}
		if stocks == 0 {
			continue
		}

		orders, err := s.orderRepo.ListByPortfolio(p.PortfolioKey)
		if err != nil {
			return 0, false, err
		}
		total += replayOrders(orders).gainLoss
		any = true
	}

	return total, any, nil
}
