package service_test

import (
	"testing"

	"github.com/sleepingstar/stockfolio/internal/testutil"
)

// TestMetricsService_StockAggregates tests per-ticker position replay.
//
// WHY: Aggregates are never stored; every read replays the Filled orders.
// The replay math and the Filled-only filter are the two rules everything
// else rests on, including the distinction between a computed zero and an
// absent value.
func TestMetricsService_StockAggregates(t *testing.T) {
	t.Run("replays a buy and a partial sell", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestMetricsService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		// Buy 10 @ 100, sell 4 @ 120
		testutil.NewOrder(p, "AAPL").WithPrice(100).WithQuantity(10).Build(t, db)
		testutil.NewOrder(p, "AAPL").WithPrice(120).WithQuantity(4).Sell().Build(t, db)

		// Execute and assert each figure
		quantity, ok, err := svc.StockQuantity(userID, p.PortfolioID, "AAPL")
		if err != nil {
			t.Fatalf("StockQuantity() returned unexpected error: %v", err)
		}
		if !ok || quantity != 6 {
			t.Errorf("Expected quantity 6 (ok), got %v (ok=%v)", quantity, ok)
		}

		investment, ok, err := svc.StockInvestment(userID, p.PortfolioID, "AAPL")
		if err != nil {
			t.Fatalf("StockInvestment() returned unexpected error: %v", err)
		}
		if !ok || investment != 520 {
			t.Errorf("Expected investment 520 (ok), got %v (ok=%v)", investment, ok)
		}

		gainLoss, ok, err := svc.StockGainLoss(userID, p.PortfolioID, "AAPL")
		if err != nil {
			t.Fatalf("StockGainLoss() returned unexpected error: %v", err)
		}
		if !ok || gainLoss != -520 {
			t.Errorf("Expected gain/loss -520 (ok), got %v (ok=%v)", gainLoss, ok)
		}
	})

	t.Run("excludes pending and cancelled orders", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestMetricsService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		testutil.NewOrder(p, "AAPL").WithPrice(100).WithQuantity(10).Build(t, db)
		testutil.NewOrder(p, "AAPL").WithPrice(90).WithQuantity(50).Pending().Build(t, db)
		testutil.NewOrder(p, "AAPL").WithPrice(80).WithQuantity(50).Cancelled().Build(t, db)

		// Execute
		quantity, ok, err := svc.StockQuantity(userID, p.PortfolioID, "AAPL")

		// Assert: only the Filled buy counts
		if err != nil {
			t.Fatalf("StockQuantity() returned unexpected error: %v", err)
		}
		if !ok || quantity != 10 {
			t.Errorf("Expected quantity 10 (ok), got %v (ok=%v)", quantity, ok)
		}
	})

	t.Run("reports absent only when the ticker has no orders", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestMetricsService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		testutil.NewOrder(p, "AAPL").Pending().Build(t, db)

		// Execute
		quantity, ok, err := svc.StockQuantity(userID, p.PortfolioID, "AAPL")
		if err != nil {
			t.Fatalf("StockQuantity() returned unexpected error: %v", err)
		}
		_, emptyOK, err := svc.StockQuantity(userID, p.PortfolioID, "MSFT")
		if err != nil {
			t.Fatalf("StockQuantity() returned unexpected error: %v", err)
		}

		// Assert: a pending-only ticker is a present zero, an orderless one is absent
		if !ok || quantity != 0 {
			t.Errorf("Expected quantity 0 (ok) for a pending-only ticker, got %v (ok=%v)", quantity, ok)
		}
		if emptyOK {
			t.Error("Expected absent aggregate for a ticker with no orders")
		}
	})

	t.Run("distinguishes a computed zero from absent", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestMetricsService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		// Fully offsetting position
		testutil.NewOrder(p, "AAPL").WithPrice(100).WithQuantity(10).Build(t, db)
		testutil.NewOrder(p, "AAPL").WithPrice(100).WithQuantity(10).Sell().Build(t, db)

		// Execute
		quantity, ok, err := svc.StockQuantity(userID, p.PortfolioID, "AAPL")

		// Assert
		if err != nil {
			t.Fatalf("StockQuantity() returned unexpected error: %v", err)
		}
		if !ok {
			t.Fatal("Expected a present aggregate for an offset position")
		}
		if quantity != 0 {
			t.Errorf("Expected quantity 0, got %v", quantity)
		}
	})

	t.Run("summary carries nil figures for an absent position", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestMetricsService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		// Execute: AAPL has no orders at all
		summary, err := svc.StockSummary(userID, p.PortfolioID, "AAPL")

		// Assert
		if err != nil {
			t.Fatalf("StockSummary() returned unexpected error: %v", err)
		}
		if summary.Ticker != "AAPL" {
			t.Errorf("Expected ticker AAPL, got %q", summary.Ticker)
		}
		if summary.Quantity != nil || summary.Investment != nil || summary.GainLoss != nil {
			t.Error("Expected nil figures for a ticker with no orders")
		}
	})
}

// TestMetricsService_PortfolioAggregates tests portfolio-wide replay and
// dividend totals.
func TestMetricsService_PortfolioAggregates(t *testing.T) {
	t.Run("sums filled orders across tickers", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestMetricsService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		testutil.NewOrder(p, "AAPL").WithPrice(100).WithQuantity(10).Build(t, db)
		testutil.NewOrder(p, "MSFT").WithPrice(40).WithQuantity(5).Build(t, db)

		// Execute
		investment, ok, err := svc.PortfolioInvestment(userID, p.PortfolioID)

		// Assert: 1000 + 200
		if err != nil {
			t.Fatalf("PortfolioInvestment() returned unexpected error: %v", err)
		}
		if !ok || investment != 1200 {
			t.Errorf("Expected investment 1200 (ok), got %v (ok=%v)", investment, ok)
		}
	})

	t.Run("totals dividends across tickers", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestMetricsService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		testutil.NewDividend(p, "AAPL").WithAmount(25).Build(t, db)
		testutil.NewDividend(p, "MSFT").WithAmount(12.5).Build(t, db)

		// Execute
		total, ok, err := svc.PortfolioDividends(userID, p.PortfolioID)

		// Assert
		if err != nil {
			t.Fatalf("PortfolioDividends() returned unexpected error: %v", err)
		}
		if !ok || total != 37.5 {
			t.Errorf("Expected dividends 37.5 (ok), got %v (ok=%v)", total, ok)
		}
	})

	t.Run("counts a pending-only portfolio as a present zero", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestMetricsService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)
		empty := testutil.NewPortfolio(userID).Build(t, db)

		testutil.NewOrder(p, "AAPL").Pending().Build(t, db)

		// Execute
		investment, ok, err := svc.PortfolioInvestment(userID, p.PortfolioID)
		if err != nil {
			t.Fatalf("PortfolioInvestment() returned unexpected error: %v", err)
		}
		_, emptyOK, err := svc.PortfolioInvestment(userID, empty.PortfolioID)
		if err != nil {
			t.Fatalf("PortfolioInvestment() returned unexpected error: %v", err)
		}

		// Assert: holding a stock makes the aggregate present even with no fills
		if !ok || investment != 0 {
			t.Errorf("Expected investment 0 (ok), got %v (ok=%v)", investment, ok)
		}
		if emptyOK {
			t.Error("Expected absent aggregate for a portfolio with no stocks")
		}
	})

	t.Run("reports absent dividends when none are recorded", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestMetricsService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		// Execute
		_, ok, err := svc.PortfolioDividends(userID, p.PortfolioID)

		// Assert
		if err != nil {
			t.Fatalf("PortfolioDividends() returned unexpected error: %v", err)
		}
		if ok {
			t.Error("Expected absent dividend total for an empty portfolio")
		}
	})

	t.Run("summary reflects the portfolio identity", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestMetricsService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).WithName("Core").Build(t, db)

		testutil.NewOrder(p, "AAPL").WithPrice(100).WithQuantity(10).Build(t, db)

		// Execute
		summary, err := svc.PortfolioSummary(userID, p.PortfolioID)

		// Assert
		if err != nil {
			t.Fatalf("PortfolioSummary() returned unexpected error: %v", err)
		}
		if summary.PortfolioID != p.PortfolioID || summary.Name != "Core" {
			t.Errorf("Expected summary for Core at id %d, got %+v", p.PortfolioID, summary)
		}
		if summary.Investment == nil || *summary.Investment != 1000 {
			t.Errorf("Expected investment 1000, got %v", summary.Investment)
		}
		if summary.Dividends != nil {
			t.Errorf("Expected nil dividends, got %v", *summary.Dividends)
		}
	})
}

// TestMetricsService_UserGainLoss tests the cross-portfolio roll-up.
//
// WHY: The user-level figure sums only portfolios that have something to
// report; a portfolio holding no stocks must be skipped, not counted as
// zero, and a user with none of them at all reports absent.
func TestMetricsService_UserGainLoss(t *testing.T) {
	t.Run("sums across portfolios and skips absent ones", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestMetricsService(t, db)
		userID := testutil.MakeUserID()

		active := testutil.NewPortfolio(userID).Build(t, db)
		testutil.NewPortfolio(userID).Build(t, db) // no stocks, skipped

		testutil.NewOrder(active, "AAPL").WithPrice(100).WithQuantity(10).Build(t, db)

		// Execute
		gainLoss, ok, err := svc.UserGainLoss(userID)

		// Assert: only the active portfolio contributes
		if err != nil {
			t.Fatalf("UserGainLoss() returned unexpected error: %v", err)
		}
		if !ok || gainLoss != -1000 {
			t.Errorf("Expected gain/loss -1000 (ok), got %v (ok=%v)", gainLoss, ok)
		}
	})

	t.Run("reports absent when no portfolio holds stocks", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestMetricsService(t, db)
		userID := testutil.MakeUserID()
		testutil.NewPortfolio(userID).Build(t, db)

		// Execute
		_, ok, err := svc.UserGainLoss(userID)

		// Assert
		if err != nil {
			t.Fatalf("UserGainLoss() returned unexpected error: %v", err)
		}
		if ok {
			t.Error("Expected absent user gain/loss")
		}
	})
}
