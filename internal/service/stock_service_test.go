package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/testutil"
)

// TestStockService_Add tests explicit stock registration.
func TestStockService_Add(t *testing.T) {
	t.Run("registers a ticker", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestStockService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		// Execute
		st, err := svc.Add(ctx, userID, p.PortfolioID, "AAPL")

		// Assert
		if err != nil {
			t.Fatalf("Add() returned unexpected error: %v", err)
		}
		if st.Ticker != "AAPL" {
			t.Errorf("Expected ticker AAPL, got %q", st.Ticker)
		}
	})

	t.Run("rejects a ticker that is already held", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestStockService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		if _, err := svc.Add(ctx, userID, p.PortfolioID, "AAPL"); err != nil {
			t.Fatalf("Add() returned unexpected error: %v", err)
		}

		// Execute
		_, err := svc.Add(ctx, userID, p.PortfolioID, "AAPL")

		// Assert
		if !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Errorf("Expected ErrDuplicateEntry, got %v", err)
		}
	})
}

// TestStockService_Delete tests removing a held ticker.
//
// WHY: Dropping a stock cascades its orders through the foreign key, but
// dividends and options hang off the portfolio and must survive.
func TestStockService_Delete(t *testing.T) {
	t.Run("removes the ticker and its orders only", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestStockService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		testutil.NewOrder(p, "AAPL").Build(t, db)
		testutil.NewDividend(p, "AAPL").Build(t, db)
		testutil.NewOption(p, "AAPL").Build(t, db)

		// Execute
		if err := svc.Delete(ctx, userID, p.PortfolioID, "AAPL"); err != nil {
			t.Fatalf("Delete() returned unexpected error: %v", err)
		}

		// Assert
		var orders, dividends, options int
		if err := db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&orders); err != nil {
			t.Fatalf("Failed to count orders: %v", err)
		}
		if err := db.QueryRow("SELECT COUNT(*) FROM dividends").Scan(&dividends); err != nil {
			t.Fatalf("Failed to count dividends: %v", err)
		}
		if err := db.QueryRow("SELECT COUNT(*) FROM options").Scan(&options); err != nil {
			t.Fatalf("Failed to count options: %v", err)
		}

		if orders != 0 {
			t.Errorf("Expected cascaded orders to be gone, found %d", orders)
		}
		if dividends != 1 || options != 1 {
			t.Errorf("Expected dividends and options to survive, got %d and %d", dividends, options)
		}

		if _, err := svc.Get(userID, p.PortfolioID, "AAPL"); !errors.Is(err, apperrors.ErrStockNotFound) {
			t.Errorf("Expected ErrStockNotFound, got %v", err)
		}
	})
}

// TestStockService_Tickers tests the ticker listing.
func TestStockService_Tickers(t *testing.T) {
	t.Run("lists held tickers", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestStockService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		testutil.NewOrder(p, "MSFT").Build(t, db)
		testutil.NewOrder(p, "AAPL").Build(t, db)

		// Execute
		tickers, err := svc.Tickers(userID, p.PortfolioID)

		// Assert
		if err != nil {
			t.Fatalf("Tickers() returned unexpected error: %v", err)
		}
		if len(tickers) != 2 {
			t.Errorf("Expected 2 tickers, got %d", len(tickers))
		}

		count, err := svc.Count(userID, p.PortfolioID)
		if err != nil {
			t.Fatalf("Count() returned unexpected error: %v", err)
		}
		if count != 2 {
			t.Errorf("Expected count 2, got %d", count)
		}
	})
}
