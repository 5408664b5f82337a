package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sleepingstar/stockfolio/internal/api/request"
	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/model"
	"github.com/sleepingstar/stockfolio/internal/testutil"
)

func filledBuy(price, quantity float64) request.CreateOrderRequest {
	return request.CreateOrderRequest{
		Price:    price,
		Quantity: quantity,
		Status:   string(model.OrderStatusFilled),
		Type:     string(model.OrderTypeBuy),
	}
}

// TestOrderService_Add tests order recording.
//
// WHY: Orders carry the tightest dense-index scope, per (portfolio, ticker),
// and recording one must create the stock row on first use. Both behaviors
// anchor everything the aggregation layer computes later.
func TestOrderService_Add(t *testing.T) {
	t.Run("assigns dense ids per ticker", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOrderService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		// Execute: two AAPL orders, then one MSFT order
		for i := 0; i < 2; i++ {
			o, err := svc.Add(ctx, userID, p.PortfolioID, "AAPL", filledBuy(100, 10))
			if err != nil {
				t.Fatalf("Add() returned unexpected error: %v", err)
			}
			if o.OrderID != int64(i) {
				t.Errorf("Expected AAPL order id %d, got %d", i, o.OrderID)
			}
		}
		o, err := svc.Add(ctx, userID, p.PortfolioID, "MSFT", filledBuy(300, 5))

		// Assert: the second ticker starts its own sequence at 0
		if err != nil {
			t.Fatalf("Add() returned unexpected error: %v", err)
		}
		if o.OrderID != 0 {
			t.Errorf("Expected MSFT order id 0, got %d", o.OrderID)
		}
	})

	t.Run("creates the stock row on first use", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOrderService(t, db)
		stockSvc := testutil.NewTestStockService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		// Execute
		if _, err := svc.Add(ctx, userID, p.PortfolioID, "AAPL", filledBuy(100, 10)); err != nil {
			t.Fatalf("Add() returned unexpected error: %v", err)
		}

		// Assert
		st, err := stockSvc.Get(userID, p.PortfolioID, "AAPL")
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if st.Ticker != "AAPL" {
			t.Errorf("Expected stock AAPL, got %q", st.Ticker)
		}
	})

	t.Run("returns not found for an unknown portfolio", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOrderService(t, db)

		// Execute
		_, err := svc.Add(context.Background(), testutil.MakeUserID(), 0, "AAPL", filledBuy(100, 10))

		// Assert
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})

	t.Run("rejects an unknown status or type", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOrderService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		// Execute
		badStatus := filledBuy(100, 10)
		badStatus.Status = "Teleported"
		_, statusErr := svc.Add(ctx, userID, p.PortfolioID, "AAPL", badStatus)

		badType := filledBuy(100, 10)
		badType.Type = "Borrow"
		_, typeErr := svc.Add(ctx, userID, p.PortfolioID, "AAPL", badType)

		// Assert
		if !errors.Is(statusErr, apperrors.ErrInvalidOrderStatus) {
			t.Errorf("Expected ErrInvalidOrderStatus, got %v", statusErr)
		}
		if !errors.Is(typeErr, apperrors.ErrInvalidOrderType) {
			t.Errorf("Expected ErrInvalidOrderType, got %v", typeErr)
		}
	})
}

// TestOrderService_Update tests partial updates.
//
// WHY: Updates are field-merged: a request naming two of five fields must
// leave the other three untouched, and a request naming none is an error
// rather than a silent no-op.
func TestOrderService_Update(t *testing.T) {
	t.Run("merges only the provided fields", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOrderService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)
		orig := testutil.NewOrder(p, "AAPL").WithPrice(100).WithQuantity(10).Pending().Build(t, db)

		// Execute: fill the order at a new price
		newPrice := 101.5
		newStatus := string(model.OrderStatusFilled)
		got, err := svc.Update(ctx, userID, p.PortfolioID, "AAPL", orig.OrderID,
			request.UpdateOrderRequest{Price: &newPrice, Status: &newStatus})

		// Assert
		if err != nil {
			t.Fatalf("Update() returned unexpected error: %v", err)
		}
		if got.Price != 101.5 {
			t.Errorf("Expected price 101.5, got %v", got.Price)
		}
		if got.Status != model.OrderStatusFilled {
			t.Errorf("Expected status Filled, got %q", got.Status)
		}
		if got.Quantity != 10 {
			t.Errorf("Expected quantity to stay 10, got %v", got.Quantity)
		}
		if got.Type != model.OrderTypeBuy {
			t.Errorf("Expected type to stay Buy, got %q", got.Type)
		}
		if got.Created != orig.Created {
			t.Errorf("Expected created to stay %q, got %q", orig.Created, got.Created)
		}
	})

	t.Run("rejects an empty update", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOrderService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)
		o := testutil.NewOrder(p, "AAPL").Build(t, db)

		// Execute
		_, err := svc.Update(context.Background(), userID, p.PortfolioID, "AAPL", o.OrderID,
			request.UpdateOrderRequest{})

		// Assert
		if !errors.Is(err, apperrors.ErrNoFieldsToUpdate) {
			t.Errorf("Expected ErrNoFieldsToUpdate, got %v", err)
		}
	})

	t.Run("returns not found for an unknown order", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOrderService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)
		testutil.NewOrder(p, "AAPL").Build(t, db)

		// Execute
		price := 50.0
		_, err := svc.Update(context.Background(), userID, p.PortfolioID, "AAPL", 9,
			request.UpdateOrderRequest{Price: &price})

		// Assert
		if !errors.Is(err, apperrors.ErrOrderNotFound) {
			t.Errorf("Expected ErrOrderNotFound, got %v", err)
		}
	})
}

// TestOrderService_Delete tests deletion and per-ticker compaction.
func TestOrderService_Delete(t *testing.T) {
	t.Run("compacts the ticker's ids", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOrderService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		prices := []float64{10, 20, 30}
		for i, price := range prices {
			testutil.NewOrder(p, "AAPL").
				WithPrice(price).WithCreated(testutil.LedgerTimeAt(i)).Build(t, db)
		}

		// Execute: delete the middle order
		if err := svc.Delete(ctx, userID, p.PortfolioID, "AAPL", 1); err != nil {
			t.Fatalf("Delete() returned unexpected error: %v", err)
		}

		// Assert
		orders, err := svc.List(userID, p.PortfolioID, "AAPL")
		if err != nil {
			t.Fatalf("List() returned unexpected error: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("Expected 2 orders, got %d", len(orders))
		}
		if orders[0].OrderID != 0 || orders[0].Price != 10 {
			t.Errorf("Expected id 0 at price 10, got id %d price %v", orders[0].OrderID, orders[0].Price)
		}
		if orders[1].OrderID != 1 || orders[1].Price != 30 {
			t.Errorf("Expected id 1 at price 30, got id %d price %v", orders[1].OrderID, orders[1].Price)
		}
	})
}

// TestOrderService_Purge tests bulk deletion by status.
//
// WHY: Purge spans tickers, so each affected (portfolio, ticker) scope must
// be renumbered independently after the sweep.
func TestOrderService_Purge(t *testing.T) {
	t.Run("defaults to cancelled orders across the portfolio", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOrderService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		testutil.NewOrder(p, "AAPL").WithCreated(testutil.LedgerTimeAt(0)).Cancelled().Build(t, db)
		testutil.NewOrder(p, "AAPL").WithCreated(testutil.LedgerTimeAt(1)).Build(t, db)
		testutil.NewOrder(p, "MSFT").WithCreated(testutil.LedgerTimeAt(2)).Cancelled().Build(t, db)

		// Execute
		deleted, err := svc.Purge(ctx, userID, p.PortfolioID, request.PurgeOrdersRequest{})

		// Assert
		if err != nil {
			t.Fatalf("Purge() returned unexpected error: %v", err)
		}
		if deleted != 2 {
			t.Errorf("Expected 2 deleted orders, got %d", deleted)
		}

		// The surviving AAPL order moved down to id 0
		orders, err := svc.List(userID, p.PortfolioID, "AAPL")
		if err != nil {
			t.Fatalf("List() returned unexpected error: %v", err)
		}
		if len(orders) != 1 || orders[0].OrderID != 0 {
			t.Errorf("Expected one AAPL order at id 0, got %+v", orders)
		}
		if orders[0].Status != model.OrderStatusFilled {
			t.Errorf("Expected the Filled order to survive, got %q", orders[0].Status)
		}
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOrderService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		testutil.NewOrder(p, "AAPL").Cancelled().Build(t, db)

		// Execute
		_, err := svc.Purge(ctx, userID, p.PortfolioID, request.PurgeOrdersRequest{Status: "Canceled"})

		// Assert
		if !errors.Is(err, apperrors.ErrInvalidOrderStatus) {
			t.Errorf("Expected ErrInvalidOrderStatus, got %v", err)
		}

		orders, err := svc.List(userID, p.PortfolioID, "AAPL")
		if err != nil {
			t.Fatalf("List() returned unexpected error: %v", err)
		}
		if len(orders) != 1 {
			t.Errorf("Expected the order to survive, got %d orders", len(orders))
		}
	})

	t.Run("honors an explicit ticker and status", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOrderService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		testutil.NewOrder(p, "AAPL").WithCreated(testutil.LedgerTimeAt(0)).Pending().Build(t, db)
		testutil.NewOrder(p, "MSFT").WithCreated(testutil.LedgerTimeAt(1)).Pending().Build(t, db)

		// Execute: purge pending AAPL orders only
		deleted, err := svc.Purge(ctx, userID, p.PortfolioID, request.PurgeOrdersRequest{
			Ticker: "AAPL",
			Status: string(model.OrderStatusPending),
		})

		// Assert
		if err != nil {
			t.Fatalf("Purge() returned unexpected error: %v", err)
		}
		if deleted != 1 {
			t.Errorf("Expected 1 deleted order, got %d", deleted)
		}

		remaining, err := svc.Count(userID, p.PortfolioID, "MSFT")
		if err != nil {
			t.Fatalf("Count() returned unexpected error: %v", err)
		}
		if remaining != 1 {
			t.Errorf("Expected the MSFT order to survive, count %d", remaining)
		}
	})

	t.Run("treats the ticker all as the whole portfolio", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOrderService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		testutil.NewOrder(p, "AAPL").Cancelled().Build(t, db)
		testutil.NewOrder(p, "MSFT").Cancelled().Build(t, db)

		// Execute
		deleted, err := svc.Purge(ctx, userID, p.PortfolioID, request.PurgeOrdersRequest{Ticker: "all"})

		// Assert
		if err != nil {
			t.Fatalf("Purge() returned unexpected error: %v", err)
		}
		if deleted != 2 {
			t.Errorf("Expected 2 deleted orders, got %d", deleted)
		}
	})
}
