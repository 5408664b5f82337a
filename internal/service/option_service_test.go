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

// TestOptionService_Add tests option recording.
//
// WHY: Option IDs share the portfolio-wide dense scope with dividends, and
// a freshly recorded position must carry no realized gain/loss.
func TestOptionService_Add(t *testing.T) {
	t.Run("assigns dense ids across tickers", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		// Execute
		tickers := []string{"AAPL", "MSFT", "AAPL"}
		for i, ticker := range tickers {
			o, err := svc.Add(ctx, userID, p.PortfolioID, request.CreateOptionRequest{
				Ticker:   ticker,
				Type:     string(model.OptionTypeCall),
				Strike:   110,
				Premium:  2.5,
				Quantity: 1,
				Expires:  testutil.LedgerTimeAt(60),
				Status:   string(model.OptionStatusFilled),
			})
			if err != nil {
				t.Fatalf("Add() returned unexpected error: %v", err)
			}

			// Assert
			if o.OptionID != int64(i) {
				t.Errorf("Expected option id %d, got %d", i, o.OptionID)
			}
			if o.GainLoss != nil {
				t.Errorf("Expected nil gain/loss on a fresh position, got %v", *o.GainLoss)
			}
		}
	})

	t.Run("rejects an unknown status or type", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		req := request.CreateOptionRequest{
			Ticker:   "AAPL",
			Type:     string(model.OptionTypeCall),
			Strike:   110,
			Premium:  2.5,
			Quantity: 1,
			Expires:  testutil.LedgerTimeAt(60),
			Status:   string(model.OptionStatusFilled),
		}

		// Execute
		badStatus := req
		badStatus.Status = "Vested"
		_, statusErr := svc.Add(ctx, userID, p.PortfolioID, badStatus)

		badType := req
		badType.Type = "Straddle"
		_, typeErr := svc.Add(ctx, userID, p.PortfolioID, badType)

		// Assert
		if !errors.Is(statusErr, apperrors.ErrInvalidOptionStatus) {
			t.Errorf("Expected ErrInvalidOptionStatus, got %v", statusErr)
		}
		if !errors.Is(typeErr, apperrors.ErrInvalidOptionType) {
			t.Errorf("Expected ErrInvalidOptionType, got %v", typeErr)
		}
	})
}

// TestOptionService_Settle tests the terminal transitions.
//
// WHY: Closing, expiring and exercising are the only writes that set an
// option's realized gain/loss, and each must land in its own terminal status.
func TestOptionService_Settle(t *testing.T) {
	t.Run("close records the gain", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)
		testutil.NewOption(p, "AAPL").Build(t, db)

		// Execute
		o, err := svc.Close(ctx, userID, p.PortfolioID, 0, request.SettleOptionRequest{GainLoss: 150})

		// Assert
		if err != nil {
			t.Fatalf("Close() returned unexpected error: %v", err)
		}
		if o.Status != model.OptionStatusClosed {
			t.Errorf("Expected status Closed, got %q", o.Status)
		}
		if o.GainLoss == nil || *o.GainLoss != 150 {
			t.Errorf("Expected gain/loss 150, got %v", o.GainLoss)
		}
	})

	t.Run("expire records the loss", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)
		testutil.NewOption(p, "AAPL").WithPremium(3).Build(t, db)

		// Execute
		o, err := svc.Expire(ctx, userID, p.PortfolioID, 0, request.SettleOptionRequest{GainLoss: -300})

		// Assert
		if err != nil {
			t.Fatalf("Expire() returned unexpected error: %v", err)
		}
		if o.Status != model.OptionStatusExpired {
			t.Errorf("Expected status Expired, got %q", o.Status)
		}
		if o.GainLoss == nil || *o.GainLoss != -300 {
			t.Errorf("Expected gain/loss -300, got %v", o.GainLoss)
		}
	})

	t.Run("exercise marks the position exercised", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)
		testutil.NewOption(p, "AAPL").Build(t, db)

		// Execute
		o, err := svc.Exercise(ctx, userID, p.PortfolioID, 0, request.SettleOptionRequest{GainLoss: 75})

		// Assert
		if err != nil {
			t.Fatalf("Exercise() returned unexpected error: %v", err)
		}
		if o.Status != model.OptionStatusExercised {
			t.Errorf("Expected status Exercised, got %q", o.Status)
		}

		// The settled figure survives a reload
		got, err := svc.Get(userID, p.PortfolioID, 0)
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if got.GainLoss == nil || *got.GainLoss != 75 {
			t.Errorf("Expected persisted gain/loss 75, got %v", got.GainLoss)
		}
	})
}

// TestOptionService_Update tests partial updates.
func TestOptionService_Update(t *testing.T) {
	t.Run("merges only the provided fields", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)
		orig := testutil.NewOption(p, "AAPL").WithStrike(110).WithPremium(2.5).Build(t, db)

		// Execute
		newStrike := 115.0
		got, err := svc.Update(ctx, userID, p.PortfolioID, orig.OptionID,
			request.UpdateOptionRequest{Strike: &newStrike})

		// Assert
		if err != nil {
			t.Fatalf("Update() returned unexpected error: %v", err)
		}
		if got.Strike != 115 {
			t.Errorf("Expected strike 115, got %v", got.Strike)
		}
		if got.Premium != 2.5 {
			t.Errorf("Expected premium to stay 2.5, got %v", got.Premium)
		}
		if got.Type != model.OptionTypeCall {
			t.Errorf("Expected type to stay Call, got %q", got.Type)
		}
	})

	t.Run("rejects an empty update", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)
		testutil.NewOption(p, "AAPL").Build(t, db)

		// Execute
		_, err := svc.Update(context.Background(), userID, p.PortfolioID, 0,
			request.UpdateOptionRequest{})

		// Assert
		if !errors.Is(err, apperrors.ErrNoFieldsToUpdate) {
			t.Errorf("Expected ErrNoFieldsToUpdate, got %v", err)
		}
	})
}

// TestOptionService_Delete tests deletion and portfolio-wide compaction.
func TestOptionService_Delete(t *testing.T) {
	t.Run("compacts ids across the portfolio", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		strikes := []float64{100, 110, 120}
		for i, strike := range strikes {
			testutil.NewOption(p, "AAPL").
				WithStrike(strike).WithCreated(testutil.LedgerTimeAt(i)).Build(t, db)
		}

		// Execute
		if err := svc.Delete(ctx, userID, p.PortfolioID, 1); err != nil {
			t.Fatalf("Delete() returned unexpected error: %v", err)
		}

		// Assert
		options, err := svc.List(userID, p.PortfolioID)
		if err != nil {
			t.Fatalf("List() returned unexpected error: %v", err)
		}
		if len(options) != 2 {
			t.Fatalf("Expected 2 options, got %d", len(options))
		}
		if options[0].OptionID != 0 || options[0].Strike != 100 {
			t.Errorf("Expected id 0 strike 100, got id %d strike %v",
				options[0].OptionID, options[0].Strike)
		}
		if options[1].OptionID != 1 || options[1].Strike != 120 {
			t.Errorf("Expected id 1 strike 120, got id %d strike %v",
				options[1].OptionID, options[1].Strike)
		}
	})
}

// TestOptionService_Counts tests the per-type counters.
func TestOptionService_Counts(t *testing.T) {
	t.Run("counts calls and puts separately", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestOptionService(t, db)
		userID := testutil.MakeUserID()
		p := testutil.NewPortfolio(userID).Build(t, db)

		testutil.NewOption(p, "AAPL").Build(t, db)
		testutil.NewOption(p, "AAPL").Build(t, db)
		testutil.NewOption(p, "AAPL").Put().Build(t, db)

		// Execute
		calls, err := svc.CallCount(userID, p.PortfolioID, "AAPL")
		if err != nil {
			t.Fatalf("CallCount() returned unexpected error: %v", err)
		}
		puts, err := svc.PutCount(userID, p.PortfolioID, "AAPL")
		if err != nil {
			t.Fatalf("PutCount() returned unexpected error: %v", err)
		}

		// Assert
		if calls != 2 {
			t.Errorf("Expected 2 calls, got %d", calls)
		}
		if puts != 1 {
			t.Errorf("Expected 1 put, got %d", puts)
		}
	})
}
