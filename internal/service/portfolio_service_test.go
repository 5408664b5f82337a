package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sleepingstar/stockfolio/internal/api/request"
	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/testutil"
)

// TestPortfolioService_Create tests portfolio creation.
//
// WHY: Creation assigns the dense index and fills in defaults, and it also
// registers the owning user on first use. Getting any of that wrong breaks
// every operation that addresses a portfolio by ID afterwards.
func TestPortfolioService_Create(t *testing.T) {
	t.Run("assigns sequential dense ids", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()

		// Execute
		for i := 0; i < 3; i++ {
			p, err := svc.Create(ctx, userID, request.CreatePortfolioRequest{
				Name: testutil.MakePortfolioName(""),
			})
			if err != nil {
				t.Fatalf("Create() returned unexpected error: %v", err)
			}

			// Assert
			if p.PortfolioID != int64(i) {
				t.Errorf("Expected dense id %d, got %d", i, p.PortfolioID)
			}
		}
	})

	t.Run("defaults name and description when omitted", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()

		// Execute
		p, err := svc.Create(ctx, userID, request.CreatePortfolioRequest{})

		// Assert
		if err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}
		if p.Name != "Portfolio 0" {
			t.Errorf("Expected default name \"Portfolio 0\", got %q", p.Name)
		}
		if p.Description != "No description provided." {
			t.Errorf("Expected default description, got %q", p.Description)
		}
	})

	t.Run("default name skips a survivor of an earlier delete", func(t *testing.T) {
		// Setup: two default-named portfolios, then delete id 0. The
		// survivor compacts to id 0 but keeps its name "Portfolio 1".
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()

		for i := 0; i < 2; i++ {
			if _, err := svc.Create(ctx, userID, request.CreatePortfolioRequest{}); err != nil {
				t.Fatalf("Create() returned unexpected error: %v", err)
			}
		}
		if err := svc.Delete(ctx, userID, 0); err != nil {
			t.Fatalf("Delete() returned unexpected error: %v", err)
		}

		// Execute
		p, err := svc.Create(ctx, userID, request.CreatePortfolioRequest{})

		// Assert: the computed default "Portfolio 1" is taken, so the
		// create moves on instead of failing
		if err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}
		if p.PortfolioID != 1 {
			t.Errorf("Expected dense id 1, got %d", p.PortfolioID)
		}
		if p.Name != "Portfolio 2" {
			t.Errorf("Expected name \"Portfolio 2\", got %q", p.Name)
		}
	})

	t.Run("registers the user on first use", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		userSvc := testutil.NewTestUserService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()

		// Execute
		if _, err := svc.Create(ctx, userID, request.CreatePortfolioRequest{}); err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}

		// Assert
		exists, err := userSvc.UserExists(userID)
		if err != nil {
			t.Fatalf("UserExists() returned unexpected error: %v", err)
		}
		if !exists {
			t.Error("Expected user row to exist after portfolio creation")
		}
	})

	t.Run("rejects a duplicate name for the same user", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()

		req := request.CreatePortfolioRequest{Name: "Growth"}
		if _, err := svc.Create(ctx, userID, req); err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}

		// Execute
		_, err := svc.Create(ctx, userID, req)

		// Assert
		if !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Errorf("Expected ErrDuplicateEntry, got %v", err)
		}
	})

	t.Run("allows the same name for different users", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		ctx := context.Background()

		req := request.CreatePortfolioRequest{Name: "Growth"}
		if _, err := svc.Create(ctx, testutil.MakeUserID(), req); err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}

		// Execute
		_, err := svc.Create(ctx, testutil.MakeUserID(), req)

		// Assert
		if err != nil {
			t.Errorf("Expected success for second user, got %v", err)
		}
	})
}

// TestPortfolioService_Delete tests deletion and the compaction that follows.
//
// WHY: Deleting from the middle of a dense sequence must renumber the
// survivors in one atomic unit; a client iterating 0..count-1 right after
// the delete may never observe a gap.
func TestPortfolioService_Delete(t *testing.T) {
	t.Run("compacts surviving ids", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()

		names := []string{"First", "Second", "Third"}
		for _, name := range names {
			if _, err := svc.Create(ctx, userID, request.CreatePortfolioRequest{Name: name}); err != nil {
				t.Fatalf("Create() returned unexpected error: %v", err)
			}
		}

		// Execute: delete the middle portfolio
		if err := svc.Delete(ctx, userID, 1); err != nil {
			t.Fatalf("Delete() returned unexpected error: %v", err)
		}

		// Assert
		portfolios, err := svc.List(userID)
		if err != nil {
			t.Fatalf("List() returned unexpected error: %v", err)
		}
		if len(portfolios) != 2 {
			t.Fatalf("Expected 2 portfolios, got %d", len(portfolios))
		}
		if portfolios[0].PortfolioID != 0 || portfolios[0].Name != "First" {
			t.Errorf("Expected id 0 to be First, got id %d name %q",
				portfolios[0].PortfolioID, portfolios[0].Name)
		}
		if portfolios[1].PortfolioID != 1 || portfolios[1].Name != "Third" {
			t.Errorf("Expected id 1 to be Third, got id %d name %q",
				portfolios[1].PortfolioID, portfolios[1].Name)
		}
	})

	t.Run("cascades the portfolio's ledger rows", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()

		p, err := svc.Create(ctx, userID, request.CreatePortfolioRequest{})
		if err != nil {
			t.Fatalf("Create() returned unexpected error: %v", err)
		}
		testutil.NewOrder(p, "AAPL").Build(t, db)
		testutil.NewDividend(p, "AAPL").Build(t, db)

		// Execute
		if err := svc.Delete(ctx, userID, p.PortfolioID); err != nil {
			t.Fatalf("Delete() returned unexpected error: %v", err)
		}

		// Assert
		var remaining int
		if err := db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&remaining); err != nil {
			t.Fatalf("Failed to count orders: %v", err)
		}
		if remaining != 0 {
			t.Errorf("Expected cascaded orders to be gone, found %d", remaining)
		}
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		userID := testutil.MakeUserID()
		testutil.NewPortfolio(userID).Build(t, db)

		// Execute
		err := svc.Delete(context.Background(), userID, 7)

		// Assert
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

// TestPortfolioService_Rename tests renames and description updates.
func TestPortfolioService_Rename(t *testing.T) {
	t.Run("renames without touching the dense id", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()
		testutil.NewPortfolio(userID).WithName("Before").Build(t, db)

		// Execute
		p, err := svc.Rename(ctx, userID, 0, request.RenamePortfolioRequest{Name: "After"})

		// Assert
		if err != nil {
			t.Fatalf("Rename() returned unexpected error: %v", err)
		}
		if p.Name != "After" {
			t.Errorf("Expected name After, got %q", p.Name)
		}
		if p.PortfolioID != 0 {
			t.Errorf("Expected dense id to stay 0, got %d", p.PortfolioID)
		}
	})

	t.Run("replaces the description", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		userID := testutil.MakeUserID()
		testutil.NewPortfolio(userID).Build(t, db)

		// Execute
		p, err := svc.UpdateDescription(context.Background(), userID, 0,
			request.UpdatePortfolioDescriptionRequest{Description: "Long term holdings"})

		// Assert
		if err != nil {
			t.Fatalf("UpdateDescription() returned unexpected error: %v", err)
		}
		if p.Description != "Long term holdings" {
			t.Errorf("Expected updated description, got %q", p.Description)
		}
	})
}

// TestPortfolioService_Lookups tests the read paths.
func TestPortfolioService_Lookups(t *testing.T) {
	t.Run("finds a portfolio by name", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		userID := testutil.MakeUserID()
		want := testutil.NewPortfolio(userID).WithName("Retirement").Build(t, db)
		testutil.NewPortfolio(userID).WithName("Gambling").Build(t, db)

		// Execute
		got, err := svc.GetByName(userID, "Retirement")

		// Assert
		if err != nil {
			t.Fatalf("GetByName() returned unexpected error: %v", err)
		}
		if got.PortfolioKey != want.PortfolioKey {
			t.Errorf("Expected key %d, got %d", want.PortfolioKey, got.PortfolioKey)
		}
	})

	t.Run("first returns the portfolio at id 0", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		userID := testutil.MakeUserID()
		want := testutil.NewPortfolio(userID).WithName("Oldest").Build(t, db)
		testutil.NewPortfolio(userID).WithName("Newest").Build(t, db)

		// Execute
		got, err := svc.First(userID)

		// Assert
		if err != nil {
			t.Fatalf("First() returned unexpected error: %v", err)
		}
		if got.PortfolioKey != want.PortfolioKey {
			t.Errorf("Expected key %d, got %d", want.PortfolioKey, got.PortfolioKey)
		}
	})

	t.Run("list is empty for an unknown user", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)

		// Execute
		portfolios, err := svc.List(testutil.MakeUserID())

		// Assert
		if err != nil {
			t.Fatalf("List() returned unexpected error: %v", err)
		}
		if len(portfolios) != 0 {
			t.Errorf("Expected empty slice, got %d portfolios", len(portfolios))
		}
	})

	t.Run("count matches created portfolios", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		userID := testutil.MakeUserID()
		for i := 0; i < 4; i++ {
			testutil.NewPortfolio(userID).Build(t, db)
		}

		// Execute
		count, err := svc.Count(userID)

		// Assert
		if err != nil {
			t.Fatalf("Count() returned unexpected error: %v", err)
		}
		if count != 4 {
			t.Errorf("Expected count 4, got %d", count)
		}
	})
}
