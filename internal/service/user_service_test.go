package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sleepingstar/stockfolio/internal/apperrors"
	"github.com/sleepingstar/stockfolio/internal/testutil"
)

// TestUserService_EnsureUser tests idempotent user registration.
//
// WHY: Users come from an external identity and register on first use, so
// repeated ensures must never create a second row or change the original.
func TestUserService_EnsureUser(t *testing.T) {
	t.Run("creates on first call and reuses afterwards", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestUserService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()

		// Execute
		first, err := svc.EnsureUser(ctx, userID)
		if err != nil {
			t.Fatalf("EnsureUser() returned unexpected error: %v", err)
		}
		second, err := svc.EnsureUser(ctx, userID)
		if err != nil {
			t.Fatalf("EnsureUser() returned unexpected error: %v", err)
		}

		// Assert
		if first.Created != second.Created {
			t.Errorf("Expected the original row back, got created %q then %q",
				first.Created, second.Created)
		}

		count, err := svc.UserCount()
		if err != nil {
			t.Fatalf("UserCount() returned unexpected error: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 user, got %d", count)
		}
	})

	t.Run("rejects an empty id", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestUserService(t, db)

		// Execute
		_, err := svc.EnsureUser(context.Background(), "")

		// Assert
		if !errors.Is(err, apperrors.ErrEmptyID) {
			t.Errorf("Expected ErrEmptyID, got %v", err)
		}
	})
}

// TestUserService_GetUser tests lookups.
func TestUserService_GetUser(t *testing.T) {
	t.Run("returns not found for an unknown user", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestUserService(t, db)

		// Execute
		_, err := svc.GetUser(testutil.MakeUserID())

		// Assert
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			t.Errorf("Expected ErrUserNotFound, got %v", err)
		}
	})
}

// TestUserService_DeleteUser tests the root-level cascade.
//
// WHY: Deleting a user removes the entire subtree beneath them in one unit.
// Nothing may survive, and deleting an absent user reports false rather
// than failing.
func TestUserService_DeleteUser(t *testing.T) {
	t.Run("cascades portfolios and ledger rows", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestUserService(t, db)
		ctx := context.Background()
		userID := testutil.MakeUserID()

		p := testutil.NewPortfolio(userID).Build(t, db)
		testutil.NewOrder(p, "AAPL").Build(t, db)
		testutil.NewDividend(p, "AAPL").Build(t, db)
		testutil.NewOption(p, "AAPL").Build(t, db)
		testutil.NewWatchlist(userID).Watching("AAPL").Build(t, db)

		// Execute
		deleted, err := svc.DeleteUser(ctx, userID)

		// Assert
		if err != nil {
			t.Fatalf("DeleteUser() returned unexpected error: %v", err)
		}
		if !deleted {
			t.Fatal("Expected DeleteUser to report true")
		}

		for _, table := range []string{"portfolios", "stocks", "orders", "dividends", "options", "watchlists", "watching"} {
			var remaining int
			if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&remaining); err != nil {
				t.Fatalf("Failed to count %s: %v", table, err)
			}
			if remaining != 0 {
				t.Errorf("Expected %s to be empty after cascade, found %d rows", table, remaining)
			}
		}
	})

	t.Run("reports false for an unknown user", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestUserService(t, db)

		// Execute
		deleted, err := svc.DeleteUser(context.Background(), testutil.MakeUserID())

		// Assert
		if err != nil {
			t.Fatalf("DeleteUser() returned unexpected error: %v", err)
		}
		if deleted {
			t.Error("Expected DeleteUser to report false for an unknown user")
		}
	})
}
