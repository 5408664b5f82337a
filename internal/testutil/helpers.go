package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sleepingstar/stockfolio/internal/repository"
	"github.com/sleepingstar/stockfolio/internal/service"
)

func NewTestUserService(t *testing.T, db *sql.DB) *service.UserService {
	t.Helper()

	return service.NewUserService(
		db,
		repository.NewUserRepository(db),
		service.NewUserLocks(),
		zerolog.Nop(),
	)
}

func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	return service.NewPortfolioService(
		db,
		repository.NewPortfolioRepository(db),
		repository.NewUserRepository(db),
		repository.NewKeyAllocator(db),
		service.NewUserLocks(),
		zerolog.Nop(),
	)
}

func NewTestStockService(t *testing.T, db *sql.DB) *service.StockService {
	t.Helper()

	return service.NewStockService(
		db,
		repository.NewStockRepository(db),
		repository.NewPortfolioRepository(db),
		repository.NewKeyAllocator(db),
		service.NewUserLocks(),
		zerolog.Nop(),
	)
}

func NewTestOrderService(t *testing.T, db *sql.DB) *service.OrderService {
	t.Helper()

	return service.NewOrderService(
		db,
		repository.NewOrderRepository(db),
		repository.NewStockRepository(db),
		repository.NewPortfolioRepository(db),
		repository.NewKeyAllocator(db),
		service.NewUserLocks(),
		zerolog.Nop(),
	)
}

func NewTestDividendService(t *testing.T, db *sql.DB) *service.DividendService {
	t.Helper()

	return service.NewDividendService(
		db,
		repository.NewDividendRepository(db),
		repository.NewStockRepository(db),
		repository.NewPortfolioRepository(db),
		repository.NewKeyAllocator(db),
		service.NewUserLocks(),
		zerolog.Nop(),
	)
}

func NewTestOptionService(t *testing.T, db *sql.DB) *service.OptionService {
	t.Helper()

	return service.NewOptionService(
		db,
		repository.NewOptionRepository(db),
		repository.NewStockRepository(db),
		repository.NewPortfolioRepository(db),
		repository.NewKeyAllocator(db),
		service.NewUserLocks(),
		zerolog.Nop(),
	)
}

func NewTestWatchlistService(t *testing.T, db *sql.DB) *service.WatchlistService {
	t.Helper()

	return service.NewWatchlistService(
		db,
		repository.NewWatchlistRepository(db),
		repository.NewUserRepository(db),
		repository.NewKeyAllocator(db),
		service.NewUserLocks(),
		zerolog.Nop(),
	)
}

func NewTestMetricsService(t *testing.T, db *sql.DB) *service.MetricsService {
	t.Helper()

	return service.NewMetricsService(
		repository.NewPortfolioRepository(db),
		repository.NewStockRepository(db),
		repository.NewOrderRepository(db),
		repository.NewDividendRepository(db),
		zerolog.Nop(),
	)
}

// MakeUserID generates a unique user ID for testing.
//
// Example usage:
//
//	userID := testutil.MakeUserID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeUserID() string {
	return uuid.New().String()
}

// MakeTicker generates a random valid ticker symbol for testing.
func MakeTicker() string {
	return randomAlphanumeric(4)
}

// MakePortfolioName generates a unique portfolio name for testing.
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// MakeWatchlistName generates a unique watchlist name for testing.
func MakeWatchlistName(base string) string {
	if base == "" {
		base = "Watchlist"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
