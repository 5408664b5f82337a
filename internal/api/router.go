package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sleepingstar/stockfolio/internal/api/handlers"
	custommiddleware "github.com/sleepingstar/stockfolio/internal/api/middleware"
	"github.com/sleepingstar/stockfolio/internal/config"
	"github.com/sleepingstar/stockfolio/internal/service"
)

// Services bundles the service dependencies the router hands to handlers.
type Services struct {
	System    *service.SystemService
	User      *service.UserService
	Portfolio *service.PortfolioService
	Stock     *service.StockService
	Order     *service.OrderService
	Dividend  *service.DividendService
	Option    *service.OptionService
	Watchlist *service.WatchlistService
	Metrics   *service.MetricsService
}

// NewRouter creates and configures the HTTP router. Everything under /api
// except the health endpoint requires the internal API key and a fresh time
// token.
func NewRouter(svcs Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Route("/api", func(r chi.Router) {
		// System namespace, unauthenticated so load balancers can probe it
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svcs.System)
			r.Get("/health", systemHandler.Health)
		})

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.APIKeyMiddleware)

			userHandler := handlers.NewUserHandler(svcs.User, svcs.Metrics)
			portfolioHandler := handlers.NewPortfolioHandler(svcs.Portfolio, svcs.Metrics)
			stockHandler := handlers.NewStockHandler(svcs.Stock, svcs.Metrics)
			orderHandler := handlers.NewOrderHandler(svcs.Order)
			dividendHandler := handlers.NewDividendHandler(svcs.Dividend)
			optionHandler := handlers.NewOptionHandler(svcs.Option)
			watchlistHandler := handlers.NewWatchlistHandler(svcs.Watchlist)

			r.Post("/users", userHandler.CreateUser)

			r.Route("/users/{userID}", func(r chi.Router) {
				r.Get("/", userHandler.GetUser)
				r.Delete("/", userHandler.DeleteUser)
				r.Get("/gainloss", userHandler.GainLoss)

				r.Route("/portfolios", func(r chi.Router) {
					r.Get("/", portfolioHandler.Portfolios)
					r.Post("/", portfolioHandler.CreatePortfolio)

					r.Route("/{portfolioID}", func(r chi.Router) {
						r.Get("/", portfolioHandler.GetPortfolio)
						r.Delete("/", portfolioHandler.DeletePortfolio)
						r.Put("/name", portfolioHandler.RenamePortfolio)
						r.Put("/description", portfolioHandler.UpdateDescription)
						r.Get("/summary", portfolioHandler.PortfolioSummary)

						r.Get("/orders", orderHandler.AllOrders)
						r.Post("/orders/purge", orderHandler.PurgeOrders)

						r.Route("/dividends", func(r chi.Router) {
							r.Get("/", dividendHandler.Dividends)
							r.Post("/", dividendHandler.CreateDividend)
							r.Get("/{dividendID}", dividendHandler.GetDividend)
							r.Delete("/{dividendID}", dividendHandler.DeleteDividend)
						})

						r.Route("/options", func(r chi.Router) {
							r.Get("/", optionHandler.Options)
							r.Post("/", optionHandler.CreateOption)
							r.Get("/{optionID}", optionHandler.GetOption)
							r.Put("/{optionID}", optionHandler.UpdateOption)
							r.Delete("/{optionID}", optionHandler.DeleteOption)
							r.Post("/{optionID}/close", optionHandler.CloseOption)
							r.Post("/{optionID}/expire", optionHandler.ExpireOption)
							r.Post("/{optionID}/exercise", optionHandler.ExerciseOption)
						})

						r.Route("/stocks", func(r chi.Router) {
							r.Get("/", stockHandler.Stocks)
							r.Post("/", stockHandler.AddStock)

							r.Route("/{ticker}", func(r chi.Router) {
								r.Get("/", stockHandler.GetStock)
								r.Delete("/", stockHandler.DeleteStock)
								r.Get("/summary", stockHandler.StockSummary)

								r.Route("/orders", func(r chi.Router) {
									r.Get("/", orderHandler.Orders)
									r.Post("/", orderHandler.CreateOrder)
									r.Get("/{orderID}", orderHandler.GetOrder)
									r.Put("/{orderID}", orderHandler.UpdateOrder)
									r.Delete("/{orderID}", orderHandler.DeleteOrder)
								})
							})
						})
					})
				})

				r.Route("/watchlists", func(r chi.Router) {
					r.Get("/", watchlistHandler.Watchlists)
					r.Post("/", watchlistHandler.CreateWatchlist)

					r.Route("/{watchlistID}", func(r chi.Router) {
						r.Get("/", watchlistHandler.GetWatchlist)
						r.Delete("/", watchlistHandler.DeleteWatchlist)
						r.Put("/name", watchlistHandler.RenameWatchlist)
						r.Put("/description", watchlistHandler.UpdateDescription)
						r.Get("/tickers", watchlistHandler.Tickers)
						r.Post("/tickers", watchlistHandler.WatchTicker)
						r.Delete("/tickers/{ticker}", watchlistHandler.UnwatchTicker)
					})
				})
			})
		})
	})

	return r
}
