package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/campuscoins/coinledger/internal/adapter/http/handler"
	"github.com/campuscoins/coinledger/internal/adapter/http/middleware"
	"github.com/campuscoins/coinledger/internal/infrastructure/metrics"
	"github.com/campuscoins/coinledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler *handler.AccountHandler
	CoinsHandler   *handler.CoinsHandler
	HistoryHandler *handler.HistoryHandler
	CatalogHandler *handler.CatalogHandler
	LedgerHandler  *handler.LedgerHandler
	HealthHandler  *handler.HealthHandler

	// Optional.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	TokenVerifier    middleware.TokenVerifier
	Metrics          *metrics.Metrics
	MetricsGatherer  prometheus.Gatherer
	Logger           *zerolog.Logger
	AllowedOrigins   []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(*cfg.Logger).Wrap)
	}
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
			ExposedHeaders: []string{middleware.IdempotencyReplayHeader, "Retry-After"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsGatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimiter != nil {
		limit = cfg.RateLimiter.Limit
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
		}
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Open)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(middleware.RequireAccountAccess)

				r.Get("/balance", cfg.AccountHandler.Balance)
				r.Get("/stats", cfg.AccountHandler.Stats)
				r.Get("/transactions", cfg.HistoryHandler.Transactions)
				r.Get("/transactions/{entryID}", cfg.HistoryHandler.Transaction)
				r.Get("/redemptions", cfg.HistoryHandler.Redemptions)

				r.Group(func(r chi.Router) {
					r.Use(limit)
					r.Post("/earn", cfg.CoinsHandler.Earn)
					r.Post("/daily-bonus", cfg.CoinsHandler.DailyBonus)
					r.Post("/transfers", cfg.CoinsHandler.Transfer)
					r.Post("/redemptions", cfg.CoinsHandler.Redeem)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/adjustments", cfg.CoinsHandler.Adjust)
					r.Get("/reconciliation", cfg.LedgerHandler.ReconcileAccount)
				})
			})
		})

		r.Get("/offers", cfg.CatalogHandler.Offers)
		r.Get("/offers/{id}", cfg.CatalogHandler.Offer)
		r.Get("/leaderboard", cfg.CatalogHandler.Leaderboard)
		r.Get("/stats", cfg.CatalogHandler.GlobalStats)

		r.With(middleware.RequireAdmin).Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
	})

	return r
}
