package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/dooonda/ledger/internal/adapter/http/handler"
	"github.com/dooonda/ledger/internal/adapter/http/middleware"
	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Logger zerolog.Logger

	WalletHandler *handler.WalletHandler
	AuthHandler   *handler.AuthHandler
	LedgerHandler *handler.LedgerHandler
	HealthHandler *handler.HealthHandler

	TokenVerifier middleware.TokenVerifier

	// Optional. Without a store Idempotency-Key headers are ignored.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	// Optional.
	RateLimiter    *middleware.RateLimiter
	MetricsHandler http.Handler
	RequestTimeout time.Duration
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		if cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		}

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", cfg.AuthHandler.Signup)
			r.Post("/login", cfg.AuthHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.TokenVerifier))

			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
			}

			r.Get("/me", cfg.AuthHandler.Me)

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", cfg.WalletHandler.Get)
				r.Post("/", cfg.WalletHandler.Record)
				r.Get("/transactions", cfg.WalletHandler.ListTransactions)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))

				r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
				r.Get("/ledger/reconciliation", cfg.LedgerHandler.Report)
				r.Get("/accounts/{id}/reconciliation", cfg.LedgerHandler.ReconcileAccount)
			})
		})
	})

	return r
}
