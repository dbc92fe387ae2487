package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/kakeibo/internal/adapter/http/handler"
	"github.com/iho/kakeibo/internal/adapter/http/middleware"
	"github.com/iho/kakeibo/internal/adapter/web"
	"github.com/iho/kakeibo/internal/infrastructure/metrics"
	"github.com/iho/kakeibo/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TransactionHandler *handler.TransactionHandler
	AccountHandler     *handler.AccountHandler
	CategoryHandler    *handler.CategoryHandler
	LiabilityHandler   *handler.LiabilityHandler
	BalanceHandler     *handler.BalanceHandler
	LockHandler        *handler.LockHandler
	SummaryHandler     *handler.SummaryHandler
	CSVHandler         *handler.CSVHandler
	AuthHandler        *handler.AuthHandler
	HealthHandler      *handler.HealthHandler
	Pages              *web.Pages

	Authenticator *middleware.Authenticator
	// LoginLimiter throttles both login endpoints. Optional.
	LoginLimiter *middleware.RateLimiter
	// IdempotencyStore enables Idempotency-Key handling on the API. Optional.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	// Metrics and Registry enable request metrics and /metrics. Optional.
	Metrics  *metrics.Metrics
	Registry prometheus.Gatherer
	Logger   zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	limit := func(r chi.Router) chi.Router {
		if cfg.LoginLimiter != nil {
			return r.With(cfg.LoginLimiter.Limit)
		}
		return r
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		limit(r).Post("/auth/login", cfg.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(cfg.Authenticator.RequireAPI)

			// Idempotency middleware for mutating requests
			if cfg.IdempotencyStore != nil {
				idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
				r.Use(idempotency.Wrap)
			}

			r.Post("/auth/logout", cfg.AuthHandler.Logout)
			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", cfg.TransactionHandler.List)
				r.Post("/", cfg.TransactionHandler.Create)
				r.Get("/{id}", cfg.TransactionHandler.Get)
				r.Patch("/{id}", cfg.TransactionHandler.Update)
				r.Delete("/{id}", cfg.TransactionHandler.Delete)
			})

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", cfg.AccountHandler.List)
				r.Post("/", cfg.AccountHandler.Create)
				r.Post("/import-json", cfg.AccountHandler.ImportJSON)
				r.Get("/{id}", cfg.AccountHandler.Get)
				r.Patch("/{id}", cfg.AccountHandler.Update)
				r.Delete("/{id}", cfg.AccountHandler.Delete)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", cfg.CategoryHandler.List)
				r.Post("/", cfg.CategoryHandler.Create)
				r.Patch("/{id}", cfg.CategoryHandler.Update)
				r.Delete("/{id}", cfg.CategoryHandler.Delete)
			})

			r.Route("/liabilities", func(r chi.Router) {
				r.Get("/", cfg.LiabilityHandler.List)
				r.Post("/", cfg.LiabilityHandler.Create)
				r.Patch("/{id}", cfg.LiabilityHandler.Update)
				r.Delete("/{id}", cfg.LiabilityHandler.Delete)
			})

			r.Route("/balances/{year}/{month}", func(r chi.Router) {
				r.Get("/", cfg.BalanceHandler.List)
				r.Post("/", cfg.BalanceHandler.Upsert)
				r.Put("/", cfg.BalanceHandler.SaveAll)
			})

			r.Get("/month-lock/{year}/{month}", cfg.LockHandler.Get)
			r.Put("/month-lock/{year}/{month}", cfg.LockHandler.Set)

			r.Get("/summary/year/{year}", cfg.SummaryHandler.Year)
			r.Get("/summary/month/{year}/{month}", cfg.SummaryHandler.Month)

			r.Get("/csv/export", cfg.CSVHandler.Export)
			r.Post("/csv/import", cfg.CSVHandler.Import)
		})
	})

	// HTML pages
	r.Group(func(r chi.Router) {
		r.Use(cfg.Authenticator.Optional)
		r.Get("/login", cfg.Pages.LoginForm)
		limit(r).Post("/login", cfg.Pages.Login)
		r.Post("/logout", cfg.Pages.Logout)
	})
	r.Group(func(r chi.Router) {
		r.Use(cfg.Authenticator.RequirePage)
		cfg.Pages.Register(r)
	})

	return r
}
