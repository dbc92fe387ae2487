package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/kakeibo/internal/adapter/http"
	"github.com/iho/kakeibo/internal/adapter/http/handler"
	"github.com/iho/kakeibo/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/kakeibo/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/kakeibo/internal/adapter/repository/redis"
	"github.com/iho/kakeibo/internal/adapter/web"
	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/infrastructure/auth"
	"github.com/iho/kakeibo/internal/infrastructure/config"
	"github.com/iho/kakeibo/internal/infrastructure/logger"
	"github.com/iho/kakeibo/internal/infrastructure/metrics"
	"github.com/iho/kakeibo/internal/infrastructure/postgres"
	"github.com/iho/kakeibo/internal/infrastructure/redis"
	"github.com/iho/kakeibo/internal/usecase"
)

// limiterIdle is how long an idle client keeps its login rate limiter.
const limiterIdle = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Connect to Redis when configured
	var (
		redisClient      *goredis.Client
		summaryCache     *usecase.SummaryCache
		idempotencyStore usecase.IdempotencyStore
		redisPinger      handler.Pinger
	)
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		summaryCache = usecase.NewSummaryCache(redisRepo.NewCache(redisClient), cfg.SummaryCacheTTL, m, log)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		redisPinger = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	} else {
		log.Warn().Msg("REDIS_URL not set: summary cache and idempotency keys disabled")
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	categoryRepo := postgresRepo.NewCategoryRepository(pool)
	balanceRepo := postgresRepo.NewMonthlyBalanceRepository(pool)
	lockRepo := postgresRepo.NewMonthLockRepository(pool)
	liabilityRepo := postgresRepo.NewLiabilityRepository(pool)
	summaryRepo := postgresRepo.NewSummaryRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	// Initialize use cases
	lockUC := usecase.NewMonthLockUseCase(lockRepo, idGen, nil, m)
	transactionUC := usecase.NewTransactionUseCase(usecase.TransactionUseCaseConfig{
		TransactionRepo: transactionRepo,
		AccountRepo:     accountRepo,
		CategoryRepo:    categoryRepo,
		Locks:           lockUC,
		IDGen:           idGen,
		Retrier:         retrier,
		Cache:           summaryCache,
		Metrics:         m,
	})
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, transactionRepo, balanceRepo, idGen, summaryCache)
	categoryUC := usecase.NewCategoryUseCase(txManager, categoryRepo, transactionRepo, idGen)
	liabilityUC := usecase.NewLiabilityUseCase(liabilityRepo, idGen)
	balanceUC := usecase.NewMonthlyBalanceUseCase(txManager, balanceRepo, accountRepo, lockUC, idGen, retrier, summaryCache)
	summaryUC := usecase.NewSummaryUseCase(summaryRepo, summaryCache)
	csvUC := usecase.NewCSVUseCase(usecase.CSVUseCaseConfig{
		TxManager:       txManager,
		TransactionRepo: transactionRepo,
		AccountRepo:     accountRepo,
		CategoryRepo:    categoryRepo,
		Locks:           lockUC,
		IDGen:           idGen,
		Retrier:         retrier,
		Cache:           summaryCache,
		Metrics:         m,
		Logger:          log,
	})
	userUC := usecase.NewUserUseCase(userRepo, categoryUC, idGen)

	owner, err := bootstrapOwner(ctx, cfg, userUC, log)
	if err != nil {
		return err
	}

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	authenticator := newAuthenticator(cfg, tokens, owner)

	pages, err := web.New(web.Config{
		Transactions: transactionUC,
		Accounts:     accountUC,
		Categories:   categoryUC,
		Liabilities:  liabilityUC,
		Balances:     balanceUC,
		Locks:        lockUC,
		Summary:      summaryUC,
		Users:        userUC,
		Tokens:       tokens,
		AuthEnabled:  cfg.AuthEnabled,
		SecureCookie: cfg.CookieSecure,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateBurst, "login", m)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		AccountHandler:     handler.NewAccountHandler(accountUC),
		CategoryHandler:    handler.NewCategoryHandler(categoryUC),
		LiabilityHandler:   handler.NewLiabilityHandler(liabilityUC),
		BalanceHandler:     handler.NewBalanceHandler(balanceUC),
		LockHandler:        handler.NewLockHandler(lockUC),
		SummaryHandler:     handler.NewSummaryHandler(summaryUC),
		CSVHandler:         handler.NewCSVHandler(csvUC),
		AuthHandler:        handler.NewAuthHandler(userUC, tokens, m, cfg.CookieSecure),
		HealthHandler:      handler.NewHealthHandler(pool, redisPinger),
		Pages:              pages,
		Authenticator:      authenticator,
		LoginLimiter:       loginLimiter,
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		Metrics:            m,
		Registry:           reg,
		Logger:             log,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Bool("auth", cfg.AuthEnabled).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(limiterIdle)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := loginLimiter.CleanupLimiters(limiterIdle); n > 0 {
					log.Debug().Int("removed", n).Msg("login rate limiters cleaned up")
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// bootstrapOwner makes sure the configured user exists and returns it.
// Without a configured password the user is only created when sign-in is
// disabled, with a random password nobody knows.
func bootstrapOwner(ctx context.Context, cfg *config.Config, users *usecase.UserUseCase, log zerolog.Logger) (*domain.User, error) {
	password := cfg.BootstrapPassword
	if password == "" {
		if cfg.AuthEnabled {
			return nil, nil
		}
		var err error
		if password, err = randomPassword(); err != nil {
			return nil, err
		}
	}

	user, err := users.EnsureUser(ctx, usecase.CreateUserInput{Name: cfg.BootstrapUser, Password: password})
	if err != nil {
		return nil, fmt.Errorf("bootstrap user %q: %w", cfg.BootstrapUser, err)
	}
	log.Info().Str("user", user.Name).Msg("bootstrap user ready")
	return user, nil
}

// newAuthenticator picks token checks when sign-in is enabled and the
// bootstrap owner otherwise.
func newAuthenticator(cfg *config.Config, tokens middleware.TokenVerifier, owner *domain.User) *middleware.Authenticator {
	if cfg.AuthEnabled || owner == nil {
		return middleware.NewAuthenticator(tokens)
	}
	return middleware.NewSingleUserAuthenticator(owner.ID)
}

func randomPassword() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
