package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/dooonda/ledger/internal/adapter/http"
	"github.com/dooonda/ledger/internal/adapter/http/handler"
	"github.com/dooonda/ledger/internal/adapter/http/middleware"
	postgresRepo "github.com/dooonda/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/dooonda/ledger/internal/adapter/repository/redis"
	"github.com/dooonda/ledger/internal/infrastructure/auth"
	"github.com/dooonda/ledger/internal/infrastructure/config"
	"github.com/dooonda/ledger/internal/infrastructure/eventpublisher"
	"github.com/dooonda/ledger/internal/infrastructure/logger"
	"github.com/dooonda/ledger/internal/infrastructure/metrics"
	"github.com/dooonda/ledger/internal/infrastructure/postgres"
	"github.com/dooonda/ledger/internal/infrastructure/redis"
	"github.com/dooonda/ledger/internal/usecase"
)

const serviceName = "dooonda-ledger"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	m := metrics.New(prometheus.DefaultRegisterer)

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

	if cfg.MigrateOnStart {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return err
		}
	}

	checks := []handler.ReadinessCheck{postgres.NewChecker(pool)}

	// Connect to Redis
	var redisClient *goredis.Client
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		checks = append(checks, redis.NewChecker(redisClient))
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(cfg.LedgerMaxRetries, log)

	var outboxRepo usecase.OutboxRepository = postgresRepo.NewNullOutboxRepository()
	if cfg.OutboxEnabled {
		outboxRepo = postgresRepo.NewOutboxRepository(pool)
	}

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, walletRepo, transactionRepo, outboxRepo, retrier, idGen, m).
		WithTransactionTimeout(cfg.LedgerTxTimeout)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, walletRepo, outboxRepo, idGen, m)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, walletRepo, transactionRepo, ledgerRepo, m)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	routerCfg := httpAdapter.RouterConfig{
		Logger:         log,
		WalletHandler:  handler.NewWalletHandler(ledgerUC),
		AuthHandler:    handler.NewAuthHandler(accountUC, jwtManager),
		LedgerHandler:  handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:  handler.NewHealthHandler(checks...),
		TokenVerifier:  jwtManager,
		IdempotencyTTL: cfg.IdempotencyTTL,
		MetricsHandler: promhttp.Handler(),
		RequestTimeout: cfg.HTTPRequestTimeout,
	}

	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		routerCfg.RateLimiter = limiter
		go limiter.RunCleanup(ctx, 10*time.Minute, time.Hour)
	}

	if cfg.OutboxEnabled {
		var streamClient goredis.UniversalClient
		if redisClient != nil {
			streamClient = redisClient
		}

		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  newPublisher(cfg, streamClient, log),
			Logger:     log,
			Metrics:    m,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		})

		go func() {
			if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event publisher stopped")
			}
		}()
	}

	server := newHTTPServer(cfg, httpAdapter.NewRouter(routerCfg))

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           h,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
}

// newPublisher streams outbox events to Redis when available and logs them
// otherwise.
func newPublisher(cfg *config.Config, client goredis.UniversalClient, log zerolog.Logger) eventpublisher.Publisher {
	if client == nil {
		return eventpublisher.NewLogPublisher(log)
	}

	return eventpublisher.NewStreamPublisher(client, cfg.EventStream, cfg.EventStreamMaxLen)
}
