package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/finflow/accounting/internal/adapters/database/memory"
	"github.com/finflow/accounting/internal/adapters/database/pgsql"
	"github.com/finflow/accounting/internal/adapters/events/kafka"
	portsrepo "github.com/finflow/accounting/internal/core/ports/repositories"
	portssvc "github.com/finflow/accounting/internal/core/ports/services"
	"github.com/finflow/accounting/internal/core/services"
	"github.com/finflow/accounting/internal/handlers"
	"github.com/finflow/accounting/internal/middleware"
	"github.com/finflow/accounting/internal/platform/config"
	"github.com/finflow/accounting/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, cleanup, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	serviceContainer := services.NewServiceContainer(repos)

	// The invoice and reconciliation flows assume the standard chart exists.
	seedCtx := middleware.WithLogger(ctx, logger)
	if err := serviceContainer.Account.SeedDefaultChart(seedCtx, "system"); err != nil {
		logger.Error("Failed to seed default chart of accounts", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	rateLimiter := limiter.New(limitermemory.NewStore(), limiter.Rate{
		Period: cfg.RateLimitPeriod,
		Limit:  cfg.RateLimitRequests,
	})
	r.Use(middleware.RateLimit(rateLimiter))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, serviceContainer)

	// Reconciliation consumer, when brokers are configured.
	if len(cfg.KafkaBrokers) > 0 {
		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, logger)
		defer func() {
			_ = consumer.Close()
		}()
		go func() {
			consumerCtx := middleware.WithLogger(ctx, logger)
			if err := serviceContainer.Reconciliation.Run(consumerCtx, consumer); err != nil {
				logger.Error("Reconciliation consumer exited", slog.String("error", err.Error()))
			}
		}()
	}

	// Periodic overdue-invoice sweep.
	if cfg.SweepInterval > 0 {
		go runOverdueSweep(ctx, cfg.SweepInterval, serviceContainer, logger)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("Server stopped")
}

// buildRepositories selects Postgres when a database URL is configured and falls back
// to in-memory storage otherwise.
func buildRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("Using in-memory storage")
		return memory.NewRepositoryProvider(), func() {}, nil
	}

	if err := database.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established")
	return pgsql.NewRepositoryProvider(pool), pool.Close, nil
}

// runOverdueSweep periodically marks due PENDING invoices overdue.
func runOverdueSweep(ctx context.Context, interval time.Duration, serviceContainer *portssvc.ServiceContainer, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sweepCtx := middleware.WithLogger(ctx, logger)
			if _, err := serviceContainer.Invoice.SweepOverdue(sweepCtx, now.UTC(), "system"); err != nil {
				logger.Error("Overdue sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
