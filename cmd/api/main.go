package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/eldorado-books/bookstore-backend/api/routes"
	"github.com/eldorado-books/bookstore-backend/internal/audit"
	"github.com/eldorado-books/bookstore-backend/internal/auth"
	"github.com/eldorado-books/bookstore-backend/internal/books"
	"github.com/eldorado-books/bookstore-backend/internal/customers"
	"github.com/eldorado-books/bookstore-backend/internal/orders"
	"github.com/eldorado-books/bookstore-backend/internal/reports"
	"github.com/eldorado-books/bookstore-backend/internal/staff"
	"github.com/eldorado-books/bookstore-backend/pkg/auth/session"
	"github.com/eldorado-books/bookstore-backend/pkg/config"
	"github.com/eldorado-books/bookstore-backend/pkg/db"
	"github.com/eldorado-books/bookstore-backend/pkg/logger"
	"github.com/eldorado-books/bookstore-backend/pkg/metrics"
	"github.com/eldorado-books/bookstore-backend/pkg/migrate"
	"github.com/eldorado-books/bookstore-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := metrics.NewStoreMetrics(registry)

	gormDB := dbClient.DB()
	auditRepo := audit.NewRepository(gormDB)
	booksRepo := books.NewRepository(gormDB)
	customersRepo := customers.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)
	staffRepo := staff.NewRepository(gormDB)
	reportsRepo := reports.NewRepository(gormDB)

	auditService, err := audit.NewService(auditRepo, storeMetrics)
	exitOnError(logg, "audit service", err)

	booksService, err := books.NewService(booksRepo, dbClient, auditService)
	exitOnError(logg, "books service", err)

	customersService, err := customers.NewService(customersRepo)
	exitOnError(logg, "customers service", err)

	ordersService, err := orders.NewService(ordersRepo, dbClient, booksService, customersRepo, storeMetrics)
	exitOnError(logg, "orders service", err)

	staffService, err := staff.NewService(staffRepo, cfg.Password)
	exitOnError(logg, "staff service", err)

	authService, err := auth.NewService(staffRepo, sessionManager, cfg.JWT, logg)
	exitOnError(logg, "auth service", err)

	reportsService, err := reports.NewService(reportsRepo, cfg.Inventory)
	exitOnError(logg, "reports service", err)

	handler := routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
		Auth:      authService,
		Books:     booksService,
		Customers: customersService,
		Orders:    ordersService,
		Staff:     staffService,
		Audit:     auditService,
		Reports:   reportsService,
	}, registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	if err := multierr.Combine(dbClient.Close(), redisClient.Close()); err != nil {
		logg.Error(ctx, "error closing resources", err)
		os.Exit(1)
	}
}

func exitOnError(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
