package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	customerapp "github.com/storefront/backend/internal/application/customer"
	ordersapp "github.com/storefront/backend/internal/application/orders"
	syncapp "github.com/storefront/backend/internal/application/sync"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/erp"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting storefront bridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("erp", cfg.ERP.BaseURL),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to open mirror database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	erpClient, err := erp.NewClient(erp.Config{
		BaseURL:     cfg.ERP.BaseURL,
		CSVFeedURL:  cfg.ERP.CSVFeedURL,
		Username:    cfg.ERP.Username,
		Password:    cfg.ERP.Password,
		Timeout:     cfg.ERP.Timeout,
		BulkTimeout: cfg.ERP.BulkTimeout,
		MaxAttempts: cfg.ERP.MaxAttempts,
		BackoffBase: cfg.ERP.BackoffBase,
	}, log)
	if err != nil {
		log.Fatal("Failed to configure ERP client", zap.Error(err))
	}

	store, err := cache.NewStore(cache.FactoryConfig{
		Backend: cache.Backend(cfg.Cache.Backend),
		Redis: cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Application services
	productService := catalogapp.NewProductService(productRepo, store, cfg.Cache.TTL, log)
	reconciler := syncapp.NewReconciler(erpClient, productRepo, store, log)
	importer := syncapp.NewCSVImporter(erpClient, productRepo, cfg.Sync.ImportsDir, log)
	resolver := customerapp.NewResolver(erpClient, accountRepo, log)
	accountService := customerapp.NewAccountService(accountRepo, resolver, log)
	stockChecker := checkoutapp.NewStockChecker(erpClient, log)
	checkoutService := checkoutapp.NewService(
		checkoutapp.NewCartStore(),
		productRepo,
		resolver,
		stockChecker,
		erpClient,
		orderRepo,
		log,
	)
	historyService := ordersapp.NewHistoryService(erpClient, accountRepo, orderRepo, log)

	// Background reconciliation
	sched := scheduler.NewScheduler(log)
	if cfg.Sync.Enabled {
		sched.RegisterInterval("catalog-reconcile", cfg.Sync.Interval, func(ctx context.Context) error {
			_, err := reconciler.Reconcile(ctx)
			return err
		})
	}
	if err := sched.Start(context.Background()); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.NewRouter(engine).
		Register(handler.NewCatalogHandler(productService, stockChecker)).
		Register(handler.NewAccountHandler(accountService)).
		Register(handler.NewCartHandler(checkoutService)).
		Register(handler.NewOrderHandler(historyService)).
		Register(handler.NewSyncHandler(reconciler, importer)).
		Setup()

	server := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: engine,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	log.Info("HTTP server listening", zap.String("addr", server.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := sched.Stop(ctx); err != nil {
		log.Warn("Scheduler shutdown incomplete", zap.Error(err))
	}
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	log.Info("Stopped")
}
