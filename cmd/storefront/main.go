package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-redis/redis/v8"

	"github.com/cosmetic-storefront/internal/api"
	"github.com/cosmetic-storefront/internal/api/service"
	"github.com/cosmetic-storefront/internal/catalog_sync"
	"github.com/cosmetic-storefront/internal/config"
	"github.com/cosmetic-storefront/internal/data/postgres"
	"github.com/cosmetic-storefront/internal/logger"
	"github.com/cosmetic-storefront/internal/platform/messaging/producers"
	"github.com/cosmetic-storefront/internal/platform/persistence"
	"github.com/cosmetic-storefront/internal/settlement"
	"github.com/cosmetic-storefront/internal/settlement/outbox_poller"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("storefront")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Storefront",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize database with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for settlement events
	kafkaProducer, err := producers.NewSettlementEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize settlement event producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	catalogRepo := postgres.NewCatalogRepository(log, postgresDB)
	purchaseRepo := postgres.NewPurchaseRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	syncLogRepo := postgres.NewSyncLogRepository(log, postgresDB)

	// Initialize settlement engine
	engine := settlement.NewEngine(postgresDB, accountRepo, catalogRepo, purchaseRepo, ledgerRepo, outboxRepo, log)

	// Initialize outbox poller
	eventPublisher := outbox_poller.NewEventPublisher(outboxRepo, kafkaProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, eventPublisher, log)

	// Initialize catalog sync. The syncer is built even when the scheduled
	// job is disabled so operators can still trigger a run over the API.
	syncClient := catalog_sync.NewClient(&cfg.CatalogSync, log)
	syncer := catalog_sync.NewSyncer(&cfg.CatalogSync, syncClient, catalogRepo, syncLogRepo, log)

	// Initialize optional Redis catalog cache
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(appCtx).Err(); err != nil {
			log.Warn("Redis unreachable, catalog cache disabled", "error", err)
			redisClient = nil
		}
	}

	// Initialize services
	authService := service.NewAuthService(accountRepo, &cfg.Auth)
	catalogService := service.NewCatalogService(catalogRepo, purchaseRepo, syncLogRepo, syncer, redisClient, cfg.Redis.TTL, log)
	storeService := service.NewStoreService(engine, log)
	userService := service.NewUserService(accountRepo, ledgerRepo, purchaseRepo)

	// Initialize REST server
	server := api.NewServer(log, cfg, api.Services{
		Auth:    authService,
		Catalog: catalogService,
		Store:   storeService,
		User:    userService,
	})
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Create wait group for background jobs
	var wg sync.WaitGroup

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	// Start catalog sync job in a goroutine when enabled
	if cfg.CatalogSync.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("Starting Catalog Sync",
				"interval", cfg.CatalogSync.Interval.String(),
				"base_url", cfg.CatalogSync.BaseURL,
			)
			syncer.Start(appCtx)
		}()
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Wait for background jobs to finish
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("Background jobs stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err = kafkaProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	if redisClient != nil {
		if err = redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", "error", err)
		}
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Storefront shutdown completed with errors")
	} else {
		log.Info("Storefront shutdown completed successfully")
	}
}
