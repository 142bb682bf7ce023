// Package main is the API server entry point. It wires configuration,
// storage, the provider gateways, and the ledger together, then serves
// the HTTP surface.
package main

import (
	"context"
	"log"
	"time"

	"kopa/internal/config"
	"kopa/internal/events"
	"kopa/internal/handlers"
	"kopa/internal/models"
	"kopa/internal/repositories"
	"kopa/internal/repositories/cache"
	"kopa/internal/routes"
	"kopa/internal/services/auth"
	"kopa/internal/services/categorizer"
	"kopa/internal/services/gateway"
	"kopa/internal/services/ledger"
	"kopa/internal/services/lookup"
	"kopa/internal/services/report"
	"kopa/internal/storage"
	"kopa/internal/vault"

	gcstorage "cloud.google.com/go/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()
	ledgerCfg := config.LoadLedger()

	db, err := repositories.InitDB(
		&models.User{},
		&models.Merchant{},
		&models.Wallet{},
		&models.Transaction{},
		&models.Provider{},
		&models.ReportChart{},
	)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	// Credential vault for sealed provider credentials.
	vaultKey, err := config.VaultKey()
	if err != nil {
		log.Fatalf("Failed to load vault key: %v", err)
	}
	credVault, err := vault.New(vaultKey)
	if err != nil {
		log.Fatalf("Failed to initialize credential vault: %v", err)
	}

	// Redis wallet cache; the ledger degrades gracefully without it.
	var walletCache ledger.WalletCache
	var cacheService *cache.Service
	if host := config.GetEnv("REDIS_HOST", ""); host != "" {
		client := cache.NewRedisClient(&cache.RedisConfig{
			Host:     host,
			Port:     config.GetEnv("REDIS_PORT", "6379"),
			Password: config.GetEnv("REDIS_PASSWORD", ""),
			DB:       config.GetIntEnv("REDIS_DB", 0),
		})
		cacheService = cache.NewService(client, config.GetDurationEnv("CACHE_TTL", 5*time.Minute))
		if err := cacheService.FlushAll(context.Background()); err != nil {
			log.Printf("Failed to flush cache on startup: %v", err)
		}
		defer cacheService.Close()
		walletCache = cacheService
	} else {
		log.Println("REDIS_HOST not set, running without wallet cache")
	}

	// Event publisher; without a broker events are dropped.
	var publisher events.Publisher = events.NoopPublisher{}
	if url := config.GetEnv("AMQP_URL", ""); url != "" {
		amqpPub, err := events.NewAMQPPublisher(url,
			config.GetEnv("AMQP_EXCHANGE", "kopa.transactions"),
			config.GetEnv("AMQP_QUEUE", "transactions"))
		if err != nil {
			log.Printf("Failed to connect to AMQP, events disabled: %v", err)
		} else {
			publisher = amqpPub
			defer amqpPub.Close()
		}
	}

	// Report document storage: GCS when configured, in-memory otherwise.
	var blobs storage.BlobStore = storage.NewMemoryStore()
	if bucket := config.GetEnv("GCS_BUCKET", ""); bucket != "" {
		gcsClient, err := gcstorage.NewClient(context.Background())
		if err != nil {
			log.Fatalf("Failed to create GCS client: %v", err)
		}
		defer gcsClient.Close()
		blobs = storage.NewGCSStore(gcsClient, bucket)
	}

	// Repositories.
	walletRepo := repositories.NewWalletRepository(db)
	txRepo := repositories.NewTransactionRepository(db)
	providerRepo := repositories.NewProviderRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	ownerRepo := repositories.NewOwnerRepository(db)

	// Provider gateway registry.
	registry := gateway.NewRegistry(providerRepo, credVault, ledgerCfg.ProviderTimeout)
	registry.Register(models.ProviderStripe, gateway.NewStripeGateway())
	registry.Register(models.ProviderMockBank, gateway.NewMockBankGateway(200*time.Millisecond))

	// Categorization strategy is fixed at startup.
	var cat categorizer.Categorizer = categorizer.NewRuleCategorizer()
	if ledgerCfg.Categorizer == config.CategorizerHosted {
		cat = categorizer.NewHostedCategorizer(ledgerCfg.GeminiModel, config.GetEnv("GEMINI_API_KEY", ""))
	}

	// Services.
	ledgerService := ledger.NewService(walletRepo, ownerRepo, registry, cat, walletCache, publisher,
		ledger.Config{DefaultCurrency: ledgerCfg.DefaultCurrency})
	authService := auth.NewService(ownerRepo, walletRepo, ledgerCfg.DefaultCurrency)
	lookupService := lookup.NewService(walletRepo, ownerRepo)
	reportService := report.NewService(txRepo, reportRepo, walletRepo, blobs, report.TextRenderer{})

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.Setup(app, routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Wallet:      handlers.NewWalletHandler(ledgerService, lookupService, walletRepo),
		Ledger:      handlers.NewLedgerHandler(ledgerService, walletRepo),
		Transaction: handlers.NewTransactionHandler(txRepo, walletRepo),
		Categorize:  handlers.NewCategorizeHandler(cat),
		Report:      handlers.NewReportHandler(reportService),
	})

	port := config.GetEnv("PORT", "8080")
	log.Printf("Starting server on :%s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
