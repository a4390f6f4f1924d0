package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"unlock/internal/app"
	"unlock/internal/config"
	"unlock/internal/gateway"
	"unlock/internal/handler"
	internalRedis "unlock/internal/redis"
	"unlock/internal/repository/postgres"
	"unlock/internal/service"
	"unlock/internal/signature"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, err := wireServer(db, redisClient, nrApp, cfg)
	if err != nil {
		log.Fatalf("failed to wire server: %v", err)
	}

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, error) {
	// Initialize Redis stores.
	entitlementStore := internalRedis.NewEntitlementStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	orderCache := internalRedis.NewOrderCache(redisClient)

	// Initialize repositories.
	userRepo := postgres.NewUserRepository(db)
	paymentRepo := postgres.NewPaymentRecordRepository(db)
	reconciliationRepo := postgres.NewReconciliationRepository(db)

	// Initialize the gateway client and the signature verifier. The shared
	// secret lives only inside these two explicitly constructed values.
	gatewayClient, err := gateway.NewHTTPClient(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret)
	if err != nil {
		return nil, err
	}
	verifier := signature.NewVerifier(cfg.Gateway.KeySecret)

	// Initialize services.
	reconciliationService := service.NewReconciliationService(reconciliationRepo)
	grantManager := service.NewGrantManager(entitlementStore, paymentRepo, reconciliationService)
	orderService := service.NewOrderService(gatewayClient, lockStore, orderCache)
	verifyService := service.NewVerifyService(verifier, grantManager)

	// Initialize handlers.
	orderHandler := handler.NewOrderHandler(orderService)
	verifyHandler := handler.NewVerifyHandler(verifyService)
	entitlementHandler := handler.NewEntitlementHandler(entitlementStore, paymentRepo, userRepo)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		OrderHandler:          orderHandler,
		VerifyHandler:         verifyHandler,
		EntitlementHandler:    entitlementHandler,
		ReconciliationHandler: reconciliationHandler,
		RedisClient:           redisClient,
		NewRelicApp:           nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
