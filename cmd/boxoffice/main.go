package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-boxoffice/internal/analytics"
	analytics_api "ms-boxoffice/internal/analytics/api"
	"ms-boxoffice/internal/config"
	"ms-boxoffice/internal/database/migrations"
	"ms-boxoffice/internal/inventory"
	inventory_api "ms-boxoffice/internal/inventory/api"
	inventory_db "ms-boxoffice/internal/inventory/db"
	inventory_redis "ms-boxoffice/internal/inventory/redis"
	boxkafka "ms-boxoffice/internal/kafka"
	"ms-boxoffice/internal/logger"
	"ms-boxoffice/internal/purchase"
	purchase_api "ms-boxoffice/internal/purchase/api"
	purchase_db "ms-boxoffice/internal/purchase/db"
	"ms-boxoffice/internal/purchase/gateway"
	purchase_kafka "ms-boxoffice/internal/purchase/kafka"
	"ms-boxoffice/internal/redemption"
	redemption_api "ms-boxoffice/internal/redemption/api"
	redemption_db "ms-boxoffice/internal/redemption/db"
	"ms-boxoffice/internal/redemption/qr"
	"ms-boxoffice/internal/sse"
)

func connectDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	sqldb, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres: %v", err))
	}
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	log.Info("DATABASE", "Postgres connection successful")

	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	bunDB := connectDatabase(cfg, log)
	defer bunDB.Close()

	// Schema migrations
	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.Up(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
	}

	// Redis availability cache
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	var cache inventory.AvailabilityCache
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis unavailable, availability served from Postgres only: %v", err))
	} else {
		log.Info("REDIS", "Redis connection successful")
		cache = inventory_redis.NewCache(redisClient, cfg.Redis.AvailabilityTTL)
	}

	// Kafka notification producer
	var publisher purchase.Publisher
	if cfg.Kafka.Enabled && !cfg.Kafka.MockMode {
		topics := []string{cfg.Kafka.Topics.PurchaseNotifications, cfg.Kafka.Topics.PurchaseCompleted}
		if err := boxkafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed: %v", err))
		}
		producer := purchase_kafka.NewProducer(cfg.Kafka.Brokers,
			cfg.Kafka.Topics.PurchaseNotifications, cfg.Kafka.Topics.PurchaseCompleted)
		defer producer.Close()
		publisher = producer
		log.Info("KAFKA", fmt.Sprintf("Producer ready on %v", cfg.Kafka.Brokers))
	} else {
		log.Warn("KAFKA", "Kafka disabled, purchase notifications will not be published")
	}

	// Payment gateway verification (optional)
	var verifier purchase.Verifier
	if cfg.Gateway.Enabled {
		verifier = gateway.NewVerifier(cfg.Gateway.VerifyURL, cfg.Gateway.SecretKey, &http.Client{Timeout: 10 * time.Second})
		log.Info("GATEWAY", "Payment verification enabled")
	}

	// Services
	inventoryService := inventory.NewService(&inventory_db.DB{Bun: bunDB}, cache)
	emitter := sse.NewPurchaseEventEmitter()
	purchaseService := purchase.NewService(
		&purchase_db.DB{Bun: bunDB},
		inventoryService,
		publisher,
		emitter,
		verifier,
		cfg.Tickets.NumberPrefix,
		cfg.Tickets.AccessURLBase,
	)
	redemptionService := redemption.NewService(&redemption_db.DB{Bun: bunDB})
	analyticsService := analytics.NewService(analytics.NewDB(bunDB))

	// Handlers
	inventoryHandler := inventory_api.NewHandler(inventoryService, log)
	purchaseHandler := purchase_api.NewHandler(purchaseService, log)
	sseHandler := purchase_api.NewSSEHandler(log, emitter)
	redemptionHandler := redemption_api.NewHandler(redemptionService, qr.NewQRGenerator(cfg.Tickets.QRSize), log)
	analyticsHandler := analytics_api.NewHandler(analyticsService, log)

	r := chi.NewRouter()

	r.Route("/offerings", func(r chi.Router) {
		r.Post("/", inventoryHandler.CreateOffering)
		r.Get("/", inventoryHandler.ListOfferings)
		r.Get("/{offeringID}", inventoryHandler.GetOffering)
		r.Delete("/{offeringID}", inventoryHandler.DeleteOffering)
		r.Get("/{offeringID}/availability", inventoryHandler.GetAvailability)
		r.Get("/{offeringID}/analytics", analyticsHandler.GetOfferingAnalytics)
	})

	r.Route("/purchases", func(r chi.Router) {
		r.Post("/", purchaseHandler.CreatePurchase)
		r.Post("/confirm", purchaseHandler.ConfirmPayment)
		r.Get("/token/{accessToken}", purchaseHandler.GetByAccessToken)
	})

	r.Route("/redemptions", func(r chi.Router) {
		r.Post("/validate", redemptionHandler.Validate)
		r.Post("/validate-all", redemptionHandler.ValidateAll)
	})

	r.Get("/units/{ticketNumber}/qr", redemptionHandler.UnitQR)
	r.Get("/analytics/summary", analyticsHandler.GetSummary)
	r.Get("/sse/purchases/{offeringID}", sseHandler.HandleOfferingPurchases)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Box office service on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "Box office service shutdown complete")
}
