package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	gatherly "gatherly-go"
	"gatherly-go/checkout"
	"gatherly-go/checkout/stripecheckout"
	"gatherly-go/internal/cache"
	"gatherly-go/internal/config"
	"gatherly-go/internal/gateway"
	"gatherly-go/internal/journal"
	"gatherly-go/internal/logger"
	"gatherly-go/internal/stream"
	"gatherly-go/internal/ticket"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg := config.Load()
	appLogger := logger.New()
	defer appLogger.Close()

	if cfg.Platform.APIKey == "" {
		appLogger.Fatal("CONFIG", "GATHERLY_API_KEY is required")
	}

	// --- Platform SDK ---
	client := gatherly.NewWithConfig(gatherly.Config{
		APIKey:  cfg.Platform.APIKey,
		BaseURL: cfg.Platform.BaseURL,
	})

	// --- Journal ---
	journalDB, err := journal.Open(cfg.Journal.Driver, cfg.Journal.DSN)
	if err != nil {
		appLogger.Fatal("JOURNAL", fmt.Sprintf("Failed to open journal: %v", err))
	}
	defer journalDB.Bun.Close()

	if err := journalDB.Migrate(ctx); err != nil {
		appLogger.Fatal("JOURNAL", fmt.Sprintf("Failed to migrate journal: %v", err))
	}

	// --- Event cache ---
	var eventCache *cache.EventCache
	if cfg.Cache.Enabled {
		redisClient, err := cache.Initialize(cfg.Cache.Addr, appLogger)
		if err != nil {
			appLogger.Warn("CACHE", fmt.Sprintf("Running without event cache: %v", err))
		} else {
			eventCache = cache.NewEventCache(redisClient, cfg.Cache.TTL)
			defer redisClient.Close()
		}
	}

	// --- Registration event stream ---
	producer := stream.NewProducer(cfg.Stream, appLogger)
	defer producer.Close()

	if cfg.Stream.Enabled && !cfg.Stream.MockMode {
		topics := []string{
			cfg.Stream.Topics.RegistrationPending,
			cfg.Stream.Topics.RegistrationCompleted,
			cfg.Stream.Topics.RegistrationFailed,
		}
		if err := stream.EnsureTopicsExist(cfg.Stream.Brokers, topics); err != nil {
			appLogger.Warn("STREAM", fmt.Sprintf("Could not ensure topics: %v", err))
		}
	}

	// --- Checkout provider ---
	var provider checkout.Provider
	switch cfg.Checkout.Provider {
	case "stripe":
		if cfg.Checkout.StripeSecretKey == "" {
			appLogger.Fatal("CONFIG", "STRIPE_SECRET_KEY is required for the stripe checkout provider")
		}
		provider = stripecheckout.New(cfg.Checkout.StripeSecretKey)
		appLogger.Info("CHECKOUT", "Stripe checkout provider configured")
	default:
		appLogger.Warn("CHECKOUT", "No checkout provider configured; paid registrations will fail at checkout")
	}

	// --- Service + router ---
	service := &gateway.Service{
		API:        client.Events,
		Journal:    journalDB,
		Cache:      eventCache,
		Stream:     producer,
		Checkout:   provider,
		QR:         ticket.NewQRGenerator(getQRSecret()),
		Logger:     appLogger,
		ThemeColor: cfg.Checkout.ThemeColor,
	}
	handler := gateway.NewHandler(service, appLogger)
	router := gateway.NewRouter(handler, cfg.Admin.JWTSecret)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("SERVER", fmt.Sprintf("Registration gateway running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("SERVER", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("SERVER", "Shutdown signal received, cleaning up")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		appLogger.Fatal("SERVER", fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLogger.Info("SERVER", "Server exited gracefully")
}

func getQRSecret() string {
	if secret := os.Getenv("TICKET_QR_SECRET"); secret != "" {
		return secret
	}
	return "registration-gateway-dev-secret"
}
