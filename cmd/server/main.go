// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"listing-analytics/internal/common/config"
	"listing-analytics/internal/common/database"
	"listing-analytics/internal/common/logger"
	"listing-analytics/internal/common/observability"
	"listing-analytics/internal/handlers/analysis"
	"listing-analytics/internal/handlers/autocomplete"
	"listing-analytics/internal/handlers/payment"
	"listing-analytics/internal/handlers/subscription"
	"listing-analytics/internal/integrations/gemini"
	"listing-analytics/internal/integrations/places"
	"listing-analytics/internal/integrations/rentcast"
	"listing-analytics/internal/integrations/stripepay"
	"listing-analytics/internal/server"
	"listing-analytics/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := logger.NewZapAdapter(zapLogger)

	log.Info("Starting listing-analytics", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New("listing-analytics")
	defer obs.Shutdown()

	redisClient, err := database.NewRedis(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	if err := pingWithBackoff(redisClient, log); err != nil {
		zapLogger.Fatal("Redis unreachable", zap.Error(err))
	}

	st := store.New(redisClient.GetClient(), log)

	placesClient := places.NewClient(cfg.APIs.Places, log)
	rentcastClient := rentcast.NewClient(cfg.APIs.RentCast, log)
	geminiClient := gemini.NewClient(cfg.APIs.Gemini, log)
	stripeClient := stripepay.NewClient(cfg.Stripe.SecretKey, log)

	srv := server.New(cfg.Server, server.Deps{
		Autocomplete: autocomplete.NewHandler(placesClient, log),
		Payment:      payment.NewHandler(stripeClient, st, log),
		Subscription: subscription.NewHandler(st, log),
		Analysis:     analysis.NewHandler(rentcastClient, placesClient, geminiClient, st, log),
		Health: server.ProviderHealth{
			Places:   placesClient.Configured(),
			RentCast: rentcastClient.Configured(),
			Gemini:   geminiClient.Configured(),
			Stripe:   stripeClient.Configured(),
		},
		PingStore:     redisClient.Ping,
		Logger:        log,
		Observability: obs,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})
	case err := <-errCh:
		zapLogger.Fatal("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Server stopped", nil)
}

// pingWithBackoff verifies the store connection, retrying with exponential
// backoff so a briefly late Redis container does not kill the process.
func pingWithBackoff(client *database.RedisClient, log logger.Logger) error {
	const maxAttempts = 5
	backoff := time.Second

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = client.Ping(ctx)
		cancel()

		if err == nil {
			log.Info("Redis connection established", nil)
			return nil
		}

		log.Warn("Redis ping failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"backoff": backoff.String(),
			"error":   err.Error(),
		})
		time.Sleep(backoff)
		backoff *= 2
	}

	return err
}
