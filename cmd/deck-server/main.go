// cmd/deck-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"astrodeck/internal/common/config"
	"astrodeck/internal/common/database"
	"astrodeck/internal/common/httpclient"
	"astrodeck/internal/common/logger"
	"astrodeck/internal/common/observability"
	"astrodeck/internal/deck"
	"astrodeck/internal/enrich"
	"astrodeck/internal/nasa"
	"astrodeck/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting deck server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("deck-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// Upstream clients share one pooled HTTP client; per-attempt deadlines
	// come from the retry policies, so the hard cap just needs to exceed
	// the longest of them.
	client := httpclient.New(90 * time.Second)
	library := nasa.NewLibrary(cfg.NASA, client, log)

	var enricher enrich.Provider = enrich.Noop{}
	switch {
	case cfg.Cloudflare.Enabled && cfg.Cloudflare.Configured():
		enricher = enrich.NewCloudflareAI(cfg.Cloudflare, client, log)
		zapLog.Info("Enrichment provider: Workers AI", zap.String("model", cfg.Cloudflare.ModelID()))
	case cfg.Enricher.Enabled:
		enricher = enrich.NewSidecar(cfg.Enricher, client, log)
		zapLog.Info("Enrichment provider: sidecar", zap.String("baseURL", cfg.Enricher.BaseURL))
	default:
		zapLog.Info("Enrichment disabled, decks use template content only")
	}

	var store deck.Store = deck.NewMemoryStore()
	if cfg.Store.Backend == "redis" {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, falling back to in-memory deck store", zap.Error(err))
		} else {
			defer redisClient.Close()
			store = deck.NewRedisStore(redisClient.GetClient(), cfg.Store.TTL)
			zapLog.Info("Redis deck store connected")
		}
	}

	generator := deck.NewGenerator(library, enricher, log)
	srv := server.New(cfg.Server, generator, store, library, obs, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	case sig := <-stop:
		zapLog.Info("Shutting down...", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("graceful shutdown failed", zap.Error(err))
		}
	}

	zapLog.Info("Deck server stopped")
}
