// cmd/loan-processor/main.go
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

	"github.com/cozypet/loan-processor-ai/internal/common/config"
	"github.com/cozypet/loan-processor-ai/internal/common/database"
	"github.com/cozypet/loan-processor-ai/internal/common/logger"
	"github.com/cozypet/loan-processor-ai/internal/extractor"
	"github.com/cozypet/loan-processor-ai/internal/pipeline"
	"github.com/cozypet/loan-processor-ai/internal/profile"
	"github.com/cozypet/loan-processor-ai/internal/risk"
	"github.com/cozypet/loan-processor-ai/internal/server"
	"github.com/cozypet/loan-processor-ai/internal/store"
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
			delay *= 2 // Exponential backoff
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

	zapLog.Info("Starting loan processor...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	// --- Init MongoDB with retry ---
	var mongoClient *database.MongoClient
	err = retryWithBackoff(func() error {
		var err error
		mongoClient, err = database.NewMongo(ctx, cfg.Mongo)
		return err
	}, 10, 2*time.Second, zapLog, "MongoDB connection")
	if err != nil {
		zapLog.Fatal("mongodb failed after retries", zap.Error(err))
	}
	defer mongoClient.Close(ctx)
	zapLog.Info("MongoDB connected successfully")

	// --- Init Redis (optional extraction cache) ---
	var cache *extractor.Cache
	if cfg.Redis.Enabled {
		redisClient, err := database.NewRedis(cfg.Redis)
		if err != nil {
			zapLog.Warn("redis unavailable, extraction cache disabled", zap.Error(err))
		} else if err := redisClient.Ping(ctx); err != nil {
			zapLog.Warn("redis ping failed, extraction cache disabled", zap.Error(err))
			redisClient.Close()
		} else {
			defer redisClient.Close()
			cache = extractor.NewCache(redisClient, time.Duration(cfg.Redis.CacheTTL)*time.Second)
			zapLog.Info("Redis connected, extraction cache enabled")
		}
	}

	// --- Wire the pipeline ---
	docExtractor := extractor.New(cfg.DocumentAI, cache, log)
	combiner := profile.NewCombiner(cfg.Policy.NetIncomeGrossRatio)
	engine := risk.NewEngine(cfg.Reasoning, cfg.Policy, log)
	appStore := store.NewApplicationStore(mongoClient, cfg.Mongo, log)
	orchestrator := pipeline.NewOrchestrator(docExtractor, combiner, engine, appStore, log)

	srv := server.New(*cfg, orchestrator, appStore, log)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		zapLog.Error("http server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}

	zapLog.Info("loan processor stopped")
}
