package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ekoscanner/ekoscanner/config"
	httpDelivery "github.com/ekoscanner/ekoscanner/internal/delivery/http"
	"github.com/ekoscanner/ekoscanner/internal/infrastructure/cache"
	"github.com/ekoscanner/ekoscanner/internal/infrastructure/llm"
	"github.com/ekoscanner/ekoscanner/internal/infrastructure/openfoodfacts"
	"github.com/ekoscanner/ekoscanner/internal/logging"
	"github.com/ekoscanner/ekoscanner/internal/usecase"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ekoscanner-relay: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Server.Environment, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.RequireLLM(); err != nil {
		return err
	}

	logger.Info("starting ekoscanner relay",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Duration("cache_ttl", cfg.Cache.TTL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	completer, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create completion backend: %w", err)
	}

	productCache := cache.NewMemoryCache()
	defer productCache.Close()

	offClient := openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL,
		openfoodfacts.WithHTTPClient(&http.Client{Timeout: cfg.OpenFoodFacts.Timeout}),
		openfoodfacts.WithUserAgent(cfg.OpenFoodFacts.UserAgent),
		openfoodfacts.WithRateLimit(cfg.RateLimit.OpenFoodFacts),
		openfoodfacts.WithLogger(logger))
	if cfg.Server.Environment == "development" {
		offClient.SetDebug(true)
	}

	products := usecase.NewProductService(productCache, offClient,
		usecase.ProductServiceConfig{CacheTTL: cfg.Cache.TTL}, logger)
	summaries := usecase.NewSummaryService(completer, logger)

	handler := httpDelivery.NewHandler(products, summaries, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("relay stopped with error", zap.Error(err))
		return err
	}
	logger.Info("relay stopped")
	return nil
}
