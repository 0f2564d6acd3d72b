package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ekoscanner/ekoscanner/config"
	"github.com/ekoscanner/ekoscanner/internal/infrastructure/cache"
	"github.com/ekoscanner/ekoscanner/internal/infrastructure/openfoodfacts"
	"github.com/ekoscanner/ekoscanner/internal/infrastructure/storage"
	"github.com/ekoscanner/ekoscanner/internal/infrastructure/summary"
	"github.com/ekoscanner/ekoscanner/internal/logging"
	"github.com/ekoscanner/ekoscanner/internal/usecase"
	"go.uber.org/zap"
)

// app holds the wired client-side components
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	history  *usecase.HistoryStore
	pipeline *usecase.LookupPipeline
	closers  []func() error
}

// newApp loads configuration, opens history storage and wires the lookup
// pipeline. The caller must call Close.
func newApp(ctx context.Context, interactive bool, opts ...usecase.LookupOption) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}

	var logger *zap.Logger
	if interactive {
		logger, err = logging.NewForTUI(cfg.Log.Level, cfg.Server.Environment, cfg.Log.File)
	} else {
		logger, err = logging.New(cfg.Log.Level, cfg.Server.Environment, cfg.Log.File)
	}
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	kv, closeStorage, err := storage.Open(cfg.History.Backend, cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history storage: %w", err)
	}
	a.closers = append(a.closers, closeStorage)

	a.history = usecase.NewHistoryStore(kv, logger)
	a.history.Load(ctx)

	productCache := cache.NewMemoryCache()
	a.closers = append(a.closers, productCache.Close)

	offClient := openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL,
		openfoodfacts.WithHTTPClient(&http.Client{Timeout: cfg.OpenFoodFacts.Timeout}),
		openfoodfacts.WithUserAgent(cfg.OpenFoodFacts.UserAgent),
		openfoodfacts.WithRateLimit(cfg.RateLimit.OpenFoodFacts),
		openfoodfacts.WithLogger(logger))

	products := usecase.NewProductService(productCache, offClient,
		usecase.ProductServiceConfig{CacheTTL: cfg.Cache.TTL}, logger)
	summaries := summary.NewClient(cfg.Summary.BaseURL, cfg.Summary.Timeout, logger)

	opts = append([]usecase.LookupOption{usecase.WithLookupLogger(logger)}, opts...)
	a.pipeline = usecase.NewLookupPipeline(products, summaries, a.history, opts...)

	return a, nil
}

// Close releases storage and background workers
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
