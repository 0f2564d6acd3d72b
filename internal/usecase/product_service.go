package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ekoscanner/ekoscanner/internal/domain"
	"go.uber.org/zap"
)

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	CacheTTL time.Duration
}

// ProductService handles product lookup with caching
type ProductService struct {
	cache    domain.CacheRepository
	client   domain.ProductClient
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewProductService creates a new product service with dependencies
func NewProductService(
	cache domain.CacheRepository,
	client domain.ProductClient,
	config ProductServiceConfig,
	logger *zap.Logger,
) *ProductService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ProductService{
		cache:    cache,
		client:   client,
		cacheTTL: cacheTTL,
		logger:   logger.Named("products"),
	}
}

// GetProduct looks up a product by barcode.
// Flow: check cache -> fetch from catalog -> cache -> return.
// Only found products are cached, so a product added to the catalog later is picked up.
func (s *ProductService) GetProduct(ctx context.Context, code string) (*domain.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrEmptyInput
	}

	key := cacheKey(code)

	if cached, err := s.getFromCache(ctx, key); err == nil {
		s.logger.Debug("cache hit", zap.String("code", code))
		return cached, nil
	}

	product, err := s.client.GetProduct(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) ||
			errors.Is(err, domain.ErrProductFetchFailed) ||
			errors.Is(err, domain.ErrEmptyInput) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProductFetchFailed, err)
	}

	if err := s.cache.Set(ctx, key, product, s.cacheTTL); err != nil {
		s.logger.Warn("caching product failed", zap.String("code", code), zap.Error(err))
	}

	return product, nil
}

// cacheKey returns "product:{code}"
func cacheKey(code string) string {
	return "product:" + code
}

// getFromCache retrieves a product from cache
func (s *ProductService) getFromCache(ctx context.Context, key string) (*domain.Product, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case *domain.Product:
		p := *v
		return &p, nil
	case json.RawMessage:
		var p domain.Product
		if err := json.Unmarshal(v, &p); err != nil {
			return nil, domain.ErrCacheMiss
		}
		return &p, nil
	case map[string]interface{}:
		return mapToProduct(v), nil
	default:
		return nil, domain.ErrCacheMiss
	}
}

// mapToProduct converts a generic JSON map (from a remote cache) to a Product
func mapToProduct(data map[string]interface{}) *domain.Product {
	result := &domain.Product{}

	if v, ok := data["code"].(string); ok {
		result.Code = v
	}
	if v, ok := data["productName"].(string); ok {
		result.Name = v
	}
	if v, ok := data["brand"].(string); ok {
		result.Brand = v
	}
	if v, ok := data["categories"].(string); ok {
		result.Categories = v
	}
	if v, ok := data["imageUrl"].(string); ok {
		result.ImageURL = v
	}

	return result
}
