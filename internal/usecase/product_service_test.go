package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ekoscanner/ekoscanner/internal/domain"
	"github.com/ekoscanner/ekoscanner/internal/infrastructure/cache"
)

func TestNewProductService(t *testing.T) {
	t.Run("uses default ttl when zero", func(t *testing.T) {
		svc := NewProductService(newMockCacheRepository(), &mockProductClient{}, ProductServiceConfig{}, nil)
		if svc.cacheTTL != 24*time.Hour {
			t.Errorf("cacheTTL = %v, want 24h (default)", svc.cacheTTL)
		}
	})

	t.Run("keeps provided ttl", func(t *testing.T) {
		svc := NewProductService(newMockCacheRepository(), &mockProductClient{}, ProductServiceConfig{CacheTTL: time.Minute}, nil)
		if svc.cacheTTL != time.Minute {
			t.Errorf("cacheTTL = %v, want 1m", svc.cacheTTL)
		}
	})
}

func TestProductService_GetProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches and caches a found product", func(t *testing.T) {
		cache := newMockCacheRepository()
		client := &mockProductClient{getFunc: oats}
		svc := NewProductService(cache, client, ProductServiceConfig{}, nil)

		product, err := svc.GetProduct(ctx, "7311870010970")
		if err != nil {
			t.Fatalf("GetProduct() error = %v", err)
		}
		if product.Name != "Test Oats" {
			t.Errorf("Name = %q, want %q", product.Name, "Test Oats")
		}
		if ok, _ := cache.Exists(ctx, "product:7311870010970"); !ok {
			t.Error("expected product to be cached")
		}

		if _, err := svc.GetProduct(ctx, "7311870010970"); err != nil {
			t.Fatalf("second GetProduct() error = %v", err)
		}
		if got := client.calls.Load(); got != 1 {
			t.Errorf("client calls = %d, want 1", got)
		}
	})

	t.Run("does not cache not found", func(t *testing.T) {
		cache := newMockCacheRepository()
		client := &mockProductClient{getFunc: func(ctx context.Context, code string) (*domain.Product, error) {
			return nil, domain.ErrProductNotFound
		}}
		svc := NewProductService(cache, client, ProductServiceConfig{}, nil)

		_, err := svc.GetProduct(ctx, "1")
		if !errors.Is(err, domain.ErrProductNotFound) {
			t.Errorf("error = %v, want ErrProductNotFound", err)
		}
		if cache.sets != 0 {
			t.Errorf("cache sets = %d, want 0", cache.sets)
		}
	})

	t.Run("wraps unknown client errors", func(t *testing.T) {
		client := &mockProductClient{getFunc: func(ctx context.Context, code string) (*domain.Product, error) {
			return nil, errors.New("boom")
		}}
		svc := NewProductService(newMockCacheRepository(), client, ProductServiceConfig{}, nil)

		_, err := svc.GetProduct(ctx, "1")
		if !errors.Is(err, domain.ErrProductFetchFailed) {
			t.Errorf("error = %v, want ErrProductFetchFailed", err)
		}
	})

	t.Run("rejects empty code", func(t *testing.T) {
		client := &mockProductClient{getFunc: oats}
		svc := NewProductService(newMockCacheRepository(), client, ProductServiceConfig{}, nil)

		_, err := svc.GetProduct(ctx, "  ")
		if !errors.Is(err, domain.ErrEmptyInput) {
			t.Errorf("error = %v, want ErrEmptyInput", err)
		}
		if got := client.calls.Load(); got != 0 {
			t.Errorf("client calls = %d, want 0", got)
		}
	})

	t.Run("reads json cached values", func(t *testing.T) {
		cache := newMockCacheRepository()
		raw, _ := json.Marshal(&domain.Product{Code: "1", Name: "Cached"})
		cache.data["product:1"] = json.RawMessage(raw)
		client := &mockProductClient{getFunc: oats}
		svc := NewProductService(cache, client, ProductServiceConfig{}, nil)

		product, err := svc.GetProduct(ctx, "1")
		if err != nil {
			t.Fatalf("GetProduct() error = %v", err)
		}
		if product.Name != "Cached" {
			t.Errorf("Name = %q, want Cached", product.Name)
		}
		if got := client.calls.Load(); got != 0 {
			t.Errorf("client calls = %d, want 0", got)
		}
	})

	t.Run("reads map cached values", func(t *testing.T) {
		cache := newMockCacheRepository()
		cache.data["product:1"] = map[string]interface{}{
			"code":        "1",
			"productName": "Mapped",
			"brand":       "B",
			"categories":  "C",
			"imageUrl":    "http://img",
		}
		svc := NewProductService(cache, &mockProductClient{}, ProductServiceConfig{}, nil)

		product, err := svc.GetProduct(ctx, "1")
		if err != nil {
			t.Fatalf("GetProduct() error = %v", err)
		}
		want := domain.Product{Code: "1", Name: "Mapped", Brand: "B", Categories: "C", ImageURL: "http://img"}
		if *product != want {
			t.Errorf("product = %+v, want %+v", *product, want)
		}
	})

	t.Run("falls through on unreadable cache entry", func(t *testing.T) {
		cache := newMockCacheRepository()
		cache.data["product:1"] = 42
		client := &mockProductClient{getFunc: oats}
		svc := NewProductService(cache, client, ProductServiceConfig{}, nil)

		if _, err := svc.GetProduct(ctx, "1"); err != nil {
			t.Fatalf("GetProduct() error = %v", err)
		}
		if got := client.calls.Load(); got != 1 {
			t.Errorf("client calls = %d, want 1", got)
		}
	})
}

func TestProductService_WithMemoryCache(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	defer mem.Close()

	client := &mockProductClient{getFunc: oats}
	svc := NewProductService(mem, client, ProductServiceConfig{CacheTTL: time.Hour}, nil)

	first, err := svc.GetProduct(ctx, "7311870010970")
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	second, err := svc.GetProduct(ctx, "7311870010970")
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}

	if *first != *second {
		t.Errorf("cached product = %+v, want %+v", *second, *first)
	}
	if got := client.calls.Load(); got != 1 {
		t.Errorf("client calls = %d, want 1", got)
	}
}
