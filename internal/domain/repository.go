package domain

import (
	"context"
	"image"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductClient fetches product metadata by barcode
type ProductClient interface {
	GetProduct(ctx context.Context, code string) (*Product, error)
}

// SummaryClient requests a sustainability summary for a product
type SummaryClient interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

// Completer sends a prompt to a language model and returns the completion text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// KeyValueStorage is the client-side storage port. Get returns ErrNotFound
// for absent keys. Set must be durable when it returns.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// FrameSource yields video frames. A failed Open releases whatever it
// acquired. Close must be safe to call more than once.
type FrameSource interface {
	Open(ctx context.Context) error
	Next(ctx context.Context) (image.Image, error)
	Close() error
}
