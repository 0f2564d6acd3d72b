package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ekoscanner/ekoscanner/internal/domain"
)

// mockProductClient is a mock implementation of domain.ProductClient
type mockProductClient struct {
	calls   atomic.Int32
	getFunc func(ctx context.Context, code string) (*domain.Product, error)
}

func (m *mockProductClient) GetProduct(ctx context.Context, code string) (*domain.Product, error) {
	m.calls.Add(1)
	if m.getFunc != nil {
		return m.getFunc(ctx, code)
	}
	return nil, domain.ErrProductNotFound
}

// mockSummaryClient is a mock implementation of domain.SummaryClient
type mockSummaryClient struct {
	calls         atomic.Int32
	mu            sync.Mutex
	lastRequest   domain.SummaryRequest
	summarizeFunc func(ctx context.Context, req domain.SummaryRequest) (string, error)
}

func (m *mockSummaryClient) Summarize(ctx context.Context, req domain.SummaryRequest) (string, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.lastRequest = req
	m.mu.Unlock()
	if m.summarizeFunc != nil {
		return m.summarizeFunc(ctx, req)
	}
	return "", domain.ErrSummaryUnavailable
}

func (m *mockSummaryClient) LastRequest() domain.SummaryRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// mockCompleter is a mock implementation of domain.Completer
type mockCompleter struct {
	prompt string
	text   string
	err    error
}

func (m *mockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.text, m.err
}

// mockCacheRepository is a mock implementation of domain.CacheRepository
type mockCacheRepository struct {
	mu   sync.Mutex
	data map[string]interface{}
	sets int
}

func newMockCacheRepository() *mockCacheRepository {
	return &mockCacheRepository{data: make(map[string]interface{})}
}

func (m *mockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *mockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// recordingHistory is a HistoryRecorder that remembers every call
type recordingHistory struct {
	mu    sync.Mutex
	codes []string
}

func (r *recordingHistory) Record(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, code)
	return nil
}

func (r *recordingHistory) Codes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out
}
