package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ekoscanner/ekoscanner/internal/domain"
	"go.uber.org/zap"
)

// HistoryKey is the storage key holding the JSON array of scanned codes
const HistoryKey = "ekoscanner.history"

// HistoryStore keeps the distinct scanned codes, most recent first,
// bounded by domain.MaxHistoryEntries and persisted on every change.
type HistoryStore struct {
	storage domain.KeyValueStorage
	logger  *zap.Logger

	mu      sync.Mutex
	entries []string
}

// NewHistoryStore creates an empty store; call Load to read persisted entries
func NewHistoryStore(storage domain.KeyValueStorage, logger *zap.Logger) *HistoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryStore{
		storage: storage,
		logger:  logger.Named("history"),
	}
}

// Load reads the persisted history. Unreadable or corrupt data resets the
// history to empty; Load never fails.
func (h *HistoryStore) Load(ctx context.Context) []string {
	entries, err := h.read(ctx)
	if err != nil {
		h.logger.Warn("discarding stored history", zap.Error(err))
		entries = nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = entries
	return h.copyLocked()
}

func (h *HistoryStore) read(ctx context.Context) ([]string, error) {
	raw, err := h.storage.Get(ctx, HistoryKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHistoryCorrupt, err)
	}

	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHistoryCorrupt, err)
	}

	return normalize(stored), nil
}

// normalize trims entries and restores the no-duplicate and length invariants
func normalize(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) == domain.MaxHistoryEntries {
			break
		}
	}
	return out
}

// Record moves code to the front of the history and persists it.
// The in-memory history is updated even if persisting fails.
func (h *HistoryStore) Record(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.ErrEmptyInput
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	next := make([]string, 0, len(h.entries)+1)
	next = append(next, code)
	for _, c := range h.entries {
		if c != code {
			next = append(next, c)
		}
	}
	if len(next) > domain.MaxHistoryEntries {
		next = next[:domain.MaxHistoryEntries]
	}
	h.entries = next

	return h.persistLocked(ctx)
}

// Clear removes every entry
func (h *HistoryStore) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil
	if err := h.storage.Delete(ctx, HistoryKey); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// Entries returns a copy of the history, most recent first
func (h *HistoryStore) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.copyLocked()
}

// Contains reports whether code is in the history
func (h *HistoryStore) Contains(code string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.entries {
		if c == code {
			return true
		}
	}
	return false
}

func (h *HistoryStore) copyLocked() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *HistoryStore) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(h.copyLocked())
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := h.storage.Set(ctx, HistoryKey, string(raw)); err != nil {
		return fmt.Errorf("persisting history: %w", err)
	}
	return nil
}
