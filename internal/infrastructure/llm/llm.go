// Package llm holds the completion backends behind the summary relay.
package llm

import (
	"context"
	"fmt"

	"github.com/ekoscanner/ekoscanner/config"
	"github.com/ekoscanner/ekoscanner/internal/domain"
)

// New creates the completer selected by cfg.Provider
func New(ctx context.Context, cfg config.LLMConfig) (domain.Completer, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAICompleter(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "gemini":
		return NewGeminiCompleter(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
