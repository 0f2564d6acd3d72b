package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured
const DefaultOpenAIModel = openai.GPT3Dot5Turbo

// OpenAICompleter generates completions with the OpenAI chat API
type OpenAICompleter struct {
	client *openai.Client
	model  string
}

// NewOpenAICompleter creates an OpenAI completer. baseURL may point at any
// OpenAI-compatible endpoint; empty uses the public API.
func NewOpenAICompleter(apiKey, model, baseURL string) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Complete sends prompt as a single user message
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
