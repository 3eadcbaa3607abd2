package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/Urmanga/file-scanner-gui/internal/config"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider talks to the OpenAI chat completions API or any compatible endpoint
type OpenAIProvider struct {
	api   *openai.Client
	model string
}

// NewOpenAIProvider creates an OpenAI provider. baseURL selects a compatible
// endpoint (DeepSeek, local gateways) when set.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	// Anthropic aliases from the default config mean nothing here
	switch strings.ToLower(model) {
	case "", "haiku", "sonnet", "opus":
		model = defaultOpenAIModel
	}

	return &OpenAIProvider{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string { return config.ProviderOpenAI }

// Model returns the model ID in use
func (p *OpenAIProvider) Model() string { return p.model }

// Complete runs one chat completion
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := p.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, errors.New("empty response from API")
	}

	return &Completion{
		Text:       text,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
