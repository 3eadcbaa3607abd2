package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/Urmanga/file-scanner-gui/internal/config"
)

// ErrNoAPIKey is returned when no API key is configured for the provider
var ErrNoAPIKey = errors.New("no API key configured")

// CompletionRequest is one text generation call
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Completion is the generated text and the tokens it consumed
type Completion struct {
	Text       string
	TokensUsed int
}

// Provider generates text from a prompt
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// NewProvider builds the provider selected by cfg.Provider
func NewProvider(cfg config.RemoteConfig, logger *zap.Logger) (Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	switch strings.ToLower(cfg.Provider) {
	case "", config.ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case config.ProviderHTTP:
		if cfg.BaseURL == "" {
			return nil, errors.New("http provider requires base_url")
		}
		return NewHTTPProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// AnthropicProvider wraps the Anthropic API client
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a provider for the Anthropic Messages API
func NewAnthropicProvider(apiKey, model, baseURL string) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// A failed call yields no tags, it is never retried
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  mapModelName(model),
	}
}

// mapModelName converts friendly model names to model IDs
func mapModelName(name string) string {
	switch strings.ToLower(name) {
	case "", "haiku":
		return "claude-3-5-haiku-latest"
	case "sonnet":
		return "claude-sonnet-4-20250514"
	case "opus":
		return "claude-opus-4-20250514"
	default:
		// Full model IDs pass through
		return name
	}
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string { return config.ProviderAnthropic }

// Model returns the model ID in use
func (p *AnthropicProvider) Model() string { return p.model }

// Complete sends a single user message and returns the text reply
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	// Extract text content
	responseText := extractTextContent(message)
	if responseText == "" {
		return nil, errors.New("empty response from API")
	}

	return &Completion{
		Text:       responseText,
		TokensUsed: int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}, nil
}

// extractTextContent extracts text from the message response
func extractTextContent(message *anthropic.Message) string {
	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String()
}

// requestTimeout converts the configured timeout, defaulting to 10 seconds
func requestTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(seconds) * time.Second
}
