package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Urmanga/file-scanner-gui/internal/config"
)

// HTTPProvider calls a generic JSON text generation endpoint.
//
// Request:  {"model": ..., "system": ..., "prompt": ..., "max_tokens": ..., "temperature": ...}
// Response: {"text": ..., "usage": {"total_tokens": ...}}
type HTTPProvider struct {
	httpc    *resty.Client
	endpoint string
	model    string
}

type generateRequest struct {
	Model       string  `json:"model"`
	System      string  `json:"system,omitempty"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// NewHTTPProvider creates a provider posting to endpoint with a bearer token
func NewHTTPProvider(endpoint, apiKey, model string, logger *zap.Logger) *HTTPProvider {
	httpc := resty.New()
	httpc.SetAuthToken(apiKey)
	httpc.SetHeader("Accept", "application/json")
	if logger != nil {
		httpc.SetLogger(&zapRestyLogger{logger: logger.Sugar()})
	}

	return &HTTPProvider{
		httpc:    httpc,
		endpoint: endpoint,
		model:    model,
	}
}

// Name returns the provider name
func (p *HTTPProvider) Name() string { return config.ProviderHTTP }

// Model returns the model identifier sent with each request
func (p *HTTPProvider) Model() string { return p.model }

// Complete posts the prompt and decodes the generated text
func (p *HTTPProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	var out generateResponse

	resp, err := p.httpc.R().
		SetContext(ctx).
		SetBody(generateRequest{
			Model:       p.model,
			System:      req.System,
			Prompt:      req.Prompt,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		}).
		SetResult(&out).
		ForceContentType("application/json").
		Post(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return nil, errors.New("malformed response: missing text")
	}

	return &Completion{
		Text:       text,
		TokensUsed: out.Usage.TotalTokens,
	}, nil
}

// zapRestyLogger adapts a zap logger to resty's logger interface
type zapRestyLogger struct {
	logger *zap.SugaredLogger
}

func (l *zapRestyLogger) Errorf(format string, v ...interface{}) { l.logger.Errorf(format, v...) }
func (l *zapRestyLogger) Warnf(format string, v ...interface{})  { l.logger.Warnf(format, v...) }
func (l *zapRestyLogger) Debugf(format string, v ...interface{}) { l.logger.Debugf(format, v...) }
