package ai

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Urmanga/file-scanner-gui/internal/config"
	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// remoteMaxTokens bounds the generated reply
const remoteMaxTokens = 100

// Remote derives tags for a file through a text generation provider.
// It never returns an error: any failure yields no tags.
type Remote struct {
	provider Provider
	cfg      config.RemoteConfig
	budget   Budget
	usage    *UsageState
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   *zap.Logger
}

// NewRemote builds a remote classifier from config. A missing API key or an
// unusable provider leaves the classifier inert rather than failing.
func NewRemote(cfg config.RemoteConfig, usage *UsageState, logger *zap.Logger) *Remote {
	var provider Provider
	if cfg.Enabled {
		p, err := NewProvider(cfg, logger)
		if err != nil {
			logger.Warn("Remote classification unavailable", zap.Error(err))
		} else {
			provider = p
		}
	}
	return NewRemoteWithProvider(cfg, provider, usage, logger)
}

// NewRemoteWithProvider builds a remote classifier over an explicit provider
func NewRemoteWithProvider(cfg config.RemoteConfig, provider Provider, usage *UsageState, logger *zap.Logger) *Remote {
	if usage == nil {
		usage = NewUsageState()
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	return &Remote{
		provider: provider,
		cfg:      cfg,
		budget:   NewBudget(cfg),
		usage:    usage,
		limiter:  rate.NewLimiter(limit, 1),
		timeout:  requestTimeout(cfg.Timeout),
		logger:   logger,
	}
}

// Enabled reports whether remote classification is switched on
func (r *Remote) Enabled() bool {
	return r.cfg.Enabled
}

// Model returns the model that produces the tags
func (r *Remote) Model() string {
	if r.provider != nil {
		return r.provider.Model()
	}
	return r.cfg.Model
}

// Usage returns the shared usage counters
func (r *Remote) Usage() *UsageState {
	return r.usage
}

// Classify returns at most MaxRemoteTags tags for a record. It returns nil
// when disabled, without an API key, when the budget does not admit the call,
// or when the call fails.
func (r *Remote) Classify(ctx context.Context, record *models.FileRecord) []string {
	if !r.cfg.Enabled {
		return nil
	}

	if r.cfg.APIKey == "" || r.provider == nil {
		r.logger.Debug("Remote classification skipped", zap.String("path", record.Path), zap.Error(ErrNoAPIKey))
		return nil
	}

	// Budget is reserved before any network traffic
	held, err := r.budget.Reserve(r.usage)
	if err != nil {
		r.logger.Info("Remote classification skipped: budget exceeded",
			zap.String("path", record.Path),
			zap.Float64("daily_limit", r.budget.DailyLimit),
			zap.Float64("spent_usd", r.usage.SpentUSD()))
		return nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		r.usage.Release(held)
		r.logger.Debug("Remote classification cancelled", zap.String("path", record.Path), zap.Error(err))
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	completion, err := r.provider.Complete(callCtx, CompletionRequest{
		System:      TagSystemPrompt,
		Prompt:      BuildTagPrompt(record),
		MaxTokens:   remoteMaxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		r.usage.Release(held)
		fields := []zap.Field{
			zap.String("path", record.Path),
			zap.String("provider", r.provider.Name()),
			zap.Error(err),
		}
		if errors.Is(err, context.DeadlineExceeded) {
			fields = append(fields, zap.Duration("timeout", r.timeout))
		}
		r.logger.Warn("Remote classification failed", fields...)
		return nil
	}

	r.usage.Settle(held, completion.TokensUsed, TokenCost(completion.TokensUsed, r.budget.PricePer1K))

	tags := ParseTags(completion.Text)
	r.logger.Debug("Remote tags",
		zap.String("path", record.Path),
		zap.Strings("tags", tags),
		zap.Int("tokens", completion.TokensUsed))
	return tags
}
