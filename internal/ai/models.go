package ai

import (
	"errors"
	"sync"
	"time"

	"github.com/Urmanga/file-scanner-gui/internal/config"
)

// ErrBudgetExceeded is returned when a call would exceed the daily limit
var ErrBudgetExceeded = errors.New("daily budget exceeded")

// AssumedResponseTokens is the per-call token estimate used by the budget check
const AssumedResponseTokens = 100

// UsageState holds process-wide remote usage counters.
// It only resets when Reset is called.
type UsageState struct {
	mu       sync.Mutex
	tokens   int
	spentUSD float64
	calls    int
	resetAt  time.Time

	// reserved holds estimates for calls still in flight
	reserved float64
}

// Usage is a point-in-time copy of UsageState
type Usage struct {
	Tokens   int       `json:"tokens"`
	SpentUSD float64   `json:"spent_usd"`
	Calls    int       `json:"calls"`
	ResetAt  time.Time `json:"reset_at"`
}

// NewUsageState creates zeroed counters
func NewUsageState() *UsageState {
	return &UsageState{resetAt: time.Now()}
}

// Add records one successful call
func (u *UsageState) Add(tokens int, costUSD float64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tokens += tokens
	u.spentUSD += costUSD
	u.calls++
}

// Reserve holds estimate against limit when spent, held and estimate fit.
// A held estimate is returned with Settle or Release.
func (u *UsageState) Reserve(estimate, limit float64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.spentUSD+u.reserved+estimate > limit {
		return false
	}
	u.reserved += estimate
	return true
}

// Settle drops a held estimate and records the call's real usage
func (u *UsageState) Settle(estimate float64, tokens int, costUSD float64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.release(estimate)
	u.tokens += tokens
	u.spentUSD += costUSD
	u.calls++
}

// Release drops a held estimate for a call that was not charged
func (u *UsageState) Release(estimate float64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.release(estimate)
}

func (u *UsageState) release(estimate float64) {
	u.reserved -= estimate
	if u.reserved < 0 {
		u.reserved = 0
	}
}

// Reserved returns the estimates held by calls in flight
func (u *UsageState) Reserved() float64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.reserved
}

// Tokens returns tokens consumed since the last reset
func (u *UsageState) Tokens() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tokens
}

// SpentUSD returns the cost consumed since the last reset
func (u *UsageState) SpentUSD() float64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.spentUSD
}

// Snapshot returns a copy of the counters
func (u *UsageState) Snapshot() Usage {
	u.mu.Lock()
	defer u.mu.Unlock()
	return Usage{Tokens: u.tokens, SpentUSD: u.spentUSD, Calls: u.calls, ResetAt: u.resetAt}
}

// Reset zeroes the counters. Estimates held by calls in flight are kept.
func (u *UsageState) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tokens = 0
	u.spentUSD = 0
	u.calls = 0
	u.resetAt = time.Now()
}

// TokenCost returns the cost of tokens at a price per 1000 tokens
func TokenCost(tokens int, pricePer1K float64) float64 {
	return float64(tokens) * pricePer1K / 1000
}

// Budget decides whether a remote call may be made
type Budget struct {
	DailyLimit float64
	PricePer1K float64
	Mode       string // config.BudgetCumulative or config.BudgetPerCall
}

// NewBudget reads the budget settings from the remote config
func NewBudget(cfg config.RemoteConfig) Budget {
	return Budget{
		DailyLimit: cfg.DailyLimit,
		PricePer1K: cfg.PricePer1KTokens,
		Mode:       cfg.BudgetMode,
	}
}

// EstimatedCallCost is the projected cost of one call
func (b Budget) EstimatedCallCost() float64 {
	return TokenCost(AssumedResponseTokens, b.PricePer1K)
}

// Check returns ErrBudgetExceeded if the next call would not fit. A limit of
// zero or less never admits a call. In per-call mode the spent amount is
// ignored and only the estimate is compared against the limit.
func (b Budget) Check(usage *UsageState) error {
	if b.DailyLimit <= 0 {
		return ErrBudgetExceeded
	}

	estimate := b.EstimatedCallCost()
	if b.Mode == config.BudgetPerCall {
		if estimate > b.DailyLimit {
			return ErrBudgetExceeded
		}
		return nil
	}

	var spent float64
	if usage != nil {
		spent = usage.SpentUSD() + usage.Reserved()
	}
	if spent+estimate > b.DailyLimit {
		return ErrBudgetExceeded
	}
	return nil
}

// Reserve admits one call and returns the estimate it holds on usage, to be
// passed to Settle or Release. In per-call mode nothing is held.
func (b Budget) Reserve(usage *UsageState) (float64, error) {
	if b.Mode == config.BudgetPerCall || usage == nil {
		return 0, b.Check(usage)
	}
	if b.DailyLimit <= 0 {
		return 0, ErrBudgetExceeded
	}

	estimate := b.EstimatedCallCost()
	if !usage.Reserve(estimate, b.DailyLimit) {
		return 0, ErrBudgetExceeded
	}
	return estimate, nil
}

// CostEstimate represents the projected remote cost of a scan
type CostEstimate struct {
	Model            string
	FilesCount       int
	EstimatedTokens  int
	EstimatedCostUSD float64
	RemainingUSD     float64
}

// EstimateScanCost projects the cost of classifying files remotely
func EstimateScanCost(cfg config.RemoteConfig, files int, usage *UsageState) *CostEstimate {
	tokens := files * AssumedResponseTokens
	remaining := cfg.DailyLimit
	if usage != nil && cfg.BudgetMode != config.BudgetPerCall {
		remaining -= usage.SpentUSD()
	}
	if remaining < 0 {
		remaining = 0
	}

	return &CostEstimate{
		Model:            cfg.Model,
		FilesCount:       files,
		EstimatedTokens:  tokens,
		EstimatedCostUSD: TokenCost(tokens, cfg.PricePer1KTokens),
		RemainingUSD:     remaining,
	}
}
