package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Urmanga/file-scanner-gui/internal/ai"
	"github.com/Urmanga/file-scanner-gui/internal/cache"
	"github.com/Urmanga/file-scanner-gui/internal/classifier"
	"github.com/Urmanga/file-scanner-gui/internal/config"
	"github.com/Urmanga/file-scanner-gui/internal/core"
	"github.com/Urmanga/file-scanner-gui/internal/rules"
	"github.com/Urmanga/file-scanner-gui/internal/tagging"
)

// engine wires the scanner and its classifiers from the loaded config
type engine struct {
	rules   *rules.RuleSet
	usage   *ai.UsageState
	remote  *ai.Remote
	cache   *cache.TagCache
	scanner *core.Scanner
}

func newEngine(cfg *config.Config, logger *zap.Logger) (*engine, error) {
	rs, err := loadRules(cfg)
	if err != nil {
		return nil, err
	}

	usage := ai.NewUsageState()
	remote := ai.NewRemote(cfg.Remote, usage, logger)
	local := classifier.NewLocal(rs, cfg.Local.Enabled)

	merger := tagging.NewMerger(local, remote, cfg.Remote.Gates, logger).WithRules(rs)

	e := &engine{
		rules:  rs,
		usage:  usage,
		remote: remote,
	}

	if cfg.Remote.Enabled && cfg.Remote.Cache && cfg.Cache.Path != "" {
		tc, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			// Scans still work without the cache
			logger.Warn("Tag cache unavailable", zap.String("path", cfg.Cache.Path), zap.Error(err))
		} else {
			e.cache = tc
			merger.WithCache(tc)
		}
	}

	e.scanner = core.NewScanner(merger, rs, logger)
	return e, nil
}

func (e *engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// loadRules returns the stored rules, or the defaults when none are stored
func loadRules(cfg *config.Config) (*rules.RuleSet, error) {
	rs, err := rules.FromConfig(cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("stored rules in %s: %w", configPath, err)
	}
	return rs, nil
}
