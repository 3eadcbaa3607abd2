package tagging

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Urmanga/file-scanner-gui/internal/cache"
	"github.com/Urmanga/file-scanner-gui/internal/classifier"
	"github.com/Urmanga/file-scanner-gui/internal/config"
	"github.com/Urmanga/file-scanner-gui/internal/rules"
	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// LocalTagger derives tags without network access
type LocalTagger interface {
	Enabled() bool
	Classify(record *models.FileRecord) []string
}

// RemoteTagger derives tags through a remote service. Classify never fails;
// it returns no tags instead.
type RemoteTagger interface {
	Enabled() bool
	Model() string
	Classify(ctx context.Context, record *models.FileRecord) []string
}

// projectMarkers identify a directory as the root of a software project
var projectMarkers = []string{
	".git",
	"go.mod",
	"package.json",
	"pyproject.toml",
	"setup.py",
	"requirements.txt",
	"Cargo.toml",
	"pom.xml",
	"build.gradle",
	"composer.json",
	"Gemfile",
}

// Merger combines local and remote tags under a classification mode
type Merger struct {
	local  LocalTagger
	remote RemoteTagger
	rules  *rules.RuleSet
	gates  config.RemoteGates
	cache  *cache.TagCache
	logger *zap.Logger

	projectDirs sync.Map // directory -> bool
}

// NewMerger creates a merger. Either tagger may be nil.
func NewMerger(local LocalTagger, remote RemoteTagger, gates config.RemoteGates, logger *zap.Logger) *Merger {
	return &Merger{
		local:  local,
		remote: remote,
		gates:  gates,
		logger: logger,
	}
}

// WithRules sets the rule set consulted by the unknown-file gate
func (m *Merger) WithRules(rs *rules.RuleSet) *Merger {
	m.rules = rs
	return m
}

// WithCache enables the remote tag cache
func (m *Merger) WithCache(c *cache.TagCache) *Merger {
	m.cache = c
	return m
}

// Classifies reports whether mode produces any tags with the configured taggers
func (m *Merger) Classifies(mode config.Mode) bool {
	local := m.local != nil && m.local.Enabled()
	remote := m.remote != nil && m.remote.Enabled()

	switch mode {
	case config.ModeRemote:
		return remote
	case config.ModeHybrid:
		return local || remote
	default:
		return local
	}
}

// Merge returns the tags for record under mode, truncated to limit (clamped
// to models.MaxTags). Output is deterministic for identical classifier output.
func (m *Merger) Merge(ctx context.Context, record *models.FileRecord, mode config.Mode, limit int) []string {
	if limit <= 0 || limit > models.MaxTags {
		limit = models.MaxTags
	}

	switch mode {
	case config.ModeRemote:
		return capTags(dedupe(m.remoteTags(ctx, record)), nil, limit)

	case config.ModeHybrid:
		local := m.localTags(record)
		remote := m.remoteTags(ctx, record)
		return capTags(dedupe(append(append([]string{}, local...), remote...)), intersect(local, remote), limit)

	default:
		return capTags(dedupe(m.localTags(record)), nil, limit)
	}
}

func (m *Merger) localTags(record *models.FileRecord) []string {
	if m.local == nil {
		return nil
	}
	return m.local.Classify(record)
}

func (m *Merger) remoteTags(ctx context.Context, record *models.FileRecord) []string {
	if m.remote == nil || !m.remote.Enabled() {
		return nil
	}

	if !m.ShouldClassifyRemotely(record) {
		m.logger.Debug("Remote classification gated out", zap.String("path", record.Path))
		return nil
	}

	if m.cache != nil {
		tags, ok, err := m.cache.Get(record.Path, record.Size, record.ModTime, m.remote.Model())
		if err != nil {
			m.logger.Debug("Tag cache lookup failed", zap.String("path", record.Path), zap.Error(err))
		} else if ok {
			return tags
		}
	}

	tags := m.remote.Classify(ctx, record)

	// Failures return no tags and are not cached
	if m.cache != nil && len(tags) > 0 {
		if err := m.cache.Put(record.Path, record.Size, record.ModTime, m.remote.Model(), tags); err != nil {
			m.logger.Debug("Tag cache store failed", zap.String("path", record.Path), zap.Error(err))
		}
	}
	return tags
}

// ShouldClassifyRemotely evaluates the per-type gates for a record.
// With gating disabled every record is eligible.
func (m *Merger) ShouldClassifyRemotely(record *models.FileRecord) bool {
	if !m.gates.Enabled {
		return true
	}
	if m.gates.UnknownFiles && m.isUnknown(record) {
		return true
	}
	if m.gates.Documents && classifier.IsDocument(record.Extension) {
		return true
	}
	if m.gates.ProjectFolders && m.isProjectFolder(record.Directory) {
		return true
	}
	return false
}

// isUnknown reports whether neither the rules nor the extension groups say
// anything about the record
func (m *Merger) isUnknown(record *models.FileRecord) bool {
	if _, ok := classifier.ExtensionTag(record.Extension); ok {
		return false
	}
	if m.rules != nil {
		if categories, _ := m.rules.Match(record.Name, record.Path); len(categories) > 0 {
			return false
		}
	}
	return true
}

func (m *Merger) isProjectFolder(dir string) bool {
	if v, ok := m.projectDirs.Load(dir); ok {
		return v.(bool)
	}

	found := false
	for _, marker := range projectMarkers {
		if _, err := os.Lstat(filepath.Join(dir, marker)); err == nil {
			found = true
			break
		}
	}
	m.projectDirs.Store(dir, found)
	return found
}

func dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func intersect(a, b []string) map[string]bool {
	in := make(map[string]bool, len(a))
	for _, t := range a {
		in[t] = true
	}
	shared := make(map[string]bool)
	for _, t := range b {
		if in[t] {
			shared[t] = true
		}
	}
	return shared
}

// capTags truncates tags to limit. Tags in keep are selected first; the
// result preserves the input order.
func capTags(tags []string, keep map[string]bool, limit int) []string {
	if len(tags) <= limit {
		return tags
	}

	selected := make(map[string]bool, limit)
	for _, t := range tags {
		if len(selected) == limit {
			break
		}
		if keep[t] {
			selected[t] = true
		}
	}
	for _, t := range tags {
		if len(selected) == limit {
			break
		}
		selected[t] = true
	}

	out := make([]string, 0, limit)
	for _, t := range tags {
		if selected[t] {
			out = append(out, t)
		}
	}
	return out
}
