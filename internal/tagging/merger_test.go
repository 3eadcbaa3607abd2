package tagging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Urmanga/file-scanner-gui/internal/cache"
	"github.com/Urmanga/file-scanner-gui/internal/config"
	"github.com/Urmanga/file-scanner-gui/internal/rules"
	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

type fixedLocal []string

func (f fixedLocal) Enabled() bool                        { return true }
func (f fixedLocal) Classify(*models.FileRecord) []string { return f }

type fakeRemote struct {
	tags    []string
	enabled bool
	calls   int
}

func (f *fakeRemote) Enabled() bool { return f.enabled }
func (f *fakeRemote) Model() string { return "fake-1" }
func (f *fakeRemote) Classify(context.Context, *models.FileRecord) []string {
	f.calls++
	return f.tags
}

func record(dir, name, ext string) *models.FileRecord {
	return &models.FileRecord{
		Name:      name,
		Path:      filepath.Join(dir, name),
		Directory: dir,
		Extension: ext,
		Size:      42,
		ModTime:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestMerge_Modes(t *testing.T) {
	local := fixedLocal{"document", "new", "small"}
	remote := &fakeRemote{tags: []string{"invoice", "small", "finance"}, enabled: true}
	m := NewMerger(local, remote, config.RemoteGates{}, zaptest.NewLogger(t))
	rec := record("/data", "a.pdf", ".pdf")

	tests := []struct {
		name     string
		mode     config.Mode
		expected []string
	}{
		{"Local only", config.ModeLocal, []string{"document", "new", "small"}},
		{"Remote only", config.ModeRemote, []string{"invoice", "small", "finance"}},
		{"Hybrid union", config.ModeHybrid, []string{"document", "new", "small", "invoice", "finance"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.Merge(context.Background(), rec, tt.mode, models.MaxTags))
		})
	}
}

func TestMerge_HybridCap(t *testing.T) {
	local := fixedLocal{"a", "b", "c", "d", "e"}
	remote := &fakeRemote{tags: []string{"f", "g", "h", "e", "i"}, enabled: true}
	m := NewMerger(local, remote, config.RemoteGates{}, zaptest.NewLogger(t))
	rec := record("/data", "x.bin", ".bin")

	tags := m.Merge(context.Background(), rec, config.ModeHybrid, 0)
	assert.Len(t, tags, models.MaxTags)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g"}, tags)

	// A configured cap above the maximum is clamped
	assert.Len(t, m.Merge(context.Background(), rec, config.ModeHybrid, 20), models.MaxTags)
}

func TestMerge_HybridKeepsSharedTags(t *testing.T) {
	local := fixedLocal{"a", "b", "c", "shared"}
	remote := &fakeRemote{tags: []string{"shared", "x"}, enabled: true}
	m := NewMerger(local, remote, config.RemoteGates{}, zaptest.NewLogger(t))

	tags := m.Merge(context.Background(), record("/d", "f", "none"), config.ModeHybrid, 2)
	assert.Equal(t, []string{"a", "shared"}, tags)
}

func TestMerge_Deterministic(t *testing.T) {
	local := fixedLocal{"small", "image"}
	remote := &fakeRemote{tags: []string{"photo", "beach"}, enabled: true}
	m := NewMerger(local, remote, config.RemoteGates{}, zaptest.NewLogger(t))
	rec := record("/p", "b.jpg", ".jpg")

	first := m.Merge(context.Background(), rec, config.ModeHybrid, 7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, m.Merge(context.Background(), rec, config.ModeHybrid, 7))
	}
}

func TestMerge_RemoteDisabled(t *testing.T) {
	remote := &fakeRemote{tags: []string{"x"}, enabled: false}
	m := NewMerger(fixedLocal{"small"}, remote, config.RemoteGates{}, zaptest.NewLogger(t))
	rec := record("/p", "a", "none")

	assert.Empty(t, m.Merge(context.Background(), rec, config.ModeRemote, 7))
	assert.Equal(t, []string{"small"}, m.Merge(context.Background(), rec, config.ModeHybrid, 7))
	assert.Zero(t, remote.calls)

	assert.False(t, m.Classifies(config.ModeRemote))
	assert.True(t, m.Classifies(config.ModeHybrid))
}

func TestMerge_NilTaggers(t *testing.T) {
	m := NewMerger(nil, nil, config.RemoteGates{}, zaptest.NewLogger(t))
	rec := record("/p", "a", "none")

	assert.False(t, m.Classifies(config.ModeHybrid))

	assert.Empty(t, m.Merge(context.Background(), rec, config.ModeLocal, 7))
	assert.Empty(t, m.Merge(context.Background(), rec, config.ModeHybrid, 7))
}

func TestShouldClassifyRemotely(t *testing.T) {
	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "go.mod"), []byte("module x\n"), 0644))
	plainDir := t.TempDir()

	rs := rules.Default()
	gates := config.RemoteGates{Enabled: true, UnknownFiles: true, Documents: true, ProjectFolders: true}
	m := NewMerger(nil, nil, gates, zaptest.NewLogger(t)).WithRules(rs)

	tests := []struct {
		name     string
		gates    config.RemoteGates
		rec      *models.FileRecord
		expected bool
	}{
		{"Gating off", config.RemoteGates{}, record(plainDir, "photo.jpg", ".jpg"), true},
		{"Unknown file", gates, record(plainDir, "blob.xyz", ".xyz"), true},
		{"Known image", gates, record(plainDir, "photo.jpg", ".jpg"), false},
		{"Rule match is known", gates, record(plainDir, "notes.tmp", ".tmp"), false},
		{"Document", gates, record(plainDir, "letter.pdf", ".pdf"), true},
		{"Project folder", gates, record(projectDir, "photo.jpg", ".jpg"), true},
		{"Documents gate off", config.RemoteGates{Enabled: true, UnknownFiles: true}, record(plainDir, "letter.pdf", ".pdf"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.gates = tt.gates
			assert.Equal(t, tt.expected, m.ShouldClassifyRemotely(tt.rec))
		})
	}
}

func TestMerge_GatedOutSkipsRemote(t *testing.T) {
	remote := &fakeRemote{tags: []string{"photo"}, enabled: true}
	gates := config.RemoteGates{Enabled: true, Documents: true}
	m := NewMerger(fixedLocal{"image"}, remote, gates, zaptest.NewLogger(t))

	tags := m.Merge(context.Background(), record(t.TempDir(), "a.jpg", ".jpg"), config.ModeHybrid, 7)
	assert.Equal(t, []string{"image"}, tags)
	assert.Zero(t, remote.calls)
}

func TestMerge_Cache(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "tags.db"))
	require.NoError(t, err)
	defer c.Close()

	remote := &fakeRemote{tags: []string{"photo", "beach"}, enabled: true}
	m := NewMerger(nil, remote, config.RemoteGates{}, zaptest.NewLogger(t)).WithCache(c)
	rec := record("/p", "a.jpg", ".jpg")

	assert.Equal(t, []string{"photo", "beach"}, m.Merge(context.Background(), rec, config.ModeRemote, 7))
	assert.Equal(t, []string{"photo", "beach"}, m.Merge(context.Background(), rec, config.ModeRemote, 7))
	assert.Equal(t, 1, remote.calls)

	// A changed file misses the cache
	changed := *rec
	changed.Size = 99
	m.Merge(context.Background(), &changed, config.ModeRemote, 7)
	assert.Equal(t, 2, remote.calls)
}

func TestMerge_FailuresNotCached(t *testing.T) {
	c, err := cache.Open(filepath.Join(t.TempDir(), "tags.db"))
	require.NoError(t, err)
	defer c.Close()

	remote := &fakeRemote{enabled: true}
	m := NewMerger(nil, remote, config.RemoteGates{}, zaptest.NewLogger(t)).WithCache(c)
	rec := record("/p", "a.jpg", ".jpg")

	m.Merge(context.Background(), rec, config.ModeRemote, 7)
	m.Merge(context.Background(), rec, config.ModeRemote, 7)
	assert.Equal(t, 2, remote.calls)

	n, err := c.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}
