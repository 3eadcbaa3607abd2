package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Urmanga/file-scanner-gui/internal/rules"
	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.Local)

func record(name, ext string, sizeBytes int64, modTime time.Time) *models.FileRecord {
	return &models.FileRecord{
		Name:      name,
		Path:      "/data/" + name,
		Extension: ext,
		Size:      sizeBytes,
		SizeMB:    models.SizeInMB(sizeBytes),
		ModTime:   modTime,
	}
}

func TestAgeTag(t *testing.T) {
	tests := []struct {
		name    string
		age     time.Duration
		want    string
		wantTag bool
	}{
		{"Today", time.Hour, TagNew, true},
		{"Six days", 6 * 24 * time.Hour, TagNew, true},
		{"Ten days", 10 * 24 * time.Hour, TagRecent, true},
		{"Hundred days", 100 * 24 * time.Hour, "", false},
		{"Just under seven days", 7*24*time.Hour - time.Minute, TagNew, true},
		{"Exactly seven days", 7 * 24 * time.Hour, TagRecent, true},
		{"Exactly thirty days", 30 * 24 * time.Hour, "", false},
		{"Exactly a year", 365 * 24 * time.Hour, "", false},
		{"Part day past a year", 365*24*time.Hour + 10*time.Hour, TagOld, true},
		{"Four hundred days", 400 * 24 * time.Hour, TagOld, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AgeTag(fixedNow.Add(-tt.age), fixedNow)
			assert.Equal(t, tt.wantTag, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := AgeTag(time.Time{}, fixedNow)
	assert.False(t, ok, "zero time yields no age tag")
}

func TestExtensionTag(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".exe", TagApplication},
		{".pdf", TagDocument},
		{".jpg", TagImage},
		{".flac", TagAudio},
		{".mkv", TagVideo},
	}

	for _, tt := range tests {
		got, ok := ExtensionTag(tt.ext)
		assert.True(t, ok, tt.ext)
		assert.Equal(t, tt.want, got, tt.ext)
	}

	_, ok := ExtensionTag(models.NoExtension)
	assert.False(t, ok)
	assert.True(t, IsDocument(".docx"))
	assert.False(t, IsDocument(".png"))
}

func TestClassify_ScenarioDocument(t *testing.T) {
	l := NewLocal(rules.Default(), true).WithClock(func() time.Time { return fixedNow })

	tags := l.Classify(record("report.pdf", ".pdf", 5*1024*1024, fixedNow.Add(-time.Hour)))

	assert.Contains(t, tags, TagDocument)
	assert.Contains(t, tags, "small")
	assert.Contains(t, tags, TagNew)
	assert.LessOrEqual(t, len(tags), MaxLocalTags)
}

func TestClassify_ScenarioTemporary(t *testing.T) {
	l := NewLocal(rules.Default(), true).WithClock(func() time.Time { return fixedNow })

	tags := l.Classify(record("temp.tmp", ".tmp", 1024, fixedNow.Add(-400*24*time.Hour)))

	assert.Contains(t, tags, "temporary")
	assert.Contains(t, tags, "small")
	assert.Contains(t, tags, TagOld)
}

func TestClassify_SizeTiers(t *testing.T) {
	tests := []struct {
		sizeMB float64
		want   string
	}{
		{0, "small"},
		{100, "small"},
		{100.5, "medium"},
		{1000, "medium"},
		{1500, "large"},
	}

	for _, tt := range tests {
		r := &models.FileRecord{Name: "f", Path: "/f", Extension: models.NoExtension, SizeMB: tt.sizeMB}
		tags := Classify(r, nil, fixedNow)
		assert.Equal(t, []string{tt.want}, tags, "size %v", tt.sizeMB)
	}
}

func TestClassify_Disabled(t *testing.T) {
	l := NewLocal(rules.Default(), false)
	assert.Empty(t, l.Classify(record("report.pdf", ".pdf", 10, fixedNow)))
	assert.False(t, l.Enabled())
}

func TestClassify_CapIsDeterministic(t *testing.T) {
	rs := rules.NewRuleSet()
	require.NoError(t, rs.Add(rules.Rule{Category: "a", Patterns: []string{"photo"}, Tags: []string{"zeta", "alpha"}}))
	require.NoError(t, rs.Add(rules.Rule{Category: "b", Patterns: []string{"photo"}, Tags: []string{"beta", "gamma", "alpha"}}))

	r := record("photo.jpg", ".jpg", 10, fixedNow.Add(-time.Hour))

	first := Classify(r, rs, fixedNow)
	require.Len(t, first, MaxLocalTags)
	assert.Equal(t, []string{"alpha", "beta", "gamma", "image", "new"}, first)

	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Classify(r, rs, fixedNow))
	}
}
