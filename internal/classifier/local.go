package classifier

import (
	"sort"
	"time"

	"github.com/Urmanga/file-scanner-gui/internal/rules"
	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// MaxLocalTags caps the output of the local classifier
const MaxLocalTags = 5

// Age tags
const (
	TagNew    = "new"
	TagRecent = "recent"
	TagOld    = "old"
)

// Extension group tags, in the order they are checked
const (
	TagApplication = "application"
	TagDocument    = "document"
	TagImage       = "image"
	TagAudio       = "audio"
	TagVideo       = "video"
)

type extensionGroup struct {
	tag        string
	extensions map[string]bool
}

func group(tag string, exts ...string) extensionGroup {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return extensionGroup{tag: tag, extensions: m}
}

var extensionGroups = []extensionGroup{
	group(TagApplication, ".exe", ".msi", ".app", ".dmg", ".deb", ".rpm", ".apk", ".bat", ".cmd", ".com", ".appimage"),
	group(TagDocument, ".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".odt", ".ods", ".odp", ".rtf", ".txt", ".md", ".csv"),
	group(TagImage, ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp", ".tif", ".tiff", ".heic", ".ico"),
	group(TagAudio, ".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a", ".wma"),
	group(TagVideo, ".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v"),
}

// ExtensionTag returns the tag of the first extension group containing ext
func ExtensionTag(ext string) (string, bool) {
	for _, g := range extensionGroups {
		if g.extensions[ext] {
			return g.tag, true
		}
	}
	return "", false
}

// IsDocument reports whether ext belongs to the document group
func IsDocument(ext string) bool {
	tag, ok := ExtensionTag(ext)
	return ok && tag == TagDocument
}

// AgeTag returns the age tag for a modification time, if any.
// Files between 30 and 365 days old get no age tag.
func AgeTag(modTime, now time.Time) (string, bool) {
	if modTime.IsZero() {
		return "", false
	}

	// Age is elapsed fractional days, so 365.4 days already counts as old
	days := now.Sub(modTime).Hours() / 24
	switch {
	case days < 7:
		return TagNew, true
	case days < 30:
		return TagRecent, true
	case days > 365:
		return TagOld, true
	default:
		return "", false
	}
}

// Local derives tags from pattern rules and fixed size, age and extension heuristics
type Local struct {
	rules   *rules.RuleSet
	enabled bool
	now     func() time.Time
}

// NewLocal creates a local classifier over a rule set
func NewLocal(rs *rules.RuleSet, enabled bool) *Local {
	return &Local{
		rules:   rs,
		enabled: enabled,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for age tags
func (l *Local) WithClock(now func() time.Time) *Local {
	l.now = now
	return l
}

// Enabled reports whether the classifier produces tags
func (l *Local) Enabled() bool {
	return l.enabled
}

// Classify returns at most MaxLocalTags tags for a record, sorted.
// It returns nil when the classifier is disabled.
func (l *Local) Classify(record *models.FileRecord) []string {
	if !l.enabled {
		return nil
	}
	return Classify(record, l.rules, l.now())
}

// Classify is the pure form of Local.Classify for a fixed rule set and time
func Classify(record *models.FileRecord, rs *rules.RuleSet, now time.Time) []string {
	set := make(map[string]struct{})

	// Pattern rules
	if rs != nil {
		_, ruleTags := rs.Match(record.Name, record.Path)
		for _, t := range ruleTags {
			set[t] = struct{}{}
		}
	}

	// Size heuristic, always exactly one
	set[models.SizeTier(record.SizeMB)] = struct{}{}

	if tag, ok := AgeTag(record.ModTime, now); ok {
		set[tag] = struct{}{}
	}

	if tag, ok := ExtensionTag(record.Extension); ok {
		set[tag] = struct{}{}
	}

	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	if len(tags) > MaxLocalTags {
		tags = tags[:MaxLocalTags]
	}
	return tags
}
