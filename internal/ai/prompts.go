package ai

import (
	"fmt"
	"strings"

	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// MaxRemoteTags caps the tags taken from one remote reply
const MaxRemoteTags = 5

// TagSystemPrompt frames every tagging request
const TagSystemPrompt = `You label files for a personal file inventory.
Reply with a short comma-separated list of lower-case tags and nothing else.`

// BuildTagPrompt builds the tagging prompt for one file
func BuildTagPrompt(record *models.FileRecord) string {
	var sb strings.Builder
	sb.WriteString("Suggest up to 5 descriptive tags for this file.\n\n")
	sb.WriteString(fmt.Sprintf("File name: %s\n", record.Name))
	sb.WriteString(fmt.Sprintf("Extension: %s\n", record.Extension))
	sb.WriteString(fmt.Sprintf("Size: %.3f MB\n", record.SizeMB))
	sb.WriteString("\nAnswer with comma-separated tags only, no explanations.")
	return sb.String()
}

// ParseTags splits a reply on commas and newlines, trims and lower-cases each
// tag, drops empties and duplicates, and keeps at most MaxRemoteTags.
func ParseTags(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})

	seen := make(map[string]bool)
	tags := make([]string, 0, MaxRemoteTags)
	for _, f := range fields {
		tag := strings.ToLower(strings.Trim(strings.TrimSpace(f), "\"'`.*-#"))
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == MaxRemoteTags {
			break
		}
	}
	return tags
}
