package config

import (
	"fmt"
	"strings"

	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// Mode selects which classifiers run for each file
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
	ModeHybrid Mode = "hybrid"
)

// HiddenPrefix marks hidden files and directories
const HiddenPrefix = "."

// ScanConfiguration holds the options of one scan
type ScanConfiguration struct {
	Root          string
	IncludeHidden bool
	Extensions    []string // lower-case filter tokens; empty means no filtering
	Mode          Mode
	TagCap        int
	Workers       int
	Exclude       []string // directory names never descended into
}

// ParseMode converts a mode name, defaulting to local
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeRemote:
		return ModeRemote
	case ModeHybrid:
		return ModeHybrid
	default:
		return ModeLocal
	}
}

// ValidateMode rejects unknown mode names
func ValidateMode(s string) error {
	switch Mode(strings.ToLower(s)) {
	case ModeLocal, ModeRemote, ModeHybrid:
		return nil
	}
	return fmt.Errorf("mode must be one of: local, remote, hybrid (got: %s)", s)
}

// ParseExtensionFilter splits a whitespace separated filter and lower-cases
// each token. Tokens without a leading dot are kept as they are.
func ParseExtensionFilter(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	exts := make([]string, 0, len(fields))
	for _, f := range fields {
		exts = append(exts, strings.ToLower(f))
	}
	return exts
}

// EffectiveTagCap clamps the configured cap into [1, models.MaxTags]
func (sc ScanConfiguration) EffectiveTagCap() int {
	if sc.TagCap <= 0 || sc.TagCap > models.MaxTags {
		return models.MaxTags
	}
	return sc.TagCap
}

// MatchesExtension reports whether a lower-cased extension passes the filter
func (sc ScanConfiguration) MatchesExtension(ext string) bool {
	if len(sc.Extensions) == 0 {
		return true
	}
	for _, e := range sc.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
