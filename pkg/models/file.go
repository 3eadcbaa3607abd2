package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// TimeLayout is the timestamp format used in every exported report
const TimeLayout = "2006-01-02 15:04:05"

// NoExtension is stored for files without an extension
const NoExtension = "none"

// MaxTags is the hard upper bound of tags on a single record
const MaxTags = 7

const bytesPerMB = 1024 * 1024

// FileRecord is one scanned file
type FileRecord struct {
	Name         string    // File name
	Path         string    // Absolute file path
	RelativePath string    // Path relative to scan root
	Directory    string    // Containing directory
	Extension    string    // Lower-case extension with leading dot, or NoExtension
	Size         int64     // File size in bytes
	SizeMB       float64   // Size in MB, rounded to 3 decimals
	ModTime      time.Time // Modification time
	CreateTime   time.Time // Creation time (ctime on unix)
	Tags         []string  // Derived tags, unique, at most MaxTags
}

// FileInfo contains basic file information collected during traversal
type FileInfo struct {
	Path       string
	Name       string
	Directory  string
	Size       int64
	ModTime    time.Time
	CreateTime time.Time
}

// SizeInMB converts bytes to megabytes rounded to 3 decimal places
func SizeInMB(size int64) float64 {
	return Round(float64(size)/bytesPerMB, 3)
}

// Round rounds v to the given number of decimal places
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// SizeTier returns small, medium or large for a size in MB
func SizeTier(sizeMB float64) string {
	switch {
	case sizeMB > 1000:
		return "large"
	case sizeMB > 100:
		return "medium"
	default:
		return "small"
	}
}

// fileRecordJSON is the exported shape of a FileRecord
type fileRecordJSON struct {
	Name         string   `json:"name"`
	FullPath     string   `json:"full_path"`
	RelativePath string   `json:"relative_path"`
	Directory    string   `json:"directory"`
	Extension    string   `json:"extension"`
	SizeBytes    int64    `json:"size_bytes"`
	SizeMB       float64  `json:"size_mb"`
	ModifiedDate string   `json:"modified_date"`
	CreatedDate  string   `json:"created_date"`
	Tags         []string `json:"tags"`
}

// MarshalJSON writes the record with formatted timestamps and tags as an array
func (r FileRecord) MarshalJSON() ([]byte, error) {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(fileRecordJSON{
		Name:         r.Name,
		FullPath:     r.Path,
		RelativePath: r.RelativePath,
		Directory:    r.Directory,
		Extension:    r.Extension,
		SizeBytes:    r.Size,
		SizeMB:       r.SizeMB,
		ModifiedDate: FormatTime(r.ModTime),
		CreatedDate:  FormatTime(r.CreateTime),
		Tags:         tags,
	})
}

// UnmarshalJSON reads a record written by MarshalJSON
func (r *FileRecord) UnmarshalJSON(data []byte) error {
	var raw fileRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	modTime, err := ParseTime(raw.ModifiedDate)
	if err != nil {
		return fmt.Errorf("invalid modified_date: %w", err)
	}
	createTime, err := ParseTime(raw.CreatedDate)
	if err != nil {
		return fmt.Errorf("invalid created_date: %w", err)
	}

	var tags []string
	if len(raw.Tags) > 0 {
		tags = raw.Tags
	}

	*r = FileRecord{
		Name:         raw.Name,
		Path:         raw.FullPath,
		RelativePath: raw.RelativePath,
		Directory:    raw.Directory,
		Extension:    raw.Extension,
		Size:         raw.SizeBytes,
		SizeMB:       raw.SizeMB,
		ModTime:      modTime,
		CreateTime:   createTime,
		Tags:         tags,
	}
	return nil
}

// FormatTime formats t with TimeLayout; zero time becomes an empty string
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

// ParseTime parses a TimeLayout timestamp in local time; empty input yields zero time
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(TimeLayout, s, time.Local)
}
