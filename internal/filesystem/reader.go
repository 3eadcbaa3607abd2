package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// Stat reads the metadata of a file
func Stat(path string) (*models.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	fileInfo := &models.FileInfo{
		Path:      path,
		Name:      filepath.Base(path),
		Directory: filepath.Dir(path),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
	}

	// Get creation time (platform-dependent)
	fileInfo.CreateTime = getCreateTime(info)

	return fileInfo, nil
}

// NewRecord builds an untagged FileRecord for a file below root
func NewRecord(info *models.FileInfo, root string) *models.FileRecord {
	rel, err := filepath.Rel(root, info.Path)
	if err != nil {
		rel = info.Path
	}

	return &models.FileRecord{
		Name:         info.Name,
		Path:         info.Path,
		RelativePath: rel,
		Directory:    info.Directory,
		Extension:    Extension(info.Name),
		Size:         info.Size,
		SizeMB:       models.SizeInMB(info.Size),
		ModTime:      info.ModTime,
		CreateTime:   info.CreateTime,
	}
}

// Extension returns the lower-cased extension of a file name including the
// dot, or models.NoExtension. Leading dots do not start an extension, so
// ".bashrc" has none.
func Extension(name string) string {
	base := strings.TrimLeft(filepath.Base(name), ".")
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return models.NoExtension
	}
	return strings.ToLower(base[i:])
}

// ParseSizeMB parses a size threshold in megabytes. A bare number is taken
// as MB; values with a unit ("650K", "1.5GiB") are parsed by humanize.
func ParseSizeMB(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}

	b, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return float64(b) / (1024 * 1024), nil
}
