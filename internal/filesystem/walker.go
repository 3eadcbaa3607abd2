package filesystem

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Urmanga/file-scanner-gui/internal/config"
	"go.uber.org/zap"
)

// Walker walks the filesystem and yields files that pass the scan filters
type Walker struct {
	config  config.ScanConfiguration
	logger  *zap.Logger
	exclude map[string]bool

	// OnError is called for entries that cannot be read during traversal
	OnError func(path string, err error)
}

// NewWalker creates a new filesystem walker
func NewWalker(sc config.ScanConfiguration, logger *zap.Logger) *Walker {
	// Build exclude map for fast lookup
	exclude := make(map[string]bool)
	for _, dir := range sc.Exclude {
		exclude[dir] = true
	}

	return &Walker{
		config:  sc,
		logger:  logger,
		exclude: exclude,
	}
}

// Walk recursively walks the tree under root. Within a directory, files are
// visited in OS enumeration order before any subdirectory is entered.
// Symlinked directories are not followed.
func (w *Walker) Walk(ctx context.Context, root string, callback func(path string) error) error {
	return w.walkDir(ctx, root, callback)
}

// Count returns the number of files Walk would visit
func (w *Walker) Count(ctx context.Context, root string) (int, error) {
	count := 0
	err := w.Walk(ctx, root, func(string) error {
		count++
		return nil
	})
	return count, err
}

func (w *Walker) walkDir(ctx context.Context, dir string, callback func(path string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := readDirUnsorted(dir)
	if err != nil {
		w.logger.Warn("Error reading directory", zap.String("path", dir), zap.Error(err))
		w.reportError(dir, err)
		if len(entries) == 0 {
			return nil // Continue walking
		}
	}

	var subdirs []string
	for _, entry := range entries {
		name := entry.Name()
		if !w.config.IncludeHidden && isHidden(name) {
			continue
		}

		path := filepath.Join(dir, name)

		isDir, isLink := entry.IsDir(), entry.Type()&fs.ModeSymlink != 0
		if isLink {
			if target, err := os.Stat(path); err == nil && target.IsDir() {
				w.logger.Debug("Skipping symlinked directory", zap.String("path", path))
				continue
			}
		}

		if isDir {
			if w.shouldExclude(name) {
				w.logger.Debug("Skipping excluded directory", zap.String("path", path))
				continue
			}
			subdirs = append(subdirs, path)
			continue
		}

		if !w.config.MatchesExtension(Extension(name)) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if err := callback(path); err != nil {
			return err
		}
	}

	for _, sub := range subdirs {
		if err := w.walkDir(ctx, sub, callback); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) reportError(path string, err error) {
	if w.OnError != nil {
		w.OnError(path, err)
	}
}

// shouldExclude checks if a directory should be excluded
func (w *Walker) shouldExclude(name string) bool {
	return w.exclude[name]
}

// readDirUnsorted returns directory entries in the order the OS yields them
func readDirUnsorted(dir string) ([]os.DirEntry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.ReadDir(-1)
}

// isHidden checks if a file is hidden
func isHidden(name string) bool {
	return strings.HasPrefix(name, config.HiddenPrefix)
}
