package schedule

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Urmanga/file-scanner-gui/internal/config"
	"github.com/Urmanga/file-scanner-gui/internal/core"
	"github.com/Urmanga/file-scanner-gui/internal/report"
	"github.com/Urmanga/file-scanner-gui/internal/storage"
)

// Uploader stores an exported report somewhere else
type Uploader interface {
	Upload(ctx context.Context, localPath string) (*storage.UploadResult, error)
}

// ScanExport scans a tree, exports the inventory and optionally uploads the report
type ScanExport struct {
	Scanner   *core.Scanner
	Exporter  *report.Exporter
	Uploader  Uploader
	Scan      config.ScanConfiguration
	Format    report.Format
	OutputDir string
	Logger    *zap.Logger
	Now       func() time.Time
}

// Outcome describes one completed run
type Outcome struct {
	ReportPath string
	Files      int
	Skipped    int
	Upload     *storage.UploadResult
}

// Run performs one scan and export
func (j *ScanExport) Run(ctx context.Context) (*Outcome, error) {
	logger := j.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}

	inv, err := j.Scanner.Scan(ctx, j.Scan, nil)
	if err != nil && !errors.Is(err, core.ErrAllEntriesFailed) {
		return nil, fmt.Errorf("scheduled scan of %s: %w", j.Scan.Root, err)
	}

	dest := report.DefaultFileName(j.Format, now())
	if j.OutputDir != "" {
		dest = filepath.Join(j.OutputDir, dest)
	}

	path, err := j.Exporter.Export(inv, j.Format, dest)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		ReportPath: path,
		Files:      inv.Len(),
		Skipped:    inv.SkippedCount(),
	}

	if j.Uploader != nil {
		res, err := j.Uploader.Upload(ctx, path)
		if err != nil {
			// The local report stays usable
			logger.Warn("Report upload failed", zap.String("path", path), zap.Error(err))
			return out, err
		}
		out.Upload = res
		logger.Info("Report uploaded",
			zap.String("bucket", res.Bucket),
			zap.String("key", res.Key),
		)
	}

	return out, nil
}

// Job adapts the scan to a scheduler job
func (j *ScanExport) Job() Job {
	return func(ctx context.Context) error {
		_, err := j.Run(ctx)
		return err
	}
}
