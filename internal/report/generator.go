package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// Format is an export format
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ReportVersion is written into structured reports
const ReportVersion = "2.1"

// ParseFormat accepts a format name or common alias
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format: %s", s)
	}
}

// Ext returns the file extension for the format, without the dot
func (f Format) Ext() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// DefaultFileName returns files_scan_YYYYMMDD_HHMMSS.<ext> for t
func DefaultFileName(f Format, t time.Time) string {
	return fmt.Sprintf("files_scan_%s.%s", t.Format("20060102_150405"), f.Ext())
}

// FormatDuration formats duration to a human-readable string with max 2 decimal places
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else if d < time.Hour {
		mins := int(d.Minutes())
		secs := d.Seconds() - float64(mins*60)
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) - hours*60
	secs := d.Seconds() - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}

// Exporter writes inventories to report files
type Exporter struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewExporter creates a new exporter
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the clock used for report dates and default file names
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// Export writes inv in format to dest and returns the absolute path written.
// An empty dest writes a default-named file in the working directory.
func (e *Exporter) Export(inv *models.Inventory, format Format, dest string) (string, error) {
	now := e.now()
	if dest == "" {
		dest = DefaultFileName(format, now)
	}

	absPath, err := filepath.Abs(dest)
	if err != nil {
		return "", writeError(dest, format, err)
	}

	if inv == nil {
		return "", encodeError(absPath, format, errors.New("no inventory to export"))
	}

	e.logger.Info("Generating report",
		zap.String("format", string(format)),
		zap.String("output", absPath),
		zap.Int("files", inv.Len()))

	// Encode fully before touching the destination
	var buf bytes.Buffer
	switch format {
	case FormatText:
		err = writeText(&buf, inv, now)
	case FormatCSV:
		err = writeCSV(&buf, inv)
	case FormatJSON:
		err = writeJSON(&buf, inv, now)
	default:
		err = fmt.Errorf("unknown report format: %s", format)
	}
	if err != nil {
		return "", encodeError(absPath, format, err)
	}

	if err := os.WriteFile(absPath, buf.Bytes(), 0644); err != nil {
		e.logger.Error("Failed to write report", zap.String("path", absPath), zap.Error(err))
		return "", writeError(absPath, format, err)
	}

	return absPath, nil
}
