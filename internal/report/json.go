package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// largestCount is the number of files listed in scan_info.largest_files
const largestCount = 10

// ScanInfo is the summary block of a structured report
type ScanInfo struct {
	Version            string                `json:"version"`
	Date               string                `json:"date"`
	ScanID             string                `json:"scan_id,omitempty"`
	ScannedFolder      string                `json:"scanned_folder"`
	TotalFiles         int                   `json:"total_files"`
	TotalSizeMB        float64               `json:"total_size_mb"`
	TotalSizeGB        float64               `json:"total_size_gb"`
	ExtensionsStats    map[string]int        `json:"extensions_stats"`
	LargestFiles       []*models.FileRecord  `json:"largest_files"`
	Classification     bool                  `json:"classification"`
	ClassificationMode string                `json:"classification_mode,omitempty"`
	SkippedEntries     []models.SkippedEntry `json:"skipped_entries,omitempty"`
}

// JSONReport is the structured report document
type JSONReport struct {
	ScanInfo ScanInfo             `json:"scan_info"`
	Files    []*models.FileRecord `json:"files"`
}

// NewJSONReport builds the structured report for inv
func NewJSONReport(inv *models.Inventory, now time.Time) *JSONReport {
	files := inv.Records
	if files == nil {
		files = []*models.FileRecord{}
	}

	return &JSONReport{
		ScanInfo: ScanInfo{
			Version:            ReportVersion,
			Date:               now.Format(models.TimeLayout),
			ScanID:             inv.ScanID,
			ScannedFolder:      inv.Root,
			TotalFiles:         inv.Len(),
			TotalSizeMB:        inv.TotalSizeMB(),
			TotalSizeGB:        inv.TotalSizeGB(),
			ExtensionsStats:    inv.ExtensionCounts(),
			LargestFiles:       inv.Largest(largestCount),
			Classification:     inv.Classified,
			ClassificationMode: inv.Mode,
			SkippedEntries:     inv.Skipped,
		},
		Files: files,
	}
}

// writeJSON writes the structured report
func writeJSON(w io.Writer, inv *models.Inventory, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(NewJSONReport(inv, now))
}

// ReadJSON parses a structured report written by Export
func ReadJSON(path string) (*JSONReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var report JSONReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("malformed report %s: %w", path, err)
	}
	return &report, nil
}

// Inventory rebuilds an inventory from the report's file list
func (r *JSONReport) Inventory() *models.Inventory {
	inv := &models.Inventory{
		ScanID:     r.ScanInfo.ScanID,
		Root:       r.ScanInfo.ScannedFolder,
		Mode:       r.ScanInfo.ClassificationMode,
		Classified: r.ScanInfo.Classification,
		Records:    make([]*models.FileRecord, 0, len(r.Files)),
		Skipped:    r.ScanInfo.SkippedEntries,
	}
	for _, f := range r.Files {
		inv.Append(f)
	}
	return inv
}
