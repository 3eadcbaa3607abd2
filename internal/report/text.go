package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// Size tier markers for the file listing
const (
	markerLarge  = "🔴"
	markerMedium = "🟡"
	markerSmall  = "🟢"
)

// SizeMarker returns the listing marker for a size in MB
func SizeMarker(sizeMB float64) string {
	switch {
	case sizeMB > 100:
		return markerLarge
	case sizeMB > 10:
		return markerMedium
	default:
		return markerSmall
	}
}

// writeText writes the plain text report
func writeText(w io.Writer, inv *models.Inventory, now time.Time) error {
	var sb strings.Builder

	// Header
	sb.WriteString("FILE SCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")
	sb.WriteString(fmt.Sprintf("Scan date:      %s\n", now.Format(models.TimeLayout)))
	sb.WriteString(fmt.Sprintf("Scanned folder: %s\n", inv.Root))
	sb.WriteString(fmt.Sprintf("Total files:    %d\n", inv.Len()))
	sb.WriteString(fmt.Sprintf("Total size:     %.2f MB (%.2f GB)\n", inv.TotalSizeMB(), inv.TotalSizeGB()))
	if inv.SkippedCount() > 0 {
		sb.WriteString(fmt.Sprintf("Skipped:        %d\n", inv.SkippedCount()))
	}
	sb.WriteString("\n")

	sb.WriteString("EXTENSIONS\n")
	sb.WriteString(strings.Repeat("-", 30) + "\n")
	for _, stat := range inv.ExtensionStats() {
		sb.WriteString(fmt.Sprintf("%s: %d files\n", stat.Extension, stat.Count))
	}

	sb.WriteString("\nFILES\n")
	sb.WriteString(strings.Repeat("-", 30) + "\n")
	for _, r := range inv.BySizeDesc() {
		sb.WriteString(fmt.Sprintf("%s %s (%s MB)", SizeMarker(r.SizeMB), r.Path, formatMB(r.SizeMB)))
		if len(r.Tags) > 0 {
			sb.WriteString(" [" + strings.Join(r.Tags, ", ") + "]")
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
