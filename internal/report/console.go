package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorOrange = "\033[38;5;208m"
	colorGray   = "\033[38;5;245m"
)

// summaryExtensions is the number of extensions shown in the console summary
const summaryExtensions = 5

// Console prints inventories to a terminal
type Console struct {
	w     io.Writer
	color bool
}

// NewConsole creates a console printer. With color false no escape codes are written.
func NewConsole(w io.Writer, color bool) *Console {
	return &Console{w: w, color: color}
}

func (c *Console) paint(code, s string) string {
	if !c.color {
		return s
	}
	return code + s + colorReset
}

// PrintSummary prints the scan summary line block
func (c *Console) PrintSummary(inv *models.Inventory) {
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, c.paint(colorBold+colorOrange, "SCAN COMPLETE"))
	fmt.Fprintln(c.w)

	fmt.Fprintf(c.w, "  %s      %s\n", c.paint(colorGray, "Path:"), inv.Root)
	fmt.Fprintf(c.w, "  %s      %s\n", c.paint(colorGray, "Mode:"), inv.Mode)
	fmt.Fprintf(c.w, "  %s     %d\n", c.paint(colorGray, "Files:"), inv.Len())
	fmt.Fprintf(c.w, "  %s      %s (%.2f MB)\n", c.paint(colorGray, "Size:"), humanize.IBytes(uint64(inv.TotalSize())), inv.TotalSizeMB())
	fmt.Fprintf(c.w, "  %s  %s\n", c.paint(colorGray, "Duration:"), FormatDuration(inv.Duration))

	if n := inv.SkippedCount(); n > 0 {
		fmt.Fprintf(c.w, "  %s   %s\n", c.paint(colorGray, "Skipped:"), c.paint(colorYellow, humanize.Comma(int64(n))))
	}

	if top := inv.TopExtensions(summaryExtensions); len(top) > 0 {
		parts := make([]string, 0, len(top))
		for _, s := range top {
			parts = append(parts, fmt.Sprintf("%s (%d)", s.Extension, s.Count))
		}
		fmt.Fprintf(c.w, "  %s   %s\n", c.paint(colorGray, "Top ext:"), strings.Join(parts, ", "))
	}
	fmt.Fprintln(c.w)
}

// PrintRecords prints up to limit records, one per line. A limit of zero or
// less prints all of them.
func (c *Console) PrintRecords(records []*models.FileRecord, limit int) {
	if len(records) == 0 {
		fmt.Fprintf(c.w, "  %s\n\n", c.paint(colorDim, "No files"))
		return
	}

	shown := records
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	for _, r := range shown {
		size := c.paint(sizeColor(r.SizeMB), fmt.Sprintf("%10s", humanize.IBytes(uint64(r.Size))))
		fmt.Fprintf(c.w, "  %s %s  %s  %s", SizeMarker(r.SizeMB), size, c.paint(colorGray, models.FormatTime(r.ModTime)), r.Path)
		if len(r.Tags) > 0 {
			fmt.Fprintf(c.w, "  %s", c.paint(colorCyan, "["+strings.Join(r.Tags, ", ")+"]"))
		}
		fmt.Fprintln(c.w)
	}

	if len(records) > len(shown) {
		fmt.Fprintf(c.w, "  %s\n", c.paint(colorDim, fmt.Sprintf("... and %d more", len(records)-len(shown))))
	}
	fmt.Fprintln(c.w)
}

func sizeColor(sizeMB float64) string {
	switch {
	case sizeMB > 100:
		return colorRed
	case sizeMB > 10:
		return colorYellow
	default:
		return colorGreen
	}
}
