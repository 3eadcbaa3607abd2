package models

import (
	"sort"
	"strings"
	"time"
)

// Inventory is the ordered result of one scan
type Inventory struct {
	ScanID       string        `json:"scan_id"`
	Root         string        `json:"root"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`
	Mode         string        `json:"mode"`
	Classified   bool          `json:"classified"`
	TotalEntries int           `json:"total_entries"` // candidates counted in pass 1

	Records []*FileRecord `json:"files"`

	// Entries that passed filters but could not be read
	Skipped []SkippedEntry `json:"skipped,omitempty"`
}

// SkippedEntry records a file dropped during collection
type SkippedEntry struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ExtensionStat is the frequency of one extension
type ExtensionStat struct {
	Extension string `json:"extension"`
	Count     int    `json:"count"`
}

// NewInventory creates an empty inventory for a scan root
func NewInventory(scanID, root string) *Inventory {
	return &Inventory{
		ScanID:    scanID,
		Root:      root,
		StartTime: time.Now(),
		Records:   make([]*FileRecord, 0),
	}
}

// Append adds a record in traversal order
func (inv *Inventory) Append(r *FileRecord) {
	inv.Records = append(inv.Records, r)
}

// Len returns the number of records
func (inv *Inventory) Len() int {
	return len(inv.Records)
}

// SkippedCount returns the number of entries dropped during collection
func (inv *Inventory) SkippedCount() int {
	return len(inv.Skipped)
}

// TotalSize returns the sum of all file sizes in bytes
func (inv *Inventory) TotalSize() int64 {
	var total int64
	for _, r := range inv.Records {
		total += r.Size
	}
	return total
}

// TotalSizeMB returns the total size in MB rounded to 2 decimals
func (inv *Inventory) TotalSizeMB() float64 {
	return Round(float64(inv.TotalSize())/bytesPerMB, 2)
}

// TotalSizeGB returns the total size in GB rounded to 2 decimals
func (inv *Inventory) TotalSizeGB() float64 {
	return Round(float64(inv.TotalSize())/(bytesPerMB*1024), 2)
}

// ExtensionCounts returns the number of records per extension
func (inv *Inventory) ExtensionCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range inv.Records {
		counts[r.Extension]++
	}
	return counts
}

// ExtensionStats returns extension counts sorted by count descending, then by name
func (inv *Inventory) ExtensionStats() []ExtensionStat {
	counts := inv.ExtensionCounts()
	stats := make([]ExtensionStat, 0, len(counts))
	for ext, count := range counts {
		stats = append(stats, ExtensionStat{Extension: ext, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Extension < stats[j].Extension
	})
	return stats
}

// TopExtensions returns at most n entries of ExtensionStats
func (inv *Inventory) TopExtensions(n int) []ExtensionStat {
	stats := inv.ExtensionStats()
	if n >= 0 && len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// BySizeDesc returns a copy of the records sorted by size, largest first.
// Records of equal size keep traversal order.
func (inv *Inventory) BySizeDesc() []*FileRecord {
	sorted := make([]*FileRecord, len(inv.Records))
	copy(sorted, inv.Records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Size > sorted[j].Size
	})
	return sorted
}

// Largest returns the n largest records
func (inv *Inventory) Largest(n int) []*FileRecord {
	sorted := inv.BySizeDesc()
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Search returns records whose name contains query, case-insensitively
func (inv *Inventory) Search(query string) []*FileRecord {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var found []*FileRecord
	for _, r := range inv.Records {
		if strings.Contains(strings.ToLower(r.Name), query) {
			found = append(found, r)
		}
	}
	return found
}

// Filter returns records at least minSizeMB large and, when ext is not
// empty, with a matching extension
func (inv *Inventory) Filter(minSizeMB float64, ext string) []*FileRecord {
	ext = strings.ToLower(strings.TrimSpace(ext))

	var found []*FileRecord
	for _, r := range inv.Records {
		if r.SizeMB < minSizeMB {
			continue
		}
		if ext != "" && r.Extension != ext {
			continue
		}
		found = append(found, r)
	}
	return found
}
