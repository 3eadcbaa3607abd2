package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)

func testInventory() *models.Inventory {
	mod := time.Date(2024, 4, 1, 10, 0, 0, 0, time.Local)
	mk := func(name string, size int64, tags ...string) *models.FileRecord {
		return &models.FileRecord{
			Name:         name,
			Path:         "/data/" + name,
			RelativePath: name,
			Directory:    "/data",
			Extension:    extOf(name),
			Size:         size,
			SizeMB:       models.SizeInMB(size),
			ModTime:      mod,
			CreateTime:   mod,
			Tags:         tags,
		}
	}

	inv := models.NewInventory("scan-1", "/data")
	inv.Mode = "local"
	inv.Classified = true
	inv.Append(mk("small.txt", 2048, "document", "small"))
	inv.Append(mk("movie.mkv", 150*1024*1024, "video", "medium"))
	inv.Append(mk("photo.jpg", 20*1024*1024, "image"))
	inv.Append(mk("notes.txt", 512))
	inv.Append(mk("Makefile", 100, "project"))
	return inv
}

func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return models.NoExtension
}

func newTestExporter(t *testing.T) *Exporter {
	return NewExporter(zaptest.NewLogger(t)).WithClock(func() time.Time { return fixedNow })
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"text", FormatText, false},
		{"TXT", FormatText, false},
		{"csv", FormatCSV, false},
		{" json ", FormatJSON, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestDefaultFileName(t *testing.T) {
	assert.Equal(t, "files_scan_20240506_070809.txt", DefaultFileName(FormatText, fixedNow))
	assert.Equal(t, "files_scan_20240506_070809.csv", DefaultFileName(FormatCSV, fixedNow))
	assert.Equal(t, "files_scan_20240506_070809.json", DefaultFileName(FormatJSON, fixedNow))
}

func TestSizeMarker(t *testing.T) {
	assert.Equal(t, "🔴", SizeMarker(100.5))
	assert.Equal(t, "🟡", SizeMarker(100))
	assert.Equal(t, "🟡", SizeMarker(10.001))
	assert.Equal(t, "🟢", SizeMarker(10))
}

func TestExport_Text(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.txt")
	path, err := newTestExporter(t).Export(testInventory(), FormatText, dest)
	require.NoError(t, err)
	assert.Equal(t, dest, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "Scan date:      2024-05-06 07:08:09")
	assert.Contains(t, text, "Scanned folder: /data")
	assert.Contains(t, text, "Total files:    5")
	assert.Contains(t, text, "Total size:     170.00 MB (0.17 GB)")

	// Extension table sorted by count descending
	assert.Less(t, strings.Index(text, ".txt: 2 files"), strings.Index(text, ".jpg: 1 files"))

	// Listing sorted by size descending with tier markers and tags
	movie := strings.Index(text, "🔴 /data/movie.mkv (150 MB) [video, medium]")
	photo := strings.Index(text, "🟡 /data/photo.jpg (20 MB) [image]")
	small := strings.Index(text, "🟢 /data/small.txt (0.002 MB) [document, small]")
	require.True(t, movie >= 0 && photo >= 0 && small >= 0, text)
	assert.Less(t, movie, photo)
	assert.Less(t, photo, small)
	assert.Contains(t, text, "🟢 /data/notes.txt (0 MB)\n")
}

func TestExport_CSV(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.csv")
	path, err := newTestExporter(t).Export(testInventory(), FormatCSV, dest)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6)

	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{
		"small.txt", "/data/small.txt", "small.txt", "/data", ".txt",
		"2048", "0.002", "2024-04-01 10:00:00", "2024-04-01 10:00:00", "document,small",
	}, rows[1])
	assert.Equal(t, "", rows[4][9])
}

func TestExport_CSVEmptyInventory(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "empty.csv")
	_, err := newTestExporter(t).Export(models.NewInventory("s", "/x"), FormatCSV, dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(CSVHeader, ",")+"\n", string(data))
}

func TestExport_JSONRoundTrip(t *testing.T) {
	inv := testInventory()
	inv.Skipped = []models.SkippedEntry{{Path: "/data/locked", Reason: "permission denied"}}

	dest := filepath.Join(t.TempDir(), "out.json")
	path, err := newTestExporter(t).Export(inv, FormatJSON, dest)
	require.NoError(t, err)

	report, err := ReadJSON(path)
	require.NoError(t, err)

	info := report.ScanInfo
	assert.Equal(t, ReportVersion, info.Version)
	assert.Equal(t, "2024-05-06 07:08:09", info.Date)
	assert.Equal(t, "/data", info.ScannedFolder)
	assert.Equal(t, inv.Len(), info.TotalFiles)
	assert.Equal(t, inv.TotalSizeMB(), info.TotalSizeMB)
	assert.Equal(t, inv.TotalSizeGB(), info.TotalSizeGB)
	assert.Equal(t, map[string]int{".txt": 2, ".mkv": 1, ".jpg": 1, "none": 1}, info.ExtensionsStats)
	assert.True(t, info.Classification)
	assert.Equal(t, "local", info.ClassificationMode)
	assert.Equal(t, "scan-1", info.ScanID)
	assert.Len(t, info.SkippedEntries, 1)

	require.Len(t, info.LargestFiles, 5)
	assert.Equal(t, "movie.mkv", info.LargestFiles[0].Name)

	back := report.Inventory()
	assert.Equal(t, inv.Len(), back.Len())
	assert.Equal(t, inv.TotalSize(), back.TotalSize())
	assert.Equal(t, inv.TotalSizeMB(), back.TotalSizeMB())
	for i := range inv.Records {
		assert.Equal(t, *inv.Records[i], *back.Records[i])
	}
}

func TestExport_JSONTagsAsArray(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.json")
	_, err := newTestExporter(t).Export(testInventory(), FormatJSON, dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tags": [
        "document",
        "small"
      ]`)
	assert.Contains(t, string(data), `"tags": []`)
}

func TestExport_LargestCappedAtTen(t *testing.T) {
	inv := models.NewInventory("s", "/x")
	for i := 0; i < 15; i++ {
		inv.Append(&models.FileRecord{Name: "f", Path: "/x/f", Extension: models.NoExtension, Size: int64(i)})
	}
	report := NewJSONReport(inv, fixedNow)
	require.Len(t, report.ScanInfo.LargestFiles, 10)
	assert.Equal(t, int64(14), report.ScanInfo.LargestFiles[0].Size)
	assert.Len(t, report.Files, 15)
}

func TestExport_DefaultName(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	path, err := newTestExporter(t).Export(testInventory(), FormatCSV, "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "files_scan_20240506_070809.csv", filepath.Base(path))
	assert.FileExists(t, path)
}

func TestExport_WriteErrors(t *testing.T) {
	e := newTestExporter(t)
	inv := testInventory()

	_, err := e.Export(inv, FormatJSON, filepath.Join(t.TempDir(), "missing", "out.json"))
	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, CauseNotFound, werr.Cause())

	_, err = e.Export(inv, Format("xml"), filepath.Join(t.TempDir(), "out.xml"))
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, CauseMalformed, werr.Cause())

	_, err = e.Export(nil, FormatJSON, filepath.Join(t.TempDir(), "out.json"))
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, CauseMalformed, werr.Cause())

	if os.Geteuid() != 0 {
		locked := t.TempDir()
		require.NoError(t, os.Chmod(locked, 0500))
		defer os.Chmod(locked, 0700)

		_, err = e.Export(inv, FormatText, filepath.Join(locked, "out.txt"))
		require.True(t, errors.As(err, &werr))
		assert.Equal(t, CausePermission, werr.Cause())
	}

	// A failed export leaves the inventory exportable
	_, err = e.Export(inv, FormatText, filepath.Join(t.TempDir(), "ok.txt"))
	assert.NoError(t, err)
}

func TestReadJSON_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := ReadJSON(path)
	assert.Error(t, err)
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)
	inv := testInventory()
	inv.Duration = 1500 * time.Millisecond

	c.PrintSummary(inv)
	out := buf.String()
	assert.Contains(t, out, "SCAN COMPLETE")
	assert.Contains(t, out, "Files:     5")
	assert.Contains(t, out, "170.00 MB")
	assert.Contains(t, out, "1.50s")
	assert.Contains(t, out, ".txt (2)")
	assert.NotContains(t, out, "\033[")

	buf.Reset()
	c.PrintRecords(inv.BySizeDesc(), 2)
	out = buf.String()
	assert.Contains(t, out, "/data/movie.mkv")
	assert.Contains(t, out, "[video, medium]")
	assert.NotContains(t, out, "/data/small.txt")
	assert.Contains(t, out, "... and 3 more")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{250 * time.Millisecond, "250.00ms"},
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1m30.00s"},
		{3723 * time.Second, "1h2m3.00s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDuration(tt.d))
	}
}
