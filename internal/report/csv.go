package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// CSVHeader is the fixed column order of the tabular report
var CSVHeader = []string{
	"name",
	"full_path",
	"relative_path",
	"directory",
	"extension",
	"size_bytes",
	"size_mb",
	"modified_date",
	"created_date",
	"tags",
}

// writeCSV writes one row per record after the header row
func writeCSV(w io.Writer, inv *models.Inventory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	for _, r := range inv.Records {
		row := []string{
			r.Name,
			r.Path,
			r.RelativePath,
			r.Directory,
			r.Extension,
			strconv.FormatInt(r.Size, 10),
			formatMB(r.SizeMB),
			models.FormatTime(r.ModTime),
			models.FormatTime(r.CreateTime),
			strings.Join(r.Tags, ","),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatMB(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
