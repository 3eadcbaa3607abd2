package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Urmanga/file-scanner-gui/internal/filesystem"
	"github.com/Urmanga/file-scanner-gui/internal/report"
	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// findCmd searches a saved JSON inventory
func findCmd() *cobra.Command {
	var (
		minSize string
		ext     string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "find <report.json> [name]",
		Short: "Search a saved JSON inventory",
		Long: `Load an inventory exported with --report json and list files whose name
contains the query, or that pass the size and extension filters.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minMB, err := filesystem.ParseSizeMB(minSize)
			if err != nil {
				return fmt.Errorf("--min-size: %w", err)
			}

			if ext != "" && ext != models.NoExtension && !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}

			saved, err := report.ReadJSON(args[0])
			if err != nil {
				return err
			}
			inv := saved.Inventory()

			var records []*models.FileRecord
			if len(args) == 2 {
				records = inv.Search(args[1])
				if minMB > 0 || ext != "" {
					records = filterRecords(records, minMB, ext)
				}
			} else {
				records = inv.Filter(minMB, ext)
			}

			fmt.Printf("\n  %sFound:%s %d of %d files\n\n", paint(colorGray), paint(colorReset), len(records), inv.Len())
			report.NewConsole(os.Stdout, colorsEnabled()).PrintRecords(records, limit)
			return nil
		},
	}

	cmd.Flags().StringVar(&minSize, "min-size", "", `Minimum size, in MB or with a unit ("500K", "1.5GiB")`)
	cmd.Flags().StringVar(&ext, "ext", "", "Only files with this extension")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum files to print (0 for all)")

	return cmd
}

// filterRecords applies the inventory filter to an already narrowed list
func filterRecords(records []*models.FileRecord, minMB float64, ext string) []*models.FileRecord {
	tmp := models.NewInventory("", "")
	for _, r := range records {
		tmp.Append(r)
	}
	return tmp.Filter(minMB, ext)
}
