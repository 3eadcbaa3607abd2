package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Urmanga/file-scanner-gui/internal/ai"
	"github.com/Urmanga/file-scanner-gui/internal/config"
	"github.com/Urmanga/file-scanner-gui/internal/core"
	"github.com/Urmanga/file-scanner-gui/internal/filesystem"
	"github.com/Urmanga/file-scanner-gui/internal/report"
	"github.com/Urmanga/file-scanner-gui/internal/storage"
	"github.com/Urmanga/file-scanner-gui/pkg/models"
)

// scanCmd creates the scan command
func scanCmd() *cobra.Command {
	var (
		includeHidden bool
		extensions    string
		mode          string
		tagCap        int
		workers       int
		exclude       []string
		reportFormat  string
		outputFile    string
		upload        bool
		list          int
		assumeYes     bool
	)

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory and build a file inventory",
		Long:  `Recursively scan a directory, tag every file and optionally export the inventory.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]

			if err := validateFlags(mode, reportFormat, tagCap); err != nil {
				fmt.Printf("\n  %s✗ Invalid parameter:%s %s\n\n", paint(colorRed), paint(colorReset), err.Error())
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			sc := cfg.ScanConfiguration(root)
			flags := cmd.Flags()
			if flags.Changed("hidden") {
				sc.IncludeHidden = includeHidden
			}
			if flags.Changed("ext") {
				sc.Extensions = config.ParseExtensionFilter(extensions)
			}
			if mode != "" {
				sc.Mode = config.ParseMode(mode)
			}
			if tagCap > 0 {
				sc.TagCap = tagCap
			}
			if workers > 0 {
				sc.Workers = workers
			}
			if len(exclude) > 0 {
				sc.Exclude = exclude
			}
			if reportFormat == "" {
				reportFormat = cfg.Report.Format
			}
			if outputFile == "" {
				outputFile = cfg.Report.Output
			}

			eng, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer eng.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			printScanHeader(root, sc)

			if usesRemote(sc.Mode) && eng.remote.Enabled() && !assumeYes {
				if !confirmRemoteCost(ctx, cfg.Remote, sc, eng.usage) {
					fmt.Printf("  %sRemote tagging skipped, using local tags only%s\n\n", paint(colorGray), paint(colorReset))
					sc.Mode = config.ModeLocal
				}
			}

			inv, err := eng.scanner.Scan(ctx, sc, printProgress)
			fmt.Println()
			switch {
			case errors.Is(err, core.ErrAllEntriesFailed):
				fmt.Printf("  %s⚠ Every file in the tree was unreadable%s\n", paint(colorYellow), paint(colorReset))
			case errors.Is(err, context.Canceled):
				fmt.Printf("  %s⊘ Scan cancelled%s\n\n", paint(colorGray), paint(colorReset))
				return nil
			case err != nil:
				logger.Error("Scan failed", zap.Error(err))
				return err
			}

			console := report.NewConsole(os.Stdout, colorsEnabled())
			console.PrintSummary(inv)
			if list > 0 {
				console.PrintRecords(inv.BySizeDesc(), list)
			}
			printUsage(eng.usage)

			if reportFormat == "" {
				return nil
			}

			format, err := report.ParseFormat(reportFormat)
			if err != nil {
				return err
			}
			path, err := report.NewExporter(logger).Export(inv, format, outputFile)
			if err != nil {
				return explainWriteError(err)
			}
			fmt.Printf("  %sReport:%s    %s%s%s\n", paint(colorGray), paint(colorReset), paint(colorOrange), path, paint(colorReset))

			if upload {
				if err := uploadReport(ctx, cfg.Storage.S3, path); err != nil {
					return err
				}
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().BoolVar(&includeHidden, "hidden", false, "Include hidden files and directories")
	cmd.Flags().StringVar(&extensions, "ext", "", `Extension filter, whitespace separated (e.g. ".jpg .png")`)
	cmd.Flags().StringVar(&mode, "mode", "", "Classification mode: local, remote, hybrid")
	cmd.Flags().IntVar(&tagCap, "tag-cap", 0, fmt.Sprintf("Maximum tags per file in every mode (1-%d)", models.MaxTags))
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of worker goroutines (default: CPU cores)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Directory names to skip (comma-separated)")
	cmd.Flags().StringVarP(&reportFormat, "report", "r", "", "Report format: text, csv, json (default: console only)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (default: files_scan_<timestamp>.<ext>)")
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload the report to the configured S3 bucket")
	cmd.Flags().IntVar(&list, "list", 0, "Print the N largest files")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the remote cost confirmation")

	return cmd
}

// validateFlags validates CLI flag values
func validateFlags(mode, reportFormat string, tagCap int) error {
	if mode != "" {
		if err := config.ValidateMode(mode); err != nil {
			return fmt.Errorf("--mode: %w", err)
		}
	}

	if reportFormat != "" {
		validFormats := []string{"text", "txt", "csv", "json"}
		if !contains(validFormats, strings.ToLower(reportFormat)) {
			return fmt.Errorf("--report must be one of: %s (got: %s)", strings.Join(validFormats, ", "), reportFormat)
		}
	}

	if tagCap < 0 || tagCap > models.MaxTags {
		return fmt.Errorf("--tag-cap must be between 1 and %d (got: %d)", models.MaxTags, tagCap)
	}

	return nil
}

func usesRemote(m config.Mode) bool {
	return m == config.ModeRemote || m == config.ModeHybrid
}

func printScanHeader(root string, sc config.ScanConfiguration) {
	printBanner()
	fmt.Printf("  %sScanning:%s  %s\n", paint(colorGray), paint(colorReset), root)
	fmt.Printf("  %sMode:%s      %s\n", paint(colorGray), paint(colorReset), config.ParseMode(string(sc.Mode)))
	if len(sc.Extensions) > 0 {
		fmt.Printf("  %sFilter:%s    %s\n", paint(colorGray), paint(colorReset), strings.Join(sc.Extensions, " "))
	}
	fmt.Println()
}

// printProgress redraws a single progress line
func printProgress(count int, percent float64) {
	fmt.Printf("\r  %sScanning:%s  [%s%s%s] %s%5.1f%%%s (%d files)",
		paint(colorGray), paint(colorReset),
		paint(colorOrange), progressBar(percent, 30), paint(colorReset),
		paint(colorOrange), percent, paint(colorReset),
		count)
}

// confirmRemoteCost shows the projected remote spend and asks to proceed
func confirmRemoteCost(ctx context.Context, cfg config.RemoteConfig, sc config.ScanConfiguration, usage *ai.UsageState) bool {
	files, err := filesystem.NewWalker(sc, logger).Count(ctx, sc.Root)
	if err != nil {
		// The scan reports the root problem itself
		return true
	}

	estimate := ai.EstimateScanCost(cfg, files, usage)

	fmt.Printf("  %s%sRemote Tagging Cost Estimate%s\n", paint(colorBold), paint(colorCyan), paint(colorReset))
	fmt.Printf("  %sFiles:%s         %d\n", paint(colorGray), paint(colorReset), estimate.FilesCount)
	fmt.Printf("  %sModel:%s         %s\n", paint(colorGray), paint(colorReset), estimate.Model)
	fmt.Printf("  %sEst. Tokens:%s   ~%d\n", paint(colorGray), paint(colorReset), estimate.EstimatedTokens)
	fmt.Printf("  %sEst. Cost:%s     %s$%.4f%s\n", paint(colorGray), paint(colorReset), paint(colorYellow), estimate.EstimatedCostUSD, paint(colorReset))
	fmt.Printf("  %sBudget left:%s   $%.4f\n", paint(colorGray), paint(colorReset), estimate.RemainingUSD)
	fmt.Println()

	return confirm("Proceed with remote tagging?")
}

func printUsage(usage *ai.UsageState) {
	u := usage.Snapshot()
	if u.Calls == 0 {
		return
	}
	fmt.Printf("  %s✓ Remote tagging%s %s(%d calls, %d tokens, $%.4f)%s\n\n",
		paint(colorGreen), paint(colorReset), paint(colorGray), u.Calls, u.Tokens, u.SpentUSD, paint(colorReset))
}

// explainWriteError turns an export failure into a user-facing message
func explainWriteError(err error) error {
	var werr *report.WriteError
	if !errors.As(err, &werr) {
		return err
	}

	switch werr.Cause() {
	case report.CauseNotFound:
		return fmt.Errorf("output directory does not exist: %s", werr.Path)
	case report.CausePermission:
		return fmt.Errorf("no permission to write %s", werr.Path)
	case report.CauseMalformed:
		return fmt.Errorf("could not encode %s report: %w", werr.Format, werr.Err)
	default:
		return err
	}
}

func uploadReport(ctx context.Context, s3cfg config.S3Config, path string) error {
	u, err := storage.New(s3cfg)
	if err != nil {
		return err
	}

	res, err := u.Upload(ctx, path)
	if err != nil {
		logger.Error("Upload failed", zap.String("path", path), zap.Error(err))
		return err
	}

	fmt.Printf("  %sUploaded:%s  s3://%s/%s\n", paint(colorGray), paint(colorReset), res.Bucket, res.Key)
	return nil
}
