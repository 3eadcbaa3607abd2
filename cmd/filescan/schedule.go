package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Urmanga/file-scanner-gui/internal/report"
	"github.com/Urmanga/file-scanner-gui/internal/schedule"
	"github.com/Urmanga/file-scanner-gui/internal/storage"
)

// scheduleCmd runs periodic scans until interrupted
func scheduleCmd() *cobra.Command {
	var (
		spec         string
		outputDir    string
		reportFormat string
		upload       bool
		runNow       bool
	)

	cmd := &cobra.Command{
		Use:   "schedule [path]",
		Short: "Scan and export on a cron schedule",
		Long: `Scan a directory on a cron schedule ("0 3 * * *", "@daily", "@every 6h"),
export each inventory and optionally upload it. Remote usage counters reset
at local midnight.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			root := cfg.Schedule.Root
			if len(args) == 1 {
				root = args[0]
			}
			if root == "" {
				return fmt.Errorf("no directory to scan: pass a path or set schedule.root")
			}
			if spec == "" {
				spec = cfg.Schedule.Spec
			}
			if outputDir == "" {
				outputDir = cfg.Schedule.OutputDir
			}
			if !cmd.Flags().Changed("upload") {
				upload = cfg.Schedule.Upload
			}
			if reportFormat == "" {
				reportFormat = cfg.Report.Format
			}
			if reportFormat == "" {
				reportFormat = string(report.FormatJSON)
			}

			format, err := report.ParseFormat(reportFormat)
			if err != nil {
				return err
			}

			eng, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer eng.Close()

			job := &schedule.ScanExport{
				Scanner:   eng.scanner,
				Exporter:  report.NewExporter(logger),
				Scan:      cfg.ScanConfiguration(root),
				Format:    format,
				OutputDir: outputDir,
				Logger:    logger,
			}
			if upload {
				u, err := storage.New(cfg.Storage.S3)
				if err != nil {
					return err
				}
				job.Uploader = u
			}

			runner := schedule.NewRunner(logger)
			id, err := runner.Add("scan "+root, spec, job.Job())
			if err != nil {
				return err
			}
			if _, err := runner.ResetDaily("usage reset", eng.usage); err != nil {
				return err
			}

			printBanner()
			fmt.Printf("  %sSchedule:%s  %s\n", paint(colorGray), paint(colorReset), spec)
			fmt.Printf("  %sScanning:%s  %s\n", paint(colorGray), paint(colorReset), root)
			fmt.Printf("  %sNext run:%s  %s\n", paint(colorGray), paint(colorReset), runner.Next(id, time.Now()).Format(time.RFC1123))
			fmt.Printf("  %sPress Ctrl+C to stop%s\n\n", paint(colorGray), paint(colorReset))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if runNow {
				go func() {
					if !runner.Trigger(id) {
						logger.Warn("Initial run not started", zap.String("root", root))
					}
				}()
			}

			return runner.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", `Cron expression or descriptor (default from config, "@daily")`)
	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Directory for exported reports (default: working directory)")
	cmd.Flags().StringVarP(&reportFormat, "report", "r", "", "Report format: text, csv, json (default: json)")
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload each report to the configured S3 bucket")
	cmd.Flags().BoolVar(&runNow, "now", false, "Run once immediately, then follow the schedule")

	return cmd
}
