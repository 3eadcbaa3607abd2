package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Urmanga/file-scanner-gui/internal/config"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorOrange = "\033[38;5;208m"
	colorYellow = "\033[38;5;220m"
	colorGray   = "\033[38;5;245m"
	colorCyan   = "\033[36m"
)

var (
	version    = "2.1.0"
	logger     *zap.Logger
	verbose    bool
	configPath string
	noColor    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "filescan",
		Short: "FileScan - file inventory with local and remote tagging",
		Long: `Walks a directory tree, records metadata for every file, tags files with
pattern rules, heuristics and an optional text generation endpoint, and
exports the inventory as text, CSV or JSON.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = newLogger(verbose)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
				return err
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Sync()
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			printBanner()
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(findCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(scheduleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s✗ Error:%s %v\n", paint(colorRed), paint(colorReset), err)
		os.Exit(1)
	}
}

// newLogger builds a development logger when verbose, otherwise an
// error-only JSON logger on stderr
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.ErrorLevel),
		Encoding:         "json",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}
	return cfg.Build()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error("Failed to load config", zap.String("path", configPath), zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

// paint returns code unless colors are disabled
func paint(code string) string {
	if noColor {
		return ""
	}
	return code
}

func colorsEnabled() bool {
	return !noColor
}

func printBanner() {
	fmt.Println()
	fmt.Printf("%s%sFILESCAN%s %sv%s%s\n", paint(colorBold), paint(colorOrange), paint(colorReset), paint(colorGray), version, paint(colorReset))
	fmt.Printf("%sFile inventory and tagging%s\n", paint(colorGray), paint(colorReset))
	fmt.Println()
}

// confirm asks a yes/no question on stdin; an empty answer means yes
func confirm(question string) bool {
	fmt.Printf("  %s%s [Y/n]:%s ", paint(colorBold), question, paint(colorReset))

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	input = strings.TrimSpace(strings.ToLower(input))
	return input == "" || input == "y" || input == "yes"
}

// progressBar renders a fixed-width bar for percent in [0, 100]
func progressBar(percent float64, width int) string {
	filled := int(float64(width) * percent / 100)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
