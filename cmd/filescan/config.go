package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Urmanga/file-scanner-gui/internal/cache"
	"github.com/Urmanga/file-scanner-gui/internal/rules"
)

// configCmd groups configuration and cache maintenance commands
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file and tag cache",
	}

	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(cachePurgeCmd())

	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if len(cfg.Rules) == 0 {
				cfg.Rules = rules.Default().ToConfig()
			}
			if err := saveConfig(cfg); err != nil {
				return err
			}

			fmt.Printf("  %s✓%s Wrote %s\n", paint(colorGreen), paint(colorReset), configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			shown := *cfg
			if shown.Remote.APIKey != "" {
				shown.Remote.APIKey = "***"
			}
			if shown.Storage.S3.SecretKey != "" {
				shown.Storage.S3.SecretKey = "***"
			}

			data, err := yaml.Marshal(&shown)
			if err != nil {
				return err
			}
			fmt.Printf("# %s\n%s", configPath, data)
			return nil
		},
	}
}

func cachePurgeCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge-cache",
		Short: "Drop cached remote tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			tc, err := cache.Open(cfg.Cache.Path)
			if err != nil {
				logger.Error("Failed to open tag cache", zap.String("path", cfg.Cache.Path), zap.Error(err))
				return err
			}
			defer tc.Close()

			n, err := tc.Purge(olderThan)
			if err != nil {
				return err
			}
			fmt.Printf("  %s✓%s Removed %d cached entries\n", paint(colorGreen), paint(colorReset), n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only drop entries older than this (e.g. 720h); 0 drops everything")

	return cmd
}
