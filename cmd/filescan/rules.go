package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Urmanga/file-scanner-gui/internal/config"
	"github.com/Urmanga/file-scanner-gui/internal/rules"
)

// rulesCmd groups the pattern rule commands
func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List and edit pattern rules",
		Long:  `Pattern rules map file names and paths to categories and tags. Edits are saved to the config file.`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesRemoveCmd())
	cmd.AddCommand(rulesImportCmd())
	cmd.AddCommand(rulesExportCmd())
	cmd.AddCommand(rulesResetCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rs, err := loadRules(cfg)
			if err != nil {
				return err
			}

			fmt.Println()
			for i, r := range rs.Rules() {
				fmt.Printf("  %s%2d. %s%s%s\n", paint(colorGray), i+1, paint(colorBold), r.Category, paint(colorReset))
				fmt.Printf("      %spatterns:%s %s\n", paint(colorGray), paint(colorReset), strings.Join(r.Patterns, "  "))
				fmt.Printf("      %stags:%s     %s%s%s\n", paint(colorGray), paint(colorReset), paint(colorCyan), strings.Join(r.Tags, ", "), paint(colorReset))
			}
			fmt.Println()
			return nil
		},
	}
}

func rulesAddCmd() *cobra.Command {
	var (
		patterns []string
		tags     []string
		replace  bool
	)

	cmd := &cobra.Command{
		Use:   "add <category>",
		Short: "Add a rule, or replace one with --replace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editRules(func(rs *rules.RuleSet) error {
				r := rules.Rule{Category: args[0], Patterns: patterns, Tags: tags}
				if _, exists := rs.Get(r.Category); exists && replace {
					return rs.Update(r)
				}
				return rs.Add(r)
			}, fmt.Sprintf("Saved rule %s", args[0]))
		},
	}

	cmd.Flags().StringSliceVarP(&patterns, "pattern", "p", nil, "Name or path pattern (repeatable, comma-separated)")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Tag emitted on match (repeatable, comma-separated)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace an existing rule with the same category")

	return cmd
}

func rulesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <category>",
		Short: "Remove a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editRules(func(rs *rules.RuleSet) error {
				return rs.Remove(args[0])
			}, fmt.Sprintf("Removed rule %s", args[0]))
		},
	}
}

func rulesImportCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import rules from a YAML rule file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var n int
			err := editRules(func(rs *rules.RuleSet) error {
				var err error
				n, err = rs.Import(args[0], replace)
				return err
			}, "")
			if err != nil {
				return err
			}
			fmt.Printf("  %s✓%s Imported %d rules\n", paint(colorGreen), paint(colorReset), n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Replace rules whose category already exists")

	return cmd
}

func rulesExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.yaml>",
		Short: "Write the current rules to a YAML rule file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rs, err := loadRules(cfg)
			if err != nil {
				return err
			}
			return rs.SaveFile(args[0])
		},
	}
}

func rulesResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Rules = rules.Default().ToConfig()
			if err := saveConfig(cfg); err != nil {
				return err
			}
			fmt.Printf("  %s✓%s Default rules restored\n", paint(colorGreen), paint(colorReset))
			return nil
		},
	}
}

// editRules loads the stored rules, applies edit and saves them back
func editRules(edit func(rs *rules.RuleSet) error, done string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rs, err := loadRules(cfg)
	if err != nil {
		return err
	}

	if err := edit(rs); err != nil {
		return err
	}

	cfg.Rules = rs.ToConfig()
	if err := saveConfig(cfg); err != nil {
		return err
	}

	if done != "" {
		fmt.Printf("  %s✓%s %s\n", paint(colorGreen), paint(colorReset), done)
	}
	return nil
}

func saveConfig(cfg *config.Config) error {
	if err := cfg.Save(configPath); err != nil {
		logger.Error("Failed to save config", zap.String("path", configPath), zap.Error(err))
		return err
	}
	return nil
}
