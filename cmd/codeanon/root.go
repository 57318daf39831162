package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeanon/internal/config"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag   string
		excludeFlag  string
		appendFlag   bool
		levelFlag    int
		compareSizes bool
		logLevelFlag string
	)

	rootCmd := &cobra.Command{
		Use:   "codeanon <src> <dest>",
		Short: "Anonymize comments in student coding assignments",
		Long: `codeanon walks a tree of student submissions, expands archives, and writes a
flattened, de-identified copy: one numbered directory per submission, each
source file once, with personally identifying text redacted from comments.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(configFlag)
			if err != nil {
				return err
			}

			cfg.Scan.Exclude = cfg.ExcludeList(excludeFlag, appendFlag)
			if cmd.Flags().Changed("level") {
				cfg.Scan.SubmissionLevel = levelFlag
			}
			if compareSizes {
				cfg.Scan.CompareSizes = true
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = logLevelFlag
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}

			return runAnonymize(cmd, cfg, args[0], args[1])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&excludeFlag, "exclude", "x", "", "Comma-separated, case-insensitive substrings to exclude (replaces the default list)")
	rootCmd.Flags().BoolVarP(&appendFlag, "append", "a", false, "Union --exclude with the default list instead of replacing it")
	rootCmd.Flags().IntVarP(&levelFlag, "level", "L", 1, "Directory depth (relative to src) of submission boundaries")
	rootCmd.Flags().BoolVar(&compareSizes, "compare-sizes", false, "Deduplicate by name and approximate size instead of name alone")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, or error")

	rootCmd.AddCommand(newConfigCommand(&configFlag))
	rootCmd.AddCommand(newRunsCommand())

	return rootCmd
}
