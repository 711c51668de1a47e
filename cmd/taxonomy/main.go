package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/underthemoss/construction-taxonomy/cmd/taxonomy/commands"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/logger"
)

var rootCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Construction equipment attribute taxonomy",
	Long: `taxonomy - maintain the construction equipment attribute library.

Specification text scraped from product catalogs is turned into candidate
attributes, classified as physics (universal, measurable) or brand
(manufacturer-specific), normalized to canonical codes, deduplicated against
the library and merged as one validated batch.

Examples:
  taxonomy extract spec.txt               # Show label/value pairs found in a file
  taxonomy classify "Net Power" "152 kW"  # Explain a classification
  taxonomy analyze source_content         # Classify a whole catalog directory
  taxonomy merge --dry-run                # Preview what a merge would add
  taxonomy validate                       # Check the library and its consolidated view`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs := false
		if cfg, err := commands.LoadConfig(cmd); err == nil {
			jsonLogs = cfg.Log.JSON
		}
		if err := logger.Initialize(logger.Options{JSON: jsonLogs, Verbosity: verbosity}); err != nil {
			return errors.Wrap(err, "initialize logger")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")
	rootCmd.PersistentFlags().String("config", "", "Read configuration from this file only")
	rootCmd.PersistentFlags().String("root", "", "Library root (overrides library.root)")

	rootCmd.AddCommand(commands.ExtractCmd)
	rootCmd.AddCommand(commands.ClassifyCmd)
	rootCmd.AddCommand(commands.NormalizeCmd)
	rootCmd.AddCommand(commands.AnalyzeCmd)
	rootCmd.AddCommand(commands.MergeCmd)
	rootCmd.AddCommand(commands.ConsolidateCmd)
	rootCmd.AddCommand(commands.ValidateCmd)
	rootCmd.AddCommand(commands.MigrateCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}
