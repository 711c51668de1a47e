package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/config"
	"github.com/underthemoss/construction-taxonomy/display"
	"github.com/underthemoss/construction-taxonomy/engine"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/source"
)

// AnalyzeCmd classifies a catalog directory without writing anything
var AnalyzeCmd = &cobra.Command{
	Use:   "analyze [dir]",
	Short: "Extract, classify and normalize a catalog directory",
	Long: `Read every document under dir (default: sources.catalog_dir) and show the
candidates it yields after aggregation, classification and normalization.

Examples:
  taxonomy analyze                      # Analyze the configured catalog directory
  taxonomy analyze --fetch              # Download sources.remote first
  taxonomy analyze --propose --json     # Include proposer suggestions, as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

// MergeCmd runs the full pipeline and commits the result
var MergeCmd = &cobra.Command{
	Use:   "merge [dir]",
	Short: "Merge new attributes from a catalog directory into the library",
	Long: `Run the full pipeline over dir (default: sources.catalog_dir): extract,
classify, normalize, deduplicate against the library, then write the surviving
records as one batch. If the library fails revalidation after the write, the
batch is rolled back.

Examples:
  taxonomy merge --dry-run              # Show what would be added
  taxonomy merge --propose              # Ask the proposer for more attributes first
  taxonomy merge --publish              # Commit the batch to the day's review branch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMerge,
}

func init() {
	for _, cmd := range []*cobra.Command{AnalyzeCmd, MergeCmd} {
		cmd.Flags().Bool("fetch", false, "Download sources.remote into the catalog directory first")
		cmd.Flags().Bool("propose", false, "Ask the configured proposer for additional attributes")
	}
	MergeCmd.Flags().Bool("dry-run", false, "Decide and validate without writing")
	MergeCmd.Flags().Bool("publish", false, "Commit the batch to a review branch (publish.enabled)")
}

func catalogDir(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Sources.CatalogDir
}

func runOptions(cmd *cobra.Command, cfg *config.Config) (engine.RunOptions, error) {
	var opts engine.RunOptions
	if fetch, _ := cmd.Flags().GetBool("fetch"); fetch {
		if cfg.Sources.Remote == "" {
			return opts, errors.WithHint(
				errors.Mark(errors.New("--fetch needs sources.remote"), errors.ErrNotConfigured),
				"set sources.remote in taxonomy.toml",
			)
		}
		opts.Remote = cfg.Sources.Remote
	}
	opts.Propose, _ = cmd.Flags().GetBool("propose")
	return opts, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	e, cfg, err := newEngine(cmd)
	if err != nil {
		return err
	}
	opts, err := runOptions(cmd, cfg)
	if err != nil {
		return err
	}
	dir := catalogDir(cfg, args)

	if opts.Remote != "" {
		if err := source.Fetch(cmd.Context(), opts.Remote, dir); err != nil {
			return err
		}
	}
	docs, err := e.Loader().LoadDir(dir)
	if err != nil {
		return err
	}
	a := e.Analyze(docs)
	if opts.Propose {
		if err := e.Propose(cmd.Context(), a); err != nil {
			return err
		}
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), a)
	}
	pterm.Info.Printfln("%d document(s) from %s", len(docs), dir)
	for _, section := range []struct {
		title string
		cands []attribute.Candidate
	}{
		{"Catalog text", a.Catalog},
		{"Product examples", a.Examples},
		{"Proposals", a.Proposed},
	} {
		if len(section.cands) == 0 {
			continue
		}
		pterm.DefaultSection.Printfln("%s (%d)", section.title, len(section.cands))
		if err := display.Table(cmd.OutOrStdout(), display.CandidateHeader, display.CandidateRows(section.cands)); err != nil {
			return err
		}
	}
	for _, r := range a.ProposalRejections {
		pterm.Warning.Printfln("proposal %s rejected: %s", r.Code, r.Reason)
	}
	return nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	e, cfg, err := newEngine(cmd)
	if err != nil {
		return err
	}
	opts, err := runOptions(cmd, cfg)
	if err != nil {
		return err
	}
	opts.Merge.DryRun, _ = cmd.Flags().GetBool("dry-run")
	opts.Merge.Publish, _ = cmd.Flags().GetBool("publish")
	useJSON := display.ShouldOutputJSON(cmd)

	var spinner *pterm.SpinnerPrinter
	if !useJSON {
		if opts.Merge.DryRun {
			pterm.Warning.Println("DRY RUN MODE: no records will be written")
		}
		spinner, _ = pterm.DefaultSpinner.Start("Merging attributes...")
	}
	start := time.Now()
	_, report, err := e.Run(cmd.Context(), catalogDir(cfg, args), opts)
	if spinner != nil {
		_ = spinner.Stop()
	}

	if useJSON && report != nil {
		if jerr := display.OutputJSON(cmd.OutOrStdout(), report); jerr != nil {
			return jerr
		}
		return err
	}
	if report != nil {
		if terr := printReport(cmd, report, time.Since(start)); terr != nil {
			return terr
		}
	}
	return err
}

func printReport(cmd *cobra.Command, report *engine.Report, took time.Duration) error {
	out := cmd.OutOrStdout()
	if len(report.Accepted) > 0 {
		pterm.DefaultSection.Printfln("Accepted (%d)", len(report.Accepted))
		if err := display.Table(out, display.RecordHeader, display.RecordRows(report.Accepted)); err != nil {
			return err
		}
	}
	if len(report.Rejections) > 0 {
		pterm.DefaultSection.Printfln("Rejected (%d)", len(report.Rejections))
		if err := display.Table(out, display.RejectionHeader, display.RejectionRows(report.Rejections)); err != nil {
			return err
		}
	}

	fmt.Fprintln(out)
	switch {
	case report.DryRun:
		pterm.Info.Printfln("dry run: %d record(s) would be added to library %s", len(report.Accepted), report.Version)
	case len(report.Written) == 0:
		pterm.Info.Printfln("nothing new; library stays at %s", report.Version)
	default:
		pterm.Success.Printfln("batch %s: %d record(s) written, library %s (%s)",
			report.BatchID, len(report.Written), report.Version, took.Round(time.Millisecond))
	}
	if report.Published != nil {
		pterm.Success.Printfln("committed %s on %s", report.Published.Commit[:7], report.Published.Branch)
		if report.Published.Pushed {
			pterm.Success.Println("pushed")
		}
	}
	return nil
}
