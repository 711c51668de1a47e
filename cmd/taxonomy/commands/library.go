package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/underthemoss/construction-taxonomy/display"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/logger"
	"github.com/underthemoss/construction-taxonomy/store"
	"github.com/underthemoss/construction-taxonomy/watch"
)

// ConsolidateCmd rebuilds the consolidated view
var ConsolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Rebuild the consolidated view from the attribute files",
	Args:  cobra.NoArgs,
	RunE:  runConsolidate,
}

// ValidateCmd checks the library without writing
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every attribute file and the consolidated view",
	Long: `Check every attribute file against the record schema and compare the
consolidated view with the hierarchy. Exits non-zero when anything is wrong.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

// MigrateCmd converts a flat legacy library into the hierarchy
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Convert a flat legacy attributes file into the hierarchy",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

// WatchCmd keeps the consolidated view in step with the attribute files
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the consolidated view whenever attribute files change",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	e, _, err := newEngine(cmd)
	if err != nil {
		return err
	}
	res, err := e.Store().Consolidate()
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), res)
	}
	if res.Changed {
		pterm.Success.Printfln("%s rebuilt (%d records)", res.Path, res.Records)
	} else {
		pterm.Info.Printfln("%s already current (%d records)", res.Path, res.Records)
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	e, _, err := newEngine(cmd)
	if err != nil {
		return err
	}
	report, err := e.Store().Verify()
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		if err := display.OutputJSON(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	} else {
		printVerify(cmd, report)
	}
	if !report.OK() {
		return errors.WithHint(
			errors.Mark(errors.Newf("library has %d problem(s)", problemCount(report)), errors.ErrInvalid),
			"fix the listed files, then run 'taxonomy consolidate'",
		)
	}
	return nil
}

func problemCount(r *store.VerifyReport) int {
	n := len(r.Missing) + len(r.Extra) + len(r.Stale) + len(r.Problems)
	if r.ViewErr != "" {
		n++
	}
	return n
}

func printVerify(cmd *cobra.Command, r *store.VerifyReport) {
	if r.OK() {
		pterm.Success.Printfln("%d records, consolidated view current", r.Records)
		return
	}
	if len(r.Problems) > 0 {
		rows := make([][]string, 0, len(r.Problems))
		for _, p := range r.Problems {
			rows = append(rows, []string{p.Path, string(p.Kind), p.Detail})
		}
		_ = display.Table(cmd.OutOrStdout(), []string{"File", "Problem", "Detail"}, rows)
	}
	for _, code := range r.Missing {
		pterm.Error.Printfln("%s missing from the consolidated view", code)
	}
	for _, code := range r.Extra {
		pterm.Error.Printfln("%s in the consolidated view but not in the hierarchy", code)
	}
	for _, code := range r.Stale {
		pterm.Error.Printfln("%s differs in the consolidated view", code)
	}
	if r.ViewErr != "" {
		pterm.Error.Println(r.ViewErr)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	e, _, err := newEngine(cmd)
	if err != nil {
		return err
	}
	res, err := e.Migrate(cmd.Context())
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), res)
	}
	for _, p := range res.Skipped {
		pterm.Warning.Printfln("skipped %s: %s", p.Code, p.Detail)
	}
	pterm.Success.Printfln("migrated %d attribute(s); legacy file kept at %s", len(res.Migrated), res.Backup)
	if res.Commit != nil {
		pterm.Info.Printfln("library %s", res.Commit.Version)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, _, err := newEngine(cmd)
	if err != nil {
		return err
	}
	w, err := watch.New(e.Store(), watch.WithLogger(logger.OrNop(logger.Logger).Named("watch")))
	if err != nil {
		return err
	}
	useJSON := display.ShouldOutputJSON(cmd)
	w.OnConsolidate(func(res *store.ConsolidateResult, err error) {
		switch {
		case err != nil:
			pterm.Error.Printfln("consolidate: %v", err)
		case useJSON:
			_ = display.OutputJSON(cmd.OutOrStdout(), res)
		case res.Changed:
			pterm.Success.Printfln("%s rebuilt (%d records)", res.Path, res.Records)
		}
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if !useJSON {
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", e.Store().Dir())
	}
	return w.Run(ctx)
}
