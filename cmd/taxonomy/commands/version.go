package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/underthemoss/construction-taxonomy/display"
	"github.com/underthemoss/construction-taxonomy/version"
)

// VersionCmd prints build information and, when a library is configured,
// its version
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if e, _, err := newEngine(cmd); err == nil {
			if v, err := e.Store().Version(); err == nil {
				info.LibraryVersion = v.String()
			}
		}
		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(cmd.OutOrStdout(), info)
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		return nil
	},
}
