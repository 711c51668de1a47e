// Package display renders command results for people and for machines
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/underthemoss/construction-taxonomy/errors"
)

// EnvJSON forces JSON output when set to a non-empty value
const EnvJSON = "TAXONOMY_JSON"

// ShouldOutputJSON reports whether a command should print JSON: an explicit
// --json flag wins, then TAXONOMY_JSON.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd != nil {
		if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
			v, _ := cmd.Flags().GetBool("json")
			return v
		}
		if v, err := cmd.Root().PersistentFlags().GetBool("json"); err == nil && v {
			return true
		}
	}
	return os.Getenv(EnvJSON) != ""
}

// OutputJSON writes v to w as indented JSON followed by a newline
func OutputJSON(w io.Writer, v any) error {
	data, err := MarshalJSON(v, false)
	if err != nil {
		return errors.Wrap(err, "marshal JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
