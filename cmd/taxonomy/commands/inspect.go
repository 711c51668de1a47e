package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/display"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/source"
)

// ExtractCmd lists the raw candidates found in documents
var ExtractCmd = &cobra.Command{
	Use:   "extract <file>...",
	Short: "Show the label/value pairs found in documents",
	Long: `Read text, Markdown or HTML documents and list every label/value pair the
extractor recognises, with the primary and alternate quantities parsed from
each value. Nothing is classified or written.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

// ClassifyCmd explains the classification of one name/value pair
var ClassifyCmd = &cobra.Command{
	Use:   "classify <name> <value>",
	Short: "Classify a raw attribute as physics or brand",
	Args:  cobra.ExactArgs(2),
	RunE:  runClassify,
}

// NormalizeCmd shows the canonical identity of a physics attribute name
var NormalizeCmd = &cobra.Command{
	Use:   "normalize <name>",
	Short: "Normalize a physics attribute name to its canonical code",
	Args:  cobra.ExactArgs(1),
	RunE:  runNormalize,
}

func runExtract(cmd *cobra.Command, args []string) error {
	e, _, err := newEngine(cmd)
	if err != nil {
		return err
	}

	var cands []attribute.Candidate
	for _, path := range args {
		doc, err := e.Loader().LoadFile(path)
		if err != nil {
			return err
		}
		if doc.Kind == source.KindExamples {
			pterm.Warning.Printfln("%s holds product examples; use `taxonomy analyze` for those", path)
			continue
		}
		for c := range e.Extractor().Extract(doc.Text, doc.Ref) {
			cands = append(cands, c)
		}
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), cands)
	}
	rows := make([][]string, 0, len(cands))
	for _, c := range cands {
		rows = append(rows, []string{c.RawName, c.RawValue, quantity(c.Primary), quantity(c.Alt), string(c.Type)})
	}
	pterm.Info.Printfln("%d candidate(s)", len(cands))
	return display.Table(cmd.OutOrStdout(), []string{"Label", "Value", "Primary", "Alternate", "Type"}, rows)
}

func quantity(q *attribute.Quantity) string {
	if q == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%g %s", q.Value, q.Unit))
}

func runClassify(cmd *cobra.Command, args []string) error {
	e, _, err := newEngine(cmd)
	if err != nil {
		return err
	}

	d := e.Classifier().Decide(args[0], args[1])
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), d)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (rule %s)\n", d.Category, d.Rule)
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	e, _, err := newEngine(cmd)
	if err != nil {
		return err
	}

	r := e.Normalizer().Normalize(args[0])
	if r.Code == "" {
		return errors.NewInvalidf("%q has no letters or digits to normalize", args[0])
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), r)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Code:        %s\n", r.Code)
	fmt.Fprintf(out, "Label:       %s\n", r.Label)
	fmt.Fprintf(out, "Subcategory: %s\n", r.Subcategory)
	if r.Unit != "" {
		fmt.Fprintf(out, "Unit:        %s\n", r.Unit)
	}
	if len(r.Stripped) > 0 {
		fmt.Fprintf(out, "Stripped:    %s\n", strings.Join(r.Stripped, ", "))
	}
	if !r.Concept {
		pterm.Warning.Println("no canonical concept matched; the cleaned name is kept")
	}
	return nil
}
