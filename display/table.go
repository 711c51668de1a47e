package display

import (
	"io"

	"github.com/pterm/pterm"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/merge"
)

// Table writes rows under a header as an aligned table. An empty row set
// prints nothing.
func Table(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	data := pterm.TableData{header}
	data = append(data, rows...)
	return pterm.DefaultTable.
		WithHasHeader().
		WithData(data).
		WithWriter(w).
		Render()
}

// RecordRows renders records as table rows
func RecordRows(recs []attribute.Record) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{r.Code, r.Name, string(r.Type), string(r.Category) + "/" + string(r.Subcategory), r.Unit})
	}
	return rows
}

// RecordHeader is the header matching RecordRows
var RecordHeader = []string{"Code", "Name", "Type", "Placement", "Unit"}

// CandidateRows renders candidates as table rows
func CandidateRows(cands []attribute.Candidate) [][]string {
	rows := make([][]string, 0, len(cands))
	for _, c := range cands {
		placement := string(c.Category)
		if c.Subcategory != "" {
			placement += "/" + string(c.Subcategory)
		}
		rows = append(rows, []string{c.RawName, c.Code, placement, c.Unit, c.Rule, c.RawValue})
	}
	return rows
}

// CandidateHeader is the header matching CandidateRows
var CandidateHeader = []string{"Raw name", "Code", "Placement", "Unit", "Rule", "Sample value"}

// RejectionRows renders rejections as table rows
func RejectionRows(rejs []merge.Rejection) [][]string {
	rows := make([][]string, 0, len(rejs))
	for _, r := range rejs {
		detail := r.Detail
		if r.Conflict != "" {
			detail = "conflicts with " + r.Conflict
		}
		rows = append(rows, []string{r.Code, r.Name, string(r.Reason), detail})
	}
	return rows
}

// RejectionHeader is the header matching RejectionRows
var RejectionHeader = []string{"Code", "Name", "Reason", "Detail"}
