package store

import (
	"bytes"
	"encoding/json"
	"maps"
	"os"
	"slices"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/internal/fsutil"
	"github.com/underthemoss/construction-taxonomy/logger"
)

// Consolidated is the shape of the consolidated view file
type Consolidated struct {
	Attributes map[string]attribute.Reduced `json:"attributes"`
}

// RenderConsolidated serializes the consolidated view of lib. Map keys are
// sorted by encoding/json, so the output depends only on the records and
// never on directory traversal order.
func RenderConsolidated(lib *Library) ([]byte, error) {
	data, err := json.MarshalIndent(Consolidated{Attributes: lib.Reduced()}, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode consolidated view")
	}
	return append(data, '\n'), nil
}

// ConsolidateResult describes a consolidation run
type ConsolidateResult struct {
	Path    string `json:"path"`
	Records int    `json:"records"`
	Changed bool   `json:"changed"`
}

// Consolidate rebuilds the consolidated view from the hierarchical files.
// The file is only rewritten when its content changes. A library with
// problems is not consolidated.
func (s *Store) Consolidate() (*ConsolidateResult, error) {
	lib, err := s.Load()
	if err != nil {
		return nil, err
	}
	if err := lib.Err(); err != nil {
		return nil, errors.Wrap(err, "consolidate")
	}
	return s.writeConsolidated(lib)
}

func (s *Store) writeConsolidated(lib *Library) (*ConsolidateResult, error) {
	data, err := RenderConsolidated(lib)
	if err != nil {
		return nil, err
	}

	path := s.ConsolidatedPath()
	res := &ConsolidateResult{Path: s.Rel(path), Records: len(lib.Records)}

	current, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if err == nil && bytes.Equal(current, data) {
		return res, nil
	}

	if err := fsutil.WriteAtomic(path, data, 0o644); err != nil {
		return nil, err
	}
	res.Changed = true
	s.log.Infow("consolidated view rebuilt",
		logger.FieldPath, res.Path,
		logger.FieldCount, res.Records)
	return res, nil
}

// ReadConsolidated decodes the on-disk consolidated view. Every entry is
// checked against the reduced schema.
func (s *Store) ReadConsolidated() (*Consolidated, error) {
	path := s.ConsolidatedPath()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Mark(errors.Newf("%s does not exist", s.Rel(path)), errors.ErrNotFound)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return decodeConsolidated(data, s.Rel(path))
}

func decodeConsolidated(data []byte, name string) (*Consolidated, error) {
	var raw struct {
		Attributes map[string]map[string]any `json:"attributes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parse %s", name), errors.ErrInvalid)
	}
	var errs []error
	for _, code := range slices.Sorted(maps.Keys(raw.Attributes)) {
		if err := attribute.ValidateRaw(raw.Attributes[code], attribute.ReducedSchema); err != nil {
			errs = append(errs, errors.Wrapf(err, "%s", code))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Mark(errors.Wrapf(errors.Join(errs...), "%s", name), errors.ErrInvalid)
	}

	var out Consolidated
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	if out.Attributes == nil {
		out.Attributes = make(map[string]attribute.Reduced)
	}
	return &out, nil
}

// VerifyReport compares the consolidated view on disk with the one the
// hierarchical files produce.
type VerifyReport struct {
	Records  int       `json:"records"`
	Missing  []string  `json:"missing,omitempty"` // in the hierarchy, absent from the view
	Extra    []string  `json:"extra,omitempty"`   // in the view, absent from the hierarchy
	Stale    []string  `json:"stale,omitempty"`   // present in both with different content
	Problems []Problem `json:"problems,omitempty"`
	ViewErr  string    `json:"view_error,omitempty"`
}

// OK reports whether the store is consistent
func (r *VerifyReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0 && len(r.Stale) == 0 &&
		len(r.Problems) == 0 && r.ViewErr == ""
}

// Verify checks every record file against the schema and the consolidated
// view against the hierarchy. It never writes.
func (s *Store) Verify() (*VerifyReport, error) {
	lib, err := s.Load()
	if err != nil {
		return nil, err
	}
	report := &VerifyReport{Records: len(lib.Records), Problems: lib.Problems}

	view, err := s.ReadConsolidated()
	switch {
	case errors.Is(err, errors.ErrNotFound), errors.IsInvalid(err):
		report.ViewErr = err.Error()
		return report, nil
	case err != nil:
		return nil, err
	}

	want := lib.Reduced()
	for _, code := range lib.Codes() {
		got, ok := view.Attributes[code]
		switch {
		case !ok:
			report.Missing = append(report.Missing, code)
		case got != want[code]:
			report.Stale = append(report.Stale, code)
		}
	}
	for _, code := range slices.Sorted(maps.Keys(view.Attributes)) {
		if _, ok := want[code]; !ok {
			report.Extra = append(report.Extra, code)
		}
	}
	return report, nil
}
