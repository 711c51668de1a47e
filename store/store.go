// Package store persists the attribute library as one JSON file per
// attribute under attributes/<category>/<subcategory>/<code>.json and keeps
// the flat consolidated view derived from it.
//
// The hierarchical files are the source of truth. The consolidated file is a
// cache that Consolidate can always rebuild.
package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/internal/fsutil"
	"github.com/underthemoss/construction-taxonomy/logger"
)

// Layout names, relative to the repository root
const (
	AttributesDir    = "attributes"
	ConsolidatedDir  = "consolidated"
	ConsolidatedFile = "consolidated_attributes.json"
	VersionFile      = "VERSION"
	BackupDir        = "backup"
)

// VerifyHook runs after a batch is written and the library revalidated.
// A non-nil error rolls the batch back.
type VerifyHook func(ctx context.Context, lib *Library) error

// Store reads and writes the library rooted at a repository directory
type Store struct {
	root string
	hook VerifyHook
	now  func() time.Time
	log  *zap.SugaredLogger
}

// Option configures a Store
type Option func(*Store)

// WithVerifyHook installs a hook run before a batch is accepted
func WithVerifyHook(h VerifyHook) Option {
	return func(s *Store) { s.hook = h }
}

// WithClock overrides the clock used for backup names
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store's logger
func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = logger.OrNop(log) }
}

// New creates a Store for the repository at root
func New(root string, opts ...Option) *Store {
	s := &Store{root: root, now: time.Now, log: logger.OrNop(nil)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root is the repository root
func (s *Store) Root() string { return s.root }

// Dir is the attributes directory
func (s *Store) Dir() string { return filepath.Join(s.root, AttributesDir) }

// ConsolidatedPath is the path of the consolidated view
func (s *Store) ConsolidatedPath() string {
	return filepath.Join(s.Dir(), ConsolidatedDir, ConsolidatedFile)
}

// VersionPath is the path of the library version file
func (s *Store) VersionPath() string { return filepath.Join(s.Dir(), VersionFile) }

// RecordPath is the path of rec's file
func (s *Store) RecordPath(rec attribute.Record) string {
	return filepath.Join(s.Dir(), filepath.FromSlash(rec.RelPath()))
}

// Rel returns path relative to the repository root, slash-separated
func (s *Store) Rel(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// ProblemKind classifies a library problem
type ProblemKind string

const (
	ProblemInvalid    ProblemKind = "invalid"
	ProblemConflict   ProblemKind = "conflict"
	ProblemMisplaced  ProblemKind = "misplaced"
	ProblemUnreadable ProblemKind = "unreadable"
)

// Problem is a record file that could not be admitted into the library
type Problem struct {
	Path   string      `json:"path"`
	Code   string      `json:"code,omitempty"`
	Kind   ProblemKind `json:"kind"`
	Detail string      `json:"detail"`
}

// Library is the decoded content of the hierarchical store
type Library struct {
	Records  map[string]attribute.Record `json:"records"`
	Paths    map[string]string           `json:"paths"` // code to file path
	Problems []Problem                   `json:"problems,omitempty"`
}

func newLibrary() *Library {
	return &Library{
		Records: make(map[string]attribute.Record),
		Paths:   make(map[string]string),
	}
}

// OK reports whether every record file was admitted
func (l *Library) OK() bool {
	return len(l.Problems) == 0
}

// Err summarizes the library's problems, nil when OK
func (l *Library) Err() error {
	if l.OK() {
		return nil
	}
	msgs := make([]string, len(l.Problems))
	for i, p := range l.Problems {
		msgs[i] = string(p.Kind) + " " + p.Path + ": " + p.Detail
	}
	return errors.WithHint(
		errors.Mark(errors.Newf("library has %d problem(s): %s", len(l.Problems), strings.Join(msgs, "; ")), errors.ErrInvalid),
		"run `taxonomy validate` for the full list",
	)
}

// Codes returns every code in sorted order
func (l *Library) Codes() []string {
	codes := make([]string, 0, len(l.Records))
	for code := range l.Records {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Reduced projects the library onto the consolidated view
func (l *Library) Reduced() map[string]attribute.Reduced {
	out := make(map[string]attribute.Reduced, len(l.Records))
	for code, rec := range l.Records {
		out[code] = rec.Reduce()
	}
	return out
}

// Load scans every category and subcategory directory. Files that fail the
// schema, collide on code, or sit in the wrong directory are reported as
// problems and left out; only I/O failures on the directories are errors.
// A repository without an attributes directory loads as an empty library.
func (s *Store) Load() (*Library, error) {
	lib := newLibrary()
	for _, category := range attribute.Categories {
		catDir := filepath.Join(s.Dir(), string(category))
		subdirs, err := os.ReadDir(catDir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", catDir)
		}

		for _, sub := range subdirs {
			if !sub.IsDir() {
				continue
			}
			subcategory := attribute.Subcategory(sub.Name())
			subDir := filepath.Join(catDir, sub.Name())
			if !category.Allows(subcategory) {
				lib.Problems = append(lib.Problems, Problem{
					Path: s.Rel(subDir), Kind: ProblemMisplaced,
					Detail: "unknown " + string(category) + " subcategory",
				})
				continue
			}
			if err := s.loadSubcategory(lib, category, subcategory, subDir); err != nil {
				return nil, err
			}
		}
	}
	return lib, nil
}

func (s *Store) loadSubcategory(lib *Library, category attribute.Category, subcategory attribute.Subcategory, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "read %s", dir)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || fsutil.IsTemp(name) {
			continue
		}
		path := filepath.Join(dir, name)
		rel := s.Rel(path)
		stem := strings.TrimSuffix(name, ".json")

		data, err := os.ReadFile(path)
		if err != nil {
			lib.Problems = append(lib.Problems, Problem{Path: rel, Code: stem, Kind: ProblemUnreadable, Detail: err.Error()})
			continue
		}
		rec, err := attribute.DecodeRecord(data)
		if err != nil {
			lib.Problems = append(lib.Problems, Problem{Path: rel, Code: stem, Kind: ProblemInvalid, Detail: err.Error()})
			continue
		}

		if rec.Code == "" {
			rec.Code = stem
		}
		if rec.Subcategory == "" {
			rec.Subcategory = subcategory
		}
		switch {
		case rec.Code != stem:
			lib.Problems = append(lib.Problems, Problem{Path: rel, Code: rec.Code, Kind: ProblemMisplaced, Detail: "file name does not match code"})
			continue
		case rec.Category != category || rec.Subcategory != subcategory:
			lib.Problems = append(lib.Problems, Problem{Path: rel, Code: rec.Code, Kind: ProblemMisplaced,
				Detail: "record is " + string(rec.Category) + "/" + string(rec.Subcategory)})
			continue
		}
		if err := rec.Validate(); err != nil {
			lib.Problems = append(lib.Problems, Problem{Path: rel, Code: rec.Code, Kind: ProblemInvalid, Detail: err.Error()})
			continue
		}
		if other, dup := lib.Paths[rec.Code]; dup {
			lib.Problems = append(lib.Problems, Problem{Path: rel, Code: rec.Code, Kind: ProblemConflict, Detail: "code already defined in " + other})
			continue
		}

		lib.Records[rec.Code] = rec
		lib.Paths[rec.Code] = rel
	}
	return nil
}

// encodeRecord renders a record file
func encodeRecord(rec attribute.Record) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", rec.Code)
	}
	return append(data, '\n'), nil
}
