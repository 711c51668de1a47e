package store

import (
	"context"
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/internal/fsutil"
	"github.com/underthemoss/construction-taxonomy/logger"
)

// LegacyFile is the flat library file that predates the hierarchical layout
const LegacyFile = "consolidated_attributes.json"

// SubcategoryFunc files a legacy entry that carries no subcategory
type SubcategoryFunc func(code string, r attribute.Reduced) attribute.Subcategory

// MigrateResult describes a migration
type MigrateResult struct {
	Migrated []string      `json:"migrated"`
	Skipped  []Problem     `json:"skipped,omitempty"`
	Backup   string        `json:"backup"`
	Commit   *CommitResult `json:"commit,omitempty"`
}

// LegacyPath is the path of the flat legacy library
func (s *Store) LegacyPath() string {
	return filepath.Join(s.Dir(), LegacyFile)
}

// Migrate converts attributes/consolidated_attributes.json into per-record
// files. Entries default to category physics and type string when those
// fields are absent; a unit on a brand entry is dropped. Entries that still
// fail validation, or whose code already exists, are skipped and reported.
// The legacy file is copied under attributes/backup/ and removed once the
// batch commits.
func (s *Store) Migrate(ctx context.Context, subcategoryOf SubcategoryFunc, today time.Time) (*MigrateResult, error) {
	legacy := s.LegacyPath()
	data, err := os.ReadFile(legacy)
	if os.IsNotExist(err) {
		return nil, errors.WithHint(
			errors.Mark(errors.Newf("%s does not exist", s.Rel(legacy)), errors.ErrNotFound),
			"the library is already hierarchical",
		)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", legacy)
	}

	var flat struct {
		Attributes map[string]map[string]any `json:"attributes"`
	}
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parse %s", s.Rel(legacy)), errors.ErrInvalid)
	}

	tx, err := s.Begin()
	if err != nil {
		return nil, err
	}

	res := &MigrateResult{}
	date := attribute.Date(today)
	for _, code := range slices.Sorted(maps.Keys(flat.Attributes)) {
		rec := legacyRecord(code, flat.Attributes[code], date)
		if rec.Category == attribute.Brand && rec.Unit != "" {
			s.log.Warnw("dropping unit from brand attribute",
				logger.FieldCode, code,
				logger.FieldUnit, rec.Unit)
			rec.Unit = ""
		}
		rec.Subcategory = subcategoryOf(code, rec.Reduce())

		if err := tx.Put(rec); err != nil {
			s.log.Warnw("legacy attribute skipped",
				logger.FieldCode, code,
				logger.FieldError, err)
			res.Skipped = append(res.Skipped, Problem{Path: s.Rel(legacy), Code: code, Kind: problemKindOf(err), Detail: err.Error()})
			continue
		}
		res.Migrated = append(res.Migrated, code)
	}

	stamp := s.now().UTC().Format("20060102-150405")
	backup := filepath.Join(s.Dir(), BackupDir, "consolidated_attributes-"+stamp+".json")
	if err := fsutil.CopyFile(legacy, backup); err != nil {
		tx.Rollback()
		return nil, errors.Wrap(err, "back up legacy library")
	}
	res.Backup = s.Rel(backup)

	commit, err := tx.Commit(ctx)
	if err != nil {
		return nil, err
	}
	res.Commit = commit

	if err := os.Remove(legacy); err != nil {
		return res, errors.Wrapf(err, "remove %s", legacy)
	}
	s.log.Infow("legacy library migrated",
		logger.FieldCount, len(res.Migrated),
		logger.FieldPath, res.Backup)
	return res, nil
}

func legacyRecord(code string, raw map[string]any, date string) attribute.Record {
	str := func(key string) string {
		v, _ := raw[key].(string)
		return v
	}
	rec := attribute.Record{
		Code:         code,
		Name:         str("name"),
		Type:         attribute.Type(str("type")),
		Category:     attribute.Category(str("category")),
		Unit:         str("unit"),
		Description:  str("description"),
		AddedDate:    date,
		LastModified: date,
	}
	if rec.Category == "" {
		rec.Category = attribute.Physics
	}
	if rec.Type == "" {
		rec.Type = attribute.String
	}
	return rec
}

func problemKindOf(err error) ProblemKind {
	if errors.Is(err, errors.ErrConflict) {
		return ProblemConflict
	}
	return ProblemInvalid
}
