package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/internal/fsutil"
	"github.com/underthemoss/construction-taxonomy/logger"
)

// Tx stages new records and commits them as one all-or-nothing batch
type Tx struct {
	s        *Store
	id       string
	snapshot *Library
	staged   []attribute.Record
	codes    map[string]bool
	done     bool
}

// CommitResult describes an accepted batch
type CommitResult struct {
	BatchID      string             `json:"batch_id"`
	Written      []string           `json:"written"`
	Version      string             `json:"version"`
	Consolidated *ConsolidateResult `json:"consolidated,omitempty"`
}

// Begin snapshots the library and opens a batch. A library that already has
// problems cannot take new records until it is repaired.
func (s *Store) Begin() (*Tx, error) {
	lib, err := s.Load()
	if err != nil {
		return nil, err
	}
	if err := lib.Err(); err != nil {
		return nil, errors.Wrap(err, "begin batch")
	}
	return &Tx{
		s:        s,
		id:       uuid.NewString(),
		snapshot: lib,
		codes:    make(map[string]bool),
	}, nil
}

// ID identifies the batch in logs and reports
func (tx *Tx) ID() string { return tx.id }

// Snapshot is the library as it was when the batch began
func (tx *Tx) Snapshot() *Library { return tx.snapshot }

// Staged returns the records staged so far
func (tx *Tx) Staged() []attribute.Record {
	return append([]attribute.Record(nil), tx.staged...)
}

// Put stages rec. It fails when rec is invalid or its code is taken by the
// snapshot or by an earlier staged record; nothing is staged in that case.
func (tx *Tx) Put(rec attribute.Record) error {
	if tx.done {
		return errors.New("batch already finished")
	}
	if err := tx.check(rec); err != nil {
		return err
	}
	tx.staged = append(tx.staged, rec)
	tx.codes[rec.Code] = true
	return nil
}

func (tx *Tx) check(rec attribute.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if _, ok := tx.snapshot.Records[rec.Code]; ok {
		return errors.NewConflictf("code %q already exists in %s", rec.Code, tx.snapshot.Paths[rec.Code])
	}
	if tx.codes[rec.Code] {
		return errors.NewConflictf("code %q staged twice", rec.Code)
	}
	return nil
}

// Rollback discards the staged records. Nothing has been written yet.
func (tx *Tx) Rollback() {
	tx.staged = nil
	tx.done = true
}

// Commit writes the batch. Every staged record is validated before anything
// is written; after writing, the whole library is reloaded and revalidated
// and the verify hook runs. If either fails, every written file is removed,
// the consolidated view is restored, and the returned error is marked
// errors.ErrRolledBack. An accepted batch bumps the minor library version
// and rebuilds the consolidated view.
func (tx *Tx) Commit(ctx context.Context) (*CommitResult, error) {
	if tx.done {
		return nil, errors.New("batch already finished")
	}
	tx.done = true
	s := tx.s
	log := s.log.With(logger.FieldBatchID, tx.id)

	// 1. validate every staged record against the snapshot
	seen := make(map[string]bool, len(tx.staged))
	for _, rec := range tx.staged {
		if err := rec.Validate(); err != nil {
			return nil, errors.Wrapf(err, "batch %s", tx.id)
		}
		if _, ok := tx.snapshot.Records[rec.Code]; ok || seen[rec.Code] {
			return nil, errors.NewConflictf("batch %s: code %q is not unique", tx.id, rec.Code)
		}
		seen[rec.Code] = true
		if _, err := os.Stat(s.RecordPath(rec)); err == nil {
			return nil, errors.NewConflictf("batch %s: %s appeared since the batch began", tx.id, s.Rel(s.RecordPath(rec)))
		}
	}

	res := &CommitResult{BatchID: tx.id}
	if len(tx.staged) == 0 {
		v, err := s.Version()
		if err != nil {
			return nil, err
		}
		res.Version = v.String()
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 2. keep the consolidated view for restore
	consolidatedPath := s.ConsolidatedPath()
	previous, err := os.ReadFile(consolidatedPath)
	hadPrevious := err == nil
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "read %s", consolidatedPath)
	}
	if err := fsutil.RotateBackups(consolidatedPath, fsutil.DefaultBackups); err != nil {
		return nil, errors.Wrap(err, "back up consolidated view")
	}

	var written []string
	rollback := func(cause error) error {
		log.Warnw("rolling back batch",
			logger.FieldCount, len(written),
			logger.FieldError, cause)
		var errs []error
		for _, path := range written {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				errs = append(errs, errors.Wrapf(err, "remove %s", path))
			}
			_ = os.Remove(filepath.Dir(path)) // only succeeds when empty
		}
		if hadPrevious {
			if err := fsutil.WriteAtomic(consolidatedPath, previous, 0o644); err != nil {
				errs = append(errs, err)
			}
		} else if err := os.Remove(consolidatedPath); err != nil && !os.IsNotExist(err) {
			errs = append(errs, errors.Wrapf(err, "remove %s", consolidatedPath))
		}

		out := errors.Wrapf(cause, "batch %s rolled back", tx.id)
		if len(errs) > 0 {
			out = errors.WithDetail(out, "rollback incomplete: "+errors.Join(errs...).Error())
		}
		return errors.Mark(out, errors.ErrRolledBack)
	}

	// 3. write each record file
	for _, rec := range tx.staged {
		if err := ctx.Err(); err != nil {
			return nil, rollback(err)
		}
		data, err := encodeRecord(rec)
		if err != nil {
			return nil, rollback(err)
		}
		path := s.RecordPath(rec)
		if err := fsutil.WriteAtomic(path, data, 0o644); err != nil {
			return nil, rollback(err)
		}
		written = append(written, path)
		res.Written = append(res.Written, s.Rel(path))
	}

	// 4. reload and revalidate the whole library, then the hook
	lib, err := s.Load()
	if err != nil {
		return nil, rollback(err)
	}
	if err := lib.Err(); err != nil {
		return nil, rollback(errors.Wrap(err, "revalidate library"))
	}
	for _, rec := range tx.staged {
		if got, ok := lib.Records[rec.Code]; !ok || got != rec {
			return nil, rollback(errors.Newf("record %s did not read back", rec.Code))
		}
	}
	if s.hook != nil {
		if err := s.hook(ctx, lib); err != nil {
			return nil, rollback(errors.Wrap(err, "verify hook"))
		}
	}

	// 5. the batch stands
	v, err := s.bumpVersion()
	if err != nil {
		return nil, rollback(err)
	}
	res.Version = v.String()

	cres, err := s.writeConsolidated(lib)
	if err != nil {
		// the records are valid and versioned; only the cache is stale
		return res, errors.WithHint(errors.Wrap(err, "rebuild consolidated view"),
			"run `taxonomy consolidate` to rebuild it")
	}
	res.Consolidated = cres

	log.Infow("batch committed",
		logger.FieldCount, len(res.Written),
		logger.FieldVersion, res.Version)
	return res, nil
}
