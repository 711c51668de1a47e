package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/internal/fsutil"
	"github.com/underthemoss/construction-taxonomy/internal/testutil"
)

func boomType() attribute.Record {
	return attribute.Record{
		Code: "boom_type", Name: "Boom Type", Type: attribute.String,
		Category: attribute.Brand, Subcategory: attribute.Specifications,
		AddedDate: "2025-02-01", LastModified: "2025-02-01",
	}
}

func TestCommit(t *testing.T) {
	root := testutil.NewLibrary(t)
	testutil.WriteRecord(t, root, testutil.Weight())
	s := New(root)
	_, err := s.Consolidate()
	require.NoError(t, err)

	tx, err := s.Begin()
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID())
	require.NoError(t, tx.Put(testutil.Length()))
	require.NoError(t, tx.Put(boomType()))
	assert.Len(t, tx.Staged(), 2)

	res, err := tx.Commit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, tx.ID(), res.BatchID)
	assert.Equal(t, []string{
		"attributes/physics/dimensions/length.json",
		"attributes/brand/specifications/boom_type.json",
	}, res.Written)
	assert.Equal(t, "0.1.0", res.Version)
	assert.Equal(t, "0.1.0\n", testutil.ReadFile(t, s.VersionPath()))
	require.NotNil(t, res.Consolidated)
	assert.True(t, res.Consolidated.Changed)
	assert.Equal(t, 3, res.Consolidated.Records)

	view, err := s.ReadConsolidated()
	require.NoError(t, err)
	assert.Equal(t, boomType().Reduce(), view.Attributes["boom_type"])

	// the previous view was kept as a backup
	_, err = os.Stat(fsutil.BackupName(s.ConsolidatedPath(), 1))
	assert.NoError(t, err)

	report, err := s.Verify()
	require.NoError(t, err)
	assert.True(t, report.OK())
}

func TestCommitBumpsExistingVersion(t *testing.T) {
	root := testutil.NewLibrary(t)
	s := New(root)
	testutil.WriteFile(t, s.VersionPath(), "1.4.2\n")

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Put(testutil.Weight()))
	res, err := tx.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", res.Version)
}

func TestCommitEmptyBatch(t *testing.T) {
	root := testutil.NewLibrary(t)
	s := New(root)

	tx, err := s.Begin()
	require.NoError(t, err)
	res, err := tx.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", res.Version)
	assert.Empty(t, res.Written)

	_, err = os.Stat(s.VersionPath())
	assert.True(t, os.IsNotExist(err))
}

func TestPutRejects(t *testing.T) {
	root := testutil.NewLibrary(t)
	testutil.WriteRecord(t, root, testutil.Weight())

	tx, err := New(root).Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Put(boomType()))

	branded := testutil.EngineModel()
	branded.Unit = "kg"
	badCode := testutil.Length()
	badCode.Code = "Overall Length"

	tests := []struct {
		name     string
		rec      attribute.Record
		invalid  bool
		conflict bool
	}{
		{"brand with unit", branded, true, false},
		{"code not snake case", badCode, true, false},
		{"code in library", testutil.Weight(), false, true},
		{"code already staged", boomType(), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tx.Put(tt.rec)
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.IsInvalid(err))
			assert.Equal(t, tt.conflict, errors.Is(err, errors.ErrConflict))
		})
	}
	assert.Len(t, tx.Staged(), 1)
}

func TestBeginRefusesBrokenLibrary(t *testing.T) {
	root := testutil.NewLibrary(t)
	testutil.WriteFile(t, filepath.Join(root, "attributes", "physics", "mass", "broken.json"), `{`)

	_, err := New(root).Begin()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestCommitRollsBackOnHookFailure(t *testing.T) {
	root := testutil.NewLibrary(t)
	testutil.WriteRecord(t, root, testutil.Weight())

	var seen *Library
	hook := func(ctx context.Context, lib *Library) error {
		seen = lib
		return errors.New("downstream check failed")
	}
	s := New(root, WithVerifyHook(hook))
	_, err := s.Consolidate()
	require.NoError(t, err)
	before := testutil.ReadFile(t, s.ConsolidatedPath())

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Put(testutil.Length()))
	require.NoError(t, tx.Put(boomType()))

	_, err = tx.Commit(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsRolledBack(err))
	assert.Contains(t, err.Error(), "downstream check failed")

	// the hook saw the library with the batch applied
	require.NotNil(t, seen)
	assert.Contains(t, seen.Records, "boom_type")

	// the library is back to its state before the batch
	for _, rec := range []attribute.Record{testutil.Length(), boomType()} {
		_, statErr := os.Stat(s.RecordPath(rec))
		assert.True(t, os.IsNotExist(statErr), rec.Code)
	}
	_, statErr := os.Stat(filepath.Join(s.Dir(), "brand", "specifications"))
	assert.True(t, os.IsNotExist(statErr), "empty subcategory directory removed")
	assert.Equal(t, before, testutil.ReadFile(t, s.ConsolidatedPath()))
	_, statErr = os.Stat(s.VersionPath())
	assert.True(t, os.IsNotExist(statErr))

	lib, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"weight"}, lib.Codes())
}

func TestCommitRollsBackWithoutPreviousView(t *testing.T) {
	root := testutil.NewLibrary(t)
	s := New(root, WithVerifyHook(func(context.Context, *Library) error {
		return errors.New("no")
	}))

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Put(testutil.Weight()))
	_, err = tx.Commit(context.Background())
	require.True(t, errors.IsRolledBack(err))

	_, statErr := os.Stat(s.ConsolidatedPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestCommitDetectsConcurrentWrite(t *testing.T) {
	root := testutil.NewLibrary(t)
	s := New(root)

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Put(testutil.Weight()))

	// another writer files the same record after the snapshot
	testutil.WriteRecord(t, root, testutil.Weight())

	_, err = tx.Commit(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.False(t, errors.IsRolledBack(err))
}

func TestCommitCanceled(t *testing.T) {
	root := testutil.NewLibrary(t)
	s := New(root)

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Put(testutil.Weight()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tx.Commit(ctx)
	require.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(s.RecordPath(testutil.Weight()))
	assert.True(t, os.IsNotExist(statErr))
}

func TestTxFinished(t *testing.T) {
	root := testutil.NewLibrary(t)
	tx, err := New(root).Begin()
	require.NoError(t, err)

	tx.Rollback()
	assert.Error(t, tx.Put(testutil.Weight()))
	_, err = tx.Commit(context.Background())
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	root := testutil.NewLibrary(t)
	s := New(root)

	v, err := s.Version()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0", v.String())

	testutil.WriteFile(t, s.VersionPath(), "not-a-version\n")
	_, err = s.Version()
	assert.Error(t, err)
}
