package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/underthemoss/construction-taxonomy/errors"
	"github.com/underthemoss/construction-taxonomy/internal/testutil"
)

func TestConsolidateRoundTrip(t *testing.T) {
	root := testutil.NewLibrary(t)
	testutil.WriteRecord(t, root, testutil.Weight())
	testutil.WriteRecord(t, root, testutil.EngineModel())
	testutil.WriteRecord(t, root, testutil.Length())
	s := New(root)

	first, err := s.Consolidate()
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Equal(t, 3, first.Records)
	firstBytes := testutil.ReadFile(t, s.ConsolidatedPath())

	second, err := s.Consolidate()
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, firstBytes, testutil.ReadFile(t, s.ConsolidatedPath()))

	assert.JSONEq(t, `{"attributes":{
		"engine_model":{"name":"Engine Model","type":"string","category":"brand"},
		"length":{"name":"Length","type":"number","category":"physics","unit":"m"},
		"weight":{"name":"Weight","type":"number","category":"physics","unit":"kg"}
	}}`, firstBytes)
}

func TestConsolidateIgnoresTraversalOrder(t *testing.T) {
	a := testutil.NewLibrary(t)
	testutil.WriteRecord(t, a, testutil.Weight())
	testutil.WriteRecord(t, a, testutil.EngineModel())
	testutil.WriteRecord(t, a, testutil.Length())

	b := testutil.NewLibrary(t)
	testutil.WriteRecord(t, b, testutil.Length())
	testutil.WriteRecord(t, b, testutil.EngineModel())
	testutil.WriteRecord(t, b, testutil.Weight())

	_, err := New(a).Consolidate()
	require.NoError(t, err)
	_, err = New(b).Consolidate()
	require.NoError(t, err)

	assert.Equal(t,
		testutil.ReadFile(t, New(a).ConsolidatedPath()),
		testutil.ReadFile(t, New(b).ConsolidatedPath()))
}

func TestConsolidateRefusesBrokenLibrary(t *testing.T) {
	root := testutil.NewLibrary(t)
	testutil.WriteFile(t, filepath.Join(root, "attributes", "brand", "general", "x.json"),
		`{"code":"x","category":"brand","unit":"kg"}`)

	_, err := New(root).Consolidate()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	_, statErr := os.Stat(New(root).ConsolidatedPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestVerify(t *testing.T) {
	root := testutil.NewLibrary(t)
	testutil.WriteRecord(t, root, testutil.Weight())
	testutil.WriteRecord(t, root, testutil.EngineModel())
	s := New(root)

	report, err := s.Verify()
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.NotEmpty(t, report.ViewErr, "no consolidated view yet")

	_, err = s.Consolidate()
	require.NoError(t, err)
	report, err = s.Verify()
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 2, report.Records)

	// hierarchy changes without consolidation
	testutil.WriteRecord(t, root, testutil.Length())
	renamed := testutil.Weight()
	renamed.Name = "Machine Weight"
	testutil.WriteRecord(t, root, renamed)
	require.NoError(t, os.Remove(filepath.Join(root, "attributes", "brand", "identification", "engine_model.json")))

	report, err = s.Verify()
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Equal(t, []string{"length"}, report.Missing)
	assert.Equal(t, []string{"weight"}, report.Stale)
	assert.Equal(t, []string{"engine_model"}, report.Extra)
}

func TestVerifyRejectsMalformedView(t *testing.T) {
	root := testutil.NewLibrary(t)
	testutil.WriteRecord(t, root, testutil.Weight())
	s := New(root)
	testutil.WriteFile(t, s.ConsolidatedPath(),
		`{"attributes":{"weight":{"name":"Weight","type":"number","category":"physics","unit":"kg","subcategory":"mass"}}}`)

	report, err := s.Verify()
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Contains(t, report.ViewErr, "unknown field")
}

func TestReadConsolidatedMissing(t *testing.T) {
	_, err := New(t.TempDir()).ReadConsolidated()
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
