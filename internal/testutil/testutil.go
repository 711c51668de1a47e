// Package testutil builds throwaway attribute libraries for tests
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/underthemoss/construction-taxonomy/attribute"
)

// NewLibrary creates a temporary repository root with an empty attributes
// layout. The directory is removed when the test ends.
func NewLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"physics", "brand", "consolidated"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "attributes", dir), 0o755))
	}
	return root
}

// WriteRecord writes rec to its place in the hierarchy under root and
// returns the file path.
func WriteRecord(t *testing.T, root string, rec attribute.Record) string {
	t.Helper()
	data, err := json.MarshalIndent(rec, "", "  ")
	require.NoError(t, err)
	return WriteFile(t, filepath.Join(root, "attributes", filepath.FromSlash(rec.RelPath())), string(data)+"\n")
}

// WriteFile writes content to path, creating parent directories
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ReadFile returns the content of path, failing the test if it is unreadable
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// Weight is a valid physics record
func Weight() attribute.Record {
	return attribute.Record{
		Code: "weight", Name: "Weight", Type: attribute.Number,
		Category: attribute.Physics, Subcategory: attribute.Mass, Unit: "kg",
		AddedDate: "2025-01-15", LastModified: "2025-01-15",
	}
}

// EngineModel is a valid brand record
func EngineModel() attribute.Record {
	return attribute.Record{
		Code: "engine_model", Name: "Engine Model", Type: attribute.String,
		Category: attribute.Brand, Subcategory: attribute.Identification,
		AddedDate: "2025-01-15", LastModified: "2025-01-15",
	}
}

// Length is a valid physics record in the dimensions subcategory
func Length() attribute.Record {
	return attribute.Record{
		Code: "length", Name: "Length", Type: attribute.Number,
		Category: attribute.Physics, Subcategory: attribute.Dimensions, Unit: "m",
		AddedDate: "2025-01-15", LastModified: "2025-01-15",
	}
}
