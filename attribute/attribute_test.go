package attribute

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/underthemoss/construction-taxonomy/errors"
)

func TestBrandRecordWithUnitIsRejected(t *testing.T) {
	raw := map[string]any{"code": "x", "category": "brand", "unit": "kg"}

	err := ValidateRaw(raw, FileSchema)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	verrs, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.True(t, verrs.Has("unit"))
	assert.Contains(t, err.Error(), "unit not allowed on brand")
}

func TestValidateRaw(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]any
		schema    Schema
		badFields []string
	}{
		{
			name:   "valid physics file",
			raw:    map[string]any{"code": "weight", "name": "Weight", "type": "number", "category": "physics", "subcategory": "mass", "unit": "kg", "added_date": "2025-05-01", "last_modified": "2025-05-01"},
			schema: FileSchema,
		},
		{
			name:   "valid reduced entry",
			raw:    map[string]any{"name": "Engine Model", "type": "string", "category": "brand"},
			schema: ReducedSchema,
		},
		{
			name:      "missing required fields",
			raw:       map[string]any{"name": "Weight"},
			schema:    ReducedSchema,
			badFields: []string{"type", "category"},
		},
		{
			name:      "unknown property",
			raw:       map[string]any{"name": "Weight", "type": "number", "category": "physics", "color": "red"},
			schema:    ReducedSchema,
			badFields: []string{"color"},
		},
		{
			name:      "subcategory is not part of the reduced view",
			raw:       map[string]any{"name": "Weight", "type": "number", "category": "physics", "subcategory": "mass"},
			schema:    ReducedSchema,
			badFields: []string{"subcategory"},
		},
		{
			name:      "disallowed enum values",
			raw:       map[string]any{"name": "Weight", "type": "float", "category": "chemistry"},
			schema:    ReducedSchema,
			badFields: []string{"type", "category"},
		},
		{
			name:      "wrong value type",
			raw:       map[string]any{"name": 12.0, "type": "number", "category": "physics"},
			schema:    ReducedSchema,
			badFields: []string{"name"},
		},
		{
			name:      "subcategory from the other category",
			raw:       map[string]any{"code": "engine_model", "name": "Engine Model", "type": "string", "category": "brand", "subcategory": "mass"},
			schema:    FileSchema,
			badFields: []string{"subcategory"},
		},
		{
			name:      "malformed code and date",
			raw:       map[string]any{"code": "Engine Model", "name": "Engine Model", "type": "string", "category": "brand", "added_date": "May 1"},
			schema:    FileSchema,
			badFields: []string{"code", "added_date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRaw(tt.raw, tt.schema)
			if len(tt.badFields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			verrs, ok := AsValidationErrors(err)
			require.True(t, ok)
			assert.Len(t, verrs, len(tt.badFields))
			for _, field := range tt.badFields {
				assert.True(t, verrs.Has(field), "expected violation on %s, got %v", field, verrs)
			}
		})
	}
}

func TestValidateRecord(t *testing.T) {
	valid := Record{
		Code: "weight", Name: "Weight", Type: Number,
		Category: Physics, Subcategory: Mass, Unit: "kg",
		AddedDate: "2025-05-01", LastModified: "2025-05-01",
	}
	require.NoError(t, valid.Validate())

	noSub := valid
	noSub.Subcategory = ""
	assert.True(t, errors.IsInvalid(ValidateRecord(noSub)))

	brandUnit := valid
	brandUnit.Category = Brand
	brandUnit.Subcategory = Identification
	err := ValidateRecord(brandUnit)
	verrs, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.True(t, verrs.Has("unit"))

	noCode := valid
	noCode.Code = ""
	assert.Error(t, ValidateRecord(noCode))
}

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord([]byte(`{"code":"engine_model","name":"Engine Model","type":"string","category":"brand","subcategory":"identification"}`))
	require.NoError(t, err)
	assert.Equal(t, "engine_model", rec.Code)
	assert.Equal(t, Identification, rec.Subcategory)

	_, err = DecodeRecord([]byte(`{"code":`))
	assert.True(t, errors.IsInvalid(err))

	_, err = DecodeRecord([]byte(`{"code":"x","category":"brand","unit":"kg"}`))
	assert.True(t, errors.IsInvalid(err))
}

func TestReduceAndRelPath(t *testing.T) {
	rec := Record{
		Code: "length", Name: "Length", Type: Number, Category: Physics,
		Subcategory: Dimensions, Unit: "m", AddedDate: "2025-05-01", LastModified: "2025-05-02",
	}

	assert.Equal(t, "physics/dimensions/length.json", rec.RelPath())

	data, err := json.Marshal(rec.Reduce())
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Length","type":"number","category":"physics","unit":"m"}`, string(data))
}

func TestCandidateSets(t *testing.T) {
	var c Candidate
	c.AddSource("b.txt")
	c.AddSource("a.txt")
	c.AddSource("b.txt")
	c.AddSource("")
	c.AddManufacturer("JLG")
	c.AddManufacturer("Caterpillar")

	assert.Equal(t, []string{"a.txt", "b.txt"}, c.SourceRefs)
	assert.Equal(t, []string{"Caterpillar", "JLG"}, c.Manufacturers)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Operating Weight", Candidate{RawName: "  Operating Weight "}.DisplayName())
	assert.Equal(t, "Weight", Candidate{RawName: "Operating Weight", Name: "Weight"}.DisplayName())
}

func TestRawKey(t *testing.T) {
	assert.Equal(t, "max_dig_depth", RawKey("Max. Dig Depth"))
	assert.Equal(t, "engine_model", RawKey("  Engine-Model: "))
	assert.Equal(t, "рабочая_масса", RawKey("Рабочая масса:"))
	assert.Equal(t, "größe", RawKey("Größe"))
	assert.Equal(t, "", RawKey(" *** "))
}

func TestSubcategories(t *testing.T) {
	assert.True(t, Physics.Allows(Mass))
	assert.False(t, Brand.Allows(Mass))
	assert.True(t, Brand.Allows(General))
	assert.Len(t, Subcategories(Physics), 12)
	assert.Equal(t, "2025-05-01", Date(time.Date(2025, 5, 1, 23, 0, 0, 0, time.UTC)))
}
