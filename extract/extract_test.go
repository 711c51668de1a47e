package extract

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/underthemoss/construction-taxonomy/attribute"
)

const catalogPage = `Caterpillar 336 Hydraulic Excavator

* Maximum Dig Depth: 24 ft 1 in (7.34 m)
•  Operating Weight: 67,500 lb (30,600 kg)
Net Power: 204 hp (152 kW)
Engine Model: Cat C7.1 ACERT

| Swing Speed | 9.5 rpm |
|-------------|---------|
| Fuel Tank Capacity | 158 gal (600 L) |

* Id: 42
The: ignored
* 12V: starts with a digit
Website: https://www.cat.com
Free-form prose without any label at all.
`

func collect(t *testing.T, e *Extractor, text string) []attribute.Candidate {
	t.Helper()
	return slices.Collect(e.Extract(text, "cat-336.txt"))
}

func TestExtractShapes(t *testing.T) {
	cands := collect(t, New(nil), catalogPage)

	var names []string
	for _, c := range cands {
		names = append(names, c.RawName)
	}
	assert.Equal(t, []string{
		"Maximum Dig Depth",
		"Operating Weight",
		"Net Power",
		"Engine Model",
		"Swing Speed",
		"Fuel Tank Capacity",
		"Website",
	}, names)
}

func TestExtractDualUnit(t *testing.T) {
	cands := collect(t, New(nil), "* Maximum Dig Depth: 24 ft 1 in (7.34 m)\n")
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Equal(t, "Maximum Dig Depth", c.RawName)
	assert.Equal(t, "24 ft 1 in (7.34 m)", c.RawValue)
	assert.Equal(t, "maximum_dig_depth", c.Key)
	require.NotNil(t, c.Primary)
	assert.Equal(t, "ft", c.Primary.Unit)
	assert.Equal(t, 24.0, c.Primary.Value)
	require.NotNil(t, c.Alt)
	assert.Equal(t, 7.34, c.Alt.Value)
	assert.Equal(t, "m", c.Alt.Unit)
	assert.Equal(t, attribute.Number, c.Type)
	assert.Equal(t, 1, c.OccurrenceCount)
	assert.Equal(t, []string{"cat-336.txt"}, c.SourceRefs)
	assert.True(t, c.UnitObserved)
	assert.Equal(t, attribute.FromText, c.Origin)
}

func TestExtractThousandsSeparators(t *testing.T) {
	cands := collect(t, New(nil), "Operating Weight: 67,500 lb (30,600 kg)")
	require.Len(t, cands, 1)
	assert.Equal(t, attribute.Quantity{Value: 67500, Unit: "lb"}, *cands[0].Primary)
	assert.Equal(t, attribute.Quantity{Value: 30600, Unit: "kg"}, *cands[0].Alt)
}

func TestExtractOpaqueValue(t *testing.T) {
	cands := collect(t, New(nil), "Engine Model: Cat C7.1 ACERT")
	require.Len(t, cands, 1)
	assert.Nil(t, cands[0].Primary)
	assert.Nil(t, cands[0].Alt)
	assert.False(t, cands[0].UnitObserved)
	assert.Equal(t, attribute.String, cands[0].Type)
}

func TestExtractIsRestartable(t *testing.T) {
	seq := New(nil).Extract(catalogPage, "a.txt")

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)

	// stopping early is honoured
	n := 0
	for range seq {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestExtractMinLabelLength(t *testing.T) {
	e := New(nil, WithMinLabelLength(6))
	cands := collect(t, e, "Power: 5 kW\nWeight: 3 kg\n")
	require.Len(t, cands, 1)
	assert.Equal(t, "Weight", cands[0].RawName)
}

func TestExtractMarkdownEmphasis(t *testing.T) {
	cands := collect(t, New(nil), "**Bucket Width**: 36 in\r\n* __Dump Height__: 9 ft\r\n")
	require.Len(t, cands, 2)
	assert.Equal(t, "Bucket Width", cands[0].RawName)
	assert.Equal(t, "36 in", cands[0].RawValue)
	assert.Equal(t, "Dump Height", cands[1].RawName)
}

func TestParseValue(t *testing.T) {
	e := New(nil)

	tests := []struct {
		value   string
		primary *attribute.Quantity
		alt     *attribute.Quantity
	}{
		{"204 hp (152 kW)", &attribute.Quantity{Value: 204, Unit: "hp"}, &attribute.Quantity{Value: 152, Unit: "kW"}},
		{"9.5 rpm", &attribute.Quantity{Value: 9.5, Unit: "rpm"}, nil},
		{"approx. 3,200 psi", &attribute.Quantity{Value: 3200, Unit: "psi"}, nil},
		{"Tier 4 Final (EU Stage V)", nil, nil},
		{"(1.2 m)", nil, &attribute.Quantity{Value: 1.2, Unit: "m"}},
		{"158 gal (600 L", &attribute.Quantity{Value: 158, Unit: "gal"}, &attribute.Quantity{Value: 600, Unit: "L"}},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			primary, alt := e.ParseValue(tt.value)
			assert.Equal(t, tt.primary, primary)
			assert.Equal(t, tt.alt, alt)
		})
	}
}

func TestInferType(t *testing.T) {
	e := New(nil)

	assert.Equal(t, attribute.Number, e.InferType("24 ft"))
	assert.Equal(t, attribute.Number, e.InferType("6"))
	assert.Equal(t, attribute.Boolean, e.InferType("Yes"))
	assert.Equal(t, attribute.Boolean, e.InferType("false"))
	assert.Equal(t, attribute.String, e.InferType("320D"))
	assert.Equal(t, attribute.String, e.InferType("Cat C7.1 ACERT"))
	assert.Equal(t, attribute.String, e.InferType("Tier 4"))
}
