package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/underthemoss/construction-taxonomy/attribute"
)

func TestAggregatorAccumulates(t *testing.T) {
	e := New(nil)
	agg := NewAggregator()

	agg.AddAll(e.Extract("Operating Weight: see brochure\nEngine Model: C7.1", "cat.txt"), "Caterpillar")
	agg.AddAll(e.Extract("Operating Weight: 18,000 kg", "volvo.txt"), "Volvo")
	agg.AddAll(e.Extract("operating weight: 9 t", "jlg.txt"), "JLG")
	agg.AddAll(e.Extract("Operating Weight: 9 t", "jlg.txt"), "JLG")

	require.Equal(t, 2, agg.Len())
	cands := agg.Candidates()

	w := cands[0]
	assert.Equal(t, "operating_weight", w.Key)
	assert.Equal(t, "Operating Weight", w.RawName)
	assert.Equal(t, 4, w.OccurrenceCount)
	assert.Equal(t, []string{"cat.txt", "jlg.txt", "volvo.txt"}, w.SourceRefs)
	assert.Equal(t, []string{"Caterpillar", "JLG", "Volvo"}, w.Manufacturers)
	assert.True(t, w.UnitObserved)
	assert.Equal(t, "18,000 kg", w.RawValue)
	require.NotNil(t, w.Primary)
	assert.Equal(t, "kg", w.Primary.Unit)
	assert.Equal(t, attribute.String, w.Type)

	m := cands[1]
	assert.Equal(t, "engine_model", m.Key)
	assert.Equal(t, 1, m.OccurrenceCount)
	assert.Equal(t, []string{"Caterpillar"}, m.Manufacturers)
}

func TestAggregatorCandidatesAreCopies(t *testing.T) {
	agg := NewAggregator()
	agg.Add(attribute.Candidate{RawName: "Bucket Width", SourceRefs: []string{"a.txt"}}, "")

	cands := agg.Candidates()
	cands[0].RawName = "changed"

	assert.Equal(t, "Bucket Width", agg.Candidates()[0].RawName)
	assert.Equal(t, "bucket_width", agg.Candidates()[0].Key)
	assert.Equal(t, 1, agg.Candidates()[0].OccurrenceCount)
	assert.Empty(t, agg.Candidates()[0].Manufacturers)
}

func TestAggregatorKeysNonLatinNames(t *testing.T) {
	agg := NewAggregator()
	assert.True(t, agg.Add(attribute.Candidate{RawName: "Масса"}, "Zoomlion"))
	assert.True(t, agg.Add(attribute.Candidate{RawName: "Длина"}, "Zoomlion"))
	assert.True(t, agg.Add(attribute.Candidate{RawName: "масса"}, "Sany"))
	assert.False(t, agg.Add(attribute.Candidate{RawName: "***"}, "Sany"))

	cands := agg.Candidates()
	require.Len(t, cands, 2)
	assert.Equal(t, "масса", cands[0].Key)
	assert.Equal(t, 2, cands[0].OccurrenceCount)
	assert.Equal(t, "длина", cands[1].Key)
	assert.Equal(t, 1, cands[1].OccurrenceCount)
}

func TestAnalyzeExamples(t *testing.T) {
	examples := []Example{
		{Ref: "ex1.json", Name: "336", Manufacturer: "Caterpillar", Attributes: []ExampleAttribute{
			{Name: "Operating Weight", Value: 30600.0, Unit: "kg"},
			{Name: "Engine Model", Value: "C7.1"},
			{Name: "Has Cab", Value: true},
			{Name: "Paint", Value: "Yellow"},
		}},
		{Ref: "ex2.json", Name: "EC300E", Manufacturer: "Volvo", Attributes: []ExampleAttribute{
			{Name: "operating weight", Value: 29500.0},
			{Name: "Engine Model", Value: "D8J"},
			{Name: "Has Cab", Value: true},
		}},
		{Ref: "ex3.json", Name: "PC290", Manufacturer: "Komatsu", Attributes: []ExampleAttribute{
			{Name: "Operating Weight", Value: 29000.0},
			{Name: "Has Cab", Value: false},
			{Name: "Has Cab", Value: false},
		}},
	}

	cands := AnalyzeExamples(examples, DefaultCommonalityPercent)
	require.Len(t, cands, 3)

	byKey := map[string]attribute.Candidate{}
	for _, c := range cands {
		byKey[c.Key] = c
	}

	w := byKey["operating_weight"]
	assert.Equal(t, attribute.Number, w.Type)
	assert.True(t, w.UnitObserved)
	assert.Equal(t, 3, w.OccurrenceCount)
	assert.Equal(t, "30600 kg", w.RawValue)
	assert.Equal(t, &attribute.Quantity{Value: 30600, Unit: "kg"}, w.Primary)
	assert.Equal(t, []string{"Caterpillar", "Komatsu", "Volvo"}, w.Manufacturers)
	assert.Equal(t, attribute.FromExamples, w.Origin)

	m := byKey["engine_model"]
	assert.Equal(t, attribute.String, m.Type)
	assert.False(t, m.UnitObserved)
	assert.Equal(t, 2, m.OccurrenceCount)

	cab := byKey["has_cab"]
	assert.Equal(t, attribute.Boolean, cab.Type)
	assert.Equal(t, 3, cab.OccurrenceCount)

	_, ok := byKey["paint"]
	assert.False(t, ok, "present in a third of the examples only")
}

func TestAnalyzeExamplesEmpty(t *testing.T) {
	assert.Nil(t, AnalyzeExamples(nil, DefaultCommonalityPercent))
}
