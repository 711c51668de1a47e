package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/lexicon"
)

func TestClassify(t *testing.T) {
	c := New(nil)

	assert.Equal(t, attribute.Physics, c.Classify("Operating Weight", "67,500 lb (30,600 kg)"))
	assert.Equal(t, attribute.Brand, c.Classify("Engine Model", "Cat C7.1 ACERT"))
	assert.Equal(t, attribute.Physics, c.Classify("Net Power", "204 hp (152 kW)"))
}

func TestDecideRuleOrder(t *testing.T) {
	c := New(nil)

	tests := []struct {
		name     string
		rawName  string
		rawValue string
		category attribute.Category
		rule     string
	}{
		{"unit in value", "Operating Weight", "67,500 lb (30,600 kg)", attribute.Physics, RuleValueUnit},
		{"glued unit", "Net Power", "152kW", attribute.Physics, RuleValueUnit},
		{"unit beats brand keyword", "Model Weight", "12 kg", attribute.Physics, RuleValueUnit},
		{"standalone number", "Number of Cylinders", "6", attribute.Physics, RuleValueNumber},
		{"identifier digits ignored", "Engine Model", "Cat C7.1 ACERT", attribute.Brand, RuleNameBrand},
		{"model code", "Model Number", "320D", attribute.Brand, RuleNameBrand},
		{"brand keyword", "Boom Series", "Extended", attribute.Brand, RuleNameBrand},
		{"physics token", "Bucket Width", "see chart", attribute.Physics, RuleNamePhysics},
		{"no evidence", "Cab Style", "Enclosed ROPS", attribute.Brand, RuleDefault},
		{"empty value", "Paint", "", attribute.Brand, RuleDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := c.Decide(tt.rawName, tt.rawValue)
			assert.Equal(t, tt.category, d.Category)
			assert.Equal(t, tt.rule, d.Rule)
		})
	}
}

func TestCustomRules(t *testing.T) {
	always := Rule{
		Name:     "always_physics",
		Category: attribute.Physics,
		Match:    func(*lexicon.Lexicon, string, string) bool { return true },
	}
	c := New(nil, WithRules([]Rule{always}))

	d := c.Decide("Engine Model", "Cat C7.1 ACERT")
	assert.Equal(t, Decision{Category: attribute.Physics, Rule: "always_physics"}, d)

	empty := New(nil, WithRules(nil))
	assert.Equal(t, attribute.Brand, empty.Classify("Operating Weight", "67,500 lb"))
}

func TestRulesReturnsCopy(t *testing.T) {
	c := New(nil)
	rules := c.Rules()
	require.Len(t, rules, 4)
	rules[0].Category = attribute.Brand

	assert.Equal(t, attribute.Physics, c.Rules()[0].Category)
}

func TestAlternateLexicon(t *testing.T) {
	tables := lexicon.DefaultTables()
	tables.BrandKeywords = []string{"trim"}
	lex, err := lexicon.New(tables)
	require.NoError(t, err)

	c := New(lex)
	assert.Equal(t, attribute.Brand, c.Classify("Trim Level", "Premium"))
	assert.Equal(t, RuleDefault, c.Decide("Engine Model", "Cat ACERT").Rule)
}

func TestInferFromEvidence(t *testing.T) {
	c := New(nil)
	local := Decision{Category: attribute.Brand, Rule: RuleDefault}

	d := c.InferFromEvidence(local, Evidence{Manufacturers: 3})
	assert.Equal(t, Decision{Category: attribute.Physics, Rule: RuleManufacturers}, d)

	d = c.InferFromEvidence(local, Evidence{Manufacturers: 2})
	assert.Equal(t, local, d)

	d = c.InferFromEvidence(local, Evidence{Structured: true, UnitObserved: true})
	assert.Equal(t, attribute.Physics, d.Category)

	physics := Decision{Category: attribute.Physics, Rule: RuleValueNumber}
	d = c.InferFromEvidence(physics, Evidence{Structured: true})
	assert.Equal(t, Decision{Category: attribute.Brand, Rule: RuleNoUnitObserved}, d)

	strict := New(nil, WithManufacturerThreshold(5))
	assert.Equal(t, local, strict.InferFromEvidence(local, Evidence{Manufacturers: 4}))
}

func TestApply(t *testing.T) {
	c := New(nil)

	cand := attribute.Candidate{
		RawName:       "Cab Style",
		RawValue:      "Enclosed",
		Origin:        attribute.FromText,
		Manufacturers: []string{"CAT", "JLG", "Volvo"},
	}
	d := c.Apply(&cand)
	assert.Equal(t, attribute.Physics, d.Category)
	assert.Equal(t, attribute.Physics, cand.Category)
	assert.Equal(t, RuleManufacturers, cand.Rule)

	example := attribute.Candidate{RawName: "Max Speed", RawValue: "25", Origin: attribute.FromExamples}
	c.Apply(&example)
	assert.Equal(t, attribute.Brand, example.Category)

	example.UnitObserved = true
	c.Apply(&example)
	assert.Equal(t, attribute.Physics, example.Category)
}
