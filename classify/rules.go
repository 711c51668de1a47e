package classify

import (
	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/lexicon"
)

// Predicate inspects a raw name/value pair against the lexicon
type Predicate func(lex *lexicon.Lexicon, name, value string) bool

// Rule is one row of the decision table. Rules are evaluated top to bottom
// and the first matching rule decides the category.
type Rule struct {
	Name     string
	Category attribute.Category
	Match    Predicate
}

// Rule names
const (
	RuleValueUnit      = "value_unit"
	RuleValueNumber    = "value_number"
	RuleNameBrand      = "name_brand_keyword"
	RuleNamePhysics    = "name_physics_token"
	RuleDefault        = "default"
	RuleManufacturers  = "cross_manufacturer"
	RuleUnitObserved   = "unit_observed"
	RuleNoUnitObserved = "no_unit_observed"
)

// DefaultRules returns the built-in decision table. Unit and numeric evidence
// in the value outrank lexical cues in the name; brand cues outrank physics
// tokens. Anything left falls through to brand.
func DefaultRules() []Rule {
	return []Rule{
		{Name: RuleValueUnit, Category: attribute.Physics, Match: valueHasUnit},
		{Name: RuleValueNumber, Category: attribute.Physics, Match: valueHasNumber},
		{Name: RuleNameBrand, Category: attribute.Brand, Match: nameHasBrandKeyword},
		{Name: RuleNamePhysics, Category: attribute.Physics, Match: nameHasPhysicsToken},
	}
}

// valueHasUnit matches a number quantified by a known unit, as in "24 ft" or "152kW"
func valueHasUnit(lex *lexicon.Lexicon, _, value string) bool {
	_, ok := lex.FirstQuantity(value)
	return ok
}

// valueHasNumber matches a standalone number. Digits inside identifiers such
// as "C7.1" or "320D" do not count.
func valueHasNumber(lex *lexicon.Lexicon, _, value string) bool {
	for _, m := range lex.ScanQuantities(value) {
		if m.Standalone() {
			return true
		}
	}
	return false
}

func nameHasBrandKeyword(lex *lexicon.Lexicon, name, _ string) bool {
	return lex.HasBrandKeyword(name)
}

func nameHasPhysicsToken(lex *lexicon.Lexicon, name, _ string) bool {
	return lex.HasPhysicsToken(name)
}
