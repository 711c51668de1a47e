// Package lexicon holds the immutable rule data shared by the classifier,
// the normalizer and the extractor: unit tokens, keyword lists, qualifier
// prefixes and the canonical concept table.
//
// A Lexicon is built once from Tables and never mutated, so one instance can
// be shared freely. Tests build alternates with New.
package lexicon

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/errors"
)

// Lexicon is validated, read-only rule data
type Lexicon struct {
	units         map[string]Dimension
	brandKeywords []string
	physicsTokens []string
	prefixes      []string
	concepts      []Concept
	stopWords     map[string]struct{}
	manufacturers []string
	brandBuckets  []BrandBucket
}

var defaultLexicon = sync.OnceValue(func() *Lexicon {
	lex, err := New(DefaultTables())
	if err != nil {
		panic(fmt.Sprintf("lexicon: built-in tables are invalid: %v", err))
	}
	return lex
})

// Default returns the shared built-in lexicon
func Default() *Lexicon {
	return defaultLexicon()
}

// New validates t and builds a Lexicon from a private copy of it
func New(t Tables) (*Lexicon, error) {
	lex := &Lexicon{
		units:         make(map[string]Dimension),
		brandKeywords: lowerAll(t.BrandKeywords),
		physicsTokens: lowerAll(t.PhysicsTokens),
		prefixes:      lowerAll(t.Prefixes),
		stopWords:     make(map[string]struct{}, len(t.StopWords)),
		manufacturers: slices.Clone(t.Manufacturers),
	}

	for dim, tokens := range t.Units {
		for _, tok := range tokens {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if prev, ok := lex.units[tok]; ok && prev != dim {
				return nil, errors.Newf("unit %q listed under both %s and %s", tok, prev, dim)
			}
			lex.units[tok] = dim
		}
	}
	for _, w := range t.StopWords {
		lex.stopWords[strings.ToLower(w)] = struct{}{}
	}

	seen := make(map[string]bool, len(t.Concepts))
	for _, c := range t.Concepts {
		if !attribute.ValidCode(c.Code) {
			return nil, errors.Newf("concept code %q is not snake-case", c.Code)
		}
		if seen[c.Code] {
			return nil, errors.Newf("concept %q defined twice", c.Code)
		}
		seen[c.Code] = true
		if !attribute.Physics.Allows(c.Subcategory) {
			return nil, errors.Newf("concept %s: %q is not a physics subcategory", c.Code, c.Subcategory)
		}
		if len(c.Variants) == 0 {
			return nil, errors.Newf("concept %s has no variants", c.Code)
		}
		c.Variants = lowerAll(c.Variants)
		if c.Label == "" {
			c.Label = labelFromCode(c.Code)
		}
		lex.concepts = append(lex.concepts, c)
	}

	// A canonical code must resolve to its own concept, otherwise
	// normalizing an already normalized name would change it.
	for _, c := range lex.concepts {
		if got, ok := lex.MatchConcept(c.Code); !ok || got.Code != c.Code {
			return nil, errors.Newf("concept %s is shadowed by an earlier concept %s", c.Code, got.Code)
		}
	}

	for _, b := range t.BrandSubcategories {
		if !attribute.Brand.Allows(b.Subcategory) {
			return nil, errors.Newf("%q is not a brand subcategory", b.Subcategory)
		}
		lex.brandBuckets = append(lex.brandBuckets, BrandBucket{
			Subcategory: b.Subcategory,
			Keywords:    lowerAll(b.Keywords),
		})
	}

	return lex, nil
}

// UnitDimension looks up a unit token as written in a value
func (l *Lexicon) UnitDimension(token string) (Dimension, bool) {
	dim, ok := l.units[cleanUnitToken(token)]
	return dim, ok
}

// IsUnit reports whether token is a known unit
func (l *Lexicon) IsUnit(token string) bool {
	_, ok := l.UnitDimension(token)
	return ok
}

// Units yields every unit token with its dimension, sorted by token
func (l *Lexicon) Units() iter.Seq2[string, Dimension] {
	return func(yield func(string, Dimension) bool) {
		for _, tok := range slices.Sorted(maps.Keys(l.units)) {
			if !yield(tok, l.units[tok]) {
				return
			}
		}
	}
}

// BrandKeywords returns the lower-cased brand keywords
func (l *Lexicon) BrandKeywords() []string { return slices.Clone(l.brandKeywords) }

// PhysicsTokens returns the lower-cased physics name tokens
func (l *Lexicon) PhysicsTokens() []string { return slices.Clone(l.physicsTokens) }

// Prefixes returns the qualifier prefixes in match order
func (l *Lexicon) Prefixes() []string { return slices.Clone(l.prefixes) }

// Manufacturers returns the known manufacturer names in match order
func (l *Lexicon) Manufacturers() []string { return slices.Clone(l.manufacturers) }

// IsStopWord reports whether w is ignored as an attribute label
func (l *Lexicon) IsStopWord(w string) bool {
	_, ok := l.stopWords[strings.ToLower(strings.TrimSpace(w))]
	return ok
}

// Concepts returns a copy of the concept table in match order
func (l *Lexicon) Concepts() []Concept {
	out := make([]Concept, len(l.concepts))
	for i, c := range l.concepts {
		c.Variants = slices.Clone(c.Variants)
		out[i] = c
	}
	return out
}

// Concept looks up a canonical concept by code
func (l *Lexicon) Concept(code string) (Concept, bool) {
	for _, c := range l.concepts {
		if c.Code == code {
			c.Variants = slices.Clone(c.Variants)
			return c, true
		}
	}
	return Concept{}, false
}

// MatchConcept returns the first concept with a variant contained in token
func (l *Lexicon) MatchConcept(token string) (Concept, bool) {
	for _, c := range l.concepts {
		for _, v := range c.Variants {
			if strings.Contains(token, v) {
				c.Variants = slices.Clone(c.Variants)
				return c, true
			}
		}
	}
	return Concept{}, false
}

// BrandSubcategory files a brand code by keyword. Keywords are compared with
// whole underscore-separated words of code so that "id" does not match
// "hydraulic".
func (l *Lexicon) BrandSubcategory(code string) attribute.Subcategory {
	words := strings.Split(strings.ToLower(code), "_")
	for _, b := range l.brandBuckets {
		for _, kw := range b.Keywords {
			if slices.Contains(words, kw) {
				return b.Subcategory
			}
		}
	}
	return attribute.General
}

// HasBrandKeyword reports whether name contains a brand keyword
func (l *Lexicon) HasBrandKeyword(name string) bool {
	return containsAny(strings.ToLower(name), l.brandKeywords)
}

// HasPhysicsToken reports whether name contains a physics token
func (l *Lexicon) HasPhysicsToken(name string) bool {
	return containsAny(strings.ToLower(name), l.physicsTokens)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func cleanUnitToken(token string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(token)), ".-/")
}

func labelFromCode(code string) string {
	words := strings.Split(code, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
