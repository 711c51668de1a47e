// Package classify decides whether a candidate attribute is a universal
// physical property or a manufacturer-specific label.
package classify

import (
	"slices"

	"go.uber.org/zap"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/lexicon"
	"github.com/underthemoss/construction-taxonomy/logger"
)

// DefaultManufacturerThreshold is the number of distinct manufacturers an
// attribute must be seen for before it is forced to physics.
const DefaultManufacturerThreshold = 3

// Decision is the outcome of classification and the rule that produced it
type Decision struct {
	Category attribute.Category `json:"category"`
	Rule     string             `json:"rule"`
}

// Classifier evaluates an ordered rule table
type Classifier struct {
	lex       *lexicon.Lexicon
	rules     []Rule
	threshold int
	log       *zap.SugaredLogger
}

// Option configures a Classifier
type Option func(*Classifier)

// WithRules replaces the decision table
func WithRules(rules []Rule) Option {
	return func(c *Classifier) { c.rules = slices.Clone(rules) }
}

// WithManufacturerThreshold sets how many distinct manufacturers force physics
func WithManufacturerThreshold(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.threshold = n
		}
	}
}

// WithLogger sets the logger used for decision tracing
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Classifier) { c.log = logger.OrNop(log) }
}

// New creates a Classifier. A nil lexicon selects lexicon.Default().
func New(lex *lexicon.Lexicon, opts ...Option) *Classifier {
	if lex == nil {
		lex = lexicon.Default()
	}
	c := &Classifier{
		lex:       lex,
		rules:     DefaultRules(),
		threshold: DefaultManufacturerThreshold,
		log:       logger.OrNop(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns a copy of the decision table
func (c *Classifier) Rules() []Rule {
	return slices.Clone(c.rules)
}

// Classify returns the category of a raw name/value pair
func (c *Classifier) Classify(rawName, rawValue string) attribute.Category {
	return c.Decide(rawName, rawValue).Category
}

// Decide returns the category and the first rule that matched.
// When no rule matches the result is brand, the non-claiming default.
func (c *Classifier) Decide(rawName, rawValue string) Decision {
	for _, r := range c.rules {
		if r.Match(c.lex, rawName, rawValue) {
			c.log.Debugw("classified",
				logger.FieldName, rawName,
				logger.FieldCategory, r.Category,
				logger.FieldRule, r.Name)
			return Decision{Category: r.Category, Rule: r.Name}
		}
	}
	c.log.Debugw("classified by default",
		logger.FieldName, rawName,
		logger.FieldCategory, attribute.Brand)
	return Decision{Category: attribute.Brand, Rule: RuleDefault}
}

// Evidence is what a corpus says about one aggregated attribute
type Evidence struct {
	// Structured is set for attributes from structured product examples or
	// proposer definitions, where the category follows from unit
	// observations alone.
	Structured    bool
	UnitObserved  bool
	Manufacturers int
}

// InferFromEvidence overrides a local decision with corpus evidence.
// Cross-manufacturer ubiquity forces physics regardless of anything else.
func (c *Classifier) InferFromEvidence(local Decision, ev Evidence) Decision {
	switch {
	case ev.Manufacturers >= c.threshold:
		return Decision{Category: attribute.Physics, Rule: RuleManufacturers}
	case ev.Structured && ev.UnitObserved:
		return Decision{Category: attribute.Physics, Rule: RuleUnitObserved}
	case ev.Structured:
		return Decision{Category: attribute.Brand, Rule: RuleNoUnitObserved}
	default:
		return local
	}
}

// Apply classifies a candidate in place, folding in its corpus evidence
func (c *Classifier) Apply(cand *attribute.Candidate) Decision {
	d := c.Decide(cand.RawName, cand.RawValue)
	d = c.InferFromEvidence(d, Evidence{
		Structured:    cand.Origin == attribute.FromExamples || cand.Origin == attribute.FromProposer,
		UnitObserved:  cand.UnitObserved,
		Manufacturers: len(cand.Manufacturers),
	})
	cand.Category = d.Category
	cand.Rule = d.Rule
	return d
}
