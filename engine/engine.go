// Package engine runs the attribute pipeline: documents are extracted,
// classified and normalized into candidates, which are deduplicated against
// the library and committed as one batch.
package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/classify"
	"github.com/underthemoss/construction-taxonomy/extract"
	"github.com/underthemoss/construction-taxonomy/lexicon"
	"github.com/underthemoss/construction-taxonomy/logger"
	"github.com/underthemoss/construction-taxonomy/merge"
	"github.com/underthemoss/construction-taxonomy/normalize"
	"github.com/underthemoss/construction-taxonomy/propose"
	"github.com/underthemoss/construction-taxonomy/publish"
	"github.com/underthemoss/construction-taxonomy/source"
	"github.com/underthemoss/construction-taxonomy/store"
)

// Engine wires the pipeline stages around one library
type Engine struct {
	store      *store.Store
	loader     *source.Loader
	extractor  *extract.Extractor
	classifier *classify.Classifier
	normalizer *normalize.Normalizer
	dedup      *merge.Deduplicator
	proposer   propose.Proposer
	publisher  *publish.Publisher

	lex         *lexicon.Lexicon
	minLabel    int
	threshold   int
	commonality float64
	now         func() time.Time
	log         *zap.SugaredLogger
}

// Option configures an Engine
type Option func(*Engine)

// WithLexicon sets the tables every stage reads
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(e *Engine) { e.lex = lex }
}

// WithMinLabelLength sets the shortest label the extractor accepts
func WithMinLabelLength(n int) Option {
	return func(e *Engine) { e.minLabel = n }
}

// WithManufacturerThreshold sets how many distinct manufacturers force physics
func WithManufacturerThreshold(n int) Option {
	return func(e *Engine) { e.threshold = n }
}

// WithCommonalityPercent sets the share of product examples an attribute
// must appear in
func WithCommonalityPercent(p float64) Option {
	return func(e *Engine) { e.commonality = p }
}

// WithProposer enables Propose
func WithProposer(p propose.Proposer) Option {
	return func(e *Engine) { e.proposer = p }
}

// WithPublisher enables publishing committed batches
func WithPublisher(p *publish.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithClock sets the date source for new records
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine's logger; stages get named children of it
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) { e.log = logger.OrNop(log) }
}

// New creates an Engine over s
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:       s,
		lex:         lexicon.Default(),
		minLabel:    extract.DefaultMinLabelLength,
		threshold:   classify.DefaultManufacturerThreshold,
		commonality: extract.DefaultCommonalityPercent,
		now:         time.Now,
		log:         logger.OrNop(nil),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.loader = source.New(e.lex, source.WithLogger(e.log.Named("source")))
	e.extractor = extract.New(e.lex,
		extract.WithMinLabelLength(e.minLabel),
		extract.WithLogger(e.log.Named("extract")))
	e.classifier = classify.New(e.lex,
		classify.WithManufacturerThreshold(e.threshold),
		classify.WithLogger(e.log.Named("classify")))
	e.normalizer = normalize.New(e.lex, e.log.Named("normalize"))
	e.dedup = merge.NewDeduplicator(e.log.Named("merge"), merge.WithClock(e.now))
	return e
}

// Store is the library the engine merges into
func (e *Engine) Store() *store.Store { return e.store }

// Loader reads source documents with the engine's lexicon
func (e *Engine) Loader() *source.Loader { return e.loader }

// Extractor is the engine's text extractor
func (e *Engine) Extractor() *extract.Extractor { return e.extractor }

// Classifier is the engine's classifier
func (e *Engine) Classifier() *classify.Classifier { return e.classifier }

// Normalizer is the engine's physics normalizer
func (e *Engine) Normalizer() *normalize.Normalizer { return e.normalizer }

// Analysis is the classified and normalized candidate set of a corpus
type Analysis struct {
	Documents          []source.Document     `json:"documents"`
	Catalog            []attribute.Candidate `json:"catalog"`
	Examples           []attribute.Candidate `json:"examples"`
	Proposed           []attribute.Candidate `json:"proposed,omitempty"`
	ProposalRejections []propose.Rejected    `json:"proposal_rejections,omitempty"`
}

// Candidates returns every candidate in merge order: catalog text first,
// then product examples, then proposals.
func (a *Analysis) Candidates() []attribute.Candidate {
	out := make([]attribute.Candidate, 0, len(a.Catalog)+len(a.Examples)+len(a.Proposed))
	out = append(out, a.Catalog...)
	out = append(out, a.Examples...)
	return append(out, a.Proposed...)
}

// Analyze extracts and aggregates the candidates of docs, then classifies
// and normalizes each one exactly once. Text documents are aggregated by raw
// key under their detected manufacturer; product examples are analysed
// together.
func (e *Engine) Analyze(docs []source.Document) *Analysis {
	agg := extract.NewAggregator()
	var examples []extract.Example
	for _, doc := range docs {
		if doc.Kind == source.KindExamples {
			examples = append(examples, doc.Examples...)
			continue
		}
		n := agg.AddAll(e.extractor.Extract(doc.Text, doc.Ref), doc.Manufacturer)
		e.log.Debugw("document extracted",
			logger.FieldSource, doc.Ref,
			logger.FieldManufacturer, doc.Manufacturer,
			logger.FieldCount, n)
	}

	a := &Analysis{
		Documents: docs,
		Catalog:   e.prepareAll(agg.Candidates()),
		Examples:  e.prepareAll(extract.AnalyzeExamples(examples, e.commonality)),
	}
	e.log.Infow("corpus analysed",
		"documents", len(docs),
		"catalog", len(a.Catalog),
		"examples", len(a.Examples))
	return a
}

// Prepare classifies c and gives it its code, subcategory and unit. Physics
// candidates are normalized to a canonical concept; brand candidates keep
// their raw key and never carry a unit.
func (e *Engine) Prepare(c attribute.Candidate) attribute.Candidate {
	e.classifier.Apply(&c)

	if c.Category == attribute.Physics {
		name := c.RawName
		if name == "" {
			name = c.Key
		}
		r := e.normalizer.Normalize(name)
		c.Code = r.Code
		c.Subcategory = r.Subcategory
		c.Unit = r.Unit
		if r.Concept {
			c.Name = r.Label
		}
		if c.Type == "" && c.Unit != "" {
			c.Type = attribute.Number
		}
	} else {
		c.Code = c.Key
		if c.Code == "" {
			c.Code = attribute.RawKey(c.RawName)
		}
		c.Subcategory = e.normalizer.BrandSubcategory(c.Code)
		c.Unit = ""
	}
	if c.Type == "" {
		c.Type = attribute.String
	}
	return c
}

func (e *Engine) prepareAll(cands []attribute.Candidate) []attribute.Candidate {
	out := make([]attribute.Candidate, len(cands))
	for i, c := range cands {
		out[i] = e.Prepare(c)
	}
	return out
}
