// Package extract turns specification text into candidate attributes.
//
// Three line shapes are recognised:
//
//	Label: value
//	* Label: value        (also • bullets)
//	| Label | value |
//
// Lines that match none of them are ignored; extraction never fails.
package extract

import (
	"iter"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/lexicon"
	"github.com/underthemoss/construction-taxonomy/logger"
)

// DefaultMinLabelLength is the shortest label, in runes, that is kept
const DefaultMinLabelLength = 3

var (
	labelValueLine = regexp.MustCompile(`^\s*(?:[*•]\s*)?([^:|]+?)\s*:\s*(.*\S)\s*$`)
	pipeRowLine    = regexp.MustCompile(`^\s*\|\s*([^|]+?)\s*\|\s*([^|]+?)\s*\|`)
)

// Extractor scans text for label/value pairs
type Extractor struct {
	lex      *lexicon.Lexicon
	minLabel int
	log      *zap.SugaredLogger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithMinLabelLength sets the shortest label kept
func WithMinLabelLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minLabel = n
		}
	}
}

// WithLogger sets the extractor's logger
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Extractor) { e.log = logger.OrNop(log) }
}

// New creates an Extractor. A nil lexicon selects lexicon.Default().
func New(lex *lexicon.Lexicon, opts ...Option) *Extractor {
	if lex == nil {
		lex = lexicon.Default()
	}
	e := &Extractor{lex: lex, minLabel: DefaultMinLabelLength, log: logger.OrNop(nil)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract yields one candidate per matching line of text. The sequence is
// lazy and can be ranged over any number of times.
func (e *Extractor) Extract(text, ref string) iter.Seq[attribute.Candidate] {
	return func(yield func(attribute.Candidate) bool) {
		for line := range strings.Lines(text) {
			label, value, ok := e.matchLine(line)
			if !ok {
				continue
			}
			if !e.acceptLabel(label) {
				e.log.Debugw("label skipped",
					logger.FieldName, label,
					logger.FieldSource, ref)
				continue
			}
			if !yield(e.candidate(label, value, ref)) {
				return
			}
		}
	}
}

// matchLine returns the label and value of a recognised line
func (e *Extractor) matchLine(line string) (label, value string, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	if m := pipeRowLine.FindStringSubmatch(line); m != nil {
		return cleanLabel(m[1]), strings.TrimSpace(m[2]), true
	}
	if m := labelValueLine.FindStringSubmatch(line); m != nil {
		// "http://host" is a URL, not a label
		if strings.HasPrefix(m[2], "//") {
			return "", "", false
		}
		return cleanLabel(m[1]), m[2], true
	}
	return "", "", false
}

// acceptLabel rejects short labels, stop words and labels that do not start
// with a letter.
func (e *Extractor) acceptLabel(label string) bool {
	if utf8.RuneCountInString(label) < e.minLabel {
		return false
	}
	if e.lex.IsStopWord(label) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(label)
	return unicode.IsLetter(r)
}

func (e *Extractor) candidate(label, value, ref string) attribute.Candidate {
	primary, alt := e.ParseValue(value)
	c := attribute.Candidate{
		Key:             attribute.RawKey(label),
		RawName:         label,
		RawValue:        value,
		Primary:         primary,
		Alt:             alt,
		Origin:          attribute.FromText,
		Type:            e.InferType(value),
		OccurrenceCount: 1,
		UnitObserved:    primary != nil || alt != nil,
	}
	c.AddSource(ref)
	return c
}

// ParseValue finds the primary quantity of a value and, when the value has a
// parenthetical, the alternate quantity inside it:
//
//	"67,500 lb (30,600 kg)" → 67500 lb, 30600 kg
//
// Either result is nil when no number with a known unit is present.
func (e *Extractor) ParseValue(value string) (primary, alt *attribute.Quantity) {
	head, paren := splitParenthetical(value)
	if m, ok := e.lex.FirstQuantity(head); ok {
		primary = &attribute.Quantity{Value: m.Value, Unit: m.Unit}
	}
	if paren != "" {
		if m, ok := e.lex.FirstQuantity(paren); ok {
			alt = &attribute.Quantity{Value: m.Value, Unit: m.Unit}
		}
	}
	return primary, alt
}

// InferType guesses the value type of a raw value
func (e *Extractor) InferType(value string) attribute.Type {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "yes", "no", "true", "false":
		return attribute.Boolean
	}
	ms := e.lex.ScanQuantities(v)
	if len(ms) > 0 && ms[0].Start == 0 && ms[0].Standalone() {
		return attribute.Number
	}
	return attribute.String
}

// splitParenthetical splits "a (b) c" into "a" and "b"
func splitParenthetical(value string) (head, paren string) {
	open := strings.IndexByte(value, '(')
	if open < 0 {
		return value, ""
	}
	head = value[:open]
	rest := value[open+1:]
	if end := strings.IndexByte(rest, ')'); end >= 0 {
		return head, rest[:end]
	}
	return head, rest
}

// cleanLabel trims whitespace and Markdown emphasis from a label
func cleanLabel(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*•_`"))
}
