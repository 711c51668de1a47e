// Package normalize reduces physics attribute names to canonical concepts
// and computes the display-name key used for duplicate detection.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/lexicon"
	"github.com/underthemoss/construction-taxonomy/logger"
)

// Result is the canonical identity of a physics attribute name
type Result struct {
	Code        string                `json:"code"`
	Subcategory attribute.Subcategory `json:"subcategory"`
	Unit        string                `json:"unit,omitempty"`
	Label       string                `json:"label"`
	Concept     bool                  `json:"concept"` // Code is a canonical concept rather than the cleaned name
	Stripped    []string              `json:"stripped,omitempty"`
}

// Normalizer maps physics attribute names onto the lexicon's concept table
type Normalizer struct {
	lex *lexicon.Lexicon
	log *zap.SugaredLogger
}

// New creates a Normalizer. A nil lexicon selects lexicon.Default().
func New(lex *lexicon.Lexicon, log *zap.SugaredLogger) *Normalizer {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Normalizer{lex: lex, log: logger.OrNop(log)}
}

// Normalize strips qualifier prefixes from rawName and resolves the rest to a
// canonical concept. Unmatched names keep their cleaned form in the general
// subcategory with no unit.
//
// Normalize is idempotent: Normalize(Normalize(x).Code) == Normalize(x).
func (n *Normalizer) Normalize(rawName string) Result {
	cleaned, stripped := n.stripPrefixes(Clean(rawName))

	concept, ok := n.lex.MatchConcept(cleaned)
	if !ok {
		n.log.Debugw("no canonical concept",
			logger.FieldName, rawName,
			logger.FieldCode, cleaned)
		return Result{
			Code:        cleaned,
			Subcategory: attribute.General,
			Label:       Label(cleaned),
			Stripped:    stripped,
		}
	}

	n.log.Debugw("normalized",
		logger.FieldName, rawName,
		logger.FieldCode, concept.Code,
		logger.FieldSubcategory, concept.Subcategory)
	return Result{
		Code:        concept.Code,
		Subcategory: concept.Subcategory,
		Unit:        concept.Unit,
		Label:       concept.Label,
		Concept:     true,
		Stripped:    stripped,
	}
}

// stripPrefixes removes one qualifier prefix per pass until none applies.
// A prefix is only removed when something follows it.
func (n *Normalizer) stripPrefixes(name string) (string, []string) {
	var stripped []string
	prefixes := n.lex.Prefixes()
	for {
		applied := false
		for _, p := range prefixes {
			if rest, ok := strings.CutPrefix(name, p+"_"); ok && rest != "" {
				name = rest
				stripped = append(stripped, p)
				applied = true
				break
			}
		}
		if !applied {
			return name, stripped
		}
	}
}

// BrandSubcategory files a brand attribute code
func (n *Normalizer) BrandSubcategory(code string) attribute.Subcategory {
	return n.lex.BrandSubcategory(code)
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Clean lower-cases name and joins its words with underscores
func Clean(name string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(foldAccents(name)), "_"), "_")
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// DisplayKey is the comparison form of a display name: accents folded,
// lower-cased, everything but letters, digits and underscores removed. Letters
// of any script count. "Weight " and "weight" share a key; "Wt." keys as "wt".
func DisplayKey(name string) string {
	return nonWord.ReplaceAllString(strings.ToLower(foldAccents(name)), "")
}

// Label turns a snake-case code into a display label
func Label(code string) string {
	words := strings.FieldsFunc(code, func(r rune) bool { return r == '_' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
