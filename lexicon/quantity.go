package lexicon

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Match is one number found in a value string, with the token that follows it
type Match struct {
	Number    string    // digits as written, thousands separators included
	Value     float64   // parsed number
	Token     string    // word directly after the number, may be empty
	Unit      string    // Token when it is a known unit
	Dimension Dimension // dimension of Unit
	Glued     bool      // a letter follows the number with no space, as in "320D"
	Start     int       // byte offset of the number in the scanned string
	End       int       // byte offset just past Token
}

// HasUnit reports whether the number is quantified by a known unit
func (m Match) HasUnit() bool {
	return m.Unit != ""
}

// Standalone reports whether the number is a quantity on its own rather than
// part of an identifier such as "C7.1" or "320D".
func (m Match) Standalone() bool {
	return m.HasUnit() || !m.Glued
}

// The number must not continue a word: "C7.1" and "v2" yield nothing.
var quantityPattern = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_.])(\d[\d,]*(?:\.\d+)?)(\s*)([^\s\d,;:()\[\]|]*)`)

// ScanQuantities finds every number in s that does not continue a word
func (l *Lexicon) ScanQuantities(s string) []Match {
	var out []Match
	for _, idx := range quantityPattern.FindAllStringSubmatchIndex(s, -1) {
		number := s[idx[2]:idx[3]]
		space := s[idx[4]:idx[5]]
		token := s[idx[6]:idx[7]]

		value, err := ParseNumber(number)
		if err != nil {
			continue
		}

		m := Match{
			Number: number,
			Value:  value,
			Token:  token,
			Start:  idx[2],
			End:    idx[7],
		}
		if dim, ok := l.UnitDimension(token); ok {
			m.Unit = strings.TrimRight(token, ".")
			m.Dimension = dim
		}
		if space == "" && token != "" {
			r := []rune(token)[0]
			m.Glued = unicode.IsLetter(r)
		}
		out = append(out, m)
	}
	return out
}

// FirstQuantity returns the first number in s quantified by a known unit
func (l *Lexicon) FirstQuantity(s string) (Match, bool) {
	for _, m := range l.ScanQuantities(s) {
		if m.HasUnit() {
			return m, true
		}
	}
	return Match{}, false
}

// ParseNumber parses a number written with optional thousands separators
func ParseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}
