package extract

import (
	"iter"

	"github.com/underthemoss/construction-taxonomy/attribute"
)

// Aggregator folds repeated candidates into one per raw key, accumulating
// occurrence counts, source references and the manufacturers they were seen for.
type Aggregator struct {
	order []string
	byKey map[string]*attribute.Candidate
}

// NewAggregator creates an empty Aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{byKey: make(map[string]*attribute.Candidate)}
}

// Add folds c into the aggregate and reports whether it was kept. A name
// with no letters or digits has no key and is dropped. manufacturer may be
// empty.
func (a *Aggregator) Add(c attribute.Candidate, manufacturer string) bool {
	if c.Key == "" {
		c.Key = attribute.RawKey(c.RawName)
	}
	if c.Key == "" {
		return false
	}
	if c.OccurrenceCount == 0 {
		c.OccurrenceCount = 1
	}

	existing, ok := a.byKey[c.Key]
	if !ok {
		c.SourceRefs = append([]string(nil), c.SourceRefs...)
		c.Manufacturers = append([]string(nil), c.Manufacturers...)
		c.AddManufacturer(manufacturer)
		a.byKey[c.Key] = &c
		a.order = append(a.order, c.Key)
		return true
	}

	existing.OccurrenceCount += c.OccurrenceCount
	for _, ref := range c.SourceRefs {
		existing.AddSource(ref)
	}
	for _, m := range c.Manufacturers {
		existing.AddManufacturer(m)
	}
	existing.AddManufacturer(manufacturer)
	existing.UnitObserved = existing.UnitObserved || c.UnitObserved

	// prefer a sample value that carries a unit
	if existing.Primary == nil && c.Primary != nil {
		existing.RawValue = c.RawValue
		existing.Primary = c.Primary
		existing.Alt = c.Alt
	}
	if existing.Type != c.Type {
		existing.Type = mergeTypes(existing.Type, c.Type)
	}
	return true
}

// AddAll folds every candidate of seq and returns how many were kept
func (a *Aggregator) AddAll(seq iter.Seq[attribute.Candidate], manufacturer string) int {
	n := 0
	for c := range seq {
		if a.Add(c, manufacturer) {
			n++
		}
	}
	return n
}

// Len is the number of distinct raw keys
func (a *Aggregator) Len() int {
	return len(a.order)
}

// Candidates returns the aggregated candidates in first-seen order
func (a *Aggregator) Candidates() []attribute.Candidate {
	out := make([]attribute.Candidate, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, *a.byKey[key])
	}
	return out
}

func mergeTypes(a, b attribute.Type) attribute.Type {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return attribute.String
	}
}
