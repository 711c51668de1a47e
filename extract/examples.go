package extract

import (
	"fmt"
	"strconv"

	"github.com/underthemoss/construction-taxonomy/attribute"
)

// DefaultCommonalityPercent is the share of examples an attribute must
// appear in to become a candidate.
const DefaultCommonalityPercent = 60

// Example is a structured product example
type Example struct {
	Ref          string             `json:"-"`
	Name         string             `json:"name"`
	Manufacturer string             `json:"manufacturer,omitempty"`
	Attributes   []ExampleAttribute `json:"attributes"`
}

// ExampleAttribute is one attribute of a product example. Value keeps its
// JSON type so the attribute type can be inferred from it.
type ExampleAttribute struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

type exampleStats struct {
	name     string
	examples int
	values   []any
	units    []string
	refs     []string
	makers   []string
}

// AnalyzeExamples returns a candidate for every attribute present in at least
// minPercent of examples. The type follows the observed values: all numbers
// give number, all booleans give boolean, anything else string.
func AnalyzeExamples(examples []Example, minPercent float64) []attribute.Candidate {
	if len(examples) == 0 {
		return nil
	}

	var order []string
	stats := make(map[string]*exampleStats)
	for _, ex := range examples {
		seen := make(map[string]bool)
		for _, attr := range ex.Attributes {
			key := attribute.RawKey(attr.Name)
			if key == "" {
				continue
			}
			st, ok := stats[key]
			if !ok {
				st = &exampleStats{name: attr.Name}
				stats[key] = st
				order = append(order, key)
			}
			if !seen[key] {
				st.examples++
				seen[key] = true
			}
			if attr.Value != nil {
				st.values = append(st.values, attr.Value)
			}
			if attr.Unit != "" {
				st.units = append(st.units, attr.Unit)
			}
			st.refs = append(st.refs, ex.Ref)
			st.makers = append(st.makers, ex.Manufacturer)
		}
	}

	var out []attribute.Candidate
	for _, key := range order {
		st := stats[key]
		percent := float64(st.examples) / float64(len(examples)) * 100
		if percent < minPercent {
			continue
		}

		c := attribute.Candidate{
			Key:             key,
			RawName:         st.name,
			Origin:          attribute.FromExamples,
			Type:            typeOfValues(st.values),
			OccurrenceCount: st.examples,
			UnitObserved:    len(st.units) > 0,
		}
		if len(st.values) > 0 {
			c.RawValue = formatValue(st.values[0])
		}
		if c.UnitObserved {
			c.RawValue = fmt.Sprintf("%s %s", c.RawValue, st.units[0])
			if f, ok := st.values[0].(float64); ok {
				c.Primary = &attribute.Quantity{Value: f, Unit: st.units[0]}
			}
		}
		for _, ref := range st.refs {
			c.AddSource(ref)
		}
		for _, m := range st.makers {
			c.AddManufacturer(m)
		}
		out = append(out, c)
	}
	return out
}

func typeOfValues(values []any) attribute.Type {
	if len(values) == 0 {
		return attribute.String
	}
	allNumbers, allBools := true, true
	for _, v := range values {
		switch v.(type) {
		case float64, int, int64:
			allBools = false
		case bool:
			allNumbers = false
		default:
			allNumbers, allBools = false, false
		}
	}
	switch {
	case allNumbers:
		return attribute.Number
	case allBools:
		return attribute.Boolean
	default:
		return attribute.String
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
