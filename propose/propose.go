// Package propose asks an external model for attribute definitions the
// library is missing and screens what comes back.
//
// Proposals are never trusted: each one is checked against the reduced
// attribute schema and, once converted to a candidate, goes through the same
// classification, normalization, deduplication and transaction as extracted
// attributes.
package propose

import (
	"context"
	"encoding/json"
	"maps"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/underthemoss/construction-taxonomy/attribute"
	"github.com/underthemoss/construction-taxonomy/errors"
)

// Proposer returns new attribute definitions keyed by snake-case code
type Proposer interface {
	Propose(ctx context.Context, req Request) (map[string]map[string]any, error)
}

// Request is what the proposer is shown
type Request struct {
	Library  map[string]attribute.Reduced `json:"current_attributes"`
	Catalog  []attribute.Candidate        `json:"catalog_attributes"`
	Examples []attribute.Candidate        `json:"example_attributes"`
}

// Rejected is a proposal that failed screening
type Rejected struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// SystemPrompt frames the proposer's role
const SystemPrompt = "You are an expert taxonomy curator for construction equipment. " +
	"You understand the distinction between brand-specific and physics-based attributes."

// UserPrompt renders the request as the instruction sent to the model
func UserPrompt(req Request) (string, error) {
	library, err := json.MarshalIndent(req.Library, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode library")
	}
	catalog, err := json.MarshalIndent(summarize(req.Catalog), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode catalog attributes")
	}
	examples, err := json.MarshalIndent(summarize(req.Examples), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode example attributes")
	}
	schema, err := json.MarshalIndent(map[string]any{
		"required": attribute.ReducedSchema.Required,
		"allowed":  attribute.ReducedSchema.Allowed,
		"type":     []attribute.Type{attribute.String, attribute.Number, attribute.Boolean},
		"category": attribute.Categories,
	}, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode schema")
	}

	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("1. CURRENT ATTRIBUTES in the library:\n")
	b.Write(library)
	b.WriteString("\n\n2. CATALOG ATTRIBUTES extracted from manufacturer documents:\n")
	b.Write(catalog)
	b.WriteString("\n\n3. EXAMPLE ATTRIBUTES common to product examples:\n")
	b.Write(examples)
	b.WriteString("\n\n4. ATTRIBUTE SCHEMA every definition must follow:\n")
	b.Write(schema)
	b.WriteString("\n\n")
	b.WriteString(promptFooter)
	return b.String(), nil
}

const promptHeader = `ATTRIBUTE LIBRARY MODEL:
1. Each attribute has a unique snake_case code (weight, length, voltage).
2. Physics attributes are pure physical properties without product qualifiers:
   weight, not tool_weight.
3. Attributes are either "physics" (universal, measured in SI units) or "brand"
   (manufacturer specific, never carrying a unit).

PRODUCT CATALOG EXAMPLE:
* Operating Weight: 67,500 lb (30,600 kg)
* Engine Model: Cat C7.1 ACERT
* Net Power: 204 hp (152 kW)
* Maximum Dig Depth: 24 ft 1 in (7.34 m)

`

const promptFooter = `Based on this information:
1. Identify 3-5 NEW attributes that are not in the current library.
2. Distinguish physics attributes (common across manufacturers) from brand attributes.
3. Follow the schema exactly; give a unit only for physics attributes.

Return EXACTLY one JSON object:
{"new_attributes": {"attribute_code": {"name": "...", "type": "...", "category": "...", "unit": "..."}}}`

// summary is the compact form of a candidate shown to the model
type summary struct {
	Name         string             `json:"name"`
	Category     attribute.Category `json:"category,omitempty"`
	Unit         string             `json:"unit,omitempty"`
	Sample       string             `json:"sample,omitempty"`
	Occurrences  int                `json:"occurrences,omitempty"`
	Manufacturer []string           `json:"manufacturers,omitempty"`
}

func summarize(cands []attribute.Candidate) map[string]summary {
	out := make(map[string]summary, len(cands))
	for _, c := range cands {
		key := c.Code
		if key == "" {
			key = c.Key
		}
		out[key] = summary{
			Name:         c.DisplayName(),
			Category:     c.Category,
			Unit:         c.Unit,
			Sample:       c.RawValue,
			Occurrences:  c.OccurrenceCount,
			Manufacturer: c.Manufacturers,
		}
	}
	return out
}

var fence = regexp.MustCompile("^```[A-Za-z0-9]*\\s*\n?")

// StripFences removes a Markdown code fence around a model reply
func StripFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = fence.ReplaceAllString(s, "")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseResponse decodes {"new_attributes": {...}} from a model reply
func ParseResponse(content string) (map[string]map[string]any, error) {
	var reply struct {
		NewAttributes map[string]map[string]any `json:"new_attributes"`
	}
	raw := StripFences(content)
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, errors.WithDetail(errors.Wrap(err, "parse proposer reply"), excerpt(raw, replyExcerpt))
	}
	if reply.NewAttributes == nil {
		return map[string]map[string]any{}, nil
	}
	return reply.NewAttributes, nil
}

const replyExcerpt = 200

// excerpt shortens s to at most n bytes, backing off to a rune boundary
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// ToCandidates screens proposals against the reduced schema and turns the
// survivors into candidates, in code order. Proposals that fail are returned
// as rejections.
func ToCandidates(proposals map[string]map[string]any) ([]attribute.Candidate, []Rejected) {
	var (
		out      []attribute.Candidate
		rejected []Rejected
	)
	for _, code := range slices.Sorted(maps.Keys(proposals)) {
		def := proposals[code]
		if !attribute.ValidCode(code) {
			rejected = append(rejected, Rejected{Code: code, Reason: "code is not a snake-case identifier"})
			continue
		}
		if err := attribute.ValidateRaw(def, attribute.ReducedSchema); err != nil {
			rejected = append(rejected, Rejected{Code: code, Reason: err.Error()})
			continue
		}

		str := func(k string) string {
			s, _ := def[k].(string)
			return s
		}
		unit := strings.TrimSpace(str("unit"))
		c := attribute.Candidate{
			Key:             code,
			RawName:         str("name"),
			Origin:          attribute.FromProposer,
			Category:        attribute.Category(str("category")),
			Type:            attribute.Type(str("type")),
			Unit:            unit,
			Description:     str("description"),
			OccurrenceCount: 1,
			UnitObserved:    unit != "",
		}
		c.AddSource("proposer")
		out = append(out, c)
	}
	return out, rejected
}
