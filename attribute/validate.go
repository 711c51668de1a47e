package attribute

import (
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/underthemoss/construction-taxonomy/errors"
)

// ValidationError describes one schema violation of one record
type ValidationError struct {
	Code   string `json:"code,omitempty"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Reason)
}

// ValidationErrors aggregates every violation found in a record
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether a violation was recorded for field
func (es ValidationErrors) Has(field string) bool {
	return slices.ContainsFunc(es, func(e *ValidationError) bool { return e.Field == field })
}

// Schema lists the top-level fields a JSON attribute object may carry
type Schema struct {
	Name     string
	Required []string
	Allowed  []string
}

// FileSchema governs the per-attribute files of the hierarchical store
var FileSchema = Schema{
	Name:     "record",
	Required: []string{"name", "type", "category"},
	Allowed:  []string{"code", "name", "type", "category", "subcategory", "unit", "description", "added_date", "last_modified"},
}

// ReducedSchema governs entries of the consolidated view and proposer output
var ReducedSchema = Schema{
	Name:     "reduced",
	Required: []string{"name", "type", "category"},
	Allowed:  []string{"name", "type", "category", "unit", "description"},
}

var codePattern = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

// ValidCode reports whether code is a snake-case identifier
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// ValidateRaw checks a decoded JSON object against schema. It reports every
// violation at once; the returned error is marked errors.ErrInvalid and
// unwraps to ValidationErrors.
func ValidateRaw(raw map[string]any, schema Schema) error {
	code, _ := raw["code"].(string)
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Code: code, Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	for _, field := range schema.Required {
		if _, ok := raw[field]; !ok {
			add(field, "missing required field")
		}
	}

	strs := make(map[string]string, len(raw))
	for _, field := range slices.Sorted(maps.Keys(raw)) {
		if !slices.Contains(schema.Allowed, field) {
			add(field, "unknown field")
			continue
		}
		s, ok := raw[field].(string)
		if !ok {
			add(field, "must be a string")
			continue
		}
		strs[field] = s
	}

	checkFields(strs, add)

	if len(errs) == 0 {
		return nil
	}
	return errors.Mark(errs, errors.ErrInvalid)
}

// checkFields applies the value rules shared by raw and typed validation.
// Only fields present in f are checked.
func checkFields(f map[string]string, add func(field, format string, args ...any)) {
	if code, ok := f["code"]; ok && !ValidCode(code) {
		add("code", "%q is not a snake-case identifier", code)
	}
	if name, ok := f["name"]; ok && strings.TrimSpace(name) == "" {
		add("name", "must not be empty")
	}
	if t, ok := f["type"]; ok && !Type(t).Valid() {
		add("type", "must be one of string, number, boolean")
	}

	category, hasCategory := f["category"]
	if hasCategory && !Category(category).Valid() {
		add("category", "must be one of physics, brand")
		hasCategory = false
	}
	if unit, ok := f["unit"]; ok && hasCategory && Category(category) == Brand && unit != "" {
		add("unit", "unit not allowed on brand")
	}
	if sub, ok := f["subcategory"]; ok && hasCategory && !Category(category).Allows(Subcategory(sub)) {
		add("subcategory", "%q is not a %s subcategory", sub, category)
	}

	for _, field := range []string{"added_date", "last_modified"} {
		if d, ok := f[field]; ok {
			if _, err := time.Parse(DateLayout, d); err != nil {
				add(field, "must be a YYYY-MM-DD date")
			}
		}
	}
}

// ValidateRecord checks a typed record, including the fields the hierarchical
// layout depends on (code and subcategory).
func ValidateRecord(r Record) error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Code: r.Code, Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	f := map[string]string{
		"code":        r.Code,
		"name":        r.Name,
		"type":        string(r.Type),
		"category":    string(r.Category),
		"subcategory": string(r.Subcategory),
	}
	if r.Unit != "" {
		f["unit"] = r.Unit
	}
	if r.AddedDate != "" {
		f["added_date"] = r.AddedDate
	}
	if r.LastModified != "" {
		f["last_modified"] = r.LastModified
	}
	checkFields(f, add)

	if len(errs) == 0 {
		return nil
	}
	return errors.Mark(errs, errors.ErrInvalid)
}

// Validate is shorthand for ValidateRecord(r)
func (r Record) Validate() error {
	return ValidateRecord(r)
}

// DecodeRecord parses and validates one record file
func DecodeRecord(data []byte) (Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, errors.Mark(ValidationErrors{{Field: "$", Reason: "malformed JSON: " + err.Error()}}, errors.ErrInvalid)
	}
	if err := ValidateRaw(raw, FileSchema); err != nil {
		return Record{}, err
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, errors.Wrap(err, "decode record")
	}
	return r, nil
}

// AsValidationErrors extracts the violations carried by err, if any
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var errs ValidationErrors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}
