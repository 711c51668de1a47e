// Package attribute defines the attribute record, its reduced projection and
// the ephemeral candidate that flows through extraction, classification,
// normalization and merge.
package attribute

import (
	"path"
	"regexp"
	"slices"
	"strings"
	"time"
)

// Category partitions the library into universal physical properties and
// manufacturer-specific labels.
type Category string

const (
	Physics Category = "physics"
	Brand   Category = "brand"
)

// Categories lists every category in layout order
var Categories = []Category{Physics, Brand}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	return c == Physics || c == Brand
}

// Subcategory is a storage bucket inside a category
type Subcategory string

// Physics subcategories
const (
	Mass       Subcategory = "mass"
	Dimensions Subcategory = "dimensions"
	Force      Subcategory = "force"
	Power      Subcategory = "power"
	Kinematics Subcategory = "kinematics"
	Flow       Subcategory = "flow"
	Electrical Subcategory = "electrical"
	Thermal    Subcategory = "thermal"
	Acoustic   Subcategory = "acoustic"
	Time       Subcategory = "time"
	Volume     Subcategory = "volume"
	General    Subcategory = "general"
)

// Brand subcategories
const (
	Identification Subcategory = "identification"
	Specifications Subcategory = "specifications"
)

var allowedSubcategories = map[Category][]Subcategory{
	Physics: {Mass, Dimensions, Force, Power, Kinematics, Flow, Electrical, Thermal, Acoustic, Time, Volume, General},
	Brand:   {Identification, Specifications, General},
}

// Subcategories returns the subcategories allowed for c
func Subcategories(c Category) []Subcategory {
	return slices.Clone(allowedSubcategories[c])
}

// Allows reports whether s is a valid subcategory of c
func (c Category) Allows(s Subcategory) bool {
	return slices.Contains(allowedSubcategories[c], s)
}

// Type is the value type of an attribute
type Type string

const (
	String  Type = "string"
	Number  Type = "number"
	Boolean Type = "boolean"
)

// Valid reports whether t is a known value type
func (t Type) Valid() bool {
	return t == String || t == Number || t == Boolean
}

// DateLayout is the calendar date format of added_date and last_modified
const DateLayout = "2006-01-02"

// Date formats t as a record date
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// Record is one attribute of the library, stored as its own file under
// attributes/<category>/<subcategory>/<code>.json.
type Record struct {
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	Type         Type        `json:"type"`
	Category     Category    `json:"category"`
	Subcategory  Subcategory `json:"subcategory"`
	Unit         string      `json:"unit,omitempty"`
	Description  string      `json:"description,omitempty"`
	AddedDate    string      `json:"added_date,omitempty"`
	LastModified string      `json:"last_modified,omitempty"`
}

// RelPath returns the slash-separated path of the record file relative to
// the attributes directory.
func (r Record) RelPath() string {
	return path.Join(string(r.Category), string(r.Subcategory), r.Code+".json")
}

// Reduce projects the record onto the consolidated view
func (r Record) Reduce() Reduced {
	return Reduced{
		Name:        r.Name,
		Type:        r.Type,
		Category:    r.Category,
		Unit:        r.Unit,
		Description: r.Description,
	}
}

// Reduced is the consolidated-view form of a record
type Reduced struct {
	Name        string   `json:"name"`
	Type        Type     `json:"type"`
	Category    Category `json:"category"`
	Unit        string   `json:"unit,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Quantity is a number with the unit token it was written with
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Origin records which stage produced a candidate
type Origin string

const (
	FromText     Origin = "text"
	FromExamples Origin = "examples"
	FromProposer Origin = "proposer"
)

// Candidate is an unconfirmed attribute pending classification,
// normalization and merge.
type Candidate struct {
	Key      string    `json:"key"`
	RawName  string    `json:"raw_name"`
	RawValue string    `json:"raw_value,omitempty"`
	Primary  *Quantity `json:"primary,omitempty"`
	Alt      *Quantity `json:"alt,omitempty"`
	Origin   Origin    `json:"origin"`

	// Set by classification and normalization
	Category    Category    `json:"category,omitempty"`
	Rule        string      `json:"rule,omitempty"`
	Code        string      `json:"canonical_code,omitempty"`
	Name        string      `json:"name,omitempty"`
	Subcategory Subcategory `json:"subcategory,omitempty"`
	Unit        string      `json:"unit,omitempty"`
	Type        Type        `json:"type,omitempty"`
	Description string      `json:"description,omitempty"`

	// Corpus evidence
	OccurrenceCount int      `json:"occurrence_count"`
	SourceRefs      []string `json:"source_refs,omitempty"`
	Manufacturers   []string `json:"manufacturers,omitempty"`
	UnitObserved    bool     `json:"unit_observed,omitempty"`
}

// DisplayName is the name a promoted record will carry
func (c Candidate) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return strings.TrimSpace(c.RawName)
}

// AddSource adds ref to the candidate's source set
func (c *Candidate) AddSource(ref string) {
	c.SourceRefs = addToSet(c.SourceRefs, ref)
}

// AddManufacturer adds m to the set of manufacturers the candidate was seen for
func (c *Candidate) AddManufacturer(m string) {
	c.Manufacturers = addToSet(c.Manufacturers, m)
}

// addToSet inserts v into the sorted set s
func addToSet(s []string, v string) []string {
	if v == "" {
		return s
	}
	i, found := slices.BinarySearch(s, v)
	if found {
		return s
	}
	return slices.Insert(s, i, v)
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// RawKey is the aggregation key of a raw attribute name:
// lower-cased with runs of anything but letters, digits and underscores
// replaced by underscores. Letters of any script are kept.
func RawKey(name string) string {
	return strings.Trim(nonWord.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_"), "_")
}
