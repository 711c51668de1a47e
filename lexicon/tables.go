package lexicon

import "github.com/underthemoss/construction-taxonomy/attribute"

// Dimension is the physical dimension a unit token measures
type Dimension string

const (
	Length      Dimension = "length"
	Mass        Dimension = "mass"
	Force       Dimension = "force"
	Power       Dimension = "power"
	Voltage     Dimension = "voltage"
	Current     Dimension = "current"
	Pressure    Dimension = "pressure"
	Capacity    Dimension = "capacity"
	Torque      Dimension = "torque"
	Speed       Dimension = "speed"
	Rotation    Dimension = "rotation"
	Temperature Dimension = "temperature"
	Sound       Dimension = "sound"
	Flow        Dimension = "flow"
	Duration    Dimension = "time"
	Angle       Dimension = "angle"
	Frequency   Dimension = "frequency"
	Area        Dimension = "area"
)

// Concept is a canonical physical attribute and the raw tokens that map to it
type Concept struct {
	Code        string                `json:"code" yaml:"code" toml:"code"`
	Label       string                `json:"label" yaml:"label" toml:"label"`
	Variants    []string              `json:"variants" yaml:"variants" toml:"variants"`
	Subcategory attribute.Subcategory `json:"subcategory" yaml:"subcategory" toml:"subcategory"`
	Unit        string                `json:"unit,omitempty" yaml:"unit,omitempty" toml:"unit,omitempty"`
}

// BrandBucket files brand codes containing one of Keywords under Subcategory
type BrandBucket struct {
	Subcategory attribute.Subcategory `json:"subcategory" yaml:"subcategory" toml:"subcategory"`
	Keywords    []string              `json:"keywords" yaml:"keywords" toml:"keywords"`
}

// Tables is the raw data a Lexicon is built from. Order is significant for
// Concepts, Prefixes and BrandSubcategories: the first match wins.
type Tables struct {
	Units              map[Dimension][]string `json:"units" yaml:"units" toml:"units"`
	BrandKeywords      []string               `json:"brand_keywords" yaml:"brand_keywords" toml:"brand_keywords"`
	PhysicsTokens      []string               `json:"physics_tokens" yaml:"physics_tokens" toml:"physics_tokens"`
	Prefixes           []string               `json:"prefixes" yaml:"prefixes" toml:"prefixes"`
	Concepts           []Concept              `json:"concepts" yaml:"concepts" toml:"concepts"`
	StopWords          []string               `json:"stop_words" yaml:"stop_words" toml:"stop_words"`
	Manufacturers      []string               `json:"manufacturers" yaml:"manufacturers" toml:"manufacturers"`
	BrandSubcategories []BrandBucket          `json:"brand_subcategories" yaml:"brand_subcategories" toml:"brand_subcategories"`
}

// DefaultTables returns a fresh copy of the built-in tables
func DefaultTables() Tables {
	return Tables{
		Units: map[Dimension][]string{
			Length:      {"mm", "cm", "m", "km", "in", "inch", "inches", "ft", "feet", "foot", "yd", "yard", "yards"},
			Mass:        {"g", "kg", "lb", "lbs", "oz", "t", "ton", "tons", "tonne", "tonnes"},
			Force:       {"n", "kn", "lbf", "kgf"},
			Power:       {"w", "kw", "mw", "hp", "bhp"},
			Voltage:     {"v", "kv", "vdc", "vac"},
			Current:     {"a", "ma", "amp", "amps", "ah"},
			Pressure:    {"psi", "bar", "pa", "kpa", "mpa"},
			Capacity:    {"l", "liter", "liters", "litre", "litres", "gal", "gallon", "gallons", "yd³", "m³", "ft³"},
			Torque:      {"nm", "n·m", "n-m", "lb-ft", "ft-lb", "ft-lbs", "lbf-ft", "lbf·ft"},
			Speed:       {"mph", "kph", "km/h", "m/s", "ft/s", "ft/min", "fpm"},
			Rotation:    {"rpm"},
			Temperature: {"°c", "°f", "degc", "degf"},
			Sound:       {"db", "dba"},
			Flow:        {"gpm", "lpm", "l/min", "cfm", "m³/h", "m³/s"},
			Duration:    {"s", "sec", "min", "h", "hr", "hrs", "hours"},
			Angle:       {"°", "deg", "degrees"},
			Frequency:   {"hz", "khz"},
			Area:        {"m²", "ft²", "sqft"},
		},
		BrandKeywords: []string{
			"manufacturer", "model", "serial", "part", "sku",
			"brand", "variant", "series", "family",
		},
		PhysicsTokens: []string{
			"weight", "height", "width", "length", "power",
			"capacity", "torque", "speed", "voltage", "pressure",
			"depth", "reach", "diameter", "force", "flow",
			"noise", "temperature", "frequency", "current", "volume",
		},
		Prefixes: []string{
			"tool", "engine", "motor", "machine", "equipment", "device", "system",
			"battery", "tank", "blade", "cutting", "drilling", "lifting",
			"maximum", "min", "max", "operating", "nominal", "rated", "standard",
			"typical", "overall", "total", "net", "gross", "empty", "full",
			"working", "idle",
		},
		Concepts: []Concept{
			{Code: "rotation_speed", Label: "Rotation Speed", Variants: []string{"rotation_speed", "rpm", "rotation", "revolution"}, Subcategory: attribute.Kinematics, Unit: "rpm"},
			{Code: "acceleration", Label: "Acceleration", Variants: []string{"acceleration"}, Subcategory: attribute.Kinematics, Unit: "m/s²"},
			{Code: "flow_rate", Label: "Flow Rate", Variants: []string{"flow", "discharge"}, Subcategory: attribute.Flow, Unit: "m³/s"},
			{Code: "noise_level", Label: "Noise Level", Variants: []string{"noise", "sound", "acoustic", "decibel"}, Subcategory: attribute.Acoustic, Unit: "dB"},
			{Code: "weight", Label: "Weight", Variants: []string{"weight", "mass"}, Subcategory: attribute.Mass, Unit: "kg"},
			{Code: "length", Label: "Length", Variants: []string{"length", "height", "width", "depth", "thickness", "diameter", "reach", "radius"}, Subcategory: attribute.Dimensions, Unit: "m"},
			{Code: "area", Label: "Area", Variants: []string{"area", "surface"}, Subcategory: attribute.Dimensions, Unit: "m²"},
			{Code: "volume", Label: "Volume", Variants: []string{"volume", "capacity", "displacement"}, Subcategory: attribute.Volume, Unit: "m³"},
			{Code: "power", Label: "Power", Variants: []string{"power", "output", "energy"}, Subcategory: attribute.Power, Unit: "W"},
			{Code: "speed", Label: "Speed", Variants: []string{"speed", "velocity"}, Subcategory: attribute.Kinematics, Unit: "m/s"},
			{Code: "torque", Label: "Torque", Variants: []string{"torque", "moment"}, Subcategory: attribute.Force, Unit: "N·m"},
			{Code: "pressure", Label: "Pressure", Variants: []string{"pressure", "psi"}, Subcategory: attribute.Force, Unit: "Pa"},
			{Code: "force", Label: "Force", Variants: []string{"force", "strength", "impact"}, Subcategory: attribute.Force, Unit: "N"},
			{Code: "voltage", Label: "Voltage", Variants: []string{"voltage", "volt"}, Subcategory: attribute.Electrical, Unit: "V"},
			{Code: "current", Label: "Current", Variants: []string{"current", "ampere", "amperage"}, Subcategory: attribute.Electrical, Unit: "A"},
			{Code: "frequency", Label: "Frequency", Variants: []string{"frequency", "hertz"}, Subcategory: attribute.Electrical, Unit: "Hz"},
			{Code: "resistance", Label: "Resistance", Variants: []string{"resistance", "ohm"}, Subcategory: attribute.Electrical, Unit: "Ω"},
			{Code: "temperature", Label: "Temperature", Variants: []string{"temperature", "heat", "thermal"}, Subcategory: attribute.Thermal, Unit: "°C"},
			{Code: "time", Label: "Time", Variants: []string{"time", "duration", "period"}, Subcategory: attribute.Time, Unit: "s"},
			{Code: "angle", Label: "Angle", Variants: []string{"angle", "degree"}, Subcategory: attribute.Dimensions, Unit: "°"},
		},
		StopWords: []string{"the", "and", "for", "with"},
		Manufacturers: []string{
			"Caterpillar", "CAT", "John Deere", "JLG", "Genie", "Bobcat", "Komatsu",
			"Kubota", "Volvo", "Hitachi", "Liebherr", "Terex", "CASE", "Hyundai",
			"Kobelco", "Doosan", "Takeuchi", "JCB", "New Holland", "Manitou", "Skyjack",
		},
		BrandSubcategories: []BrandBucket{
			{Subcategory: attribute.Identification, Keywords: []string{"model", "manufacturer", "brand", "name", "id", "number", "serial", "sku", "part"}},
			{Subcategory: attribute.Specifications, Keywords: []string{"type", "series", "configuration", "variant", "family"}},
		},
	}
}
