package logger

// Standard field names for structured logging across the engine.
// Use these constants instead of raw strings to keep log queries stable.
const (
	// Identity
	FieldBatchID = "batch_id"
	FieldCode    = "code"
	FieldName    = "name"

	// Taxonomy placement
	FieldCategory    = "category"
	FieldSubcategory = "subcategory"
	FieldUnit        = "unit"
	FieldRule        = "rule"

	// Inputs
	FieldSource       = "source"
	FieldManufacturer = "manufacturer"
	FieldFile         = "file"
	FieldPath         = "path"

	// Outcomes
	FieldReason  = "reason"
	FieldError   = "error"
	FieldCount   = "count"
	FieldVersion = "version"

	// Timing
	FieldDurationMS = "duration_ms"
)
