package display

import (
	"encoding/json"
)

// MarshalJSON renders v as indented JSON, or compact JSON when compact is set
func MarshalJSON(v any, compact bool) ([]byte, error) {
	if compact {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}
