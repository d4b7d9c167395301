// Package schema validates model responses against the proofreading
// output contract before a result is built from them.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed response_schema.json
var responseSchemaJSON string

var responseSchema = jsonschema.MustCompileString("response_schema.json", responseSchemaJSON)

// ValidateResponse checks raw JSON against the required-keys contract:
// corrected_text (string), corrections (array of original/corrected/reason
// objects), summary (string). Extra keys the model volunteers are
// tolerated; the contract instructs the model, it cannot enforce it.
func ValidateResponse(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if err := responseSchema.Validate(v); err != nil {
		return fmt.Errorf("validate response: %w", err)
	}
	return nil
}

// JSON returns the schema source. Used by the MCP output-format resource.
func JSON() string {
	return responseSchemaJSON
}
