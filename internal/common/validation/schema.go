// Package validation wraps JSON-schema validation for request payloads.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateDocument validates an already-decoded JSON document against a
// schema expressed as a Go map.
func ValidateDocument(document, schema map[string]interface{}) (*Result, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	out := &Result{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return out, nil
}
