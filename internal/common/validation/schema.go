package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// MustCompile compiles a schema literal and panics on a malformed schema.
// Schemas are package-level constants, so a failure is a programming error.
func MustCompile(name, schemaJSON string) *Schema {
	s, err := Compile(name, schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

func Compile(name, schemaJSON string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: compiled}, nil
}

// CompileGo compiles a schema held as a decoded JSON value, such as one
// read from the activity registry.
func CompileGo(name string, schema interface{}) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: compiled}, nil
}

// ValidateBytes validates a raw JSON document. A document that is not JSON
// at all is reported as an error rather than a failed result.
func (s *Schema) ValidateBytes(doc []byte) (*ValidationResult, error) {
	if !json.Valid(doc) {
		return nil, fmt.Errorf("%s: document is not valid JSON", s.name)
	}
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return toResult(result), nil
}

// ValidateGo validates an already decoded value.
func (s *Schema) ValidateGo(v interface{}) (*ValidationResult, error) {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(v))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return toResult(result), nil
}

// Check is ValidateBytes collapsed into a single error.
func (s *Schema) Check(doc []byte) error {
	res, err := s.ValidateBytes(doc)
	if err != nil {
		return err
	}
	return res.Err(s.name)
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

// Err returns nil for a valid result, otherwise every violation joined.
func (r *ValidationResult) Err(name string) error {
	if r == nil || r.Valid {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Errorf("%s validation failed: %s", name, strings.Join(msgs, "; "))
}
