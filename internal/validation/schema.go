// Package validation validates JSON documents against JSON Schemas.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FieldError is a single schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error collects every violation found in one document.
type Error struct {
	Schema string       `json:"schema"`
	Errors []FieldError `json:"errors"`
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return fmt.Sprintf("%s: document does not match schema: %s", e.Schema, strings.Join(msgs, "; "))
}

// Schema is a compiled JSON Schema. It is safe for concurrent use.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// NewSchema compiles the schema source.
func NewSchema(name, source string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: compiled}, nil
}

// MustSchema is like NewSchema but panics on error. Use it for embedded schemas only.
func MustSchema(name, source string) *Schema {
	s, err := NewSchema(name, source)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name used in error messages.
func (s *Schema) Name() string {
	return s.name
}

// Validate checks a raw JSON document. Malformed JSON is reported as a plain error,
// schema violations as *Error.
func (s *Schema) Validate(document []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("%s: failed to read document: %w", s.name, err)
	}

	if result.Valid() {
		return nil
	}

	verr := &Error{Schema: s.name}
	for _, desc := range result.Errors() {
		verr.Errors = append(verr.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return verr
}
