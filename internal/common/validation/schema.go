// Package validation checks JSON documents (job variables, stored preset
// documents) against JSON schemas.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON schema.
type Schema struct {
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

// Compile parses a JSON schema document.
func Compile(schemaJSON string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// MustCompile is Compile for schemas embedded in the binary.
func MustCompile(schemaJSON string) *Schema {
	s, err := Compile(schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a decoded Go value (maps, slices, scalars).
func (s *Schema) Validate(document interface{}) (*ValidationResult, error) {
	return s.validate(gojsonschema.NewGoLoader(document))
}

// ValidateBytes checks a raw JSON document.
func (s *Schema) ValidateBytes(document []byte) (*ValidationResult, error) {
	return s.validate(gojsonschema.NewBytesLoader(document))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) (*ValidationResult, error) {
	result, err := s.schema.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Error joins all messages; empty when the document is valid.
func (vr *ValidationResult) Error() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

var presetNamePattern = regexp.MustCompile(`^[\p{L}\p{N}_\s\-]+$`)

// ValidPresetName reports whether the parameter service accepts name:
// letters, digits, underscore, whitespace and dashes.
func ValidPresetName(name string) bool {
	return presetNamePattern.MatchString(name)
}

var taskTypePattern = regexp.MustCompile(`^[a-z]+(\.[a-z]+){2}$`)

// ValidateTaskType enforces the domain.subdomain.action naming of job types.
func ValidateTaskType(taskType string) error {
	if !taskTypePattern.MatchString(taskType) {
		return fmt.Errorf("task type must follow format: domain.subdomain.action (e.g., nc.parameters.prepare)")
	}
	return nil
}
