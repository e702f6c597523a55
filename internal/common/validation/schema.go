// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator checks documents against one compiled JSON schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles schemaJSON once so it can be reused across documents.
func NewValidator(schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks a Go value (struct, map or slice) after JSON encoding it.
func (v *Validator) Validate(document interface{}) (*ValidationResult, error) {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(document))
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

// ProductSchema returns the document schema for indexed products. dimensions fixes the
// length of the optional description_vector.
func ProductSchema(dimensions int) string {
	return fmt.Sprintf(`{
  "type": "object",
  "required": ["id", "name", "description", "brand", "price", "category", "image"],
  "properties": {
    "id":          {"type": "string", "minLength": 1},
    "name":        {"type": "string", "minLength": 1, "pattern": "\\S"},
    "description": {"type": "string", "maxLength": 2003},
    "brand":       {"type": "string", "minLength": 1},
    "price":       {"type": "number", "minimum": 0},
    "category":    {"type": "string", "minLength": 1},
    "image":       {"type": "string"},
    "description_vector": {
      "type": "array",
      "items": {"type": "number"},
      "minItems": %d,
      "maxItems": %d
    }
  }
}`, dimensions, dimensions)
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// ValidateURL validates URL format
func ValidateURL(url string) bool {
	urlPattern := regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
	return urlPattern.MatchString(url)
}
