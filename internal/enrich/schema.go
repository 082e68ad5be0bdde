package enrich

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// contentSchema bounds every field a model may return so that an
// over-long or malformed generation never reaches a stored deck.
const contentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": [
    "hook",
    "simple_explanation",
    "why_it_matters",
    "class_question",
    "vocabulary",
    "fun_fact",
    "attribution",
    "_meta"
  ],
  "properties": {
    "hook": {"type": "string", "maxLength": 200},
    "simple_explanation": {"type": "string", "maxLength": 2000},
    "why_it_matters": {"type": "string", "maxLength": 2000},
    "class_question": {"type": "string", "maxLength": 500},
    "vocabulary": {
      "type": "array",
      "maxItems": 20,
      "items": {
        "type": "object",
        "required": ["term", "definition"],
        "properties": {
          "term": {"type": "string", "maxLength": 64},
          "definition": {"type": "string", "maxLength": 300}
        }
      }
    },
    "fun_fact": {"type": "string", "maxLength": 500},
    "attribution": {"type": "string", "maxLength": 300},
    "_meta": {
      "type": "object",
      "properties": {
        "model": {"type": "string"}
      }
    }
  }
}`

var contentSchemaLoader = gojsonschema.NewStringLoader(contentSchema)

// SchemaError reports enrichment content that decoded as JSON but violated
// the structural contract. Unlike transport failures it is surfaced to the
// caller so the violation is visible in logs before the deck degrades.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("enrichment content failed validation: %s", strings.Join(e.Violations, "; "))
}

// ValidateContent checks a raw JSON document against the content schema.
func ValidateContent(document []byte) error {
	result, err := gojsonschema.Validate(contentSchemaLoader, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("validate enrichment content: %w", err)
	}
	if result.Valid() {
		return nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return &SchemaError{Violations: violations}
}
