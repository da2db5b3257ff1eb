package notes

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// noteSchema constrains the stored richtext JSON. Kept permissive on
// style so older notes survive style additions; strict on the shapes the
// loader actually dereferences.
const noteSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "blocks"],
  "properties": {
    "version": {"type": "integer", "minimum": 1},
    "blocks": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "list": {"type": "integer", "minimum": 0, "maximum": 2},
          "runs": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "text": {"type": "string"},
                "style": {"type": "object"},
                "image": {
                  "type": "object",
                  "required": ["png", "w", "h"],
                  "properties": {
                    "png": {"type": "string"},
                    "w": {"type": "integer", "minimum": 1},
                    "h": {"type": "integer", "minimum": 1}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var compiledNoteSchema = jsonschema.MustCompileString("note.schema.json", noteSchema)

// ValidateContent checks a stored note body against the note schema.
func ValidateContent(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("note content is not valid JSON: %w", err)
	}
	if err := compiledNoteSchema.Validate(v); err != nil {
		return fmt.Errorf("note content failed schema validation: %w", err)
	}
	return nil
}
