package document

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// documentSchema is intentionally permissive: it pins the top-level shape and
// the fields the pipeline depends on, and leaves vendor extensions alone.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "spider": {"type": "string"},
    "wallpaper": {"type": "string"},
    "sites": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "key": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "type": {"type": "integer", "minimum": 0, "maximum": 4},
          "api": {"type": "string"},
          "jar": {"type": "string"},
          "searchable": {"type": "integer"},
          "quickSearch": {"type": "integer"},
          "filterable": {"type": "integer"}
        },
        "required": ["key", "api"]
      }
    },
    "parses": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "type": {"type": "integer"},
          "url": {"type": "string"}
        },
        "required": ["name"]
      }
    },
    "lives": {"type": "array"}
  },
  "required": ["sites"]
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchema))
		if err != nil {
			schemaErr = fmt.Errorf("failed to parse document schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("document.json", doc); err != nil {
			schemaErr = fmt.Errorf("failed to register document schema: %w", err)
			return
		}

		schema, schemaErr = compiler.Compile("document.json")
	})
	return schema, schemaErr
}

// ValidateSchema checks raw document bytes against the document schema
// without decoding them into the model.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("document cannot be empty")
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("document is not valid JSON: %w", err)
	}

	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("document failed schema validation: %w", err)
	}

	return nil
}
