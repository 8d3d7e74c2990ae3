package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/todolist-go/internal/utils"
)

const schemaURL = "todolist.schema.json"

// bundledSchema describes the data file: an ordered array of task records.
const bundledSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "todolist data file",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["title", "creation_date"],
    "properties": {
      "id": { "type": "string", "minLength": 1 },
      "title": { "type": "string", "minLength": 1 },
      "description": { "type": ["string", "null"] },
      "creation_date": { "type": "string", "minLength": 1 },
      "due_date": {
        "type": ["string", "null"],
        "pattern": "^([0-9]{1,2}-[0-9]{1,2}-[0-9]{4})?$"
      },
      "completed": { "type": "boolean" }
    }
  }
}
`

// BundledSchema returns the embedded data file schema.
func BundledSchema() []byte {
	return []byte(bundledSchema)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(bundledSchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// ValidateData checks raw data file content against the bundled schema.
// It returns one *ValidationError per violation, or a single error when the
// content is not JSON at all.
func ValidateData(data []byte) []error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return []error{fmt.Errorf("parse data file: %w", err)}
	}

	schema, err := compiledSchema()
	if err != nil {
		return []error{fmt.Errorf("compile schema: %w", err)}
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return []error{err}
		}
		var errs []error
		collectSchemaErrors(&errs, ve)
		return errs
	}
	return nil
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}
