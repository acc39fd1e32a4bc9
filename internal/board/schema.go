package board

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed board.schema.json
var boardSchemaJSON []byte

// schemaResource names the embedded schema inside the compiler
const schemaResource = "board.schema.json"

func compileSchema() (*jsonschema.Schema, error) {
	var doc interface{}
	if err := json.Unmarshal(boardSchemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse board schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, doc); err != nil {
		return nil, fmt.Errorf("failed to add board schema: %w", err)
	}
	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile board schema: %w", err)
	}
	return schema, nil
}

// formatValidationError lists every failing location of a schema violation
func formatValidationError(err error) error {
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		var lines []string
		collectErrors(validationErr, &lines)
		return fmt.Errorf("%w:\n%s", ErrSchemaViolation, strings.Join(lines, "\n"))
	}
	return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
}

func collectErrors(err *jsonschema.ValidationError, lines *[]string) {
	// Only leaves say what is actually wrong
	if len(err.Causes) == 0 {
		*lines = append(*lines, formatError(err))
	}
	for _, cause := range err.Causes {
		collectErrors(cause, lines)
	}
}

func formatError(err *jsonschema.ValidationError) string {
	location := "/" + strings.Join(err.InstanceLocation, "/")

	if err.ErrorKind != nil {
		if keywords := err.ErrorKind.KeywordPath(); len(keywords) > 0 {
			return fmt.Sprintf("  - at %s: %s validation failed", location, strings.Join(keywords, "."))
		}
	}
	return fmt.Sprintf("  - at %s: validation failed", location)
}
