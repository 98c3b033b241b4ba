// Package schemas validates JSON documents against JSON Schemas.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// FieldError is one failed constraint, located by its dotted field path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every constraint a document failed.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, fe := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}

// SchemaLoadError means the schema itself could not be read or compiled.
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Schema is a compiled JSON Schema, safe for concurrent use.
type Schema struct {
	source string
	schema *gojsonschema.Schema
}

// Compile parses schema content. source names it in errors.
func Compile(source, content string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, &SchemaLoadError{Path: source, Message: "invalid schema", Cause: err}
	}
	return &Schema{source: source, schema: s}, nil
}

// Validate checks an already decoded value (maps, slices, scalars).
func (s *Schema) Validate(value any) error {
	return s.check(gojsonschema.NewGoLoader(value))
}

// ValidateBytes checks raw JSON.
func (s *Schema) ValidateBytes(data []byte) error {
	return s.check(gojsonschema.NewBytesLoader(data))
}

func (s *Schema) check(doc gojsonschema.JSONLoader) error {
	result, err := s.schema.Validate(doc)
	if err != nil {
		return fmt.Errorf("failed to read document for %s: %w", s.source, err)
	}
	if result.Valid() {
		return nil
	}
	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

// compiled caches schemas given as content, keyed by that content.
var compiled sync.Map

func cached(content string) (*Schema, error) {
	if s, ok := compiled.Load(content); ok {
		return s.(*Schema), nil
	}
	s, err := Compile("(string schema)", content)
	if err != nil {
		return nil, err
	}
	actual, _ := compiled.LoadOrStore(content, s)
	return actual.(*Schema), nil
}

// ValidateValue validates a decoded value against schema content.
func ValidateValue(schemaContent string, value any) error {
	s, err := cached(schemaContent)
	if err != nil {
		return err
	}
	return s.Validate(value)
}

// ValidateJSONBytes validates raw JSON against schema content.
func ValidateJSONBytes(schemaContent string, data []byte) error {
	s, err := cached(schemaContent)
	if err != nil {
		return err
	}
	return s.ValidateBytes(data)
}

// ValidateJSONString validates JSON text against schema content.
func ValidateJSONString(schemaContent, jsonContent string) error {
	return ValidateJSONBytes(schemaContent, []byte(jsonContent))
}

// ValidateJSON validates the JSON file at jsonPath against the schema file at
// schemaPath. Relative $refs in the schema resolve against its directory.
func ValidateJSON(schemaPath, jsonPath string) error {
	schemaAbs, err := existingFile(schemaPath, "schema")
	if err != nil {
		return err
	}
	jsonAbs, err := existingFile(jsonPath, "JSON")
	if err != nil {
		return err
	}

	compiledSchema, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://" + schemaAbs))
	if err != nil {
		return &SchemaLoadError{Path: schemaAbs, Message: "invalid schema", Cause: err}
	}
	s := &Schema{source: schemaAbs, schema: compiledSchema}
	return s.check(gojsonschema.NewReferenceLoader("file://" + jsonAbs))
}

func existingFile(path, kind string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s path: %w", kind, err)
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return "", fmt.Errorf("%s file not found: %s", kind, abs)
	}
	return abs, nil
}

// ResolveSchemaPath finds relativePath from the working directory or up to two
// parents, so commands and tests run from package directories see the repo's
// schemas/. Returns "" when nothing exists.
func ResolveSchemaPath(relativePath string) string {
	for _, candidate := range []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	} {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if _, err := os.Stat(abs); err == nil {
			return abs
		}
	}
	return ""
}
