package schemas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer"}
	}
}`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestValidateJSON(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"schema.json":        personSchema,
		"valid.json":         `{"name": "Ada", "age": 36}`,
		"missing_field.json": `{"age": 36}`,
		"wrong_type.json":    `{"name": "Ada", "age": "old"}`,
	})
	schemaPath := filepath.Join(dir, "schema.json")

	tests := []struct {
		name      string
		jsonFile  string
		wantError bool
	}{
		{name: "valid", jsonFile: "valid.json"},
		{name: "missing required field", jsonFile: "missing_field.json", wantError: true},
		{name: "wrong type", jsonFile: "wrong_type.json", wantError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(schemaPath, filepath.Join(dir, tt.jsonFile))
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Greater(t, len(validationErr.Errors), 0)
		})
	}
}

func TestValidateJSON_MissingFiles(t *testing.T) {
	dir := writeFiles(t, map[string]string{"schema.json": personSchema, "doc.json": `{}`})

	err := ValidateJSON(filepath.Join(dir, "nope.json"), filepath.Join(dir, "doc.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = ValidateJSON(filepath.Join(dir, "schema.json"), filepath.Join(dir, "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_MalformedJSON(t *testing.T) {
	dir := writeFiles(t, map[string]string{"schema.json": personSchema, "bad.json": "{ invalid json }"})
	err := ValidateJSON(filepath.Join(dir, "schema.json"), filepath.Join(dir, "bad.json"))
	require.Error(t, err)
}

func TestValidateJSONString(t *testing.T) {
	assert.NoError(t, ValidateJSONString(personSchema, `{"name": "test"}`))

	err := ValidateJSONString(personSchema, `{"age": 30}`)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)

	err = ValidateJSONBytes(`{"type": 12}`, []byte(`{}`))
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "(string schema)", loadErr.Path)
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, ValidateValue(personSchema, map[string]any{"name": "Ada"}))

	err := ValidateValue(personSchema, map[string]any{"name": 1})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Errors[0].Field)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "1. name: is required")
	assert.Contains(t, errorMsg, "2. age")
}

func TestResolveSchemaPath(t *testing.T) {
	path := ResolveSchemaPath(filepath.Join("schemas", "resume_record.schema.json"))
	require.NotEmpty(t, path)
	assert.True(t, filepath.IsAbs(path))

	assert.Empty(t, ResolveSchemaPath("schemas/does_not_exist.schema.json"))
}

func TestValidateJSON_ResumeRecordSchema(t *testing.T) {
	schemaPath := ResolveSchemaPath(filepath.Join("schemas", "resume_record.schema.json"))
	require.NotEmpty(t, schemaPath)
	dir := writeFiles(t, map[string]string{
		"ok.json":  `{"resumeData": {"education": [{"id": 1, "institution": "MIT"}]}}`,
		"bad.json": `{"resumeData": {"education": [{"institution": "MIT"}]}}`,
	})

	assert.NoError(t, ValidateJSON(schemaPath, filepath.Join(dir, "ok.json")))
	var validationErr *ValidationError
	require.ErrorAs(t, ValidateJSON(schemaPath, filepath.Join(dir, "bad.json")), &validationErr)
}

func TestCompile(t *testing.T) {
	s, err := Compile("person", personSchema)
	require.NoError(t, err)
	assert.NoError(t, s.ValidateBytes([]byte(`{"name": "Ada"}`)))
	assert.Error(t, s.ValidateBytes([]byte(`{"name": `)))

	var validationErr *ValidationError
	require.ErrorAs(t, s.Validate(map[string]any{"age": 3}), &validationErr)
	assert.Len(t, validationErr.Errors, 1)

	_, err = Compile("broken", `{"required": "name"}`)
	var loadErr *SchemaLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "broken", loadErr.Path)
}

func TestValidateValue_CachesCompiledSchema(t *testing.T) {
	require.NoError(t, ValidateValue(personSchema, map[string]any{"name": "a"}))
	first, ok := compiled.Load(personSchema)
	require.True(t, ok)
	require.NoError(t, ValidateJSONString(personSchema, `{"name": "b"}`))
	second, _ := compiled.Load(personSchema)
	assert.Same(t, first, second)
}
