package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	internalschemas "github.com/jonathan/resume-builder/internal/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	schemaFiles := []string{
		"resume_record.schema.json",
	}

	for _, schemaFile := range schemaFiles {
		t.Run(schemaFile, func(t *testing.T) {
			content, err := os.ReadFile(filepath.Join(".", schemaFile))
			require.NoError(t, err, "Failed to read schema file")

			var schema map[string]interface{}
			require.NoError(t, json.Unmarshal(content, &schema), "Schema file is not valid JSON")
			assert.Contains(t, schema, "$schema")
			assert.Contains(t, schema, "title")
		})
	}
}

func TestResumeRecord_Embedded(t *testing.T) {
	content, err := os.ReadFile("resume_record.schema.json")
	require.NoError(t, err)
	assert.Equal(t, string(content), ResumeRecord)
}

func TestResumeRecord_Validates(t *testing.T) {
	valid := `{
		"resumeData": {
			"personalInfo": {"fullName": "Ada Lovelace", "email": "ada@example.com"},
			"experience": [{"id": 1, "company": "Engines", "current": true, "responsibilities": ["Notes"]}],
			"skills": [{"id": 1, "name": "Math", "skills": ["Analysis"]}]
		},
		"metadata": {"title": "CV", "template": "creative", "createdAt": 1700000000000}
	}`
	assert.NoError(t, internalschemas.ValidateJSONString(ResumeRecord, valid))

	tests := map[string]string{
		"missing resumeData": `{"metadata": {}}`,
		"unknown template":   `{"resumeData": {}, "metadata": {"template": "fancy"}}`,
		"string id":          `{"resumeData": {"education": [{"id": "1"}]}}`,
		"unknown section":    `{"resumeData": {"hobbies": []}}`,
		"skills not strings": `{"resumeData": {"skills": [{"id": 1, "skills": [1, 2]}]}}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			err := internalschemas.ValidateJSONString(ResumeRecord, doc)
			var validationErr *internalschemas.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}
