package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleRecord = `{
  "resumeData": {
    "personalInfo": {"fullName": "Ada Lovelace", "email": "ada@example.com", "jobTitle": "Analyst"},
    "skills": [{"id": 1, "name": "Languages", "skills": ["Go", "SQL"]}]
  },
  "metadata": {"title": "Engine CV", "template": "minimal", "colorScheme": "blue"}
}`

// getBinaryPath returns the path to the resume_builder binary for testing
func getBinaryPath(t *testing.T) string {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", "resume_builder")
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/resume_builder ./cmd/resume_builder'", binaryPath)
	}

	return binaryPath
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
