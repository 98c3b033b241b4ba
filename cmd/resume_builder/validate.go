package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/schemas"
	recordschemas "github.com/jonathan/resume-builder/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a resume file against the record schema",
	Long: `Checks a resume record file before it is imported. Uses the built-in
record schema unless --schema points at another schema file.`,
	RunE: runValidate,
}

var (
	validateInput  string
	validateSchema string
)

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to resume record, JSON or YAML (required)")
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Path to a JSON Schema file (defaults to the built-in record schema)")
	_ = validateCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	format := resume.FormatOf(validateInput)
	if validateSchema != "" {
		schemaPath := schemas.ResolveSchemaPath(validateSchema)
		if schemaPath == "" {
			return fmt.Errorf("schema file not found: %s", validateSchema)
		}
		if format == resume.FormatJSON {
			if err := schemas.ValidateJSON(schemaPath, validateInput); err != nil {
				return err
			}
			return printValid(cmd)
		}
	}

	data, err := os.ReadFile(validateInput)
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}
	decoded, err := resume.Decode(data, format)
	if err != nil {
		return fmt.Errorf("failed to parse resume file: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(decoded); err != nil {
		return err
	}
	return printValid(cmd)
}

// loadSchema compiles --schema, or the built-in record schema.
func loadSchema() (*schemas.Schema, error) {
	if validateSchema == "" {
		return schemas.Compile("resume_record.schema.json", recordschemas.ResumeRecord)
	}
	path := schemas.ResolveSchemaPath(validateSchema)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return schemas.Compile(path, string(content))
}

func printValid(cmd *cobra.Command) error {
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is a valid resume record\n", validateInput)
	return nil
}
