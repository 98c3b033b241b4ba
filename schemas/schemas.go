// Package schemas holds the JSON Schemas for documents accepted from outside the service.
package schemas

import _ "embed"

// ResumeRecord is the schema for an imported resume record.
//
//go:embed resume_record.schema.json
var ResumeRecord string
