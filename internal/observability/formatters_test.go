package observability

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/jonathan/resume-builder/internal/dashboard"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintCompletion(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	doc := types.ResumeDocument{
		PersonalInfo: types.PersonalInfo{FullName: "Ada Lovelace", Email: "ada@example.com"},
	}
	p.PrintCompletion("Backend CV", doc)
	output := buf.String()

	assert.Contains(t, output, "RESUME COMPLETION")
	assert.Contains(t, output, "Backend CV")
	assert.Contains(t, output, "Ada Lovelace")
	assert.Contains(t, output, "✓ Personal Info")
	assert.Contains(t, output, "○ Education")
	assert.Contains(t, output, "Complete: 20%")
}

func TestPrintCompletion_DefaultTitle(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCompletion("", types.ResumeDocument{})

	assert.Contains(t, buf.String(), types.DefaultTitle)
	assert.Contains(t, buf.String(), "Complete: 0%")
}

func TestPrintDashboard(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	edited := int64(1700000000000)
	var items []dashboard.Summary
	for i := 0; i < 7; i++ {
		items = append(items, dashboard.Summary{
			ID:                   fmt.Sprintf("r%d", i),
			Title:                fmt.Sprintf("CV %d", i),
			Template:             "modern",
			CompletionPercentage: 40,
			LastModified:         &edited,
		})
	}
	p.PrintDashboard(items, dashboard.Stats{Total: 7, Recent: 2, Completed: 1})
	output := buf.String()

	assert.Contains(t, output, "Total: 7   Recent: 2   Completed: 1")
	assert.Contains(t, output, "CV 0")
	assert.Contains(t, output, "40% complete, modern, edited 2023-11-14")
	assert.NotContains(t, output, "CV 6")
	assert.Contains(t, output, "... and 2 more")
}

func TestPrintDashboard_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintDashboard(nil, dashboard.Stats{})
	assert.Contains(t, buf.String(), "No resumes yet")
}

func TestPrintExport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintExport(&export.Result{PDF: []byte("%PDF"), Tier: export.TierSimple, Cause: errors.New("browser crashed")}, "out/Ada.pdf")
	output := buf.String()

	assert.Contains(t, output, "PDF EXPORT")
	assert.Contains(t, output, "out/Ada.pdf")
	assert.Contains(t, output, "simple")
	assert.Contains(t, output, "4 bytes")
	assert.Contains(t, output, "browser crashed")
}

func TestPrintExport_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintExport(nil, "x.pdf")
	assert.Empty(t, buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééééééé...", truncate("éééééééééééé", 10))
}
