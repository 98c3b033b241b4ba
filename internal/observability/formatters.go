// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/dashboard"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// sectionLabels are the wizard step names.
var sectionLabels = map[string]string{
	types.SectionPersonalInfo: "Personal Info",
	types.SectionEducation:    "Education",
	types.SectionExperience:   "Experience",
	types.SectionSkills:       "Skills",
	types.SectionProjects:     "Projects",
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintCompletion outputs which sections of doc are complete and the overall percentage.
func (p *Printer) PrintCompletion(title string, doc types.ResumeDocument) {
	completion := resume.Evaluate(doc)

	var sb strings.Builder
	if title == "" {
		title = types.DefaultTitle
	}
	sb.WriteString(fmt.Sprintf("Resume:   %s\n", title))
	if name := strings.TrimSpace(doc.PersonalInfo.FullName); name != "" {
		sb.WriteString(fmt.Sprintf("Name:     %s\n", name))
	}
	sb.WriteString("\n")

	for _, section := range types.Sections {
		mark := "○"
		if completion[section] {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("  %s %s\n", mark, sectionLabels[section]))
	}
	sb.WriteString(fmt.Sprintf("\nComplete: %d%%", completion.Percentage()))

	p.printBox("RESUME COMPLETION", sb.String())
}

// PrintDashboard outputs the dashboard counters and the first cards.
func (p *Printer) PrintDashboard(items []dashboard.Summary, stats dashboard.Stats) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total: %d   Recent: %d   Completed: %d\n", stats.Total, stats.Recent, stats.Completed))

	if len(items) == 0 {
		sb.WriteString("\nNo resumes yet")
		p.printBox("RESUMES", sb.String())
		return
	}

	sb.WriteString("\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := items[i]
		sb.WriteString(fmt.Sprintf("• %s\n", item.Title))
		sb.WriteString(fmt.Sprintf("    %d%% complete, %s", item.CompletionPercentage, item.Template))
		if item.LastModified != nil {
			sb.WriteString(", edited " + time.UnixMilli(*item.LastModified).UTC().Format("2006-01-02"))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(items)-maxItemsToShow))
	}

	p.printBox("RESUMES", sb.String())
}

// PrintExport outputs which tier produced a PDF and where it was written.
func (p *Printer) PrintExport(result *export.Result, path string) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", path))
	sb.WriteString(fmt.Sprintf("Tier:     %s\n", result.Tier))
	sb.WriteString(fmt.Sprintf("Size:     %d bytes", len(result.PDF)))
	if result.Cause != nil {
		sb.WriteString(fmt.Sprintf("\n\n⚠ rich export failed: %v", result.Cause))
	}

	p.printBox("PDF EXPORT", sb.String())
}
