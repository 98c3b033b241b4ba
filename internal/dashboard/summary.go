// Package dashboard derives the filtered, sorted resume list shown on a user's dashboard.
package dashboard

import (
	"sort"
	"time"

	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/types"
)

// RecentWindow is how far back an edit counts as recent.
const RecentWindow = 7 * 24 * time.Hour

// Summary is one dashboard card.
type Summary struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	LastModified         *int64          `json:"lastModified"`
	CreatedAt            *int64          `json:"createdAt"`
	Template             string          `json:"template"`
	ColorScheme          string          `json:"colorScheme"`
	Shared               bool            `json:"shared"`
	CompletionPercentage int             `json:"completionPercentage"`
	Sections             map[string]bool `json:"sections"`
	SectionsLeft         int             `json:"sectionsLeft"`
}

// Summarize builds the card for one stored record tree.
func Summarize(id string, raw any) Summary {
	rec := resume.NormalizeRecord(raw)
	doc := rec.ResumeData
	sections := map[string]bool{
		types.SectionPersonalInfo: resume.HasData(types.SectionPersonalInfo, doc.PersonalInfo),
		types.SectionEducation:    resume.HasData(types.SectionEducation, doc.Education),
		types.SectionExperience:   resume.HasData(types.SectionExperience, doc.Experience),
		types.SectionSkills:       resume.HasData(types.SectionSkills, doc.Skills),
		types.SectionProjects:     resume.HasData(types.SectionProjects, doc.Projects),
	}
	left := 0
	for _, done := range sections {
		if !done {
			left++
		}
	}
	return Summary{
		ID:                   id,
		Title:                rec.Metadata.Title,
		LastModified:         rec.Metadata.LastModified,
		CreatedAt:            rec.Metadata.CreatedAt,
		Template:             rec.Metadata.Template,
		ColorScheme:          rec.Metadata.ColorScheme,
		Shared:               rec.Metadata.Shared,
		CompletionPercentage: resume.SummaryPercentage(doc),
		Sections:             sections,
		SectionsLeft:         left,
	}
}

// Summaries builds cards for every record under a user's resumes node, ordered by id.
func Summaries(raw any) []Summary {
	records, _ := raw.(map[string]any)
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Summary, 0, len(ids))
	for _, id := range ids {
		out = append(out, Summarize(id, records[id]))
	}
	return out
}

// Stats are the dashboard counters.
type Stats struct {
	Total     int `json:"total"`
	Recent    int `json:"recent"`
	Completed int `json:"completed"`
}

// ComputeStats counts all resumes, those edited within RecentWindow of now, and
// those fully complete.
func ComputeStats(items []Summary, now time.Time) Stats {
	cutoff := now.Add(-RecentWindow)
	s := Stats{Total: len(items)}
	for _, it := range items {
		if it.LastModified != nil && time.UnixMilli(*it.LastModified).After(cutoff) {
			s.Recent++
		}
		if it.CompletionPercentage == 100 {
			s.Completed++
		}
	}
	return s
}
