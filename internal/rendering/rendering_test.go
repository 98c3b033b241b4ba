package rendering

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTree(t *testing.T, tree *DisplayTree) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tree.HTML))
	require.NoError(t, err)
	return doc
}

func sampleDocument() types.ResumeDocument {
	return types.ResumeDocument{
		PersonalInfo: types.PersonalInfo{FullName: "Ada Lovelace", JobTitle: "Engineer", Email: "ada@example.com"},
		Experience: []types.ExperienceEntry{
			{ID: 1, Company: "Analytical Engines", Position: "Programmer", StartDate: "2024-03", Current: true, Responsibilities: []string{"Wrote notes", " "}},
		},
		Education: []types.EducationEntry{{ID: 1, Institution: "Home", Degree: "BSc", Field: "Mathematics", StartDate: "2019-09", EndDate: "2023-06"}},
		Skills:    []types.SkillCategory{{ID: 1, Name: "Languages", Skills: []string{"Go", ""}}},
		Projects:  []types.ProjectEntry{{ID: 1, Title: "Difference Engine", Technologies: "Brass, Gears"}},
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03", "Mar 2024"},
		{"2024-03-15", "Mar 2024"},
		{"2021-12-01T00:00:00Z", "Dec 2021"},
		{"", ""},
		{"not-a-date", "not-a-date"},
		{"2024-13", "2024-13"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.in))
		})
	}
}

func TestDateRange(t *testing.T) {
	assert.Equal(t, "Mar 2024 - Present", DateRange("2024-03", "2025-01", true))
	assert.Equal(t, "Mar 2024 - Jan 2025", DateRange("2024-03", "2025-01", false))
	assert.Equal(t, "Start Date - End Date", DateRange("", "", false))
}

func TestIsSectionEmpty(t *testing.T) {
	var doc types.ResumeDocument
	for _, s := range types.Sections {
		assert.True(t, IsSectionEmpty(doc, s), s)
	}
	doc.PersonalInfo.GitHub = "x"
	doc.Skills = []types.SkillCategory{{ID: 1}}
	assert.False(t, IsSectionEmpty(doc, types.SectionPersonalInfo))
	assert.False(t, IsSectionEmpty(doc, types.SectionSkills))
	assert.True(t, IsSectionEmpty(doc, "unknown"))
}

func TestRender_AllTemplates(t *testing.T) {
	for _, kind := range types.Templates {
		t.Run(string(kind), func(t *testing.T) {
			tree, err := Render(kind, sampleDocument(), Style{FontFamily: "Roboto", ColorScheme: "teal"})
			require.NoError(t, err)
			assert.Equal(t, kind, tree.Kind)

			doc := parseTree(t, tree)
			target := doc.Find("#" + TargetID)
			require.Equal(t, 1, target.Length())
			assert.True(t, target.HasClass("template-"+string(kind)))

			text := target.Text()
			assert.Contains(t, text, "Ada Lovelace")
			assert.Contains(t, text, "Mar 2024 - Present")
			assert.Contains(t, text, "BSc in Mathematics")
			assert.Equal(t, 1, target.Find(".section-experience li").Length(), "blank responsibilities are dropped")
			assert.Equal(t, 2, target.Find(".section-projects .chip").Length())
			assert.Contains(t, tree.HTML, "#009688")
			assert.Contains(t, tree.HTML, "'Roboto', sans-serif")
		})
	}
}

func TestRender_PlaceholdersAndEmptySections(t *testing.T) {
	doc := types.ResumeDocument{
		Experience: []types.ExperienceEntry{{ID: 1, Responsibilities: []string{""}}},
		Education:  []types.EducationEntry{{ID: 1}},
		Projects:   []types.ProjectEntry{{ID: 1}},
	}
	for _, kind := range types.Templates {
		t.Run(string(kind), func(t *testing.T) {
			tree, err := Render(kind, doc, Style{})
			require.NoError(t, err)
			target := parseTree(t, tree).Find("#" + TargetID)
			text := target.Text()
			for _, placeholder := range []string{PlaceholderName, PlaceholderPosition, PlaceholderCompany, PlaceholderInstitution, PlaceholderDegree, PlaceholderProject} {
				assert.Contains(t, text, placeholder)
			}
			assert.NotContains(t, text, "undefined")
			assert.Equal(t, 0, target.Find(".section-skills").Length(), "empty skills section is omitted")
			assert.Equal(t, 0, target.Find(".section-summary").Length())
			assert.Contains(t, tree.HTML, "#7B68EE", "unknown scheme falls back to lavender")
		})
	}
}

func TestRender_EscapesUserContent(t *testing.T) {
	doc := types.ResumeDocument{PersonalInfo: types.PersonalInfo{
		FullName: "<script>alert(1)</script>",
		LinkedIn: "javascript:alert(1)",
	}}
	tree, err := Render(types.TemplateMinimal, doc, Style{})
	require.NoError(t, err)
	assert.NotContains(t, tree.HTML, "<script>alert(1)</script>")
	assert.NotContains(t, tree.HTML, `href="javascript:`)
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render("fancy", sampleDocument(), Style{})
	var templateErr *TemplateError
	require.ErrorAs(t, err, &templateErr)
	assert.Contains(t, err.Error(), "unknown template")

	tree, err := Render("", sampleDocument(), Style{})
	require.NoError(t, err)
	assert.Equal(t, types.TemplateModern, tree.Kind)
}

func TestLookupStyle(t *testing.T) {
	s, ok := LookupColorScheme("purple")
	require.True(t, ok)
	assert.Equal(t, "lavender", s.Key)

	s, ok = LookupColorScheme("Midnight")
	require.True(t, ok)
	assert.Equal(t, "#303f9f", s.Primary)

	_, ok = LookupColorScheme("neon")
	assert.False(t, ok)

	f, ok := LookupFont("'Open Sans', sans-serif")
	require.True(t, ok)
	assert.Equal(t, "Open Sans", f.Name)
}
