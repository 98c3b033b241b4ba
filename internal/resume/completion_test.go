package resume

import (
	"testing"

	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name    string
		section string
		data    any
		want    bool
	}{
		{"personal info with name and email", types.SectionPersonalInfo, types.PersonalInfo{FullName: "Ada", Email: "ada@example.com"}, true},
		{"personal info pointer", types.SectionPersonalInfo, &types.PersonalInfo{FullName: "Ada", Email: "ada@example.com"}, true},
		{"personal info missing email", types.SectionPersonalInfo, types.PersonalInfo{FullName: "Ada", Phone: "1"}, false},
		{"personal info nil", types.SectionPersonalInfo, nil, false},
		{"education all valid", types.SectionEducation, []types.EducationEntry{{ID: 1, Institution: "MIT", Degree: "BSc"}, {ID: 2, Institution: "ETH", Degree: "MSc"}}, true},
		{"education one invalid", types.SectionEducation, []types.EducationEntry{{ID: 1, Institution: "MIT", Degree: "BSc"}, {ID: 2, Institution: "ETH"}}, false},
		{"education empty", types.SectionEducation, []types.EducationEntry{}, false},
		{"experience valid", types.SectionExperience, []types.ExperienceEntry{{Company: "Acme", Position: "Dev"}}, true},
		{"experience missing position", types.SectionExperience, []types.ExperienceEntry{{Company: "Acme"}}, false},
		{"skills with unnamed empty category", types.SectionSkills, []types.SkillCategory{{ID: 1, Name: "", Skills: []string{""}}}, true},
		{"skills empty", types.SectionSkills, []types.SkillCategory{}, false},
		{"projects valid", types.SectionProjects, []types.ProjectEntry{{Title: "Compiler"}}, true},
		{"projects missing title", types.SectionProjects, []types.ProjectEntry{{Link: "x"}}, false},
		{"unknown section", "hobbies", []string{"chess"}, false},
		{"wrong data type", types.SectionEducation, "not a list", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsComplete(tt.section, tt.data))
		})
	}
}

func TestPercentage(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		assert.Equal(t, 0, Percentage(types.ResumeDocument{}))
	})

	t.Run("two of five sections", func(t *testing.T) {
		doc := types.ResumeDocument{
			PersonalInfo: types.PersonalInfo{FullName: "Ada", Email: "ada@example.com"},
			Skills:       []types.SkillCategory{{ID: 1}},
		}
		assert.Equal(t, 40, Percentage(doc))
	})

	t.Run("complete document", func(t *testing.T) {
		doc := types.ResumeDocument{
			PersonalInfo: types.PersonalInfo{FullName: "Ada", Email: "ada@example.com"},
			Education:    []types.EducationEntry{{Institution: "MIT", Degree: "BSc"}},
			Experience:   []types.ExperienceEntry{{Company: "Acme", Position: "Dev"}},
			Skills:       []types.SkillCategory{{ID: 1}},
			Projects:     []types.ProjectEntry{{Title: "Compiler"}},
		}
		c := Evaluate(doc)
		assert.Equal(t, 100, c.Percentage())
		for _, section := range types.Sections {
			assert.True(t, c[section], section)
		}
	})

	t.Run("always within bounds", func(t *testing.T) {
		for done := 0; done <= 5; done++ {
			c := Completion{}
			for i := 0; i < done; i++ {
				c[types.Sections[i]] = true
			}
			p := c.Percentage()
			assert.GreaterOrEqual(t, p, 0)
			assert.LessOrEqual(t, p, 100)
			assert.Equal(t, done*20, p)
		}
	})
}

func TestSummaryPercentage(t *testing.T) {
	doc := types.ResumeDocument{
		PersonalInfo: types.PersonalInfo{Phone: "555"},
		Education:    []types.EducationEntry{{ID: 1}},
	}
	assert.Equal(t, 40, SummaryPercentage(doc))
	assert.Equal(t, 0, SummaryPercentage(types.ResumeDocument{PersonalInfo: types.PersonalInfo{Summary: "   "}}))
}

func TestPersonalInfoProgress(t *testing.T) {
	assert.Equal(t, 0, PersonalInfoProgress(types.PersonalInfo{}))
	assert.Equal(t, 22, PersonalInfoProgress(types.PersonalInfo{FullName: "Ada", Email: "a@b.c"}))
	full := types.PersonalInfo{
		FullName: "a", JobTitle: "b", Email: "c", Phone: "d", Location: "e",
		LinkedIn: "f", GitHub: "g", Portfolio: "h", Summary: "i",
	}
	assert.Equal(t, 100, PersonalInfoProgress(full))
}

func TestEducationProgress(t *testing.T) {
	assert.Equal(t, 0, EducationProgress(nil))
	list := []types.EducationEntry{{ID: 1, Institution: "MIT", Degree: "BSc"}}
	assert.Equal(t, 29, EducationProgress(list))
}
