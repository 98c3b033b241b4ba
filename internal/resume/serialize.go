package resume

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// ForSave prepares an edited document for persistence. The untouched placeholder
// entry (id 1, every field empty) is dropped from each list, and skills are trimmed:
// blank skills are removed, unnamed categories are named "Category {id}", and
// categories left without skills are dropped.
func ForSave(doc types.ResumeDocument) types.ResumeDocument {
	out := types.ResumeDocument{
		PersonalInfo: doc.PersonalInfo,
		Education:    []types.EducationEntry{},
		Experience:   []types.ExperienceEntry{},
		Skills:       []types.SkillCategory{},
		Projects:     []types.ProjectEntry{},
	}
	for _, e := range doc.Education {
		if e.ID == 1 && isBlankEducation(e) {
			continue
		}
		out.Education = append(out.Education, e)
	}
	for _, e := range doc.Experience {
		if e.ID == 1 && isBlankExperience(e) {
			continue
		}
		e.Responsibilities = append([]string(nil), e.Responsibilities...)
		if len(e.Responsibilities) == 0 {
			e.Responsibilities = []string{""}
		}
		if e.Current {
			e.EndDate = ""
		}
		out.Experience = append(out.Experience, e)
	}
	for _, p := range doc.Projects {
		if p.ID == 1 && isBlankProject(p) {
			continue
		}
		if p.Current {
			p.EndDate = ""
		}
		out.Projects = append(out.Projects, p)
	}
	for _, c := range doc.Skills {
		skills := make([]string, 0, len(c.Skills))
		for _, s := range c.Skills {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
		if len(skills) == 0 {
			continue
		}
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = fmt.Sprintf("Category %d", c.ID)
		}
		out.Skills = append(out.Skills, types.SkillCategory{ID: c.ID, Name: name, Skills: skills})
	}
	return out
}

func isBlankEducation(e types.EducationEntry) bool {
	return allBlank(e.Institution, e.Degree, e.Field, e.StartDate, e.EndDate, e.Location, e.Description)
}

func isBlankExperience(e types.ExperienceEntry) bool {
	return !e.Current &&
		allBlank(e.Company, e.Position, e.Location, e.StartDate, e.EndDate) &&
		allBlank(e.Responsibilities...)
}

func isBlankProject(p types.ProjectEntry) bool {
	return !p.Current && allBlank(p.Title, p.Link, p.Description, p.Technologies, p.StartDate, p.EndDate)
}

func allBlank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
