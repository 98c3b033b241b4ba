package rendering

import (
	"html/template"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// Placeholders shown in place of empty fields.
const (
	PlaceholderName        = "Your Name"
	PlaceholderPosition    = "Position Title"
	PlaceholderCompany     = "Company Name"
	PlaceholderInstitution = "Institution"
	PlaceholderDegree      = "Degree"
	PlaceholderProject     = "Project Title"
	PlaceholderCategory    = "Skill Category"
)

// TargetID is the id of the element export captures.
const TargetID = "resume-preview"

// Contact is one item of the header contact row.
type Contact struct {
	Kind  string
	Label string
	Href  string
}

// ExperienceView is an experience entry ready for display.
type ExperienceView struct {
	Position         string
	Company          string
	Location         string
	Dates            string
	Responsibilities []string
}

// EducationView is an education entry ready for display.
type EducationView struct {
	Degree      string
	Institution string
	Location    string
	Dates       string
	Description string
}

// ProjectView is a project entry ready for display.
type ProjectView struct {
	Title        string
	Link         string
	Description  string
	Technologies []string
	Dates        string
}

// SkillView is a skill category ready for display.
type SkillView struct {
	Name   string
	Skills []string
}

// View is the data every template executes against. Placeholders and empty
// section handling are settled here so templates never branch on raw fields.
type View struct {
	Kind       types.Template
	TargetID   string
	Theme      template.CSS
	Font       Font
	Scheme     ColorScheme
	Name       string
	JobTitle   string
	Summary    string
	Contacts   []Contact
	Experience []ExperienceView
	Education  []EducationView
	Projects   []ProjectView
	Skills     []SkillView
}

// IsSectionEmpty reports whether a section has nothing to show. Lists are empty
// when they hold no entries; personalInfo is empty when every field is empty.
func IsSectionEmpty(doc types.ResumeDocument, section string) bool {
	switch section {
	case types.SectionPersonalInfo:
		for _, v := range doc.PersonalInfo.Values() {
			if v != "" {
				return false
			}
		}
		return true
	case types.SectionEducation:
		return len(doc.Education) == 0
	case types.SectionExperience:
		return len(doc.Experience) == 0
	case types.SectionSkills:
		return len(doc.Skills) == 0
	case types.SectionProjects:
		return len(doc.Projects) == 0
	default:
		return true
	}
}

// NewView prepares doc for display in the given layout and style.
func NewView(kind types.Template, doc types.ResumeDocument, style Style) View {
	font, scheme := style.resolve()
	info := doc.PersonalInfo
	v := View{
		Kind:     kind,
		TargetID: TargetID,
		Theme:    themeCSS(font, scheme),
		Font:     font,
		Scheme:   scheme,
		Name:     or(info.FullName, PlaceholderName),
		JobTitle: info.JobTitle,
		Summary:  info.Summary,
		Contacts: contacts(info),
	}

	if !IsSectionEmpty(doc, types.SectionExperience) {
		for _, e := range doc.Experience {
			v.Experience = append(v.Experience, ExperienceView{
				Position:         or(e.Position, PlaceholderPosition),
				Company:          or(e.Company, PlaceholderCompany),
				Location:         e.Location,
				Dates:            DateRange(e.StartDate, e.EndDate, e.Current),
				Responsibilities: nonBlank(e.Responsibilities),
			})
		}
	}
	if !IsSectionEmpty(doc, types.SectionEducation) {
		for _, e := range doc.Education {
			degree := or(e.Degree, PlaceholderDegree)
			if e.Field != "" {
				degree += " in " + e.Field
			}
			v.Education = append(v.Education, EducationView{
				Degree:      degree,
				Institution: or(e.Institution, PlaceholderInstitution),
				Location:    e.Location,
				Dates:       DateRange(e.StartDate, e.EndDate, false),
				Description: e.Description,
			})
		}
	}
	if !IsSectionEmpty(doc, types.SectionProjects) {
		for _, p := range doc.Projects {
			v.Projects = append(v.Projects, ProjectView{
				Title:        or(p.Title, PlaceholderProject),
				Link:         p.Link,
				Description:  p.Description,
				Technologies: splitTechnologies(p.Technologies),
				Dates:        DateRange(p.StartDate, p.EndDate, p.Current),
			})
		}
	}
	if !IsSectionEmpty(doc, types.SectionSkills) {
		for _, c := range doc.Skills {
			v.Skills = append(v.Skills, SkillView{
				Name:   or(c.Name, PlaceholderCategory),
				Skills: nonBlank(c.Skills),
			})
		}
	}
	return v
}

func contacts(info types.PersonalInfo) []Contact {
	var out []Contact
	if info.Email != "" {
		out = append(out, Contact{Kind: "email", Label: info.Email, Href: "mailto:" + info.Email})
	}
	if info.Phone != "" {
		out = append(out, Contact{Kind: "phone", Label: info.Phone})
	}
	if info.Location != "" {
		out = append(out, Contact{Kind: "location", Label: info.Location})
	}
	if info.LinkedIn != "" {
		out = append(out, Contact{Kind: "linkedin", Label: "LinkedIn", Href: info.LinkedIn})
	}
	if info.GitHub != "" {
		out = append(out, Contact{Kind: "github", Label: "GitHub", Href: info.GitHub})
	}
	if info.Portfolio != "" {
		out = append(out, Contact{Kind: "portfolio", Label: "Portfolio", Href: info.Portfolio})
	}
	return out
}

func or(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func splitTechnologies(s string) []string {
	return nonBlank(strings.Split(s, ","))
}
