// Package types provides type definitions for structured data used throughout the resume-builder system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Section keys as they appear in a stored document.
const (
	SectionPersonalInfo = "personalInfo"
	SectionEducation    = "education"
	SectionExperience   = "experience"
	SectionSkills       = "skills"
	SectionProjects     = "projects"
)

// Sections lists every document section in wizard order.
var Sections = []string{
	SectionPersonalInfo,
	SectionEducation,
	SectionExperience,
	SectionSkills,
	SectionProjects,
}

// PersonalInfo holds the contact block of a resume.
type PersonalInfo struct {
	FullName  string `json:"fullName"`
	JobTitle  string `json:"jobTitle"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`
	Summary   string `json:"summary"`
}

// Values returns every field in declaration order.
func (p PersonalInfo) Values() []string {
	return []string{p.FullName, p.JobTitle, p.Email, p.Phone, p.Location, p.LinkedIn, p.GitHub, p.Portfolio, p.Summary}
}

// EducationEntry is one school record.
type EducationEntry struct {
	ID          int    `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// ExperienceEntry is one position held. When Current is set, EndDate is empty.
type ExperienceEntry struct {
	ID               int      `json:"id"`
	Company          string   `json:"company"`
	Position         string   `json:"position"`
	Location         string   `json:"location"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	Current          bool     `json:"current"`
	Responsibilities []string `json:"responsibilities"`
}

// ProjectEntry is one portfolio project. When Current is set, EndDate is empty.
type ProjectEntry struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Current      bool   `json:"current"`
}

// SkillCategory groups skills under a heading.
type SkillCategory struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// ResumeDocument is the editable content of a resume.
type ResumeDocument struct {
	PersonalInfo PersonalInfo      `json:"personalInfo"`
	Education    []EducationEntry  `json:"education"`
	Experience   []ExperienceEntry `json:"experience"`
	Skills       []SkillCategory   `json:"skills"`
	Projects     []ProjectEntry    `json:"projects"`
}

// Clone returns a deep copy of the document.
func (d ResumeDocument) Clone() ResumeDocument {
	out := ResumeDocument{PersonalInfo: d.PersonalInfo}
	out.Education = append([]EducationEntry(nil), d.Education...)
	out.Projects = append([]ProjectEntry(nil), d.Projects...)
	if d.Experience != nil {
		out.Experience = make([]ExperienceEntry, len(d.Experience))
		for i, e := range d.Experience {
			e.Responsibilities = append([]string(nil), e.Responsibilities...)
			out.Experience[i] = e
		}
	}
	if d.Skills != nil {
		out.Skills = make([]SkillCategory, len(d.Skills))
		for i, c := range d.Skills {
			c.Skills = append([]string(nil), c.Skills...)
			out.Skills[i] = c
		}
	}
	return out
}
