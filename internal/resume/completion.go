package resume

import (
	"math"
	"strings"

	"github.com/jonathan/resume-builder/internal/types"
)

// IsComplete reports whether a section satisfies its completion rule. sectionData is
// the section value (PersonalInfo or the entry slice, by value or pointer). Unknown
// keys, nil data or data of the wrong type are never complete.
func IsComplete(sectionKey string, sectionData any) bool {
	switch sectionKey {
	case types.SectionPersonalInfo:
		info, ok := personalInfoOf(sectionData)
		return ok && nonEmpty(info.FullName) && nonEmpty(info.Email)
	case types.SectionEducation:
		list, ok := listOf[types.EducationEntry](sectionData)
		return ok && len(list) > 0 && every(list, func(e types.EducationEntry) bool {
			return nonEmpty(e.Institution) && nonEmpty(e.Degree)
		})
	case types.SectionExperience:
		list, ok := listOf[types.ExperienceEntry](sectionData)
		return ok && len(list) > 0 && every(list, func(e types.ExperienceEntry) bool {
			return nonEmpty(e.Company) && nonEmpty(e.Position)
		})
	case types.SectionSkills:
		list, ok := listOf[types.SkillCategory](sectionData)
		return ok && len(list) > 0
	case types.SectionProjects:
		list, ok := listOf[types.ProjectEntry](sectionData)
		return ok && len(list) > 0 && every(list, func(p types.ProjectEntry) bool {
			return nonEmpty(p.Title)
		})
	}
	return false
}

// Completion holds per-section completion flags keyed by section name.
type Completion map[string]bool

// Evaluate runs IsComplete over every section of the document.
func Evaluate(doc types.ResumeDocument) Completion {
	return Completion{
		types.SectionPersonalInfo: IsComplete(types.SectionPersonalInfo, doc.PersonalInfo),
		types.SectionEducation:    IsComplete(types.SectionEducation, doc.Education),
		types.SectionExperience:   IsComplete(types.SectionExperience, doc.Experience),
		types.SectionSkills:       IsComplete(types.SectionSkills, doc.Skills),
		types.SectionProjects:     IsComplete(types.SectionProjects, doc.Projects),
	}
}

// Percentage is round(100 * completed / sections).
func (c Completion) Percentage() int {
	done := 0
	for _, section := range types.Sections {
		if c[section] {
			done++
		}
	}
	return percent(done, len(types.Sections))
}

// Percentage evaluates the document and returns its overall completion.
func Percentage(doc types.ResumeDocument) int {
	return Evaluate(doc).Percentage()
}

// HasData is the looser predicate the dashboard uses: personal info counts once any
// field is filled, lists count once they are non-empty.
func HasData(sectionKey string, sectionData any) bool {
	switch sectionKey {
	case types.SectionPersonalInfo:
		info, ok := personalInfoOf(sectionData)
		if !ok {
			return false
		}
		for _, v := range info.Values() {
			if filled(v) {
				return true
			}
		}
		return false
	case types.SectionEducation:
		list, _ := listOf[types.EducationEntry](sectionData)
		return len(list) > 0
	case types.SectionExperience:
		list, _ := listOf[types.ExperienceEntry](sectionData)
		return len(list) > 0
	case types.SectionSkills:
		list, _ := listOf[types.SkillCategory](sectionData)
		return len(list) > 0
	case types.SectionProjects:
		list, _ := listOf[types.ProjectEntry](sectionData)
		return len(list) > 0
	}
	return false
}

// SummaryPercentage is the dashboard completion figure for a stored document.
func SummaryPercentage(doc types.ResumeDocument) int {
	done := 0
	if HasData(types.SectionPersonalInfo, doc.PersonalInfo) {
		done++
	}
	if HasData(types.SectionEducation, doc.Education) {
		done++
	}
	if HasData(types.SectionExperience, doc.Experience) {
		done++
	}
	if HasData(types.SectionSkills, doc.Skills) {
		done++
	}
	if HasData(types.SectionProjects, doc.Projects) {
		done++
	}
	return percent(done, len(types.Sections))
}

// PersonalInfoProgress is the per-form meter: name and email are required, the other
// seven fields are optional but counted.
func PersonalInfoProgress(info types.PersonalInfo) int {
	done := 0
	values := info.Values()
	for _, v := range values {
		if filled(v) {
			done++
		}
	}
	return percent(done, len(values))
}

// EducationProgress counts filled text fields across all education entries.
func EducationProgress(list []types.EducationEntry) int {
	if len(list) == 0 {
		return 0
	}
	done, total := 0, 0
	for _, e := range list {
		for _, v := range []string{e.Institution, e.Degree, e.Field, e.StartDate, e.EndDate, e.Location, e.Description} {
			total++
			if filled(v) {
				done++
			}
		}
	}
	return percent(done, total)
}

func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

func filled(s string) bool { return strings.TrimSpace(s) != "" }

func nonEmpty(s string) bool { return s != "" }

func every[T any](list []T, pred func(T) bool) bool {
	for _, item := range list {
		if !pred(item) {
			return false
		}
	}
	return true
}

func personalInfoOf(v any) (types.PersonalInfo, bool) {
	switch t := v.(type) {
	case types.PersonalInfo:
		return t, true
	case *types.PersonalInfo:
		if t != nil {
			return *t, true
		}
	}
	return types.PersonalInfo{}, false
}

func listOf[T any](v any) ([]T, bool) {
	switch t := v.(type) {
	case []T:
		return t, true
	case *[]T:
		if t != nil {
			return *t, true
		}
	}
	return nil, false
}
