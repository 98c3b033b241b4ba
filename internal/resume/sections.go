package resume

import "github.com/jonathan/resume-builder/internal/types"

// Blank entries used when a list is extended or reset.

func BlankEducation(id int) types.EducationEntry { return types.EducationEntry{ID: id} }

func BlankExperience(id int) types.ExperienceEntry {
	return types.ExperienceEntry{ID: id, Responsibilities: []string{""}}
}

func BlankProject(id int) types.ProjectEntry { return types.ProjectEntry{ID: id} }

func BlankSkillCategory(id int) types.SkillCategory {
	return types.SkillCategory{ID: id, Skills: []string{""}}
}

// removeByID drops the entry with the given id. A list left empty is reset
// to a single blank entry with id 1 so the form always has something to edit.
func removeByID[T any](list []T, id int, idOf func(T) int, blank func(int) T) []T {
	out := make([]T, 0, len(list))
	for _, item := range list {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []T{blank(1)}
	}
	return out
}

func AddEducation(list []types.EducationEntry) []types.EducationEntry {
	return append(cloneSlice(list), BlankEducation(NextID(idsOf(list, educationID))))
}

func RemoveEducation(list []types.EducationEntry, id int) []types.EducationEntry {
	return removeByID(list, id, educationID, BlankEducation)
}

func AddExperience(list []types.ExperienceEntry) []types.ExperienceEntry {
	return append(cloneSlice(list), BlankExperience(NextID(idsOf(list, experienceID))))
}

func RemoveExperience(list []types.ExperienceEntry, id int) []types.ExperienceEntry {
	return removeByID(list, id, experienceID, BlankExperience)
}

func AddProject(list []types.ProjectEntry) []types.ProjectEntry {
	return append(cloneSlice(list), BlankProject(NextID(idsOf(list, projectID))))
}

func RemoveProject(list []types.ProjectEntry, id int) []types.ProjectEntry {
	return removeByID(list, id, projectID, BlankProject)
}

func AddSkillCategory(list []types.SkillCategory) []types.SkillCategory {
	return append(cloneSlice(list), BlankSkillCategory(NextID(idsOf(list, categoryID))))
}

func RemoveSkillCategory(list []types.SkillCategory, id int) []types.SkillCategory {
	return removeByID(list, id, categoryID, BlankSkillCategory)
}

// SetExperienceCurrent toggles the "current position" flag. Setting it clears the end date.
func SetExperienceCurrent(list []types.ExperienceEntry, id int, current bool) []types.ExperienceEntry {
	out := cloneSlice(list)
	for i := range out {
		if out[i].ID == id {
			out[i].Current = current
			if current {
				out[i].EndDate = ""
			}
		}
	}
	return out
}

// SetProjectCurrent toggles the "ongoing project" flag. Setting it clears the end date.
func SetProjectCurrent(list []types.ProjectEntry, id int, current bool) []types.ProjectEntry {
	out := cloneSlice(list)
	for i := range out {
		if out[i].ID == id {
			out[i].Current = current
			if current {
				out[i].EndDate = ""
			}
		}
	}
	return out
}

// AddResponsibility appends an empty bullet to the entry.
func AddResponsibility(list []types.ExperienceEntry, id int) []types.ExperienceEntry {
	out := cloneSlice(list)
	for i := range out {
		if out[i].ID == id {
			out[i].Responsibilities = append(append([]string(nil), out[i].Responsibilities...), "")
		}
	}
	return out
}

// RemoveResponsibility drops one bullet. The last remaining bullet is kept as is.
func RemoveResponsibility(list []types.ExperienceEntry, id, index int) []types.ExperienceEntry {
	out := cloneSlice(list)
	for i := range out {
		if out[i].ID == id {
			if len(out[i].Responsibilities) > 1 {
				out[i].Responsibilities = removeIndexKeepOne(out[i].Responsibilities, index)
			}
		}
	}
	return out
}

// AddSkill appends an empty skill to the category.
func AddSkill(list []types.SkillCategory, id int) []types.SkillCategory {
	out := cloneSlice(list)
	for i := range out {
		if out[i].ID == id {
			out[i].Skills = append(append([]string(nil), out[i].Skills...), "")
		}
	}
	return out
}

// RemoveSkill drops one skill. Removing the last skill leaves a single empty placeholder.
func RemoveSkill(list []types.SkillCategory, id, index int) []types.SkillCategory {
	out := cloneSlice(list)
	for i := range out {
		if out[i].ID == id {
			out[i].Skills = removeIndexKeepOne(out[i].Skills, index)
		}
	}
	return out
}

func removeIndexKeepOne(values []string, index int) []string {
	if len(values) <= 1 {
		return []string{""}
	}
	if index < 0 || index >= len(values) {
		return append([]string(nil), values...)
	}
	out := make([]string, 0, len(values)-1)
	out = append(out, values[:index]...)
	return append(out, values[index+1:]...)
}

func cloneSlice[T any](list []T) []T {
	return append([]T(nil), list...)
}
