// Package resume provides editing, normalization and completion rules for resume documents.
package resume

import "github.com/jonathan/resume-builder/internal/types"

// NextID returns one more than the largest id, or 1 for an empty list.
func NextID(ids []int) int {
	highest := 0
	for _, id := range ids {
		if id > highest {
			highest = id
		}
	}
	return highest + 1
}

func idsOf[T any](list []T, id func(T) int) []int {
	out := make([]int, len(list))
	for i, item := range list {
		out[i] = id(item)
	}
	return out
}

func educationID(e types.EducationEntry) int   { return e.ID }
func experienceID(e types.ExperienceEntry) int { return e.ID }
func projectID(p types.ProjectEntry) int       { return p.ID }
func categoryID(c types.SkillCategory) int     { return c.ID }
