package resume

import (
	"testing"

	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForSave(t *testing.T) {
	t.Run("drops untouched placeholders", func(t *testing.T) {
		out := ForSave(ForEditing(types.ResumeDocument{}))
		assert.Empty(t, out.Education)
		assert.Empty(t, out.Experience)
		assert.Empty(t, out.Projects)
		assert.Empty(t, out.Skills)
	})

	t.Run("keeps edited id 1 and blank entries with other ids", func(t *testing.T) {
		out := ForSave(types.ResumeDocument{
			Education: []types.EducationEntry{{ID: 1, Institution: "MIT"}, {ID: 2}},
			Projects:  []types.ProjectEntry{{ID: 1, Current: true, EndDate: "2020-01"}},
		})
		require.Len(t, out.Education, 2)
		require.Len(t, out.Projects, 1)
		assert.Empty(t, out.Projects[0].EndDate)
	})

	t.Run("cleans skills", func(t *testing.T) {
		out := ForSave(types.ResumeDocument{Skills: []types.SkillCategory{
			{ID: 1, Name: " Languages ", Skills: []string{" Go ", "", "  "}},
			{ID: 2, Name: "", Skills: []string{"Docker"}},
			{ID: 3, Name: "Empty", Skills: []string{""}},
		}})
		assert.Equal(t, []types.SkillCategory{
			{ID: 1, Name: "Languages", Skills: []string{"Go"}},
			{ID: 2, Name: "Category 2", Skills: []string{"Docker"}},
		}, out.Skills)
	})

	t.Run("does not alias input", func(t *testing.T) {
		in := types.ResumeDocument{Experience: []types.ExperienceEntry{{ID: 2, Responsibilities: []string{"x"}}}}
		out := ForSave(in)
		out.Experience[0].Responsibilities[0] = "y"
		assert.Equal(t, "x", in.Experience[0].Responsibilities[0])
	})
}
