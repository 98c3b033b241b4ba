//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Valid(t *testing.T) {
	for _, tpl := range Templates {
		assert.True(t, tpl.Valid(), tpl)
	}
	assert.False(t, Template("fancy").Valid())
	assert.False(t, Template("").Valid())
}

func TestCreateResumeRequest_Validation(t *testing.T) {
	validate := validator.New()
	require.NoError(t, validate.Struct(CreateResumeRequest{}))
	require.NoError(t, validate.Struct(CreateResumeRequest{Title: "Mine", Template: "creative"}))
	require.Error(t, validate.Struct(CreateResumeRequest{Template: "fancy"}))
	require.Error(t, validate.Struct(AppearanceRequest{Template: "modern"}))
}

func TestResumeRecord_WireNames(t *testing.T) {
	created := int64(1700000000000)
	rec := ResumeRecord{
		ResumeData: ResumeDocument{PersonalInfo: PersonalInfo{FullName: "Ada", LinkedIn: "in/ada"}},
		Metadata:   Metadata{Title: "CV", CreatedAt: &created, Template: "modern", ColorScheme: "purple"},
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "resumeData")
	meta := raw["metadata"].(map[string]any)
	assert.EqualValues(t, created, meta["createdAt"])
	assert.NotContains(t, meta, "lastModified")
	info := raw["resumeData"].(map[string]any)["personalInfo"].(map[string]any)
	assert.Equal(t, "in/ada", info["linkedin"])
}

func TestResumeDocument_Clone(t *testing.T) {
	doc := ResumeDocument{
		Experience: []ExperienceEntry{{ID: 1, Responsibilities: []string{"a"}}},
		Skills:     []SkillCategory{{ID: 1, Skills: []string{"Go"}}},
	}
	cp := doc.Clone()
	cp.Experience[0].Responsibilities[0] = "changed"
	cp.Skills[0].Skills[0] = "Rust"

	assert.Equal(t, "a", doc.Experience[0].Responsibilities[0])
	assert.Equal(t, "Go", doc.Skills[0].Skills[0])
	assert.Nil(t, ResumeDocument{}.Clone().Experience)
}
