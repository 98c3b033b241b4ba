package records

import (
	"context"
	"testing"
	"time"

	"github.com/jonathan/resume-builder/internal/dashboard"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	m := store.NewMemory(store.WithClock(func() time.Time { return time.UnixMilli(5000) }))
	s := NewService(m, nil)
	s.clock = func() time.Time { return time.UnixMilli(6000) }
	return s, m
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	id, err := s.Create(ctx, "u1", types.CreateResumeRequest{Title: "  Backend  ", Template: "creative"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := s.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Equal(t, "Backend", rec.Metadata.Title)
	assert.Equal(t, "creative", rec.Metadata.Template)
	assert.Equal(t, "purple", rec.Metadata.ColorScheme)
	require.NotNil(t, rec.Metadata.CreatedAt)
	assert.Equal(t, int64(5000), *rec.Metadata.CreatedAt)
	assert.Empty(t, rec.ResumeData.Education)
	assert.NotNil(t, rec.ResumeData.Education)

	_, err = s.Get(ctx, "u2", id)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)

	id2, err := s.Create(ctx, "u1", types.CreateResumeRequest{})
	require.NoError(t, err)
	rec, err = s.Get(ctx, "u1", id2)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultTitle, rec.Metadata.Title)
	assert.Equal(t, "modern", rec.Metadata.Template)
}

func TestDuplicate(t *testing.T) {
	ctx := context.Background()
	s, m := newTestService(t)
	require.NoError(t, m.Write(ctx, store.ResumePath("u1", "orig"), map[string]any{
		"resumeData": map[string]any{"personalInfo": map[string]any{"fullName": "Ada"}},
		"metadata":   map[string]any{"title": "CV", "template": "minimal", "createdAt": 1.0},
	}))

	copyID, err := s.Duplicate(ctx, "u1", "orig")
	require.NoError(t, err)
	assert.NotEqual(t, "orig", copyID)

	rec, err := s.Get(ctx, "u1", copyID)
	require.NoError(t, err)
	assert.Equal(t, "CV (Copy)", rec.Metadata.Title)
	assert.Equal(t, "minimal", rec.Metadata.Template)
	assert.Equal(t, "Ada", rec.ResumeData.PersonalInfo.FullName)
	assert.Equal(t, int64(5000), *rec.Metadata.CreatedAt)

	original, err := s.Get(ctx, "u1", "orig")
	require.NoError(t, err)
	assert.Equal(t, "CV", original.Metadata.Title)

	require.NoError(t, m.Write(ctx, store.ResumePath("u1", "untitled"), map[string]any{"resumeData": map[string]any{"skills": []any{"x"}}}))
	copyID, err = s.Duplicate(ctx, "u1", "untitled")
	require.NoError(t, err)
	rec, _ = s.Get(ctx, "u1", copyID)
	assert.Equal(t, "Resume (Copy)", rec.Metadata.Title)

	_, err = s.Duplicate(ctx, "u1", "missing")
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	id, err := s.Create(ctx, "u1", types.CreateResumeRequest{})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "u1", id))
	var notFound *NotFoundError
	assert.ErrorAs(t, s.Delete(ctx, "u1", id), &notFound)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	id, err := s.Import(ctx, "u1", []byte(`{
		"resumeData": {
			"personalInfo": {"fullName": "Ada"},
			"education": [{"id": 1}],
			"experience": [{"id": 3, "company": "Engines", "current": true, "endDate": "2020-01", "responsibilities": ["Notes"]}],
			"skills": [{"id": 2, "name": "", "skills": ["Go", ""]}]
		},
		"metadata": {"title": "Imported", "template": "professional", "createdAt": 1}
	}`), resume.FormatJSON)
	require.NoError(t, err)

	rec, err := s.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Equal(t, "Imported", rec.Metadata.Title)
	assert.Equal(t, "professional", rec.Metadata.Template)
	assert.Equal(t, int64(5000), *rec.Metadata.CreatedAt)
	assert.Empty(t, rec.ResumeData.Education, "blank placeholder entries are not stored")
	require.Len(t, rec.ResumeData.Experience, 1)
	assert.Empty(t, rec.ResumeData.Experience[0].EndDate)
	require.Len(t, rec.ResumeData.Skills, 1)
	assert.Equal(t, "Category 2", rec.ResumeData.Skills[0].Name)
	assert.Equal(t, []string{"Go"}, rec.ResumeData.Skills[0].Skills)

	for name, body := range map[string]string{
		"not json":     `{`,
		"wrong schema": `{"resumeData": {"education": [{"id": "one"}]}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Import(ctx, "u1", []byte(body), resume.FormatJSON)
			var invalid *InvalidImportError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestImport_YAML(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	id, err := s.Import(ctx, "u1", []byte(`
resumeData:
  personalInfo:
    fullName: Ada Lovelace
  experience:
    - id: 1
      company: Analytical Engines
      current: false
      responsibilities: [Wrote the first program]
metadata:
  title: From YAML
  template: minimal
`), resume.FormatYAML)
	require.NoError(t, err)

	rec, err := s.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Equal(t, "From YAML", rec.Metadata.Title)
	assert.Equal(t, "minimal", rec.Metadata.Template)
	require.Len(t, rec.ResumeData.Experience, 1)
	assert.Equal(t, "Analytical Engines", rec.ResumeData.Experience[0].Company)

	_, err = s.Import(ctx, "u1", []byte("resumeData: [1,"), resume.FormatYAML)
	var invalid *InvalidImportError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), "yaml document")
}

func TestUpdateAppearance(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	id, err := s.Create(ctx, "u1", types.CreateResumeRequest{})
	require.NoError(t, err)

	require.NoError(t, s.UpdateAppearance(ctx, "u1", id, types.AppearanceRequest{Template: "minimal", ColorScheme: "teal"}))
	rec, err := s.Get(ctx, "u1", id)
	require.NoError(t, err)
	assert.Equal(t, "minimal", rec.Metadata.Template)
	assert.Equal(t, "teal", rec.Metadata.ColorScheme)

	var notFound *NotFoundError
	assert.ErrorAs(t, s.UpdateAppearance(ctx, "u1", "missing", types.AppearanceRequest{Template: "minimal", ColorScheme: "teal"}), &notFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)
	_, err := s.Create(ctx, "u1", types.CreateResumeRequest{Title: "Alpha"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "u1", types.CreateResumeRequest{Title: "Beta"})
	require.NoError(t, err)

	items, stats, err := s.List(ctx, "u1", dashboard.Query{SortKey: dashboard.SortTitle, Direction: dashboard.Ascending})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Alpha", items[0].Title)
	assert.Equal(t, dashboard.Stats{Total: 2, Recent: 2}, stats)

	items, stats, err = s.List(ctx, "nobody", dashboard.DefaultQuery())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, stats.Total)
}
