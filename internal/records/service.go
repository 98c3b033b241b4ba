package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/dashboard"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
	recordschemas "github.com/jonathan/resume-builder/schemas"
)

// Service reads and writes resume records in the store.
type Service struct {
	store store.Store
	log   *logging.Logger
	clock func() time.Time
}

// NewService creates a Service over st.
func NewService(st store.Store, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewNop()
	}
	return &Service{store: st, log: log, clock: time.Now}
}

// emptyDocument is what a new resume starts with.
func emptyDocument() map[string]any {
	return map[string]any{
		"personalInfo": map[string]any{},
		"education":    []any{},
		"experience":   []any{},
		"skills":       []any{},
		"projects":     []any{},
	}
}

// Create stores a new, empty resume and returns its id.
func (s *Service) Create(ctx context.Context, uid string, req types.CreateResumeRequest) (string, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = types.DefaultTitle
	}
	template := req.Template
	if !types.Template(template).Valid() {
		template = string(types.DefaultTemplate)
	}
	colorScheme := req.ColorScheme
	if colorScheme == "" {
		colorScheme = types.DefaultColorScheme
	}

	id := s.store.GenerateID()
	err := s.store.Write(ctx, store.ResumePath(uid, id), map[string]any{
		"resumeData": emptyDocument(),
		"metadata": map[string]any{
			"title":        title,
			"createdAt":    store.ServerTimestamp(),
			"lastModified": store.ServerTimestamp(),
			"template":     template,
			"colorScheme":  colorScheme,
			"shared":       false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create resume: %w", err)
	}
	s.log.Info("resume created", "user_id", uid, "resume_id", id)
	return id, nil
}

// raw loads the stored tree of a resume.
func (s *Service) raw(ctx context.Context, uid, id string) (map[string]any, error) {
	v, err := s.store.Get(ctx, store.ResumePath(uid, id))
	if err != nil {
		return nil, fmt.Errorf("failed to load resume: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, &NotFoundError{ResumeID: id}
	}
	return m, nil
}

// Get returns a resume with metadata defaults applied.
func (s *Service) Get(ctx context.Context, uid, id string) (*types.ResumeRecord, error) {
	m, err := s.raw(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	rec := resume.NormalizeRecord(m)
	return &rec, nil
}

// Duplicate copies a resume under a new id, titled "<title> (Copy)" with fresh timestamps.
func (s *Service) Duplicate(ctx context.Context, uid, id string) (string, error) {
	m, err := s.raw(ctx, uid, id)
	if err != nil {
		return "", err
	}

	meta := map[string]any{}
	if old, ok := m["metadata"].(map[string]any); ok {
		for k, v := range old {
			meta[k] = v
		}
	}
	title, _ := meta["title"].(string)
	if title == "" {
		title = "Resume"
	}
	meta["title"] = title + " (Copy)"
	meta["createdAt"] = store.ServerTimestamp()
	meta["lastModified"] = store.ServerTimestamp()

	copied := map[string]any{}
	for k, v := range m {
		copied[k] = v
	}
	copied["metadata"] = meta

	newID := s.store.GenerateID()
	if err := s.store.Write(ctx, store.ResumePath(uid, newID), copied); err != nil {
		return "", fmt.Errorf("failed to duplicate resume: %w", err)
	}
	s.log.Info("resume duplicated", "user_id", uid, "resume_id", id, "copy_id", newID)
	return newID, nil
}

// Delete removes a resume.
func (s *Service) Delete(ctx context.Context, uid, id string) error {
	if _, err := s.raw(ctx, uid, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, store.ResumePath(uid, id)); err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}
	s.log.Info("resume deleted", "user_id", uid, "resume_id", id)
	return nil
}

// Import validates a JSON or YAML resume record and stores it as a new resume.
func (s *Service) Import(ctx context.Context, uid string, data []byte, format resume.Format) (string, error) {
	decoded, err := resume.Decode(data, format)
	if err != nil {
		return "", &InvalidImportError{Message: "body is not a " + string(format) + " document", Cause: err}
	}
	if err := schemas.ValidateValue(recordschemas.ResumeRecord, decoded); err != nil {
		return "", &InvalidImportError{Message: "document does not match the resume schema", Cause: err}
	}

	rec := resume.NormalizeRecord(decoded)
	tree, err := resume.ToTree(resume.ForSave(rec.ResumeData))
	if err != nil {
		return "", fmt.Errorf("failed to encode imported resume: %w", err)
	}

	id := s.store.GenerateID()
	err = s.store.Write(ctx, store.ResumePath(uid, id), map[string]any{
		"resumeData": tree,
		"metadata": map[string]any{
			"title":        rec.Metadata.Title,
			"createdAt":    store.ServerTimestamp(),
			"lastModified": store.ServerTimestamp(),
			"template":     rec.Metadata.Template,
			"colorScheme":  rec.Metadata.ColorScheme,
			"shared":       false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to store imported resume: %w", err)
	}
	s.log.Info("resume imported", "user_id", uid, "resume_id", id)
	return id, nil
}

// UpdateAppearance changes the template and colour scheme.
func (s *Service) UpdateAppearance(ctx context.Context, uid, id string, req types.AppearanceRequest) error {
	if _, err := s.raw(ctx, uid, id); err != nil {
		return err
	}
	err := s.store.Update(ctx, store.ResumePath(uid, id), map[string]any{
		"metadata/template":     req.Template,
		"metadata/colorScheme":  req.ColorScheme,
		"metadata/lastModified": store.ServerTimestamp(),
	})
	if err != nil {
		return fmt.Errorf("failed to update appearance: %w", err)
	}
	return nil
}

// List returns the user's dashboard cards filtered and sorted by q, plus counters.
func (s *Service) List(ctx context.Context, uid string, q dashboard.Query) ([]dashboard.Summary, dashboard.Stats, error) {
	v, err := s.store.Get(ctx, store.ResumesPath(uid))
	if err != nil {
		return nil, dashboard.Stats{}, fmt.Errorf("failed to list resumes: %w", err)
	}
	all := dashboard.Summaries(v)
	return dashboard.Derive(all, q), dashboard.ComputeStats(all, s.clock()), nil
}
