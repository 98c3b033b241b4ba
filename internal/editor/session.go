package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/resume-builder/internal/autosave"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// Snapshot is the client-visible state of a session.
type Snapshot struct {
	ResumeID   string               `json:"resumeId"`
	Title      string               `json:"title"`
	Document   types.ResumeDocument `json:"document"`
	Metadata   types.Metadata       `json:"metadata"`
	Completion resume.Completion    `json:"completion"`
	Percentage int                  `json:"percentage"`
	State      autosave.State       `json:"state"`
	Dirty      bool                 `json:"dirty"`
}

// Content returns the document as it would be stored, without the blank
// placeholder entries the editor keeps. Completion and rendering work on this.
func (sn Snapshot) Content() types.ResumeDocument {
	return resume.ForSave(sn.Document)
}

// Session is one open editor on a resume.
type Session struct {
	uid   string
	id    string
	path  string
	store store.Store
	log   *logging.Logger
	saver *autosave.Controller
	feed  fanout

	mu              sync.Mutex
	doc             types.ResumeDocument
	title           string
	meta            types.Metadata
	closed          bool
	unsubscribeMeta func()
}

func newSession(uid, id string, st store.Store, rec types.ResumeRecord, opts Options) *Session {
	s := &Session{
		uid:   uid,
		id:    id,
		path:  store.ResumePath(uid, id),
		store: st,
		log:   opts.Log.With("user_id", uid, "resume_id", id),
		doc:   resume.ForEditing(rec.ResumeData),
		title: rec.Metadata.Title,
		meta:  rec.Metadata,
	}
	s.saver = autosave.New(s.persist, autosave.Options{
		Delay:       opts.AutosaveDelay,
		SaveTimeout: opts.SaveTimeout,
		Scheduler:   opts.Scheduler,
		Notify:      s.onSaved,
		Log:         s.log,
	})
	return s
}

// followMetadata keeps the session's metadata in step with the store.
func (s *Session) followMetadata(ctx context.Context) error {
	unsubscribe, err := s.store.Subscribe(ctx, s.path+"/metadata", func(v any, err error) {
		if err != nil {
			s.log.Warn("metadata subscription failed", "error", err)
			return
		}
		if v == nil {
			return
		}
		rec := resume.NormalizeRecord(map[string]any{"metadata": v})
		s.mu.Lock()
		s.meta = rec.Metadata
		meta := s.meta
		s.mu.Unlock()
		s.feed.publish(Event{Type: EventMetadata, State: s.saver.State(), Metadata: &meta, At: time.Now()})
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.unsubscribeMeta = unsubscribe
	s.mu.Unlock()
	return nil
}

// persist writes the document and stamps the metadata. createdAt is only set
// when the record does not have one yet.
func (s *Session) persist(ctx context.Context) error {
	s.mu.Lock()
	doc := resume.ForSave(s.doc)
	title := strings.TrimSpace(s.title)
	hasCreatedAt := s.meta.CreatedAt != nil
	s.mu.Unlock()

	if title == "" {
		title = types.DefaultTitle
	}
	tree, err := resume.ToTree(doc)
	if err != nil {
		return fmt.Errorf("failed to encode resume: %w", err)
	}
	values := map[string]any{
		"resumeData":            tree,
		"metadata/title":        title,
		"metadata/lastModified": store.ServerTimestamp(),
	}
	if !hasCreatedAt {
		values["metadata/createdAt"] = store.ServerTimestamp()
	}
	if err := s.store.Update(ctx, s.path, values); err != nil {
		return fmt.Errorf("failed to save resume: %w", err)
	}
	return nil
}

func (s *Session) onSaved(e autosave.Event) {
	ev := Event{Trigger: string(e.Trigger), State: s.saver.State(), At: e.At}
	if e.Err != nil {
		ev.Type = EventSaveFailed
		ev.Error = e.Err.Error()
		ev.Retryable = e.Retryable
		ev.Toast = ToastSaveFailed
		s.log.Warn("save failed", "trigger", e.Trigger, "error", e.Err)
	} else {
		ev.Type = EventSaved
		if e.Trigger == autosave.TriggerManual {
			ev.Toast = ToastSaved
		}
	}
	s.feed.publish(ev)
}

// edit applies fn to the working copy and schedules an autosave.
func (s *Session) edit(fn func(doc *types.ResumeDocument) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	doc := s.doc.Clone()
	if err := fn(&doc); err != nil {
		s.mu.Unlock()
		return err
	}
	s.doc = doc
	s.mu.Unlock()

	s.saver.MarkDirty()
	s.feed.publish(Event{Type: EventChanged, State: s.saver.State(), At: time.Now()})
	return nil
}

// UpdateSection replaces one section with data, a JSON value of that
// section's shape. Editing invariants are restored afterwards: lists are never
// empty and current entries have no end date.
func (s *Session) UpdateSection(section string, data json.RawMessage) error {
	return s.edit(func(doc *types.ResumeDocument) error {
		var err error
		switch section {
		case types.SectionPersonalInfo:
			var v types.PersonalInfo
			if err = json.Unmarshal(data, &v); err == nil {
				doc.PersonalInfo = v
			}
		case types.SectionEducation:
			var v []types.EducationEntry
			if err = json.Unmarshal(data, &v); err == nil {
				doc.Education = v
			}
		case types.SectionExperience:
			var v []types.ExperienceEntry
			if err = json.Unmarshal(data, &v); err == nil {
				doc.Experience = v
			}
		case types.SectionSkills:
			var v []types.SkillCategory
			if err = json.Unmarshal(data, &v); err == nil {
				doc.Skills = v
			}
		case types.SectionProjects:
			var v []types.ProjectEntry
			if err = json.Unmarshal(data, &v); err == nil {
				doc.Projects = v
			}
		default:
			return &UnknownSectionError{Section: section}
		}
		if err != nil {
			return &InvalidSectionError{Section: section, Cause: err}
		}
		*doc = resume.ForEditing(*doc)
		return nil
	})
}

// AddEntry appends a blank entry to a list section and returns its id.
func (s *Session) AddEntry(section string) (int, error) {
	var id int
	err := s.edit(func(doc *types.ResumeDocument) error {
		switch section {
		case types.SectionEducation:
			doc.Education = resume.AddEducation(doc.Education)
			id = doc.Education[len(doc.Education)-1].ID
		case types.SectionExperience:
			doc.Experience = resume.AddExperience(doc.Experience)
			id = doc.Experience[len(doc.Experience)-1].ID
		case types.SectionSkills:
			doc.Skills = resume.AddSkillCategory(doc.Skills)
			id = doc.Skills[len(doc.Skills)-1].ID
		case types.SectionProjects:
			doc.Projects = resume.AddProject(doc.Projects)
			id = doc.Projects[len(doc.Projects)-1].ID
		default:
			return &UnknownSectionError{Section: section}
		}
		return nil
	})
	return id, err
}

// RemoveEntry deletes an entry. Removing the last one leaves a blank entry with id 1.
func (s *Session) RemoveEntry(section string, id int) error {
	return s.edit(func(doc *types.ResumeDocument) error {
		switch section {
		case types.SectionEducation:
			if !hasID(doc.Education, id, func(e types.EducationEntry) int { return e.ID }) {
				return &EntryNotFoundError{Section: section, ID: id}
			}
			doc.Education = resume.RemoveEducation(doc.Education, id)
		case types.SectionExperience:
			if !hasID(doc.Experience, id, func(e types.ExperienceEntry) int { return e.ID }) {
				return &EntryNotFoundError{Section: section, ID: id}
			}
			doc.Experience = resume.RemoveExperience(doc.Experience, id)
		case types.SectionSkills:
			if !hasID(doc.Skills, id, func(c types.SkillCategory) int { return c.ID }) {
				return &EntryNotFoundError{Section: section, ID: id}
			}
			doc.Skills = resume.RemoveSkillCategory(doc.Skills, id)
		case types.SectionProjects:
			if !hasID(doc.Projects, id, func(p types.ProjectEntry) int { return p.ID }) {
				return &EntryNotFoundError{Section: section, ID: id}
			}
			doc.Projects = resume.RemoveProject(doc.Projects, id)
		default:
			return &UnknownSectionError{Section: section}
		}
		return nil
	})
}

// SetCurrent marks an experience or project as ongoing. Ongoing entries lose their end date.
func (s *Session) SetCurrent(section string, id int, current bool) error {
	return s.edit(func(doc *types.ResumeDocument) error {
		switch section {
		case types.SectionExperience:
			if !hasID(doc.Experience, id, func(e types.ExperienceEntry) int { return e.ID }) {
				return &EntryNotFoundError{Section: section, ID: id}
			}
			doc.Experience = resume.SetExperienceCurrent(doc.Experience, id, current)
		case types.SectionProjects:
			if !hasID(doc.Projects, id, func(p types.ProjectEntry) int { return p.ID }) {
				return &EntryNotFoundError{Section: section, ID: id}
			}
			doc.Projects = resume.SetProjectCurrent(doc.Projects, id, current)
		default:
			return &UnknownSectionError{Section: section}
		}
		return nil
	})
}

// AddItem appends an empty responsibility to an experience or an empty skill to a category.
func (s *Session) AddItem(section string, id int) error {
	return s.edit(func(doc *types.ResumeDocument) error {
		switch section {
		case types.SectionExperience:
			if !hasID(doc.Experience, id, func(e types.ExperienceEntry) int { return e.ID }) {
				return &EntryNotFoundError{Section: section, ID: id}
			}
			doc.Experience = resume.AddResponsibility(doc.Experience, id)
		case types.SectionSkills:
			if !hasID(doc.Skills, id, func(c types.SkillCategory) int { return c.ID }) {
				return &EntryNotFoundError{Section: section, ID: id}
			}
			doc.Skills = resume.AddSkill(doc.Skills, id)
		default:
			return &UnknownSectionError{Section: section}
		}
		return nil
	})
}

// RemoveItem deletes a responsibility or skill by index.
func (s *Session) RemoveItem(section string, id, index int) error {
	return s.edit(func(doc *types.ResumeDocument) error {
		switch section {
		case types.SectionExperience:
			if !hasID(doc.Experience, id, func(e types.ExperienceEntry) int { return e.ID }) {
				return &EntryNotFoundError{Section: section, ID: id}
			}
			doc.Experience = resume.RemoveResponsibility(doc.Experience, id, index)
		case types.SectionSkills:
			if !hasID(doc.Skills, id, func(c types.SkillCategory) int { return c.ID }) {
				return &EntryNotFoundError{Section: section, ID: id}
			}
			doc.Skills = resume.RemoveSkill(doc.Skills, id, index)
		default:
			return &UnknownSectionError{Section: section}
		}
		return nil
	})
}

// SetTitle renames the resume. The new title is written with the next save.
func (s *Session) SetTitle(title string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.title = title
	s.mu.Unlock()
	s.saver.MarkDirty()
	s.feed.publish(Event{Type: EventChanged, State: s.saver.State(), At: time.Now()})
	return nil
}

// Save persists now. It returns autosave.ErrSaveInProgress when a save is running.
func (s *Session) Save(ctx context.Context) error {
	return s.saver.Save(ctx)
}

// Snapshot returns the current working copy and status.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	doc := s.doc.Clone()
	title := s.title
	meta := s.meta
	s.mu.Unlock()

	completion := resume.Evaluate(resume.ForSave(doc))
	return Snapshot{
		ResumeID:   s.id,
		Title:      title,
		Document:   doc,
		Metadata:   meta,
		Completion: completion,
		Percentage: completion.Percentage(),
		State:      s.saver.State(),
		Dirty:      s.saver.Dirty(),
	}
}

// Follow returns a channel of session events and a function that stops following.
func (s *Session) Follow() (<-chan Event, func()) {
	return s.feed.follow()
}

// BeforeUnload reports whether closing now would leave edits unsaved.
func (s *Session) BeforeUnload() bool { return s.saver.BeforeUnload() }

// Close stops following the store and starts a final save of pending edits
// without waiting for it.
func (s *Session) Close() { s.end(s.saver.Close) }

// Discard ends the session without saving pending edits.
func (s *Session) Discard() { s.end(s.saver.Discard) }

func (s *Session) end(stopSaver func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribeMeta
	s.unsubscribeMeta = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	stopSaver()
	s.feed.close(Event{Type: EventClosed, State: s.saver.State(), At: time.Now()})
}

func hasID[T any](list []T, id int, idOf func(T) int) bool {
	for _, v := range list {
		if idOf(v) == id {
			return true
		}
	}
	return false
}
