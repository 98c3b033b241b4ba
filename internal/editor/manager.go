package editor

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/resume-builder/internal/autosave"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/records"
	"github.com/jonathan/resume-builder/internal/store"
)

// Options configures sessions opened by a Manager.
type Options struct {
	AutosaveDelay time.Duration
	SaveTimeout   time.Duration
	Scheduler     autosave.Scheduler
	Log           *logging.Logger
}

// Manager keeps one session per open resume.
type Manager struct {
	store   store.Store
	records *records.Service
	opts    Options

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager over st.
func NewManager(st store.Store, opts Options) *Manager {
	if opts.Log == nil {
		opts.Log = logging.NewNop()
	}
	return &Manager{
		store:    st,
		records:  records.NewService(st, opts.Log),
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

func sessionKey(uid, id string) string { return uid + "/" + id }

// Open returns the session for a resume, loading it on first use. It returns
// *records.NotFoundError when the resume does not exist.
func (m *Manager) Open(ctx context.Context, uid, id string) (*Session, error) {
	key := sessionKey(uid, id)
	m.mu.Lock()
	if s, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	rec, err := m.records.Get(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	s := newSession(uid, id, m.store, *rec, m.opts)

	m.mu.Lock()
	if existing, ok := m.sessions[key]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.sessions[key] = s
	m.mu.Unlock()

	if err := s.followMetadata(context.WithoutCancel(ctx)); err != nil {
		m.mu.Lock()
		delete(m.sessions, key)
		m.mu.Unlock()
		s.Close()
		return nil, err
	}
	m.opts.Log.Debug("editing session opened", "user_id", uid, "resume_id", id)
	return s, nil
}

// Get returns an open session.
func (m *Manager) Get(uid, id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey(uid, id)]
	return s, ok
}

// Close ends a session, flushing unsaved edits in the background.
func (m *Manager) Close(uid, id string) bool {
	s, ok := m.take(uid, id)
	if ok {
		s.Close()
	}
	return ok
}

// Discard ends a session and drops its unsaved edits.
func (m *Manager) Discard(uid, id string) bool {
	s, ok := m.take(uid, id)
	if ok {
		s.Discard()
	}
	return ok
}

func (m *Manager) take(uid, id string) (*Session, bool) {
	key := sessionKey(uid, id)
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	return s, ok
}

// CloseAll ends every open session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for key, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, key)
	}
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
