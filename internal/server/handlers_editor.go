package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/types"
)

// SetCurrentRequest toggles whether an entry is ongoing.
type SetCurrentRequest struct {
	Current bool `json:"current"`
}

// AddEntryResponse is the snapshot after an entry was appended, with its id.
type AddEntryResponse struct {
	ID       int             `json:"id"`
	Snapshot editor.Snapshot `json:"snapshot"`
}

// SaveResponse reports the outcome of a manual save.
type SaveResponse struct {
	Message  string          `json:"message"`
	Snapshot editor.Snapshot `json:"snapshot"`
}

// session returns the caller's open session on the resume in the path.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	uid, ok := s.userID(w, r)
	if !ok {
		return nil, false
	}
	sess, ok := s.editors.Get(uid, r.PathValue("id"))
	if !ok {
		s.failure(w, r, ErrSessionNotFound)
		return nil, false
	}
	return sess, true
}

// pathInt parses a numeric path segment.
func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, &ErrValidation{Field: name, Message: "must be an integer"}
	}
	return v, nil
}

// handleOpenSession starts editing a resume, or joins the open session
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	sess, err := s.editors.Open(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Snapshot())
}

// handleGetSession returns the working copy, completion and save state
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Snapshot())
}

// handleCloseSession ends editing. Unsaved edits are flushed in the background.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	if !s.editors.Close(uid, r.PathValue("id")) {
		s.failure(w, r, ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSaveSession persists the working copy now
func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Save(r.Context()); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, SaveResponse{Message: editor.ToastSaved, Snapshot: sess.Snapshot()})
}

// handleSetTitle renames the resume from the editor
func (s *Server) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req types.TitleRequest
	if err := decode(r, &req, s.validator); err != nil {
		s.failure(w, r, err)
		return
	}
	if err := sess.SetTitle(req.Title); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Snapshot())
}

// handleUpdateSection replaces one section of the working copy
func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(data) {
		s.failure(w, r, &ErrValidation{Field: "body", Message: "invalid request body"})
		return
	}
	if err := sess.UpdateSection(r.PathValue("section"), data); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Snapshot())
}

// handleAddEntry appends a blank entry to a list section
func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id, err := sess.AddEntry(r.PathValue("section"))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, AddEntryResponse{ID: id, Snapshot: sess.Snapshot()})
}

// handleRemoveEntry deletes an entry from a list section
func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	entry, err := pathInt(r, "entry")
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if err := sess.RemoveEntry(r.PathValue("section"), entry); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Snapshot())
}

// handleSetCurrent marks an experience or project as ongoing
func (s *Server) handleSetCurrent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	entry, err := pathInt(r, "entry")
	if err != nil {
		s.failure(w, r, err)
		return
	}
	var req SetCurrentRequest
	if err := decode(r, &req, nil); err != nil {
		s.failure(w, r, err)
		return
	}
	if err := sess.SetCurrent(r.PathValue("section"), entry, req.Current); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Snapshot())
}

// handleAddItem appends a blank responsibility or skill to an entry
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	entry, err := pathInt(r, "entry")
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if err := sess.AddItem(r.PathValue("section"), entry); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, sess.Snapshot())
}

// handleRemoveItem deletes a responsibility or skill from an entry
func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	entry, err := pathInt(r, "entry")
	if err != nil {
		s.failure(w, r, err)
		return
	}
	index, err := pathInt(r, "index")
	if err != nil {
		s.failure(w, r, err)
		return
	}
	if err := sess.RemoveItem(r.PathValue("section"), entry, index); err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sess.Snapshot())
}

// handleSessionEvents streams save outcomes, edits and metadata changes
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	events, stop := sess.Follow()
	defer stop()

	sse, err := openEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := sse.send("snapshot", sess.Snapshot()); err != nil {
		return
	}

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-s.shutdown:
			return
		case e, open := <-events:
			if !open {
				return
			}
			if err := sse.send(e.Type, e); err != nil {
				return
			}
			if e.Type == editor.EventClosed {
				return
			}
		case <-ticker.C:
			if err := sse.ping(); err != nil {
				return
			}
		}
	}
}
