package server

import (
	"io"
	"net/http"
	"time"

	"github.com/jonathan/resume-builder/internal/dashboard"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/types"
)

// maxImportBytes caps the size of an imported resume file.
const maxImportBytes = 1 << 20

// sseKeepAlive is how often idle event streams are pinged.
const sseKeepAlive = 25 * time.Second

// ListResumesResponse is the dashboard listing.
type ListResumesResponse struct {
	Resumes []dashboard.Summary `json:"resumes"`
	Total   int                 `json:"total"`
	Stats   dashboard.Stats     `json:"stats"`
	Query   dashboard.Query     `json:"query"`
}

// CreatedResponse carries the id of a new resume.
type CreatedResponse struct {
	ID string `json:"id"`
}

// userID returns the caller's id as a store key, or writes 401.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return id.String(), true
}

// dashboardQuery reads search, sort and direction from the query string.
func dashboardQuery(r *http.Request) dashboard.Query {
	q := r.URL.Query()
	query := dashboard.DefaultQuery()
	query.Search = q.Get("search")
	if v := q.Get("sort"); v != "" {
		query.SortKey = dashboard.ParseSortKey(v)
	}
	if v := q.Get("direction"); v != "" {
		query.Direction = dashboard.ParseDirection(v)
	}
	return query
}

// handleListResumes returns the caller's dashboard cards
func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	query := dashboardQuery(r)
	items, stats, err := s.records.List(r.Context(), uid, query)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ListResumesResponse{
		Resumes: items,
		Total:   len(items),
		Stats:   stats,
		Query:   query,
	})
}

// handleCreateResume creates an empty resume
func (s *Server) handleCreateResume(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req types.CreateResumeRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req, s.validator); err != nil {
			s.failure(w, r, err)
			return
		}
	}
	id, err := s.records.Create(r.Context(), uid, req)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, CreatedResponse{ID: id})
}

// handleImportResume stores an uploaded resume file as a new record
func (s *Server) handleImportResume(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		s.failure(w, r, &ErrValidation{Field: "body", Message: "import file too large or unreadable"})
		return
	}
	id, err := s.records.Import(r.Context(), uid, data, resume.FormatOf(r.Header.Get("Content-Type")))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, CreatedResponse{ID: id})
}

// handleGetResume returns a stored record
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	rec, err := s.records.Get(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

// handleDeleteResume removes a record and ends any editor open on it
func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if _, err := s.records.Get(r.Context(), uid, id); err != nil {
		s.failure(w, r, err)
		return
	}
	// Discard first so a pending save cannot recreate the record.
	s.editors.Discard(uid, id)
	if err := s.records.Delete(r.Context(), uid, id); err != nil {
		s.failure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDuplicateResume copies a record under a new id
func (s *Server) handleDuplicateResume(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	id, err := s.records.Duplicate(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, CreatedResponse{ID: id})
}

// handleUpdateAppearance changes a record's template and color scheme
func (s *Server) handleUpdateAppearance(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}
	var req types.AppearanceRequest
	if err := decode(r, &req, s.validator); err != nil {
		s.failure(w, r, err)
		return
	}
	if _, known := rendering.LookupColorScheme(req.ColorScheme); !known {
		s.failure(w, r, &ErrValidation{Field: "colorScheme", Message: "unknown color scheme"})
		return
	}
	id := r.PathValue("id")
	if err := s.records.UpdateAppearance(r.Context(), uid, id, req); err != nil {
		s.failure(w, r, err)
		return
	}
	rec, err := s.records.Get(r.Context(), uid, id)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec.Metadata)
}

// handleDashboardEvents streams the caller's dashboard view whenever their
// resumes change. The store delivers the current list on subscribe, so the
// first event is the initial view.
func (s *Server) handleDashboardEvents(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.userID(w, r)
	if !ok {
		return
	}

	views := make(chan dashboard.View, 8)
	ctrl, err := dashboard.NewController(r.Context(), s.store, uid, dashboard.ControllerOptions{
		Query: dashboardQuery(r),
		Log:   s.log,
		OnChange: func(v dashboard.View) {
			// Drop the older view if the client is behind; only the latest matters.
			select {
			case views <- v:
			default:
				select {
				case <-views:
				default:
				}
				select {
				case views <- v:
				default:
				}
			}
		},
	})
	if err != nil {
		s.failure(w, r, err)
		return
	}
	defer ctrl.Close()

	sse, err := openEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
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
		case v := <-views:
			if err := sse.send("dashboard", v); err != nil {
				return
			}
		case <-ticker.C:
			if err := sse.ping(); err != nil {
				return
			}
		}
	}
}
