package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
)

// renderRequest resolves the document and style to draw for the resume in the
// path. An open editing session wins over the stored record so previews and
// exports show unsaved edits. Query parameters override the stored appearance.
func (s *Server) renderRequest(w http.ResponseWriter, r *http.Request) (string, *rendering.DisplayTree, string, bool) {
	uid, ok := s.userID(w, r)
	if !ok {
		return "", nil, "", false
	}
	id := r.PathValue("id")

	var (
		doc  types.ResumeDocument
		meta types.Metadata
	)
	if sess, open := s.editors.Get(uid, id); open {
		snap := sess.Snapshot()
		doc, meta = snap.Content(), snap.Metadata
	} else {
		rec, err := s.records.Get(r.Context(), uid, id)
		if err != nil {
			s.failure(w, r, err)
			return "", nil, "", false
		}
		doc, meta = rec.ResumeData, rec.Metadata
	}

	q := r.URL.Query()
	kind := types.Template(meta.Template)
	if v := q.Get("template"); v != "" {
		kind = types.Template(v)
	}
	style := rendering.Style{FontFamily: q.Get("font"), ColorScheme: meta.ColorScheme}
	if v := q.Get("colorScheme"); v != "" {
		style.ColorScheme = v
	}

	tree, err := rendering.Render(kind, doc, style)
	if err != nil {
		s.failure(w, r, err)
		return "", nil, "", false
	}
	return uid + "/" + id, tree, doc.PersonalInfo.FullName, true
}

// handlePreview returns the rendered HTML document
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	_, tree, _, ok := s.renderRequest(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(tree.Bytes()); err != nil {
		s.log.Warn("failed to write preview", "error", err)
	}
}

// handleExport downloads the resume as a PDF, falling back from the rich to the
// simple rendition. When neither can be produced the response points at the
// print rendition.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	key, tree, fullName, ok := s.renderRequest(w, r)
	if !ok {
		return
	}
	result, err := s.exporter.Export(r.Context(), key, tree, fullName)
	if err != nil {
		var exportErr *export.ExportError
		if errors.As(err, &exportErr) {
			s.log.Error("pdf export failed", "resume_key", key, "error", err)
			printURL := "/resumes/" + r.PathValue("id") + "/print.pdf"
			if r.URL.RawQuery != "" {
				printURL += "?" + r.URL.RawQuery
			}
			s.jsonResponse(w, HTTPStatus(err), errorBody{
				Error:      "We couldn't create the PDF. You can print the resume and save it as PDF instead.",
				NextAction: exportErr.NextAction,
				PrintURL:   printURL,
			})
			return
		}
		s.failure(w, r, err)
		return
	}
	if result.Cause != nil {
		s.log.Warn("served fallback pdf", "resume_key", key, "tier", result.Tier.String(), "cause", result.Cause)
	}
	s.writePDF(w, result, export.ContentDisposition(result.Filename))
}

// handlePrint returns the print rendition for the browser's print dialog
func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	key, tree, fullName, ok := s.renderRequest(w, r)
	if !ok {
		return
	}
	result, err := s.exporter.Print(r.Context(), key, tree, fullName)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.writePDF(w, result, "inline")
}

func (s *Server) writePDF(w http.ResponseWriter, result *export.Result, disposition string) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.PDF)))
	w.Header().Set("X-Export-Tier", result.Tier.String())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.PDF); err != nil {
		s.log.Warn("failed to write pdf", "error", err)
	}
}
