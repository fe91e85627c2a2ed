package web

import (
	"net/http"
	"net/url"

	"github.com/JonMunkholm/stockpilot/internal/analysis"
	"github.com/JonMunkholm/stockpilot/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// handleHealth reports liveness and the number of live workspaces.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"workspaces": s.sessions.Len(),
	})
}

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	maxMB := s.cfg.Upload.MaxFileSize / (1024 * 1024)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.UploadPage(maxMB, s.analysisEnabled()).Render(r.Context(), w)
}

// handleWorkspacePage renders the grid page, or only the grid partial for
// HTMX requests. A search parameter replaces the workspace's search term.
func (s *Server) handleWorkspacePage(w http.ResponseWriter, r *http.Request) {
	ws, tbl, err := s.table(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if r.URL.Query().Has("search") {
		ws.SetSearch(r.URL.Query().Get("search"))
	}
	params := s.gridParams(ws, tbl, parseIntParam(r, "page", 1))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if isHTMX(r) {
		templates.Grid(params).Render(r.Context(), w)
	} else {
		templates.WorkspacePage(params).Render(r.Context(), w)
	}
}

// handleToggleSort applies a header click and returns the grid partial.
func (s *Server) handleToggleSort(w http.ResponseWriter, r *http.Request) {
	ws, tbl, err := s.table(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	column, err := url.PathUnescape(chi.URLParam(r, "column"))
	if err != nil || !tbl.HasColumn(column) {
		respondError(w, r, errBadRequest)
		return
	}
	if err := r.ParseForm(); err == nil && r.Form.Has("search") {
		ws.SetSearch(r.Form.Get("search"))
	}
	ws.ToggleSort(column)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Grid(s.gridParams(ws, tbl, 1)).Render(r.Context(), w)
}

// handleAnalysisStatus reports whether analysis is available and, when a
// limiter is attached, how many slots are in use.
func (s *Server) handleAnalysisStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"enabled": s.analysisEnabled()}
	if ls, ok := s.analyzer.(interface {
		LimiterStatus() (analysis.LimiterStatus, bool)
	}); ok {
		if status, ok := ls.LimiterStatus(); ok {
			resp["limiter"] = status
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
