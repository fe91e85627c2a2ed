package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/stockpilot/internal/core"
	"github.com/JonMunkholm/stockpilot/internal/session"
	"github.com/JonMunkholm/stockpilot/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// WorkspaceResponse describes a workspace and its loaded table.
type WorkspaceResponse struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	FileName       string    `json:"fileName"`
	Header         []string  `json:"header"`
	Rows           int       `json:"rows"`
	QuantityColumn string    `json:"quantityColumn,omitempty"`
	LoadedAt       time.Time `json:"loadedAt"`
}

func toWorkspaceResponse(ws *session.Workspace, tbl *core.Table) WorkspaceResponse {
	qty, _ := tbl.QuantityColumn()
	return WorkspaceResponse{
		ID:             ws.ID(),
		URL:            "/w/" + ws.ID(),
		FileName:       tbl.Name(),
		Header:         tbl.Header(),
		Rows:           tbl.Len(),
		QuantityColumn: qty,
		LoadedAt:       tbl.LoadedAt(),
	}
}

// handleCreateWorkspace loads an uploaded file into a new workspace.
// HTMX clients are redirected to the grid page.
func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	name, text, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ws, err := s.sessions.Create(name, text)
	if err != nil {
		respondError(w, r, err)
		return
	}
	tbl, err := ws.Table()
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := toWorkspaceResponse(ws, tbl)
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", resp.URL)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// handleReplaceFile loads a new file into an existing workspace, discarding
// the old table, its edits, and the search and sort state.
func (s *Server) handleReplaceFile(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	name, text, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	tbl, err := ws.Load(name, text)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.Grid(s.gridParams(ws, tbl, 1)).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, toWorkspaceResponse(ws, tbl))
}

// handleWorkspaceInfo describes a workspace.
func (s *Server) handleWorkspaceInfo(w http.ResponseWriter, r *http.Request) {
	ws, tbl, err := s.table(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkspaceResponse(ws, tbl))
}

// handleListWorkspaces lists live workspaces. It is only routed when API
// keys are required, since workspace ids are the only access control.
func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	list := s.sessions.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"workspaces": list,
		"count":      len(list),
	})
}

// handleDeleteWorkspace discards a workspace.
func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
