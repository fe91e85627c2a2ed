package web

import (
	"net/http"

	"github.com/JonMunkholm/stockpilot/internal/core"
)

// TableResponse is a JSON snapshot of a projected table.
type TableResponse struct {
	FileName       string     `json:"fileName"`
	Header         []string   `json:"header"`
	QuantityColumn string     `json:"quantityColumn,omitempty"`
	Query          core.Query `json:"query"`
	Rows           []core.Row `json:"rows"`
	Total          int        `json:"total"`
	Visible        int        `json:"visible"`
}

// handleTableSnapshot returns the projected rows as JSON. Query parameters
// override the workspace's view state without changing it.
func (s *Server) handleTableSnapshot(w http.ResponseWriter, r *http.Request) {
	ws, tbl, err := s.table(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	q := ws.Query()
	if r.URL.Query().Has("search") {
		q.Search = r.URL.Query().Get("search")
	}
	if sort := parseSort(r); !sort.IsZero() {
		q.Sort = sort
	}

	rows := tbl.View(q)
	qty, _ := tbl.QuantityColumn()
	writeJSON(w, http.StatusOK, TableResponse{
		FileName:       tbl.Name(),
		Header:         tbl.Header(),
		QuantityColumn: qty,
		Query:          q,
		Rows:           rows,
		Total:          tbl.Len(),
		Visible:        len(rows),
	})
}

// handleStats returns summary figures for the loaded table.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.table(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tbl.Stats())
}

// handleExport downloads every canonical row, ignoring search and sort.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.table(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	body := tbl.ExportText()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+core.ExportFileName+`"`)
	w.Write([]byte(body))
}
