package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/stockpilot/internal/core"
	"github.com/JonMunkholm/stockpilot/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// defaultHistoryLimit is how many edit log entries a history request returns
// without an explicit limit.
const defaultHistoryLimit = 100

// cellEdit is a single cell update request.
type cellEdit struct {
	RowID  core.RowID
	Column string
	Value  string
}

// parseCellEdit accepts either JSON {"rowId", "column", "value"} or form
// fields of the same names. value may be a JSON string or number.
func parseCellEdit(r *http.Request) (cellEdit, error) {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			RowID  core.RowID      `json:"rowId"`
			Column string          `json:"column"`
			Value  json.RawMessage `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return cellEdit{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		edit := cellEdit{RowID: req.RowID, Column: req.Column}
		raw := bytes.TrimSpace(req.Value)
		switch {
		case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		case raw[0] == '"':
			if err := json.Unmarshal(raw, &edit.Value); err != nil {
				return cellEdit{}, fmt.Errorf("%w: %v", errBadRequest, err)
			}
		default:
			edit.Value = string(raw)
		}
		return edit, nil
	}

	if err := r.ParseForm(); err != nil {
		return cellEdit{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	id, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("rowId")))
	if err != nil {
		return cellEdit{}, fmt.Errorf("%w: rowId must be an integer", errBadRequest)
	}
	return cellEdit{
		RowID:  core.RowID(id),
		Column: r.Form.Get("column"),
		Value:  r.Form.Get("value"),
	}, nil
}

// handleUpdateCell writes one cell. Only the quantity column is editable;
// the column defaults to it when omitted. A row that no longer exists is
// reported with applied=false rather than an error.
func (s *Server) handleUpdateCell(w http.ResponseWriter, r *http.Request) {
	ws, tbl, err := s.table(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	edit, err := parseCellEdit(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if edit.Column == "" {
		edit.Column, _ = tbl.QuantityColumn()
	}
	if !tbl.Editable(edit.Column) {
		respondError(w, r, fmt.Errorf("%w: %q", core.ErrColumnNotEditable, edit.Column))
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	res := tbl.ApplyEdit(ctx, edit.RowID, edit.Column, edit.Value)

	if isHTMX(r) {
		cell := res.New
		if !res.Applied {
			row, _ := tbl.Row(edit.RowID)
			cell = row.Values.Get(edit.Column)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.QuantityCell(ws.ID(), edit.RowID, edit.Column, cell.String()).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleHistory lists edit log entries, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.table(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	entries := tbl.History(parseIntParam(r, "limit", defaultHistoryLimit))
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleRevert restores the old value of a logged edit as a new edit.
func (s *Server) handleRevert(w http.ResponseWriter, r *http.Request) {
	_, tbl, err := s.table(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := tbl.Revert(ctx, chi.URLParam(r, "entryID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
